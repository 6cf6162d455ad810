package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/store"
	"github.com/MKhiriev/go-assembly-sync/models"
)

// ModelService is the write side of the reference server. Changes made
// through it are picked up by open autoupdate streams on their next poll.
type ModelService struct {
	repo   store.ModelsRepository
	logger *logger.Logger
}

func NewModelService(repo store.ModelsRepository, log *logger.Logger) *ModelService {
	return &ModelService{repo: repo, logger: log}
}

// GetModel returns one model or [store.ErrNotFound].
func (m *ModelService) GetModel(ctx context.Context, collection string, id int) (models.ModelRecord, error) {
	if err := validateKey(collection, id); err != nil {
		return models.ModelRecord{}, err
	}

	records, err := m.repo.GetModels(ctx, collection, []int{id})
	if err != nil {
		return models.ModelRecord{}, err
	}
	if len(records) == 0 {
		return models.ModelRecord{}, fmt.Errorf("%w: %s", store.ErrNotFound, models.FQID(collection, id))
	}
	return records[0], nil
}

// PutModel creates or replaces a model. The "id" member of data is
// overwritten with id.
func (m *ModelService) PutModel(ctx context.Context, collection string, id int, data json.RawMessage) (models.ModelRecord, error) {
	if err := validateKey(collection, id); err != nil {
		return models.ModelRecord{}, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return models.ModelRecord{}, fmt.Errorf("%w: %s is not a JSON object", store.ErrInvalidModelData, models.FQID(collection, id))
	}
	fields["id"] = json.RawMessage(fmt.Sprint(id))

	payload, err := json.Marshal(fields)
	if err != nil {
		return models.ModelRecord{}, err
	}

	saved, err := m.repo.SaveModel(ctx, models.ModelRecord{Collection: collection, ID: id, Data: payload})
	if err != nil {
		return models.ModelRecord{}, err
	}

	logger.FromContext(ctx).Info().Str("fqid", saved.FQID()).Msg("model saved")
	return saved, nil
}

// DeleteModel removes a model; [store.ErrNotFound] when it does not exist.
func (m *ModelService) DeleteModel(ctx context.Context, collection string, id int) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	if err := m.repo.DeleteModel(ctx, collection, id); err != nil {
		return err
	}

	logger.FromContext(ctx).Info().Str("fqid", models.FQID(collection, id)).Msg("model deleted")
	return nil
}

func validateKey(collection string, id int) error {
	if collection == "" || id <= 0 {
		return fmt.Errorf("%w: %q/%d", ErrInvalidModelKey, collection, id)
	}
	return nil
}
