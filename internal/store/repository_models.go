// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"bytes"
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// modelsRepository is the PostgreSQL implementation of [ModelsRepository].
type modelsRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewModelsRepository constructs a [ModelsRepository] on a Postgres
// connection.
func NewModelsRepository(db *DB, log *logger.Logger) ModelsRepository {
	log.Debug().Msg("creating models repository")
	return &modelsRepository{db: db, logger: log}
}

// GetModels returns the existing models among ids, ordered by id. Missing
// ids are simply absent from the result.
func (r *modelsRepository) GetModels(ctx context.Context, collection string, ids []int) ([]models.ModelRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := psql.Select("collection", "id", "data", "updated_at").
		From(modelsTable).
		Where(sq.Eq{"collection": collection, "id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var records []models.ModelRecord
	err = r.db.withRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}
		defer rows.Close()

		records, err = scanModelRecords(rows)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*modelsRepository.GetModels").
			Str("collection", collection).
			Msg("failed to get models")
		return nil, err
	}

	return records, nil
}

// SaveModel inserts or replaces a model and returns it with its new
// modification time.
func (r *modelsRepository) SaveModel(ctx context.Context, record models.ModelRecord) (models.ModelRecord, error) {
	if trimmed := bytes.TrimSpace(record.Data); len(trimmed) == 0 || trimmed[0] != '{' {
		return models.ModelRecord{}, fmt.Errorf("%w: %s is not a JSON object", ErrInvalidModelData, record.FQID())
	}

	query, args, err := psql.Insert(modelsTable).
		Columns("collection", "id", "data").
		Values(record.Collection, record.ID, string(record.Data)).
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW() RETURNING updated_at").
		ToSql()
	if err != nil {
		return models.ModelRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = r.db.withRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, query, args...).Scan(&record.UpdatedAt)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*modelsRepository.SaveModel").
			Str("fqid", record.FQID()).
			Msg("failed to save model")

		switch postgresError(err) {
		case pgerrcode.CheckViolation, pgerrcode.InvalidTextRepresentation:
			return models.ModelRecord{}, fmt.Errorf("%w: %w", ErrInvalidModelData, err)
		default:
			return models.ModelRecord{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	return record, nil
}

// DeleteModel removes a model; [ErrNotFound] when it does not exist.
func (r *modelsRepository) DeleteModel(ctx context.Context, collection string, id int) error {
	query, args, err := psql.Delete(modelsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var affected int64
	err = r.db.withRetry(ctx, func() error {
		result, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*modelsRepository.DeleteModel").
			Str("fqid", models.FQID(collection, id)).
			Msg("failed to delete model")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
