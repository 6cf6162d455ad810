package store

import (
	"context"

	"github.com/MKhiriev/go-assembly-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// ModelCache persists the client's last committed store state so the
// client can start with data while offline.
type ModelCache interface {
	SaveModels(ctx context.Context, records ...models.ModelRecord) error
	DeleteModels(ctx context.Context, collection string, ids ...int) error
	LoadModels(ctx context.Context) ([]models.ModelRecord, error)
}

// ModelsRepository is the reference server's datastore of models.
type ModelsRepository interface {
	GetModels(ctx context.Context, collection string, ids []int) ([]models.ModelRecord, error)
	SaveModel(ctx context.Context, record models.ModelRecord) (models.ModelRecord, error)
	DeleteModel(ctx context.Context, collection string, id int) error
}
