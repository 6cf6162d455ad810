package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/models"
)

const modelsTable = "models"

// modelCacheRepository is the SQLite implementation of [ModelCache].
type modelCacheRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewModelCacheRepository constructs a [ModelCache] on an SQLite connection.
func NewModelCacheRepository(db *DB, log *logger.Logger) ModelCache {
	return &modelCacheRepository{db: db, logger: log}
}

// SaveModels upserts records in one transaction.
func (r *modelCacheRepository) SaveModels(ctx context.Context, records ...models.ModelRecord) error {
	if len(records) == 0 {
		return nil
	}
	log := logger.FromContext(ctx)

	return r.db.withRetry(ctx, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			log.Err(err).Str("func", "modelCacheRepository.SaveModels").Msg("failed to begin transaction")
			return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
		}
		defer tx.Rollback()

		now := time.Now().UTC()
		for _, record := range records {
			query, args, err := sq.Replace(modelsTable).
				Columns("collection", "id", "data", "updated_at").
				Values(record.Collection, record.ID, string(record.Data), now).
				ToSql()
			if err != nil {
				return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
			}

			if _, err = tx.ExecContext(ctx, query, args...); err != nil {
				log.Err(err).
					Str("func", "modelCacheRepository.SaveModels").
					Str("fqid", record.FQID()).
					Msg("failed to upsert cached model")
				return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
			}
		}

		if err = tx.Commit(); err != nil {
			return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
		}
		return nil
	})
}

// DeleteModels removes cached models. Unknown ids are ignored.
func (r *modelCacheRepository) DeleteModels(ctx context.Context, collection string, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sq.Delete(modelsTable).
		Where(sq.Eq{"collection": collection, "id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.db.withRetry(ctx, func() error {
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			logger.FromContext(ctx).Err(err).
				Str("func", "modelCacheRepository.DeleteModels").
				Str("collection", collection).
				Msg("failed to delete cached models")
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}
		return nil
	})
}

// LoadModels returns every cached model ordered by collection and id.
func (r *modelCacheRepository) LoadModels(ctx context.Context) ([]models.ModelRecord, error) {
	query, args, err := sq.Select("collection", "id", "data", "updated_at").
		From(modelsTable).
		OrderBy("collection", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "modelCacheRepository.LoadModels").
			Msg("failed to query cached models")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	return scanModelRecords(rows)
}

func scanModelRecords(rows *sql.Rows) ([]models.ModelRecord, error) {
	var records []models.ModelRecord
	for rows.Next() {
		var (
			record models.ModelRecord
			data   []byte
		)
		if err := rows.Scan(&record.Collection, &record.ID, &data, &record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidModelData, record.FQID())
		}
		record.Data = data
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return records, nil
}
