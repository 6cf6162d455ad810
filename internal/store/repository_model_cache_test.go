package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/migrations"
	"github.com/MKhiriev/go-assembly-sync/models"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCacheRepo(t *testing.T) (*modelCacheRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l := logger.Nop()
	repo := &modelCacheRepository{
		db: &DB{
			DB:                 db,
			dialect:            migrations.DialectSQLite,
			errorClassificator: NewSQLiteErrorClassifier(),
			logger:             l,
		},
		logger: l,
	}
	return repo, mock
}

func TestModelCache_SaveModels(t *testing.T) {
	repo, mock := newTestCacheRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("REPLACE INTO models").
		WithArgs("user", 1, `{"id":1,"username":"alice"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("REPLACE INTO models").
		WithArgs("motion", 7, `{"id":7}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := repo.SaveModels(context.Background(),
		models.ModelRecord{Collection: "user", ID: 1, Data: json.RawMessage(`{"id":1,"username":"alice"}`)},
		models.ModelRecord{Collection: "motion", ID: 7, Data: json.RawMessage(`{"id":7}`)},
	)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModelCache_SaveModels_Empty(t *testing.T) {
	repo, mock := newTestCacheRepo(t)

	require.NoError(t, repo.SaveModels(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModelCache_SaveModels_ExecErrorRollsBack(t *testing.T) {
	repo, mock := newTestCacheRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("REPLACE INTO models").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.SaveModels(context.Background(),
		models.ModelRecord{Collection: "user", ID: 1, Data: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ErrExecutingQuery)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModelCache_SaveModels_RetriesBusy(t *testing.T) {
	repo, mock := newTestCacheRepo(t)

	mock.ExpectBegin().WillReturnError(sqlite3.Error{Code: sqlite3.ErrBusy})
	mock.ExpectBegin()
	mock.ExpectExec("REPLACE INTO models").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.SaveModels(context.Background(),
		models.ModelRecord{Collection: "user", ID: 1, Data: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModelCache_DeleteModels(t *testing.T) {
	repo, mock := newTestCacheRepo(t)

	mock.ExpectExec(`DELETE FROM models WHERE collection = \? AND id IN \(\?,\?\)`).
		WithArgs("user", 1, 2).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeleteModels(context.Background(), "user", 1, 2))
	require.NoError(t, repo.DeleteModels(context.Background(), "user"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModelCache_LoadModels(t *testing.T) {
	repo, mock := newTestCacheRepo(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"collection", "id", "data", "updated_at"}).
		AddRow("motion", 1, []byte(`{"id":1,"title":"M"}`), now).
		AddRow("user", 5, []byte(`{"id":5,"username":"alice"}`), now)
	mock.ExpectQuery("SELECT collection, id, data, updated_at FROM models ORDER BY collection, id").
		WillReturnRows(rows)

	records, err := repo.LoadModels(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "motion/1", records[0].FQID())
	assert.JSONEq(t, `{"id":5,"username":"alice"}`, string(records[1].Data))
	assert.Equal(t, now, records[1].UpdatedAt)
}

func TestModelCache_LoadModels_InvalidData(t *testing.T) {
	repo, mock := newTestCacheRepo(t)

	rows := sqlmock.NewRows([]string{"collection", "id", "data", "updated_at"}).
		AddRow("user", 5, []byte(`{broken`), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM models").WillReturnRows(rows)

	_, err := repo.LoadModels(context.Background())
	assert.ErrorIs(t, err, ErrInvalidModelData)
}

func TestModelCache_LoadModels_QueryError(t *testing.T) {
	repo, mock := newTestCacheRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM models").WillReturnError(errors.New("boom"))

	_, err := repo.LoadModels(context.Background())
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

func TestSQLiteErrorClassifier(t *testing.T) {
	c := NewSQLiteErrorClassifier()
	assert.Equal(t, Retryable, c.Classify(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.Equal(t, Retryable, c.Classify(sqlite3.Error{Code: sqlite3.ErrLocked}))
	assert.Equal(t, NonRetryable, c.Classify(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.Equal(t, NonRetryable, c.Classify(errors.New("other")))
	assert.Equal(t, NonRetryable, c.Classify(nil))
}
