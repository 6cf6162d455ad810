package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/mock"
	"github.com/MKhiriev/go-assembly-sync/internal/store"
	"github.com/MKhiriev/go-assembly-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func commit(t *testing.T, s *store.DataStore, apply func(slot *store.UpdateSlot)) {
	t.Helper()
	slot, err := s.GetNewUpdateSlot(context.Background())
	require.NoError(t, err)
	apply(slot)
	_, err = slot.Commit()
	require.NoError(t, err)
}

func TestCachePersister_MirrorsCommits(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mock.NewMockModelCache(ctrl)
	dataStore := store.NewDataStore(logger.Nop())

	p := NewCachePersister(dataStore, cache, logger.Nop())

	saved := make(chan []models.ModelRecord, 1)
	deleted := make(chan []int, 1)
	cache.EXPECT().SaveModels(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, records ...models.ModelRecord) error {
			saved <- records
			return nil
		})
	cache.EXPECT().DeleteModels(gomock.Any(), models.CollectionUser, 1).DoAndReturn(
		func(_ context.Context, _ string, ids ...int) error {
			deleted <- ids
			return nil
		})

	// committed before Run starts, still persisted
	commit(t, dataStore, func(slot *store.UpdateSlot) {
		require.NoError(t, slot.AddOrUpdate(models.User{Base: models.Base{ID: 1}, Username: "alice"}))
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case records := <-saved:
		require.Len(t, records, 1)
		assert.Equal(t, models.CollectionUser, records[0].Collection)
		assert.Equal(t, 1, records[0].ID)
		assert.JSONEq(t, `{"id":1,"username":"alice"}`, string(records[0].Data))
	case <-time.After(time.Second):
		t.Fatal("commit was not saved")
	}

	commit(t, dataStore, func(slot *store.UpdateSlot) {
		require.NoError(t, slot.Remove(models.CollectionUser, 1))
	})

	select {
	case ids := <-deleted:
		assert.Equal(t, []int{1}, ids)
	case <-time.After(time.Second):
		t.Fatal("deletion was not persisted")
	}

	cancel()
	<-done
}

func TestCachePersister_Persist(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mock.NewMockModelCache(ctrl)
	dataStore := store.NewDataStore(logger.Nop())
	p := NewCachePersister(dataStore, cache, logger.Nop())
	defer p.unsubscribe()
	ctx := context.Background()

	// a changed id that is gone by now is skipped
	require.NoError(t, p.persist(ctx, store.CommitEvent{Changed: map[string][]int{"user": {42}}}))

	cache.EXPECT().DeleteModels(ctx, "user", 1).Return(errors.New("disk full"))
	err := p.persist(ctx, store.CommitEvent{Deleted: map[string][]int{"user": {1}}})
	assert.EqualError(t, err, "disk full")
}
