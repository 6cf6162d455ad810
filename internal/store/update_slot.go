package store

import (
	"slices"
	"sync"

	"github.com/MKhiriev/go-assembly-sync/models"
)

type stagedOp struct {
	remove     bool
	collection string
	ids        []int
	model      models.BaseModel
}

// UpdateSlot is a transaction over the [DataStore]. Operations are staged in
// call order and become visible to readers and observers together on
// [UpdateSlot.Commit].
type UpdateSlot struct {
	store   *DataStore
	release func()

	mu     sync.Mutex
	ops    []stagedOp
	closed bool
}

// Remove stages the removal of ids from collection. Unknown ids are ignored.
func (u *UpdateSlot) Remove(collection string, ids ...int) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return ErrSlotClosed
	}
	if len(ids) == 0 {
		return nil
	}
	u.ops = append(u.ops, stagedOp{remove: true, collection: collection, ids: slices.Clone(ids)})
	return nil
}

// AddOrUpdate stages models to be inserted or to replace the stored ones.
func (u *UpdateSlot) AddOrUpdate(items ...models.BaseModel) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return ErrSlotClosed
	}
	for _, item := range items {
		if item == nil {
			continue
		}
		u.ops = append(u.ops, stagedOp{model: item})
	}
	return nil
}

// Commit applies the staged operations atomically, notifies observers when
// anything changed and releases the slot.
func (u *UpdateSlot) Commit() (CommitEvent, error) {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return CommitEvent{}, ErrSlotClosed
	}
	u.closed = true
	ops := u.ops
	u.ops = nil
	u.mu.Unlock()

	defer u.release()

	event := u.store.apply(ops)
	if event.Empty() {
		return event, nil
	}

	u.store.logger.Debug().
		Str("func", "UpdateSlot.Commit").
		Int("changed_collections", len(event.Changed)).
		Int("deleted_collections", len(event.Deleted)).
		Msg("update slot committed")
	u.store.publish(event)

	return event, nil
}

// Discard drops the staged operations and releases the slot. Discarding a
// closed slot is a no-op, so it is safe to defer.
func (u *UpdateSlot) Discard() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return
	}
	u.closed = true
	u.ops = nil
	u.release()
}
