// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Mutex is a FIFO, context-aware, non-reentrant lock. Waiters acquire it in
// the order they called Lock. Unlike sync.Mutex, a waiter can give up when
// its context is done.
type Mutex struct {
	sem  *semaphore.Weighted
	held atomic.Bool
}

// NewMutex returns an unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{sem: semaphore.NewWeighted(1)}
}

// Lock blocks until the lock is acquired or ctx is done. The returned unlock
// function is idempotent, so it is safe to both defer it and call it early.
func (m *Mutex) Lock(ctx context.Context) (unlock func(), err error) {
	if err = m.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	m.held.Store(true)

	var released atomic.Bool
	return func() {
		if released.CompareAndSwap(false, true) {
			m.held.Store(false)
			m.sem.Release(1)
		}
	}, nil
}

// TryLock acquires the lock only if it is free.
func (m *Mutex) TryLock() (unlock func(), ok bool) {
	if !m.sem.TryAcquire(1) {
		return nil, false
	}
	m.held.Store(true)

	var released atomic.Bool
	return func() {
		if released.CompareAndSwap(false, true) {
			m.held.Store(false)
			m.sem.Release(1)
		}
	}, true
}

// Locked reports whether the lock is currently held.
func (m *Mutex) Locked() bool {
	return m.held.Load()
}
