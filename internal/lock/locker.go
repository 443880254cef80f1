// Package lock provides mutual exclusion keyed by entity id: a merge commit
// and a completion toggle touching the same course never interleave.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/prateektimer/course-library/internal/model"
)

type Locker interface {
	Lock(id model.ID) Unlocker
	ContextLock(ctx context.Context, id model.ID) (Unlocker, error)
}

type Unlocker interface {
	Unlock()
}

type entityLock struct {
	mu     sync.Mutex
	ref    uint64
	locker *locker
	id     model.ID
}

// Unlock implements Unlocker.
func (lck *entityLock) Unlock() {
	lck.locker.release(lck)
	lck.mu.Unlock()
}

type locker struct {
	mu sync.Mutex
	l  map[model.ID]*entityLock
}

func (l *locker) getOrCreate(id model.ID) *entityLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	result, ok := l.l[id]
	if !ok {
		result = &entityLock{locker: l, id: id}
		l.l[id] = result
	}
	result.ref++
	return result
}

// ContextLock implements Locker.
func (l *locker) ContextLock(ctx context.Context, id model.ID) (Unlocker, error) {
	lck := l.getOrCreate(id)
	if lck.mu.TryLock() {
		return lck, nil
	}

	for {
		select {
		case <-ctx.Done():
			l.release(lck)
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
			if lck.mu.TryLock() {
				return lck, nil
			}
		}
	}
}

// Lock implements Locker.
func (l *locker) Lock(id model.ID) Unlocker {
	lck := l.getOrCreate(id)
	lck.mu.Lock()
	return lck
}

func (l *locker) release(lck *entityLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lck.ref--
	if lck.ref == 0 {
		delete(l.l, lck.id)
	}
}

func NewLocker() Locker {
	return &locker{
		l: map[model.ID]*entityLock{},
	}
}
