package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// tournamentLocks hands out one single-slot semaphore per tournament so that
// generations for the same tournament queue up inside this process. Entries
// are dropped once nobody holds or waits on them.
type tournamentLocks struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	sem  *semaphore.Weighted
	refs int
}

func newTournamentLocks() *tournamentLocks {
	return &tournamentLocks{entries: make(map[uuid.UUID]*lockEntry)}
}

// acquire blocks until the tournament is free or ctx is done.
func (l *tournamentLocks) acquire(ctx context.Context, id uuid.UUID) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[id]
	if !ok {
		e = &lockEntry{sem: semaphore.NewWeighted(1)}
		l.entries[id] = e
	}
	e.refs++
	l.mu.Unlock()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		l.drop(id, e)
		return nil, err
	}

	return func() {
		e.sem.Release(1)
		l.drop(id, e)
	}, nil
}

func (l *tournamentLocks) drop(id uuid.UUID, e *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, id)
	}
}
