package models

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

const maxSaveAttempts = 3

// AggregateStore persists the whole aggregate document.
type AggregateStore interface {
	// Load returns an empty aggregate with revision 0 when nothing was saved yet.
	Load(ctx context.Context) (*Aggregate, error)
	// Save writes agg if the stored revision still equals agg.Revision and
	// bumps agg.Revision. A lost race reports ErrRevisionConflict.
	Save(ctx context.Context, agg *Aggregate) error
}

// Gateway serialises every read-modify-write cycle on the aggregate.
type Gateway struct {
	store  AggregateStore
	logger *slog.Logger
	mu     sync.Mutex
}

func NewGateway(store AggregateStore, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{store: store, logger: logger}
}

// Store returns the backing store.
func (g *Gateway) Store() AggregateStore {
	return g.store
}

// Read loads a private copy of the aggregate for read-only use.
func (g *Gateway) Read(ctx context.Context) (*Aggregate, error) {
	agg, err := g.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load: %v", ErrPersistence, err)
	}
	agg.Normalize()
	return agg, nil
}

// Update loads the aggregate, applies fn and saves the result.
//
// fn may run more than once when the save loses a revision race, so it must
// only touch the aggregate it is given and values it fully reassigns. If fn
// returns ErrNoChanges nothing is saved and Update returns nil. Any other
// error discards the mutations, unless it was wrapped with KeepChanges.
func (g *Gateway) Update(ctx context.Context, fn func(agg *Aggregate) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		agg, err := g.store.Load(ctx)
		if err != nil {
			return fmt.Errorf("%w: load: %v", ErrPersistence, err)
		}
		agg.Normalize()

		var kept *keptError
		if fnErr := fn(agg); fnErr != nil {
			if errors.Is(fnErr, ErrNoChanges) {
				return nil
			}
			if !errors.As(fnErr, &kept) {
				return fnErr
			}
		}

		agg.Normalize()
		err = g.store.Save(ctx, agg)
		if errors.Is(err, ErrRevisionConflict) {
			g.logger.Warn("aggregate changed underneath, retrying", "attempt", attempt)
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: save: %v", ErrPersistence, err)
		}
		if kept != nil {
			return kept.err
		}
		return nil
	}
	return fmt.Errorf("%w: %v after %d attempts", ErrPersistence, ErrRevisionConflict, maxSaveAttempts)
}

// MemoryStore keeps the aggregate as an encoded document in memory. It backs
// tests and runs the service when no database is configured.
type MemoryStore struct {
	mu       sync.Mutex
	doc      []byte
	revision int64
	failNext error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (*Aggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	agg := NewAggregate()
	if m.doc != nil {
		if err := bson.Unmarshal(m.doc, agg); err != nil {
			return nil, fmt.Errorf("error decoding aggregate: %v", err)
		}
		agg.Normalize()
	}
	agg.Revision = m.revision
	return agg, nil
}

func (m *MemoryStore) Save(ctx context.Context, agg *Aggregate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	if agg.Revision != m.revision {
		return ErrRevisionConflict
	}
	doc, err := bson.Marshal(agg)
	if err != nil {
		return fmt.Errorf("error encoding aggregate: %v", err)
	}
	m.doc = doc
	m.revision++
	agg.Revision = m.revision
	return nil
}

// FailNextSave makes the next Save return err.
func (m *MemoryStore) FailNextSave(err error) {
	m.mu.Lock()
	m.failNext = err
	m.mu.Unlock()
}
