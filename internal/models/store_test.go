package models

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreLoadEmpty(t *testing.T) {
	store := NewMemoryStore()
	agg, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg.Users == nil || agg.Events == nil || agg.Notifications == nil || agg.EventNotifications == nil {
		t.Error("empty aggregate should have initialised collections")
	}
	if agg.Revision != 0 {
		t.Errorf("revision = %d, want 0", agg.Revision)
	}
}

func TestMemoryStoreRejectsStaleRevision(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a, _ := store.Load(ctx)
	b, _ := store.Load(ctx)

	a.Users = append(a.Users, User{RegNumber: "A"})
	if err := store.Save(ctx, a); err != nil {
		t.Fatalf("first save: %v", err)
	}
	b.Users = append(b.Users, User{RegNumber: "B"})
	if err := store.Save(ctx, b); !errors.Is(err, ErrRevisionConflict) {
		t.Fatalf("expected revision conflict, got %v", err)
	}
}

func TestGatewayUpdatePersists(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(NewMemoryStore(), nil)

	err := gw.Update(ctx, func(agg *Aggregate) error {
		agg.Users = append(agg.Users, User{RegNumber: "R1", Name: "Ada"})
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	agg, err := gw.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if agg.FindUser("R1") == nil {
		t.Error("user was not saved")
	}
}

func TestGatewayDiscardsFailedMutation(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(NewMemoryStore(), nil)

	err := gw.Update(ctx, func(agg *Aggregate) error {
		agg.Users = append(agg.Users, User{RegNumber: "R1"})
		return Conflictf("nope")
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	agg, _ := gw.Read(ctx)
	if len(agg.Users) != 0 {
		t.Error("mutation should have been discarded")
	}
}

func TestGatewayKeepChangesCommitsAndReturnsError(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(NewMemoryStore(), nil)

	err := gw.Update(ctx, func(agg *Aggregate) error {
		agg.NotifyText("R1", "full", time.Now())
		return KeepChanges(ErrCapacityExceeded)
	})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected capacity error, got %v", err)
	}
	agg, _ := gw.Read(ctx)
	if len(agg.Notifications["R1"]) != 1 {
		t.Error("kept mutation was not saved")
	}
}

func TestGatewayNoChangesSkipsSave(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	gw := NewGateway(store, nil)

	if err := gw.Update(ctx, func(agg *Aggregate) error { return ErrNoChanges }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agg, _ := store.Load(ctx)
	if agg.Revision != 0 {
		t.Errorf("revision = %d, nothing should have been saved", agg.Revision)
	}
}

func TestGatewaySaveFailureIsPersistenceError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	gw := NewGateway(store, nil)
	store.FailNextSave(errors.New("disk on fire"))

	err := gw.Update(ctx, func(agg *Aggregate) error {
		agg.Users = append(agg.Users, User{RegNumber: "R1"})
		return nil
	})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	agg, _ := gw.Read(ctx)
	if len(agg.Users) != 0 {
		t.Error("failed save must not leave partial state")
	}
}

type racingStore struct {
	*MemoryStore
	races int
}

// Save lets another writer commit first for the configured number of races.
func (r *racingStore) Save(ctx context.Context, agg *Aggregate) error {
	if r.races > 0 {
		r.races--
		other, _ := r.MemoryStore.Load(ctx)
		other.Users = append(other.Users, User{RegNumber: "other"})
		if err := r.MemoryStore.Save(ctx, other); err != nil {
			return err
		}
	}
	return r.MemoryStore.Save(ctx, agg)
}

func TestGatewayRetriesOnRevisionConflict(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{MemoryStore: NewMemoryStore(), races: 1}
	gw := NewGateway(store, nil)

	calls := 0
	err := gw.Update(ctx, func(agg *Aggregate) error {
		calls++
		agg.Users = append(agg.Users, User{RegNumber: "mine"})
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if calls != 2 {
		t.Errorf("fn ran %d times, want 2", calls)
	}
	agg, _ := gw.Read(ctx)
	if agg.FindUser("other") == nil || agg.FindUser("mine") == nil {
		t.Errorf("both writes should survive, got %+v", agg.Users)
	}
}

func TestGatewayGivesUpAfterRepeatedConflicts(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{MemoryStore: NewMemoryStore(), races: maxSaveAttempts}
	gw := NewGateway(store, nil)

	err := gw.Update(ctx, func(agg *Aggregate) error { return nil })
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}
