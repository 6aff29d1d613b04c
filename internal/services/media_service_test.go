package services

import (
	"context"
	"errors"
	"testing"

	"github.com/campus-hub/eventhub/internal/models"
)

func TestUploadAndDeleteMedia(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t, "A")
	id := te.createEvent(t, 2)
	ms := NewMediaService(te.env, te.storage)
	ctx := context.Background()

	if _, err := ms.UploadMedia(ctx, id, "A", upload("image/jpeg", 10)); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("non organizer upload: got %v", err)
	}
	if _, err := ms.UploadMedia(ctx, id, organizer, upload("text/plain", 10)); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("text upload: got %v", err)
	}
	if _, err := ms.UploadMedia(ctx, id, organizer, upload("image/jpeg", MaxMediaBytes+1)); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("oversized upload: got %v", err)
	}

	m, err := ms.UploadMedia(ctx, id, organizer, upload("image/jpeg", 10))
	if err != nil {
		t.Fatal(err)
	}
	if m.Type != models.MediaPhoto || m.URL == "" {
		t.Fatalf("unexpected media %+v", m)
	}
	list, _ := ms.ListMedia(ctx, id)
	if len(list) != 1 {
		t.Fatalf("list = %+v", list)
	}

	if err := ms.DeleteMedia(ctx, m.ID, "A"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("non organizer delete: got %v", err)
	}
	if err := ms.DeleteMedia(ctx, m.ID, organizer); err != nil {
		t.Fatal(err)
	}
	if len(te.storage.deleted) != 1 {
		t.Fatalf("stored object should be deleted, got %v", te.storage.deleted)
	}
}

func TestUploadFailureIsFatal(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t)
	id := te.createEvent(t, 2)
	te.storage.uploadErr = errors.New("cdn down")

	if _, err := NewMediaService(te.env, te.storage).UploadMedia(context.Background(), id, organizer, upload("image/png", 10)); err == nil {
		t.Fatal("expected the upload error")
	}
	if len(te.snapshot(t).Media) != 0 {
		t.Fatal("no media record may be created")
	}
}

func TestUploadWithoutStorage(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t)
	id := te.createEvent(t, 2)
	if _, err := NewMediaService(te.env, nil).UploadMedia(context.Background(), id, organizer, upload("image/png", 10)); !errors.Is(err, models.ErrPersistence) {
		t.Fatalf("got %v", err)
	}
}

func TestStorageCallsAreBoundedAndOutliveTheRequest(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t)
	id := te.createEvent(t, 2)
	ms := NewMediaService(te.env, te.storage)

	m, err := ms.UploadMedia(context.Background(), id, organizer, upload("image/png", 10))
	if err != nil {
		t.Fatal(err)
	}

	// the client is gone by the time the stored object is destroyed
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ms.DeleteMedia(ctx, m.ID, organizer); err != nil {
		t.Fatal(err)
	}

	if len(te.storage.deleted) != 1 {
		t.Fatalf("stored object should be deleted, got %v", te.storage.deleted)
	}
	if te.storage.unbounded != 0 {
		t.Fatalf("%d storage calls ran without a live deadline", te.storage.unbounded)
	}
}
