package services

import (
	"context"
	"errors"
	"testing"

	"github.com/campus-hub/eventhub/internal/models"
)

func TestFeedbackOncePerBooker(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t, "A", "B")
	id := te.createEvent(t, 2)
	fs := NewFeedbackService(te.env)
	ctx := context.Background()
	if _, err := NewBookingService(te.env).Book(ctx, id, "A", ""); err != nil {
		t.Fatal(err)
	}

	good := FeedbackInput{SeatCapacityRating: 3, Review: "great talk"}
	if _, err := fs.Submit(ctx, id, "B", good); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("feedback without ticket: got %v", err)
	}
	if _, err := fs.Submit(ctx, id, "A", FeedbackInput{SeatCapacityRating: 5, Review: "x"}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("rating out of range: got %v", err)
	}
	if _, err := fs.Submit(ctx, id, "A", good); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Submit(ctx, id, "A", good); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("second feedback: got %v", err)
	}

	f, err := fs.Check(ctx, id, "A")
	if err != nil || f == nil || f.Review != "great talk" {
		t.Fatalf("check: f=%+v err=%v", f, err)
	}
	if f, _ := fs.Check(ctx, id, "B"); f != nil {
		t.Fatal("B has not submitted anything")
	}

	list, err := fs.ListForEvent(ctx, id, organizer)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].UserName != "A" {
		t.Fatalf("unexpected list %+v", list)
	}
	if _, err := fs.ListForEvent(ctx, id, "A"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("booker listing feedback: got %v", err)
	}
	if _, err := fs.Get(ctx, id, organizer, "B"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("missing feedback: got %v", err)
	}
}

func TestNotificationInbox(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t, "A")
	te.createEvent(t, 2)
	ns := NewNotificationService(te.env)
	ctx := context.Background()

	inbox, err := ns.List(ctx, "A")
	if err != nil {
		t.Fatal(err)
	}
	if len(inbox) != 1 || inbox[0].Read {
		t.Fatalf("unexpected inbox %+v", inbox)
	}
	if te.snapshot(t).FindUser("A").LastSeen == nil {
		t.Fatal("listing should record lastSeen")
	}

	if err := ns.MarkAllRead(ctx, "A"); err != nil {
		t.Fatal(err)
	}
	if n := te.snapshot(t).UnreadCount("A"); n != 0 {
		t.Fatalf("unread = %d", n)
	}
	if err := ns.MarkAllRead(ctx, "A"); err != nil {
		t.Fatalf("marking an already read inbox: %v", err)
	}
}
