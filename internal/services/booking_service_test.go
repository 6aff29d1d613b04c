package services

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/campus-hub/eventhub/internal/models"
)

func countMsgs(inbox []models.Notification, substr string) int {
	n := 0
	for _, item := range inbox {
		if strings.Contains(item.Msg, substr) {
			n++
		}
	}
	return n
}

func TestBookFullEventNotifiesAndRejects(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t, "A", "B", "C")
	id := te.createEvent(t, 2)
	bs := NewBookingService(te.env)
	ctx := context.Background()

	for _, reg := range []string{"A", "B"} {
		if _, err := bs.Book(ctx, id, reg, ""); err != nil {
			t.Fatalf("book %s: %v", reg, err)
		}
	}
	ev := te.event(t, id)
	if seatOf(ev, "A") != 1 || seatOf(ev, "B") != 2 || ev.Taken != 2 {
		t.Fatalf("unexpected seats %+v", ev.Bookings)
	}

	_, err := bs.Book(ctx, id, "C", "")
	if !errors.Is(err, models.ErrCapacityExceeded) {
		t.Fatalf("expected capacity exceeded, got %v", err)
	}
	if got := countMsgs(te.inbox(t, "C"), "is full"); got != 1 {
		t.Fatalf("C should receive one full notification, got %d", got)
	}

	if err := bs.CancelBooking(ctx, id, "A"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	ev = te.event(t, id)
	seatsPackedOrFail(t, ev)
	if ev.Taken != 1 || seatOf(ev, "B") != 1 {
		t.Fatalf("B should move to seat 1, got %+v", ev.Bookings)
	}
	if ev.HasBooking("C") {
		t.Fatal("C was never queued and must not be promoted")
	}
}

func TestCancelPromotesWaitlistHead(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t, "A", "B", "C")
	id := te.createEvent(t, 1)
	bs := NewBookingService(te.env)
	ctx := context.Background()

	if _, err := bs.Book(ctx, id, "A", ""); err != nil {
		t.Fatal(err)
	}
	for _, reg := range []string{"B", "C"} {
		if _, err := bs.JoinWaitlist(ctx, id, reg); err != nil {
			t.Fatalf("join %s: %v", reg, err)
		}
	}

	if err := bs.CancelBooking(ctx, id, "A"); err != nil {
		t.Fatal(err)
	}
	ev := te.event(t, id)
	if ev.Taken != 1 || seatOf(ev, "B") != 1 {
		t.Fatalf("B should hold seat 1, got %+v", ev.Bookings)
	}
	if got := waitlistRegs(ev); !reflect.DeepEqual(got, []string{"C"}) {
		t.Fatalf("waitlist = %v, want [C]", got)
	}
	if countMsgs(te.inbox(t, "B"), "auto-booked") != 1 {
		t.Fatal("B should be told about the promotion")
	}
	if te.publisher.count(PushTicketsChanged, "B") == 0 {
		t.Fatal("expected a tickets_changed push for B")
	}
}

func TestBookingPreconditions(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t, "A", "V")
	id := te.createEvent(t, 5)
	bs := NewBookingService(te.env)
	vs := NewVolunteerService(te.env)
	ctx := context.Background()

	if _, err := bs.Book(ctx, id, organizer, ""); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("creator booking: got %v", err)
	}
	if _, err := bs.Book(ctx, 999, "A", ""); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing event: got %v", err)
	}
	if _, err := bs.Book(ctx, id, "A", models.ViaQR); err != nil {
		t.Fatal(err)
	}
	if _, err := bs.Book(ctx, id, "A", ""); !errors.Is(err, models.ErrConflict) {
		t.Errorf("double booking: got %v", err)
	}
	if _, err := bs.JoinWaitlist(ctx, id, "A"); !errors.Is(err, models.ErrConflict) {
		t.Errorf("booked user joining waitlist: got %v", err)
	}

	if _, err := vs.AddVolunteer(ctx, id, organizer, "V", "usher"); err != nil {
		t.Fatal(err)
	}
	if _, err := bs.Book(ctx, id, "V", ""); !errors.Is(err, models.ErrConflict) {
		t.Errorf("pending volunteer booking: got %v", err)
	}

	ev := te.event(t, id)
	if ev.Bookings[0].Via != models.ViaQR {
		t.Errorf("via = %q, want qr", ev.Bookings[0].Via)
	}
}

func TestSeatsStayPackedUnderRandomOperations(t *testing.T) {
	te := newTestEnv(t)
	regs := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	te.seed(t, regs...)
	id := te.createEvent(t, 5)
	bs := NewBookingService(te.env)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		reg := regs[rng.Intn(len(regs))]
		switch rng.Intn(3) {
		case 0:
			_, _ = bs.Book(ctx, id, reg, "")
		case 1:
			_ = bs.CancelBooking(ctx, id, reg)
		case 2:
			_, _ = bs.JoinWaitlist(ctx, id, reg)
		}
		seatsPackedOrFail(t, te.event(t, id))
	}
}

func TestOrganizerCancel(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t, "A", "B")
	id := te.createEvent(t, 1)
	bs := NewBookingService(te.env)
	ctx := context.Background()

	if _, err := bs.Book(ctx, id, "A", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := bs.JoinWaitlist(ctx, id, "B"); err != nil {
		t.Fatal(err)
	}
	if err := bs.OrganizerCancel(ctx, id, "B", "A"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("non organizer cancel: got %v", err)
	}
	if err := bs.OrganizerCancel(ctx, id, organizer, "A"); err != nil {
		t.Fatal(err)
	}
	ev := te.event(t, id)
	if !ev.HasBooking("B") || ev.HasBooking("A") || len(ev.Waitlist) != 0 {
		t.Fatalf("expected B promoted, got bookings=%+v waitlist=%+v", ev.Bookings, ev.Waitlist)
	}
	if te.publisher.count(PushTicketCancelled, "A") != 1 {
		t.Fatal("expected ticket_cancelled push for A")
	}
}

func TestCancelAfterStartIsForbidden(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t, "A")
	id := te.createEvent(t, 2)
	bs := NewBookingService(te.env)
	ctx := context.Background()
	if _, err := bs.Book(ctx, id, "A", ""); err != nil {
		t.Fatal(err)
	}

	te.now = baseTime.Add(24 * time.Hour)
	if err := bs.CancelBooking(ctx, id, "A"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected forbidden after start, got %v", err)
	}
}

func TestWaitlistLeaveAndTickets(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t, "A", "B", "C")
	id := te.createEvent(t, 1)
	bs := NewBookingService(te.env)
	ctx := context.Background()

	if _, err := bs.Book(ctx, id, "A", ""); err != nil {
		t.Fatal(err)
	}
	for _, reg := range []string{"B", "C"} {
		if _, err := bs.JoinWaitlist(ctx, id, reg); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := bs.JoinWaitlist(ctx, id, "B"); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("duplicate waitlist: got %v", err)
	}

	list, err := bs.ListWaitlist(ctx, id, organizer)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].RegNumber != "B" || list[1].Position != 2 {
		t.Fatalf("unexpected waitlist view %+v", list)
	}
	if _, err := bs.ListWaitlist(ctx, id, "A"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("non organizer waitlist: got %v", err)
	}

	tickets, err := bs.ListTickets(ctx, "C")
	if err != nil {
		t.Fatal(err)
	}
	if len(tickets) != 1 || !tickets[0].Waiting || tickets[0].Position != 2 || tickets[0].TicketID != "WAIT-C" {
		t.Fatalf("unexpected tickets %+v", tickets)
	}

	if err := bs.LeaveWaitlist(ctx, id, "B"); err != nil {
		t.Fatal(err)
	}
	if err := bs.LeaveWaitlist(ctx, id, "B"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("leaving twice: got %v", err)
	}
	if got := waitlistRegs(te.event(t, id)); !reflect.DeepEqual(got, []string{"C"}) {
		t.Fatalf("waitlist = %v", got)
	}
}

func TestFailedSaveDiscardsBooking(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t, "A")
	id := te.createEvent(t, 2)
	bs := NewBookingService(te.env)

	te.store.FailNextSave(errors.New("disk full"))
	if _, err := bs.Book(context.Background(), id, "A", ""); !errors.Is(err, models.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if te.event(t, id).HasBooking("A") {
		t.Fatal("booking must not survive a failed save")
	}
	if te.publisher.count(PushTicketsChanged, "A") != 0 {
		t.Fatal("nothing should be published for a failed operation")
	}
}
