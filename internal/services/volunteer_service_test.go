package services

import (
	"context"
	"errors"
	"testing"

	"github.com/campus-hub/eventhub/internal/models"
)

func TestAcceptingVolunteerRevokesBookingAndPromotes(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t, "A", "B", "C", "D")
	id := te.createEvent(t, 3)
	bs := NewBookingService(te.env)
	vs := NewVolunteerService(te.env)
	ctx := context.Background()

	for _, reg := range []string{"B", "C", "A"} {
		if _, err := bs.Book(ctx, id, reg, ""); err != nil {
			t.Fatalf("book %s: %v", reg, err)
		}
	}
	if _, err := bs.JoinWaitlist(ctx, id, "D"); err != nil {
		t.Fatal(err)
	}
	if seatOf(te.event(t, id), "A") != 3 {
		t.Fatal("A should hold seat 3")
	}

	if _, err := vs.AddVolunteer(ctx, id, organizer, "A", "usher"); err != nil {
		t.Fatal(err)
	}
	v, err := vs.RespondVolunteer(ctx, id, "A", DecisionAccept)
	if err != nil {
		t.Fatal(err)
	}
	if v == nil || v.Role != "usher" || v.VolunteerID != "V01" {
		t.Fatalf("unexpected volunteer %+v", v)
	}

	ev := te.event(t, id)
	seatsPackedOrFail(t, ev)
	if ev.HasBooking("A") {
		t.Fatal("A must lose the booking after accepting")
	}
	if !ev.HasBooking("D") || len(ev.Waitlist) != 0 || ev.Taken != 3 {
		t.Fatalf("D should fill the freed seat: bookings=%+v waitlist=%+v", ev.Bookings, ev.Waitlist)
	}
	if !ev.IsVolunteer("A") {
		t.Fatal("A should be a volunteer")
	}
}

func TestAcceptingVolunteerWithoutWaitlist(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t, "A", "B", "C")
	id := te.createEvent(t, 3)
	bs := NewBookingService(te.env)
	vs := NewVolunteerService(te.env)
	ctx := context.Background()

	for _, reg := range []string{"B", "C", "A"} {
		if _, err := bs.Book(ctx, id, reg, ""); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := vs.AddVolunteer(ctx, id, organizer, "A", "usher"); err != nil {
		t.Fatal(err)
	}
	if _, err := vs.RespondVolunteer(ctx, id, "A", DecisionAccept); err != nil {
		t.Fatal(err)
	}
	ev := te.event(t, id)
	seatsPackedOrFail(t, ev)
	if ev.Taken != 2 {
		t.Fatalf("taken = %d, want 2", ev.Taken)
	}
}

func TestVolunteerRolesAreUnique(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t, "A", "B", "C")
	id := te.createEvent(t, 3)
	vs := NewVolunteerService(te.env)
	ctx := context.Background()

	if _, err := vs.AddVolunteer(ctx, id, organizer, "A", "usher"); err != nil {
		t.Fatal(err)
	}
	if _, err := vs.AddVolunteer(ctx, id, organizer, "B", "usher"); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("pending role reuse: got %v", err)
	}
	if _, err := vs.AddVolunteer(ctx, id, organizer, "A", "stage"); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("second invite for A: got %v", err)
	}
	if _, err := vs.RespondVolunteer(ctx, id, "A", DecisionAccept); err != nil {
		t.Fatal(err)
	}
	if _, err := vs.AddVolunteer(ctx, id, organizer, "B", "usher"); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("accepted role reuse: got %v", err)
	}
	if _, err := vs.AddVolunteer(ctx, id, "A", "C", "stage"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("non organizer invite: got %v", err)
	}
	if _, err := vs.AddVolunteer(ctx, id, organizer, organizer, "stage"); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("organizer self invite: got %v", err)
	}
	if _, err := vs.AddVolunteer(ctx, id, organizer, "C", "  "); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("blank role: got %v", err)
	}
}

func TestRejectAndRenumberVolunteers(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t, "A", "B", "C")
	id := te.createEvent(t, 3)
	vs := NewVolunteerService(te.env)
	ctx := context.Background()

	for reg, role := range map[string]string{"A": "usher", "B": "stage", "C": "sound"} {
		if _, err := vs.AddVolunteer(ctx, id, organizer, reg, role); err != nil {
			t.Fatal(err)
		}
	}
	if v, err := vs.RespondVolunteer(ctx, id, "C", DecisionReject); err != nil || v != nil {
		t.Fatalf("reject: v=%v err=%v", v, err)
	}
	if _, err := vs.RespondVolunteer(ctx, id, "C", DecisionAccept); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("answering a rejected invite: got %v", err)
	}
	for _, reg := range []string{"A", "B"} {
		if _, err := vs.RespondVolunteer(ctx, id, reg, DecisionAccept); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := vs.RemoveVolunteer(ctx, id, organizer, "A"); err != nil {
		t.Fatal(err)
	}
	ev := te.event(t, id)
	if len(ev.Volunteers) != 1 || ev.Volunteers[0].RegNumber != "B" || ev.Volunteers[0].VolunteerID != "V01" {
		t.Fatalf("expected B renumbered to V01, got %+v", ev.Volunteers)
	}

	if err := vs.LeaveVolunteer(ctx, id, "B"); err != nil {
		t.Fatal(err)
	}
	if err := vs.LeaveVolunteer(ctx, id, "B"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("leaving twice: got %v", err)
	}

	list, err := vs.ListVolunteers(ctx, id, organizer)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range list {
		if v.Status == models.RequestAccepted {
			t.Fatalf("no accepted volunteers expected, got %+v", list)
		}
	}
}

func TestAcceptTakenRoleMarksRequestRejected(t *testing.T) {
	te := newTestEnv(t)
	te.seed(t, "A", "B")
	id := te.createEvent(t, 3)
	vs := NewVolunteerService(te.env)
	ctx := context.Background()

	if _, err := vs.AddVolunteer(ctx, id, organizer, "A", "usher"); err != nil {
		t.Fatal(err)
	}
	err := te.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		ev, err := agg.FindEvent(id)
		if err != nil {
			return err
		}
		ev.Volunteers = append(ev.Volunteers, models.Volunteer{RegNumber: "B", Role: "usher"})
		ev.RenumberVolunteers()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := vs.RespondVolunteer(ctx, id, "A", DecisionAccept); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	ev := te.event(t, id)
	if ev.PendingRequestIndex("A") >= 0 || ev.IsVolunteer("A") {
		t.Fatalf("request should be closed as rejected: %+v", ev.VolunteerRequests)
	}
}
