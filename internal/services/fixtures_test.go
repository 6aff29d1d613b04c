package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/campus-hub/eventhub/internal/models"
)

const organizer = "ORG1"

var baseTime = time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

type published struct {
	Event  string
	Target string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) Publish(event string, payload any, target string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{Event: event, Target: target})
}

func (p *fakePublisher) count(event, target string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Event == event && e.Target == target {
			n++
		}
	}
	return n
}

type fakeStorage struct {
	mu        sync.Mutex
	uploads   int
	deleted   []string
	uploadErr error
	deleteErr error
	// unbounded counts calls made without a deadline or with a done context.
	unbounded int
}

func (s *fakeStorage) checkContext(ctx context.Context) {
	if _, ok := ctx.Deadline(); !ok || ctx.Err() != nil {
		s.unbounded++
	}
}

func (s *fakeStorage) Upload(ctx context.Context, data io.Reader, contentType, folder string) (models.StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkContext(ctx)
	if s.uploadErr != nil {
		return models.StoredObject{}, s.uploadErr
	}
	s.uploads++
	id := fmt.Sprintf("%s/obj%d", folder, s.uploads)
	return models.StoredObject{URL: "https://cdn.test/" + id, PublicID: id, Format: "jpg"}, nil
}

func (s *fakeStorage) Delete(ctx context.Context, publicID, resourceKind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkContext(ctx)
	s.deleted = append(s.deleted, publicID)
	return s.deleteErr
}

type testEnv struct {
	env       *Env
	store     *models.MemoryStore
	publisher *fakePublisher
	storage   *fakeStorage
	now       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := models.NewMemoryStore()
	te := &testEnv{
		store:     store,
		publisher: &fakePublisher{},
		storage:   &fakeStorage{},
		now:       baseTime,
	}
	te.env = NewEnv(models.NewGateway(store, nil), te.publisher, nil, time.UTC)
	te.env.Clock = func() time.Time { return te.now }
	return te
}

// seed adds an organizer plus the given students.
func (te *testEnv) seed(t *testing.T, students ...string) {
	t.Helper()
	err := te.env.Gateway.Update(context.Background(), func(agg *models.Aggregate) error {
		agg.Users = append(agg.Users, models.User{RegNumber: organizer, Name: "Olive", Surname: "Org", Role: models.RoleOrganizer})
		for _, reg := range students {
			agg.Users = append(agg.Users, models.User{RegNumber: reg, Name: reg, Role: models.RoleStudent})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func (te *testEnv) snapshot(t *testing.T) *models.Aggregate {
	t.Helper()
	agg, err := te.env.Gateway.Read(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return agg
}

func (te *testEnv) event(t *testing.T, id int64) *models.Event {
	t.Helper()
	ev, err := te.snapshot(t).FindEvent(id)
	if err != nil {
		t.Fatalf("find event %d: %v", id, err)
	}
	return ev
}

func (te *testEnv) inbox(t *testing.T, reg string) []models.Notification {
	t.Helper()
	return te.snapshot(t).Notifications[reg]
}

func eventInput(title, venue string, capacity int) EventInput {
	return EventInput{
		Title:    title,
		Date:     "2030-01-02",
		Time:     "10:00",
		Venue:    venue,
		Category: "tech",
		Capacity: capacity,
		Duration: 60,
	}
}

func (te *testEnv) createEvent(t *testing.T, capacity int) int64 {
	t.Helper()
	ev, err := NewEventService(te.env, te.storage).CreateEvent(context.Background(), organizer, eventInput("Go Meetup", fmt.Sprintf("Hall %d", capacity), capacity))
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return ev.ID
}

func seatsPackedOrFail(t *testing.T, ev *models.Event) {
	t.Helper()
	if !seatsPacked(ev) {
		t.Fatalf("seats not packed: taken=%d bookings=%+v", ev.Taken, ev.Bookings)
	}
}

func seatOf(ev *models.Event, reg string) int {
	if idx := ev.BookingIndex(reg); idx >= 0 {
		return ev.Bookings[idx].Seat
	}
	return 0
}

func waitlistRegs(ev *models.Event) []string {
	regs := []string{}
	for _, w := range ev.Waitlist {
		regs = append(regs, w.RegNumber)
	}
	return regs
}

func upload(contentType string, size int64) Upload {
	return Upload{Name: "pic.jpg", ContentType: contentType, Size: size, Data: bytes.NewReader([]byte("data"))}
}
