package models

import (
	"fmt"
	"strings"
	"time"
)

// AggregateID is the key of the single application document.
const AggregateID = "app_data"

// Aggregate is the whole application state. It is loaded, mutated and saved
// as one unit through the Gateway.
type Aggregate struct {
	Users              []User                    `bson:"users" json:"users"`
	Events             []Event                   `bson:"events" json:"events"`
	Media              []Media                   `bson:"media" json:"media"`
	Notifications      map[string][]Notification `bson:"notifications" json:"notifications"`
	Messages           []Message                 `bson:"messages" json:"messages"`
	Feedbacks          []Feedback                `bson:"feedbacks" json:"feedbacks"`
	Admin              Admin                     `bson:"admin" json:"admin"`
	EventNotifications map[string]bool           `bson:"eventNotifications" json:"eventNotifications"`
	LastID             int64                     `bson:"lastId" json:"lastId"`

	// Revision is the store's optimistic concurrency token.
	Revision int64 `bson:"-" json:"-"`
}

// NewAggregate returns an empty aggregate with every collection initialised.
func NewAggregate() *Aggregate {
	a := &Aggregate{}
	a.Normalize()
	return a
}

// Normalize substitutes empty collections for missing ones.
func (a *Aggregate) Normalize() {
	if a.Users == nil {
		a.Users = []User{}
	}
	if a.Events == nil {
		a.Events = []Event{}
	}
	for i := range a.Events {
		a.Events[i].Normalize()
	}
	if a.Media == nil {
		a.Media = []Media{}
	}
	if a.Notifications == nil {
		a.Notifications = map[string][]Notification{}
	}
	if a.Messages == nil {
		a.Messages = []Message{}
	}
	if a.Feedbacks == nil {
		a.Feedbacks = []Feedback{}
	}
	if a.EventNotifications == nil {
		a.EventNotifications = map[string]bool{}
	}
}

// NextID hands out a creation-time id that is strictly increasing even when
// several ids are taken within the same millisecond.
func (a *Aggregate) NextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= a.LastID {
		id = a.LastID + 1
	}
	a.LastID = id
	return id
}

func (a *Aggregate) FindUser(regNumber string) *User {
	for i := range a.Users {
		if a.Users[i].RegNumber == regNumber {
			return &a.Users[i]
		}
	}
	return nil
}

// RequireUser is FindUser returning ErrNotFound.
func (a *Aggregate) RequireUser(regNumber string) (*User, error) {
	if u := a.FindUser(regNumber); u != nil {
		return u, nil
	}
	return nil, NotFoundf("user %s not found", regNumber)
}

func (a *Aggregate) UserIndex(regNumber string) int {
	for i := range a.Users {
		if a.Users[i].RegNumber == regNumber {
			return i
		}
	}
	return -1
}

// IdentityTaken reports which unique field of u collides with another user.
func (a *Aggregate) IdentityTaken(u *User) (string, bool) {
	for i := range a.Users {
		other := &a.Users[i]
		switch {
		case other.RegNumber == u.RegNumber:
			return "registration number", true
		case strings.EqualFold(other.Email, u.Email):
			return "email", true
		case other.Phone == u.Phone:
			return "phone", true
		}
	}
	return "", false
}

func (a *Aggregate) FindEvent(id int64) (*Event, error) {
	for i := range a.Events {
		if a.Events[i].ID == id {
			return &a.Events[i], nil
		}
	}
	return nil, NotFoundf("event %d not found", id)
}

func (a *Aggregate) EventIndex(id int64) int {
	for i := range a.Events {
		if a.Events[i].ID == id {
			return i
		}
	}
	return -1
}

// LiveMarker keys the waitlist "could not be confirmed" notice of an event.
func LiveMarker(eventID int64) string { return fmt.Sprintf("live_notified_%d", eventID) }

// FeedbackMarker keys the feedback request of an event.
func FeedbackMarker(eventID int64) string { return fmt.Sprintf("feedback_notified_%d", eventID) }

func (a *Aggregate) Marked(key string) bool { return a.EventNotifications[key] }

func (a *Aggregate) Mark(key string) {
	if a.EventNotifications == nil {
		a.EventNotifications = map[string]bool{}
	}
	a.EventNotifications[key] = true
}

// RemoveEvent drops the event and its idempotency markers.
func (a *Aggregate) RemoveEvent(id int64) (Event, bool) {
	idx := a.EventIndex(id)
	if idx < 0 {
		return Event{}, false
	}
	ev := a.Events[idx]
	a.Events = append(a.Events[:idx], a.Events[idx+1:]...)
	delete(a.EventNotifications, LiveMarker(id))
	delete(a.EventNotifications, FeedbackMarker(id))
	return ev, true
}
