package services

import (
	"log/slog"
	"time"

	"github.com/campus-hub/eventhub/internal/models"
)

// Push event names understood by connected clients.
const (
	PushEventsChanged   = "events_changed"
	PushEventUpdated    = "event_updated"
	PushTicketsChanged  = "tickets_changed"
	PushTicketCancelled = "ticket_cancelled"
	PushMediaChanged    = "media_changed"
	PushChatMessage     = "chat_message"
)

// Publisher fans a push event out to listeners. An empty target means every
// listener. Implementations must not block and must swallow delivery errors.
type Publisher interface {
	Publish(event string, payload any, target string)
}

// ChangeEvent is the payload of every push event.
type ChangeEvent struct {
	Reason  string `json:"reason"`
	EventID int64  `json:"eventId,omitempty"`
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any, string) {}

// Env carries the collaborators shared by every service.
type Env struct {
	Gateway   *models.Gateway
	Publisher Publisher
	Logger    *slog.Logger
	Clock     func() time.Time
	Location  *time.Location
}

// NewEnv fills in defaults for the optional collaborators.
func NewEnv(gateway *models.Gateway, publisher Publisher, logger *slog.Logger, loc *time.Location) *Env {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Env{
		Gateway:   gateway,
		Publisher: publisher,
		Logger:    logger,
		Clock:     time.Now,
		Location:  loc,
	}
}

func (e *Env) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock()
}

func (e *Env) publish(event, reason string, eventID int64, target string) {
	if e.Publisher == nil {
		return
	}
	e.Publisher.Publish(event, ChangeEvent{Reason: reason, EventID: eventID}, target)
}

// touch records activity for regNumber if the user exists.
func touch(agg *models.Aggregate, regNumber string, now time.Time) {
	if u := agg.FindUser(regNumber); u != nil {
		u.Touch(now)
	}
}
