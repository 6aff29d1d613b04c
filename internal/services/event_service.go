package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/campus-hub/eventhub/internal/models"
)

type EventService struct {
	env     *Env
	storage ObjectStorage
}

func NewEventService(env *Env, storage ObjectStorage) *EventService {
	return &EventService{env: env, storage: storage}
}

// EventInput carries the editable fields of an event.
type EventInput struct {
	Title     string   `json:"title" validate:"required"`
	Date      string   `json:"date" validate:"required"`
	Time      string   `json:"time" validate:"required"`
	Venue     string   `json:"venue" validate:"required"`
	Category  string   `json:"category" validate:"required"`
	Capacity  int      `json:"capacity" validate:"required,gt=0"`
	Duration  int      `json:"duration" validate:"required,gt=0"`
	Resources []string `json:"resources"`
}

// EventView is an event enriched for listing.
type EventView struct {
	models.Event
	CreatorName string         `json:"creatorName"`
	Media       []models.Media `json:"media"`
}

func (in *EventInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Venue = strings.TrimSpace(in.Venue)
	in.Category = strings.TrimSpace(in.Category)
	if in.Resources != nil {
		in.Resources = models.CleanResources(in.Resources)
	}
}

func (in *EventInput) validate() error {
	if err := models.Validate.Struct(in); err != nil {
		return models.Invalidf("%v", err)
	}
	return nil
}

// checkConflicts rejects a window that overlaps another event at the same
// venue or sharing any resource. The event with id skipID is ignored.
func checkConflicts(agg *models.Aggregate, loc *time.Location, skipID int64, venue string, start, end time.Time, resources []string) error {
	for i := range agg.Events {
		other := &agg.Events[i]
		if other.ID == skipID {
			continue
		}
		oStart, oEnd, err := other.Window(loc)
		if err != nil || !models.Overlaps(start, end, oStart, oEnd) {
			continue
		}
		if strings.EqualFold(other.Venue, venue) {
			return models.Conflictf("venue %s is already booked for that time and date", venue)
		}
		if r, ok := other.HasResourceIn(resources); ok {
			return models.Conflictf("resource %q is already booked for another event in this time window", r)
		}
	}
	return nil
}

func (es *EventService) CreateEvent(ctx context.Context, creatorReg string, in EventInput) (*models.Event, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	var created models.Event
	err := es.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := es.env.now()
		creator, err := agg.RequireUser(creatorReg)
		if err != nil {
			return err
		}
		if creator.Role != models.RoleOrganizer {
			return models.Forbiddenf("only organizers can create events")
		}
		start, err := models.ParseSchedule(in.Date, in.Time, es.env.Location)
		if err != nil {
			return err
		}
		if !start.After(now) {
			return models.Invalidf("event date and time must be in the future")
		}
		end := start.Add(time.Duration(in.Duration) * time.Minute)
		if err := checkConflicts(agg, es.env.Location, 0, in.Venue, start, end, in.Resources); err != nil {
			return err
		}

		ev := models.Event{
			ID:               agg.NextID(now),
			Title:            in.Title,
			Date:             in.Date,
			Time:             in.Time,
			Duration:         in.Duration,
			Venue:            in.Venue,
			Category:         in.Category,
			Capacity:         in.Capacity,
			Resources:        models.CleanResources(in.Resources),
			CreatorRegNumber: creatorReg,
		}
		ev.Normalize()
		agg.Events = append(agg.Events, ev)
		agg.NotifyAll(fmt.Sprintf("📢 New Event: %s on %s", ev.Title, ev.Date), now)
		creator.Touch(now)
		created = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	es.env.publish(PushEventsChanged, "created", created.ID, "")
	return &created, nil
}

// EditEvent replaces the details of an event that has not started yet.
// Growing the capacity books waitlisted users into the new seats.
func (es *EventService) EditEvent(ctx context.Context, id int64, regNumber string, in EventInput) (*models.Event, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		updated  models.Event
		promoted []string
	)
	err := es.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		promoted = nil
		now := es.env.now()
		ev, err := agg.FindEvent(id)
		if err != nil {
			return err
		}
		if ev.CreatorRegNumber != regNumber {
			return models.Forbiddenf("you can only edit your own events")
		}
		if ev.HasStarted(now, es.env.Location) {
			return models.Forbiddenf("cannot edit an event that is live or has passed")
		}
		if in.Capacity < ev.Taken {
			return models.Invalidf("%d seats are booked, capacity must not be lower", ev.Taken)
		}
		start, err := models.ParseSchedule(in.Date, in.Time, es.env.Location)
		if err != nil {
			return err
		}
		if !start.After(now) {
			return models.Invalidf("event date and time must be in the future")
		}
		resources := ev.Resources
		if in.Resources != nil {
			resources = in.Resources
		}
		end := start.Add(time.Duration(in.Duration) * time.Minute)
		if err := checkConflicts(agg, es.env.Location, ev.ID, in.Venue, start, end, resources); err != nil {
			return err
		}

		oldCapacity := ev.Capacity
		ev.Title = in.Title
		ev.Date = in.Date
		ev.Time = in.Time
		ev.Venue = in.Venue
		ev.Category = in.Category
		ev.Duration = in.Duration
		ev.Capacity = in.Capacity
		ev.Resources = append([]string{}, resources...)

		if increase := ev.Capacity - oldCapacity; increase > 0 {
			n := min(increase, ev.Capacity-ev.Taken, len(ev.Waitlist))
			promoted = promote(agg, ev, n, func(seat int) string {
				return fmt.Sprintf("🎉 Great news! You've been auto-booked for '%s' due to increased capacity. Your seat: %d", ev.Title, seat)
			}, now)
		}

		agg.NotifyBooked(ev, models.Notification{
			Msg:  fmt.Sprintf("✏️ Event Updated: Details for '%s' have changed.", ev.Title),
			Time: now,
		})
		touch(agg, regNumber, now)
		updated = *ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	es.env.publish(PushEventsChanged, "updated", id, "")
	es.env.publish(PushEventUpdated, "details_updated", id, "")
	for _, reg := range promoted {
		es.env.publish(PushTicketsChanged, "promoted", id, reg)
	}
	return &updated, nil
}

// DeleteEvent removes an event that has not started, its media and markers.
func (es *EventService) DeleteEvent(ctx context.Context, id int64, regNumber string) error {
	var media []models.Media
	err := es.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := es.env.now()
		ev, err := agg.FindEvent(id)
		if err != nil {
			return err
		}
		if ev.CreatorRegNumber != regNumber {
			return models.Forbiddenf("you can only delete your own events")
		}
		if ev.HasStarted(now, es.env.Location) {
			return models.Forbiddenf("cannot delete an event that is live or has passed")
		}
		agg.NotifyBooked(ev, models.Notification{
			Msg:  fmt.Sprintf("❌ Event Cancelled: '%s' has been cancelled.", ev.Title),
			Time: now,
		})
		media = agg.RemoveMediaFor(id)
		agg.RemoveEvent(id)
		touch(agg, regNumber, now)
		return nil
	})
	if err != nil {
		return err
	}

	deleteObjects(ctx, es.storage, es.env.Logger, media)
	es.env.publish(PushEventsChanged, "deleted", id, "")
	return nil
}

func (es *EventService) ListEvents(ctx context.Context) ([]EventView, error) {
	agg, err := es.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]EventView, 0, len(agg.Events))
	for i := range agg.Events {
		views = append(views, viewOf(agg, &agg.Events[i]))
	}
	return views, nil
}

func (es *EventService) GetEvent(ctx context.Context, id int64) (*EventView, error) {
	agg, err := es.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}
	ev, err := agg.FindEvent(id)
	if err != nil {
		return nil, err
	}
	view := viewOf(agg, ev)
	return &view, nil
}

func viewOf(agg *models.Aggregate, ev *models.Event) EventView {
	name := ev.CreatorRegNumber
	if u := agg.FindUser(ev.CreatorRegNumber); u != nil {
		name = u.FullName()
	}
	return EventView{Event: *ev, CreatorName: name, Media: agg.MediaFor(ev.ID)}
}
