package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/campus-hub/eventhub/internal/models"
)

type BookingService struct {
	env *Env
}

func NewBookingService(env *Env) *BookingService {
	return &BookingService{env: env}
}

// Ticket is a booking or a waitlist entry as seen by its holder.
type Ticket struct {
	EventID    int64      `json:"eventId"`
	EventTitle string     `json:"eventTitle"`
	Venue      string     `json:"venue"`
	Date       string     `json:"date"`
	Time       string     `json:"time"`
	Category   string     `json:"category"`
	TicketID   string     `json:"ticketId"`
	Role       string     `json:"role"`
	Seat       int        `json:"seat,omitempty"`
	Via        string     `json:"via,omitempty"`
	BookedAt   *time.Time `json:"bookedAt,omitempty"`
	Waiting    bool       `json:"waiting"`
	WaitID     int64      `json:"waitId,omitempty"`
	Position   int        `json:"position,omitempty"`
}

type WaitlistView struct {
	ID        int64     `json:"id"`
	RegNumber string    `json:"regNumber"`
	Name      string    `json:"name"`
	Time      time.Time `json:"time"`
	Position  int       `json:"position"`
}

// promote converts up to limit waitlist heads into bookings in FIFO order.
// Entries whose user no longer exists are consumed without a booking.
// Promoted users are not re-validated against booking preconditions.
func promote(agg *models.Aggregate, ev *models.Event, limit int, msg func(seat int) string, now time.Time) []string {
	var promoted []string
	for len(promoted) < limit {
		head, ok := ev.PopWaitlist()
		if !ok {
			break
		}
		u := agg.FindUser(head.RegNumber)
		if u == nil {
			continue
		}
		b := ev.AddBooking(u, models.ViaApp, now)
		agg.NotifyText(u.RegNumber, msg(b.Seat), now)
		promoted = append(promoted, u.RegNumber)
	}
	return promoted
}

func seatOpenedMsg(title string) func(int) string {
	return func(int) string {
		return fmt.Sprintf("✅ A seat opened up for '%s'. You have been auto-booked from the waitlist.", title)
	}
}

func (bs *BookingService) Book(ctx context.Context, eventID int64, regNumber, via string) (*models.Booking, error) {
	var booking models.Booking
	err := bs.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := bs.env.now()
		ev, err := agg.FindEvent(eventID)
		if err != nil {
			return err
		}
		u, err := agg.RequireUser(regNumber)
		if err != nil {
			return err
		}
		if ev.CreatorRegNumber == regNumber {
			return models.Forbiddenf("you cannot book a ticket for your own event")
		}
		if ev.IsVolunteer(regNumber) || ev.PendingRequestIndex(regNumber) >= 0 {
			return models.Conflictf("volunteers cannot book tickets for this event")
		}
		if ev.HasBooking(regNumber) {
			return models.Conflictf("ticket already booked for this event")
		}
		if ev.Taken >= ev.Capacity {
			agg.NotifyText(regNumber, fmt.Sprintf("⚠️ Event %s is full.", ev.Title), now)
			return models.KeepChanges(fmt.Errorf("%w: venue is full", models.ErrCapacityExceeded))
		}

		booking = ev.AddBooking(u, via, now)
		ev.RemoveFromWaitlist(regNumber)
		msg := fmt.Sprintf("🎟️ You booked a ticket for %s", ev.Title)
		if booking.Via == models.ViaQR {
			msg = fmt.Sprintf("🎟️ You booked a ticket via QR code for %s", ev.Title)
		}
		agg.NotifyText(regNumber, msg, now)
		u.Touch(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	bs.env.publish(PushEventsChanged, "ticket_booked", eventID, "")
	bs.env.publish(PushTicketsChanged, "booked", eventID, regNumber)
	return &booking, nil
}

// CancelBooking releases the caller's seat and promotes the waitlist head.
func (bs *BookingService) CancelBooking(ctx context.Context, eventID int64, regNumber string) error {
	var promoted []string
	err := bs.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := bs.env.now()
		ev, err := agg.FindEvent(eventID)
		if err != nil {
			return err
		}
		if ev.HasStarted(now, bs.env.Location) {
			return models.Forbiddenf("cannot cancel a ticket for a live or past event")
		}
		if !ev.RemoveBooking(regNumber) {
			return models.NotFoundf("booking not found")
		}
		agg.NotifyText(regNumber, fmt.Sprintf("✅ Your ticket for '%s' has been cancelled.", ev.Title), now)
		promoted = promote(agg, ev, 1, seatOpenedMsg(ev.Title), now)
		touch(agg, regNumber, now)
		return nil
	})
	if err != nil {
		return err
	}

	bs.env.publish(PushEventsChanged, "ticket_cancelled", eventID, "")
	bs.env.publish(PushTicketsChanged, "cancelled", eventID, regNumber)
	for _, reg := range promoted {
		bs.env.publish(PushTicketsChanged, "promoted", eventID, reg)
	}
	return nil
}

// OrganizerCancel lets the event creator revoke someone else's ticket.
func (bs *BookingService) OrganizerCancel(ctx context.Context, eventID int64, organizerReg, targetReg string) error {
	var promoted []string
	err := bs.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := bs.env.now()
		ev, err := agg.FindEvent(eventID)
		if err != nil {
			return err
		}
		if ev.CreatorRegNumber != organizerReg {
			return models.Forbiddenf("only the organizer can cancel bookings for this event")
		}
		if targetReg == ev.CreatorRegNumber {
			return models.Forbiddenf("cannot cancel the event creator's ticket")
		}
		if ev.HasStarted(now, bs.env.Location) {
			return models.Forbiddenf("cannot cancel bookings for a live or past event")
		}
		if !ev.RemoveBooking(targetReg) {
			return models.NotFoundf("booking not found")
		}
		agg.NotifyText(targetReg, fmt.Sprintf("❌ Your ticket for '%s' was cancelled by the organizer.", ev.Title), now)
		promoted = promote(agg, ev, 1, seatOpenedMsg(ev.Title), now)
		touch(agg, organizerReg, now)
		return nil
	})
	if err != nil {
		return err
	}

	bs.env.publish(PushEventsChanged, "ticket_cancelled_by_organizer", eventID, "")
	bs.env.publish(PushTicketsChanged, "cancelled_by_organizer", eventID, targetReg)
	bs.env.publish(PushTicketCancelled, "organizer_cancelled", eventID, targetReg)
	for _, reg := range promoted {
		bs.env.publish(PushTicketsChanged, "promoted", eventID, reg)
	}
	return nil
}

func (bs *BookingService) JoinWaitlist(ctx context.Context, eventID int64, regNumber string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := bs.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := bs.env.now()
		ev, err := agg.FindEvent(eventID)
		if err != nil {
			return err
		}
		u, err := agg.RequireUser(regNumber)
		if err != nil {
			return err
		}
		if ev.CreatorRegNumber == regNumber {
			return models.Forbiddenf("organizer cannot join the waitlist of their own event")
		}
		if ev.HasBooking(regNumber) {
			return models.Conflictf("you already have a booking for this event")
		}
		if ev.IsVolunteer(regNumber) {
			return models.Conflictf("volunteers cannot join the waitlist")
		}
		if ev.WaitlistIndex(regNumber) >= 0 {
			return models.Conflictf("already on waitlist")
		}
		entry = models.WaitlistEntry{ID: agg.NextID(now), RegNumber: regNumber, Time: now.UTC()}
		ev.Waitlist = append(ev.Waitlist, entry)
		agg.NotifyText(regNumber, fmt.Sprintf("📝 You joined the waitlist for '%s'. We'll auto-book if a seat opens.", ev.Title), now)
		u.Touch(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	bs.env.publish(PushEventsChanged, "waitlist_joined", eventID, "")
	bs.env.publish(PushTicketsChanged, "waitlist_joined", eventID, regNumber)
	return &entry, nil
}

func (bs *BookingService) LeaveWaitlist(ctx context.Context, eventID int64, regNumber string) error {
	err := bs.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := bs.env.now()
		ev, err := agg.FindEvent(eventID)
		if err != nil {
			return err
		}
		if !ev.RemoveFromWaitlist(regNumber) {
			return models.NotFoundf("not on waitlist for this event")
		}
		agg.NotifyText(regNumber, fmt.Sprintf("📝 You left the waitlist for '%s'.", ev.Title), now)
		touch(agg, regNumber, now)
		return nil
	})
	if err != nil {
		return err
	}

	bs.env.publish(PushEventsChanged, "waitlist_left", eventID, "")
	bs.env.publish(PushTicketsChanged, "waitlist_left", eventID, regNumber)
	return nil
}

// ListWaitlist shows the queue of an event to its organizer.
func (bs *BookingService) ListWaitlist(ctx context.Context, eventID int64, organizerReg string) ([]WaitlistView, error) {
	agg, err := bs.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}
	ev, err := agg.FindEvent(eventID)
	if err != nil {
		return nil, err
	}
	if ev.CreatorRegNumber != organizerReg {
		return nil, models.Forbiddenf("only the organizer can view this waitlist")
	}

	list := make([]WaitlistView, 0, len(ev.Waitlist))
	for i, w := range ev.Waitlist {
		name := w.RegNumber
		if u := agg.FindUser(w.RegNumber); u != nil {
			name = u.FullName()
		}
		list = append(list, WaitlistView{ID: w.ID, RegNumber: w.RegNumber, Name: name, Time: w.Time, Position: i + 1})
	}
	return list, nil
}

// ListTickets returns every booking and waitlist entry held by regNumber.
func (bs *BookingService) ListTickets(ctx context.Context, regNumber string) ([]Ticket, error) {
	agg, err := bs.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}

	tickets := []Ticket{}
	for i := range agg.Events {
		ev := &agg.Events[i]
		for _, b := range ev.Bookings {
			if b.RegNumber != regNumber {
				continue
			}
			bookedAt := b.BookedAt
			via := b.Via
			if via == "" {
				via = models.ViaApp
			}
			tickets = append(tickets, Ticket{
				EventID:    ev.ID,
				EventTitle: ev.Title,
				Venue:      ev.Venue,
				Date:       ev.Date,
				Time:       ev.Time,
				Category:   ev.Category,
				TicketID:   ticketID(b.Name, regNumber),
				Role:       b.Role,
				Seat:       b.Seat,
				Via:        via,
				BookedAt:   &bookedAt,
			})
		}
		for pos, w := range ev.Waitlist {
			if w.RegNumber != regNumber {
				continue
			}
			tickets = append(tickets, Ticket{
				EventID:    ev.ID,
				EventTitle: ev.Title,
				Venue:      ev.Venue,
				Date:       ev.Date,
				Time:       ev.Time,
				Category:   ev.Category,
				TicketID:   "WAIT-" + regNumber,
				Role:       "S",
				Waiting:    true,
				WaitID:     w.ID,
				Position:   pos + 1,
			})
		}
	}
	return tickets, nil
}

func ticketID(name, regNumber string) string {
	prefix := strings.ToLower(name)
	if r := []rune(prefix); len(r) > 3 {
		prefix = string(r[:3])
	}
	return prefix + regNumber
}
