package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"

	ViaApp = "app"
	ViaQR  = "qr"

	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// ReminderMinutes are the minutes-before-start thresholds for booked-user reminders.
var ReminderMinutes = []int{60, 45, 25, 10}

type Event struct {
	ID                int64              `bson:"id" json:"id"`
	Title             string             `bson:"title" json:"title"`
	Date              string             `bson:"date" json:"date"` // YYYY-MM-DD
	Time              string             `bson:"time" json:"time"` // HH:MM (24h)
	Duration          int                `bson:"duration" json:"duration"`
	Venue             string             `bson:"venue" json:"venue"`
	Category          string             `bson:"category" json:"category"`
	Capacity          int                `bson:"capacity" json:"capacity"`
	Taken             int                `bson:"taken" json:"taken"`
	Bookings          []Booking          `bson:"bookings" json:"bookings"`
	Waitlist          []WaitlistEntry    `bson:"waitlist" json:"waitlist"`
	Volunteers        []Volunteer        `bson:"volunteers" json:"volunteers"`
	VolunteerRequests []VolunteerRequest `bson:"volunteerRequests" json:"volunteerRequests"`
	Resources         []string           `bson:"resources" json:"resources"`
	CreatorRegNumber  string             `bson:"creatorRegNumber" json:"creatorRegNumber"`

	LiveNotificationSent bool `bson:"liveNotificationSent" json:"liveNotificationSent"`
	Sent60               bool `bson:"sent60" json:"sent60"`
	Sent45               bool `bson:"sent45" json:"sent45"`
	Sent25               bool `bson:"sent25" json:"sent25"`
	Sent10               bool `bson:"sent10" json:"sent10"`
}

type Booking struct {
	RegNumber string    `bson:"regNumber" json:"regNumber"`
	Name      string    `bson:"name" json:"name"`
	Seat      int       `bson:"seat" json:"seat"`
	Role      string    `bson:"role" json:"role"` // O or S
	EventID   int64     `bson:"eventId" json:"eventId"`
	BookedAt  time.Time `bson:"bookedAt" json:"bookedAt"`
	Via       string    `bson:"via" json:"via"`
}

type WaitlistEntry struct {
	ID        int64     `bson:"id" json:"id"`
	RegNumber string    `bson:"regNumber" json:"regNumber"`
	Time      time.Time `bson:"time" json:"time"`
}

type Volunteer struct {
	RegNumber   string `bson:"regNumber" json:"regNumber"`
	Name        string `bson:"name" json:"name"`
	VolunteerID string `bson:"volunteerId" json:"volunteerId"`
	Role        string `bson:"role" json:"role"`
}

type VolunteerRequest struct {
	ID          int64     `bson:"id" json:"id"`
	RegNumber   string    `bson:"regNumber" json:"regNumber"`
	Role        string    `bson:"role" json:"role"`
	Status      string    `bson:"status" json:"status"`
	RequestedAt time.Time `bson:"requestedAt" json:"requestedAt"`
}

// ParseSchedule turns a date and a clock time into an instant in loc.
func ParseSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.ParseInLocation(dateLayout+" "+layout, date+" "+clock, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, Invalidf("invalid date/time %q %q", date, clock)
}

// Start is the instant the event begins.
func (e *Event) Start(loc *time.Location) (time.Time, error) {
	return ParseSchedule(e.Date, e.Time, loc)
}

// Window returns the half-open interval [start, start+duration).
func (e *Event) Window(loc *time.Location) (time.Time, time.Time, error) {
	start, err := e.Start(loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.Add(time.Duration(e.Duration) * time.Minute), nil
}

// HasStarted reports whether now is at or after the start. Events with an
// unparseable schedule are treated as started so they can no longer be changed.
func (e *Event) HasStarted(now time.Time, loc *time.Location) bool {
	start, err := e.Start(loc)
	if err != nil {
		return true
	}
	return !now.Before(start)
}

// Overlaps reports whether two half-open windows intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Normalize replaces nil collections with empty ones.
func (e *Event) Normalize() {
	if e.Bookings == nil {
		e.Bookings = []Booking{}
	}
	if e.Waitlist == nil {
		e.Waitlist = []WaitlistEntry{}
	}
	if e.Volunteers == nil {
		e.Volunteers = []Volunteer{}
	}
	if e.VolunteerRequests == nil {
		e.VolunteerRequests = []VolunteerRequest{}
	}
	if e.Resources == nil {
		e.Resources = []string{}
	}
}

func (e *Event) BookingIndex(regNumber string) int {
	for i := range e.Bookings {
		if e.Bookings[i].RegNumber == regNumber {
			return i
		}
	}
	return -1
}

func (e *Event) HasBooking(regNumber string) bool { return e.BookingIndex(regNumber) >= 0 }

func (e *Event) WaitlistIndex(regNumber string) int {
	for i := range e.Waitlist {
		if e.Waitlist[i].RegNumber == regNumber {
			return i
		}
	}
	return -1
}

func (e *Event) VolunteerIndex(regNumber string) int {
	for i := range e.Volunteers {
		if e.Volunteers[i].RegNumber == regNumber {
			return i
		}
	}
	return -1
}

func (e *Event) IsVolunteer(regNumber string) bool { return e.VolunteerIndex(regNumber) >= 0 }

// PendingRequestIndex finds the pending invite addressed to regNumber.
func (e *Event) PendingRequestIndex(regNumber string) int {
	for i := range e.VolunteerRequests {
		r := e.VolunteerRequests[i]
		if r.RegNumber == regNumber && r.Status == RequestPending {
			return i
		}
	}
	return -1
}

// RoleAssigned reports whether an accepted volunteer holds role.
func (e *Event) RoleAssigned(role string) bool {
	for _, v := range e.Volunteers {
		if v.Role == role {
			return true
		}
	}
	return false
}

// RolePending reports whether a pending invite exists for role.
func (e *Event) RolePending(role string) bool {
	for _, r := range e.VolunteerRequests {
		if r.Role == role && r.Status == RequestPending {
			return true
		}
	}
	return false
}

// AddBooking takes the next seat for u. Capacity is the caller's concern.
func (e *Event) AddBooking(u *User, via string, now time.Time) Booking {
	if via != ViaQR {
		via = ViaApp
	}
	e.Taken++
	b := Booking{
		RegNumber: u.RegNumber,
		Name:      u.Name,
		Seat:      e.Taken,
		Role:      u.RoleLetter(),
		EventID:   e.ID,
		BookedAt:  now.UTC(),
		Via:       via,
	}
	e.Bookings = append(e.Bookings, b)
	return b
}

// RemoveBooking drops the booking for regNumber and re-packs seats.
func (e *Event) RemoveBooking(regNumber string) bool {
	idx := e.BookingIndex(regNumber)
	if idx < 0 {
		return false
	}
	e.Bookings = append(e.Bookings[:idx], e.Bookings[idx+1:]...)
	e.RepackSeats()
	return true
}

// RepackSeats keeps the current seat order and renumbers seats 1..n.
func (e *Event) RepackSeats() {
	sort.SliceStable(e.Bookings, func(i, j int) bool {
		return e.Bookings[i].Seat < e.Bookings[j].Seat
	})
	for i := range e.Bookings {
		e.Bookings[i].Seat = i + 1
	}
	e.Taken = len(e.Bookings)
}

// PopWaitlist removes and returns the head of the queue.
func (e *Event) PopWaitlist() (WaitlistEntry, bool) {
	if len(e.Waitlist) == 0 {
		return WaitlistEntry{}, false
	}
	head := e.Waitlist[0]
	e.Waitlist = e.Waitlist[1:]
	return head, true
}

func (e *Event) RemoveFromWaitlist(regNumber string) bool {
	idx := e.WaitlistIndex(regNumber)
	if idx < 0 {
		return false
	}
	e.Waitlist = append(e.Waitlist[:idx], e.Waitlist[idx+1:]...)
	return true
}

// RenumberVolunteers assigns dense ids V01, V02, ... in list order.
func (e *Event) RenumberVolunteers() {
	for i := range e.Volunteers {
		e.Volunteers[i].VolunteerID = fmt.Sprintf("V%02d", i+1)
	}
}

// RemoveVolunteer drops the volunteer record and every request row for regNumber.
func (e *Event) RemoveVolunteer(regNumber string) (Volunteer, bool) {
	idx := e.VolunteerIndex(regNumber)
	if idx < 0 {
		return Volunteer{}, false
	}
	removed := e.Volunteers[idx]
	e.Volunteers = append(e.Volunteers[:idx], e.Volunteers[idx+1:]...)
	e.RenumberVolunteers()
	e.purgeRequests(regNumber)
	return removed, true
}

func (e *Event) purgeRequests(regNumber string) {
	kept := e.VolunteerRequests[:0]
	for _, r := range e.VolunteerRequests {
		if r.RegNumber != regNumber {
			kept = append(kept, r)
		}
	}
	e.VolunteerRequests = kept
}

// PurgeUser removes every trace of regNumber from the event.
func (e *Event) PurgeUser(regNumber string) {
	e.RemoveBooking(regNumber)
	e.RemoveFromWaitlist(regNumber)
	if _, ok := e.RemoveVolunteer(regNumber); !ok {
		e.purgeRequests(regNumber)
	}
}

// ReminderFlag returns the one-shot flag for a reminder threshold.
func (e *Event) ReminderFlag(minutes int) *bool {
	switch minutes {
	case 60:
		return &e.Sent60
	case 45:
		return &e.Sent45
	case 25:
		return &e.Sent25
	case 10:
		return &e.Sent10
	}
	return nil
}

// HasResourceIn returns the first of resources also used by e.
func (e *Event) HasResourceIn(resources []string) (string, bool) {
	for _, r := range resources {
		for _, own := range e.Resources {
			if own == r {
				return r, true
			}
		}
	}
	return "", false
}

// CleanResources trims entries and drops blanks.
func CleanResources(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
