package models

import "time"

const (
	NotificationVolunteerRequest = "volunteer_request"
	NotificationFeedback         = "feedback"
	NotificationChat             = "chat"
)

type Notification struct {
	Msg        string    `bson:"msg" json:"msg"`
	Time       time.Time `bson:"time" json:"time"`
	Read       bool      `bson:"read" json:"read"`
	Type       string    `bson:"type,omitempty" json:"type,omitempty"`
	EventID    int64     `bson:"eventId,omitempty" json:"eventId,omitempty"`
	EventTitle string    `bson:"eventTitle,omitempty" json:"eventTitle,omitempty"`
	FromReg    string    `bson:"fromReg,omitempty" json:"fromReg,omitempty"`
	ToReg      string    `bson:"toReg,omitempty" json:"toReg,omitempty"`
	Role       string    `bson:"role,omitempty" json:"role,omitempty"`
}

// Notify prepends n to the inbox of regNumber. Inboxes are newest first.
func (a *Aggregate) Notify(regNumber string, n Notification) {
	if regNumber == "" {
		return
	}
	if a.Notifications == nil {
		a.Notifications = map[string][]Notification{}
	}
	n.Time = n.Time.UTC()
	inbox := a.Notifications[regNumber]
	a.Notifications[regNumber] = append([]Notification{n}, inbox...)
}

// NotifyText is Notify for a plain message without metadata.
func (a *Aggregate) NotifyText(regNumber, msg string, now time.Time) {
	a.Notify(regNumber, Notification{Msg: msg, Time: now})
}

// NotifyAll sends msg to every registered user.
func (a *Aggregate) NotifyAll(msg string, now time.Time) {
	for i := range a.Users {
		a.NotifyText(a.Users[i].RegNumber, msg, now)
	}
}

// NotifyBooked sends n to every user holding a booking for ev.
func (a *Aggregate) NotifyBooked(ev *Event, n Notification) int {
	for _, b := range ev.Bookings {
		a.Notify(b.RegNumber, n)
	}
	return len(ev.Bookings)
}

// UnreadCount counts unread entries in the inbox of regNumber.
func (a *Aggregate) UnreadCount(regNumber string) int {
	count := 0
	for _, n := range a.Notifications[regNumber] {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkAllRead flags every entry of the inbox as read and reports how many changed.
func (a *Aggregate) MarkAllRead(regNumber string) int {
	changed := 0
	inbox := a.Notifications[regNumber]
	for i := range inbox {
		if !inbox[i].Read {
			inbox[i].Read = true
			changed++
		}
	}
	return changed
}
