package models

import "time"

const (
	MessageText  = "text"
	MessageMedia = "media"
)

type Message struct {
	ID        int64     `bson:"id" json:"id"`
	EventID   int64     `bson:"eventId" json:"eventId"`
	FromReg   string    `bson:"fromReg" json:"fromReg"`
	ToReg     string    `bson:"toReg" json:"toReg"`
	Text      string    `bson:"text" json:"text"`
	Time      time.Time `bson:"time" json:"time"`
	Read      bool      `bson:"read" json:"read"`
	Type      string    `bson:"type" json:"type"`
	MediaType string    `bson:"mediaType,omitempty" json:"mediaType,omitempty"`
	URL       string    `bson:"url,omitempty" json:"url,omitempty"`
	PublicID  string    `bson:"publicId,omitempty" json:"publicId,omitempty"`
}

// Between reports whether m belongs to the thread of a and b on eventID.
func (m *Message) Between(eventID int64, a, b string) bool {
	if m.EventID != eventID {
		return false
	}
	return (m.FromReg == a && m.ToReg == b) || (m.FromReg == b && m.ToReg == a)
}

func (a *Aggregate) MessageIndex(id int64) int {
	for i := range a.Messages {
		if a.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

type Feedback struct {
	ID                 int64     `bson:"id" json:"id"`
	EventID            int64     `bson:"eventId" json:"eventId"`
	RegNumber          string    `bson:"regNumber" json:"regNumber"`
	SeatCapacityRating int       `bson:"seatCapacityRating" json:"seatCapacityRating"`
	Review             string    `bson:"review" json:"review"`
	SubmittedAt        time.Time `bson:"submittedAt" json:"submittedAt"`
}

// FindFeedback returns the feedback of regNumber for eventID, if any.
func (a *Aggregate) FindFeedback(eventID int64, regNumber string) *Feedback {
	for i := range a.Feedbacks {
		if a.Feedbacks[i].EventID == eventID && a.Feedbacks[i].RegNumber == regNumber {
			return &a.Feedbacks[i]
		}
	}
	return nil
}
