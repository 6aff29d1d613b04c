package models

import (
	"strings"
	"time"
)

const (
	MediaPhoto = "photo"
	MediaVideo = "video"
)

// StoredObject describes a blob held by the object storage.
type StoredObject struct {
	URL      string
	PublicID string
	Format   string
	Width    int
	Height   int
	Bytes    int64
}

type Media struct {
	ID         int64     `bson:"id" json:"id"`
	EventID    int64     `bson:"eventId" json:"eventId"`
	Name       string    `bson:"name" json:"name"`
	URL        string    `bson:"url" json:"url"`
	PublicID   string    `bson:"publicId" json:"publicId"`
	Type       string    `bson:"type" json:"type"`
	Size       int64     `bson:"size" json:"size"`
	Format     string    `bson:"format,omitempty" json:"format,omitempty"`
	Width      int       `bson:"width,omitempty" json:"width,omitempty"`
	Height     int       `bson:"height,omitempty" json:"height,omitempty"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// MediaKind maps a MIME type onto photo or video. Anything else is rejected.
func MediaKind(contentType string) (string, bool) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return MediaPhoto, true
	case strings.HasPrefix(contentType, "video/"):
		return MediaVideo, true
	}
	return "", false
}

// ResourceKind is the object-storage resource type for a media kind.
func ResourceKind(mediaType string) string {
	if mediaType == MediaVideo {
		return "video"
	}
	return "image"
}

// MediaFor returns the media attached to eventID.
func (a *Aggregate) MediaFor(eventID int64) []Media {
	out := []Media{}
	for _, m := range a.Media {
		if m.EventID == eventID {
			out = append(out, m)
		}
	}
	return out
}

// RemoveMediaFor detaches and returns every media item of eventID.
func (a *Aggregate) RemoveMediaFor(eventID int64) []Media {
	removed := []Media{}
	kept := a.Media[:0]
	for _, m := range a.Media {
		if m.EventID == eventID {
			removed = append(removed, m)
			continue
		}
		kept = append(kept, m)
	}
	a.Media = kept
	return removed
}

func (a *Aggregate) MediaIndex(id int64) int {
	for i := range a.Media {
		if a.Media[i].ID == id {
			return i
		}
	}
	return -1
}
