package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/campus-hub/eventhub/internal/helpers"
	"github.com/campus-hub/eventhub/internal/models"
)

type MessageService struct {
	env     *Env
	storage ObjectStorage
}

func NewMessageService(env *Env, storage ObjectStorage) *MessageService {
	return &MessageService{env: env, storage: storage}
}

// Conversation summarises one chat partner of an organizer.
type Conversation struct {
	RegNumber string `json:"regNumber"`
	Name      string `json:"name"`
	Volunteer bool   `json:"volunteer"`
	Unread    int    `json:"unread"`
}

// canChat allows a pair when either side organizes, holds a ticket or volunteers.
func canChat(ev *models.Event, fromReg, toReg string) bool {
	for _, reg := range []string{fromReg, toReg} {
		if ev.CreatorRegNumber == reg || ev.HasBooking(reg) || ev.IsVolunteer(reg) {
			return true
		}
	}
	return false
}

func chatMeta(ev *models.Event, fromReg, toReg string) models.Notification {
	return models.Notification{Type: models.NotificationChat, EventID: ev.ID, FromReg: fromReg, ToReg: toReg}
}

func (ms *MessageService) SendMessage(ctx context.Context, eventID int64, fromReg, toReg, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if toReg == "" || text == "" {
		return nil, models.Invalidf("recipient and text are required")
	}

	var msg models.Message
	err := ms.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := ms.env.now()
		ev, err := agg.FindEvent(eventID)
		if err != nil {
			return err
		}
		if _, err := agg.RequireUser(toReg); err != nil {
			return err
		}
		if !canChat(ev, fromReg, toReg) {
			return models.Forbiddenf("only organizer and booked users or volunteers can chat for this event")
		}
		msg = models.Message{
			ID:      agg.NextID(now),
			EventID: eventID,
			FromReg: fromReg,
			ToReg:   toReg,
			Text:    text,
			Time:    now.UTC(),
			Type:    models.MessageText,
		}
		agg.Messages = append(agg.Messages, msg)

		n := chatMeta(ev, fromReg, toReg)
		n.Time = now
		n.Msg = fmt.Sprintf("💬 New message on '%s'", ev.Title)
		agg.Notify(toReg, n)
		n.Msg = fmt.Sprintf("✅ Message sent for '%s'", ev.Title)
		agg.Notify(fromReg, n)
		touch(agg, fromReg, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	ms.env.Publisher.Publish(PushChatMessage, msg, toReg)
	return &msg, nil
}

// SendMediaMessage uploads a photo or video and posts it into the thread.
func (ms *MessageService) SendMediaMessage(ctx context.Context, eventID int64, fromReg, toReg string, file Upload) (*models.Message, error) {
	kind, ok := models.MediaKind(file.ContentType)
	if !ok {
		return nil, models.Invalidf("only images and videos can be sent")
	}
	if file.Size > MaxChatMediaBytes {
		return nil, models.Invalidf("file exceeds the %d MB limit", MaxChatMediaBytes>>20)
	}
	if toReg == "" {
		return nil, models.Invalidf("recipient is required")
	}
	if ms.storage == nil {
		return nil, fmt.Errorf("%w: media storage is not configured", models.ErrPersistence)
	}

	agg, err := ms.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}
	ev, err := agg.FindEvent(eventID)
	if err != nil {
		return nil, err
	}
	if _, err := agg.RequireUser(toReg); err != nil {
		return nil, err
	}
	if !canChat(ev, fromReg, toReg) {
		return nil, models.Forbiddenf("only organizer and booked users or volunteers can chat for this event")
	}

	uploadCtx, cancel := helpers.StorageContext(ctx)
	obj, err := ms.storage.Upload(uploadCtx, file.Data, file.ContentType, fmt.Sprintf("campus-events/chat/%d", eventID))
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to upload chat media: %w", err)
	}

	var msg models.Message
	err = ms.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := ms.env.now()
		ev, err := agg.FindEvent(eventID)
		if err != nil {
			return err
		}
		if _, err := agg.RequireUser(toReg); err != nil {
			return err
		}
		msg = models.Message{
			ID:        agg.NextID(now),
			EventID:   eventID,
			FromReg:   fromReg,
			ToReg:     toReg,
			Time:      now.UTC(),
			Type:      models.MessageMedia,
			MediaType: kind,
			URL:       obj.URL,
			PublicID:  obj.PublicID,
		}
		agg.Messages = append(agg.Messages, msg)

		label := "Image"
		if kind == models.MediaVideo {
			label = "Video"
		}
		n := chatMeta(ev, fromReg, toReg)
		n.Time = now
		n.Msg = fmt.Sprintf("📎 New %s in '%s' chat", kind, ev.Title)
		agg.Notify(toReg, n)
		n.Msg = fmt.Sprintf("✅ %s sent for '%s'", label, ev.Title)
		agg.Notify(fromReg, n)
		touch(agg, fromReg, now)
		return nil
	})
	if err != nil {
		deleteObjects(ctx, ms.storage, ms.env.Logger, []models.Media{{PublicID: obj.PublicID, Type: kind}})
		return nil, err
	}

	ms.env.Publisher.Publish(PushChatMessage, msg, toReg)
	return &msg, nil
}

// Thread returns the messages between reader and other, oldest first, and
// marks the ones addressed to reader as read.
func (ms *MessageService) Thread(ctx context.Context, eventID int64, reader, other string) ([]models.Message, error) {
	if other == "" {
		return nil, models.Invalidf("chat partner is required")
	}
	var thread []models.Message
	err := ms.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		if _, err := agg.FindEvent(eventID); err != nil {
			return err
		}
		thread = []models.Message{}
		changed := false
		for i := range agg.Messages {
			m := &agg.Messages[i]
			if !m.Between(eventID, reader, other) {
				continue
			}
			if m.ToReg == reader && !m.Read {
				m.Read = true
				changed = true
			}
			thread = append(thread, *m)
		}
		if !changed {
			return models.ErrNoChanges
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(thread, func(i, j int) bool { return thread[i].Time.Before(thread[j].Time) })
	return thread, nil
}

// Conversations lists the chat partners of the event organizer.
func (ms *MessageService) Conversations(ctx context.Context, eventID int64, organizerReg string) ([]Conversation, error) {
	agg, err := ms.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}
	ev, err := agg.FindEvent(eventID)
	if err != nil {
		return nil, err
	}
	if ev.CreatorRegNumber != organizerReg {
		return nil, models.Forbiddenf("only the organizer can view conversations")
	}

	var order []string
	unread := map[string]int{}
	seen := map[string]bool{}
	for _, m := range agg.Messages {
		if m.EventID != eventID {
			continue
		}
		var other string
		switch organizerReg {
		case m.FromReg:
			other = m.ToReg
		case m.ToReg:
			other = m.FromReg
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			order = append(order, other)
		}
		if m.ToReg == organizerReg && !m.Read {
			unread[other]++
		}
	}

	convs := make([]Conversation, 0, len(order))
	for _, reg := range order {
		name := reg
		if u := agg.FindUser(reg); u != nil {
			name = u.FullName()
		}
		convs = append(convs, Conversation{RegNumber: reg, Name: name, Volunteer: ev.IsVolunteer(reg), Unread: unread[reg]})
	}
	return convs, nil
}

// DeleteMessage lets the sender or the organizer remove a message.
func (ms *MessageService) DeleteMessage(ctx context.Context, messageID int64, regNumber string) error {
	var removed models.Message
	err := ms.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		idx := agg.MessageIndex(messageID)
		if idx < 0 {
			return models.NotFoundf("message not found")
		}
		m := agg.Messages[idx]
		ev, err := agg.FindEvent(m.EventID)
		if err != nil {
			return err
		}
		if m.FromReg != regNumber && ev.CreatorRegNumber != regNumber {
			return models.Forbiddenf("not authorized to delete this message")
		}
		agg.Messages = append(agg.Messages[:idx], agg.Messages[idx+1:]...)
		removed = m
		return nil
	})
	if err != nil {
		return err
	}

	if removed.Type == models.MessageMedia {
		deleteObjects(ctx, ms.storage, ms.env.Logger, []models.Media{{PublicID: removed.PublicID, Type: removed.MediaType}})
	}
	return nil
}
