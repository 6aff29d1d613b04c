package services

import (
	"context"
	"strings"

	"github.com/campus-hub/eventhub/internal/models"
)

type FeedbackService struct {
	env *Env
}

func NewFeedbackService(env *Env) *FeedbackService {
	return &FeedbackService{env: env}
}

type FeedbackInput struct {
	SeatCapacityRating int    `json:"seatCapacityRating" validate:"required,oneof=2 3"`
	Review             string `json:"review" validate:"required"`
}

// FeedbackView is a feedback entry with the author's display name.
type FeedbackView struct {
	models.Feedback
	UserName string `json:"userName"`
}

// Submit records the one and only feedback of a ticket holder for an event.
func (fs *FeedbackService) Submit(ctx context.Context, eventID int64, regNumber string, in FeedbackInput) (*models.Feedback, error) {
	in.Review = strings.TrimSpace(in.Review)
	if err := models.Validate.Struct(in); err != nil {
		return nil, models.Invalidf("seat capacity rating must be 2 or 3 and a review is required")
	}

	var feedback models.Feedback
	err := fs.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := fs.env.now()
		ev, err := agg.FindEvent(eventID)
		if err != nil {
			return err
		}
		if !ev.HasBooking(regNumber) {
			return models.Forbiddenf("you must have booked a ticket to provide feedback")
		}
		if agg.FindFeedback(eventID, regNumber) != nil {
			return models.Conflictf("feedback already submitted")
		}
		feedback = models.Feedback{
			ID:                 agg.NextID(now),
			EventID:            eventID,
			RegNumber:          regNumber,
			SeatCapacityRating: in.SeatCapacityRating,
			Review:             in.Review,
			SubmittedAt:        now.UTC(),
		}
		agg.Feedbacks = append(agg.Feedbacks, feedback)
		touch(agg, regNumber, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (fs *FeedbackService) organizerView(ctx context.Context, eventID int64, organizerReg string) (*models.Aggregate, error) {
	agg, err := fs.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}
	ev, err := agg.FindEvent(eventID)
	if err != nil {
		return nil, err
	}
	if ev.CreatorRegNumber != organizerReg {
		return nil, models.Forbiddenf("only the organizer can view feedback")
	}
	return agg, nil
}

func withUser(agg *models.Aggregate, f models.Feedback) FeedbackView {
	name := f.RegNumber
	if u := agg.FindUser(f.RegNumber); u != nil {
		name = u.FullName()
	}
	return FeedbackView{Feedback: f, UserName: name}
}

func (fs *FeedbackService) ListForEvent(ctx context.Context, eventID int64, organizerReg string) ([]FeedbackView, error) {
	agg, err := fs.organizerView(ctx, eventID, organizerReg)
	if err != nil {
		return nil, err
	}
	list := []FeedbackView{}
	for _, f := range agg.Feedbacks {
		if f.EventID == eventID {
			list = append(list, withUser(agg, f))
		}
	}
	return list, nil
}

func (fs *FeedbackService) Get(ctx context.Context, eventID int64, organizerReg, regNumber string) (*FeedbackView, error) {
	agg, err := fs.organizerView(ctx, eventID, organizerReg)
	if err != nil {
		return nil, err
	}
	f := agg.FindFeedback(eventID, regNumber)
	if f == nil {
		return nil, models.NotFoundf("feedback not found")
	}
	view := withUser(agg, *f)
	return &view, nil
}

// Check reports whether regNumber already reviewed the event.
func (fs *FeedbackService) Check(ctx context.Context, eventID int64, regNumber string) (*models.Feedback, error) {
	agg, err := fs.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}
	if f := agg.FindFeedback(eventID, regNumber); f != nil {
		copied := *f
		return &copied, nil
	}
	return nil, nil
}

// NotificationService serves the per-user inbox.
type NotificationService struct {
	env *Env
}

func NewNotificationService(env *Env) *NotificationService {
	return &NotificationService{env: env}
}

// List returns the inbox newest first and records the visit.
func (ns *NotificationService) List(ctx context.Context, regNumber string) ([]models.Notification, error) {
	var inbox []models.Notification
	err := ns.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		inbox = append([]models.Notification{}, agg.Notifications[regNumber]...)
		u := agg.FindUser(regNumber)
		if u == nil {
			return models.ErrNoChanges
		}
		u.Touch(ns.env.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inbox, nil
}

func (ns *NotificationService) MarkAllRead(ctx context.Context, regNumber string) error {
	return ns.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		if agg.MarkAllRead(regNumber) == 0 {
			return models.ErrNoChanges
		}
		return nil
	})
}
