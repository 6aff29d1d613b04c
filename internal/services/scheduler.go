package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campus-hub/eventhub/internal/models"
	"github.com/robfig/cron/v3"
)

const (
	DefaultNotifySchedule = "@every 1m"

	waitlistExpiryWindow = 5 * time.Minute
	feedbackDelay        = time.Minute
	tickTimeout          = 30 * time.Second
)

// NotificationScheduler fires the time-based notifications. Every flag it
// sets is one-shot, so running a tick twice never notifies twice.
type NotificationScheduler struct {
	env      *Env
	schedule string
	cron     *cron.Cron
}

func NewNotificationScheduler(env *Env, schedule string) *NotificationScheduler {
	if schedule == "" {
		schedule = DefaultNotifySchedule
	}
	return &NotificationScheduler{env: env, schedule: schedule}
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

// Start registers the tick with cron. Ticks never overlap.
func (s *NotificationScheduler) Start() error {
	logger := cronLogger{logger: s.env.Logger}
	c := cron.New(
		cron.WithLocation(s.env.Location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(s.schedule, s.run); err != nil {
		return fmt.Errorf("invalid notify schedule %q: %w", s.schedule, err)
	}
	s.cron = c
	c.Start()
	s.env.Logger.Info("Notification scheduler started", "schedule", s.schedule)
	return nil
}

// Stop halts the cron and waits for a running tick to finish.
func (s *NotificationScheduler) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.env.Logger.Warn("Notification scheduler stop timed out")
	}
}

func (s *NotificationScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()
	if err := s.Tick(ctx); err != nil {
		s.env.Logger.Error("Notification tick failed", "error", err)
	}
}

// Tick runs every pass over all events and persists once if anything changed.
func (s *NotificationScheduler) Tick(ctx context.Context) error {
	return s.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := s.env.now()
		changed := false
		for i := range agg.Events {
			ev := &agg.Events[i]
			start, end, err := ev.Window(s.env.Location)
			if err != nil {
				continue
			}
			if s.livePass(agg, ev, start, end, now) {
				changed = true
			}
			if s.waitlistExpiryPass(agg, ev, start, now) {
				changed = true
			}
			if s.feedbackPass(agg, ev, end, now) {
				changed = true
			}
		}
		if !changed {
			return models.ErrNoChanges
		}
		return nil
	})
}

func (s *NotificationScheduler) livePass(agg *models.Aggregate, ev *models.Event, start, end, now time.Time) bool {
	changed := false
	if !now.Before(start) && now.Before(end) && !ev.LiveNotificationSent {
		agg.NotifyAll(fmt.Sprintf("🔥 Event Live: '%s' is now live!", ev.Title), now)
		ev.LiveNotificationSent = true
		changed = true
	}

	until := start.Sub(now)
	for _, minutes := range models.ReminderMinutes {
		flag := ev.ReminderFlag(minutes)
		if flag == nil || *flag {
			continue
		}
		if until > 0 && until <= time.Duration(minutes)*time.Minute {
			agg.NotifyBooked(ev, models.Notification{
				Msg:  fmt.Sprintf("⏳ Reminder: '%s' starts in about %d minutes!", ev.Title, minutes),
				Time: now,
			})
			*flag = true
			changed = true
		}
	}
	return changed
}

// waitlistExpiryPass tells users still queued shortly after start that they
// will not get a seat.
func (s *NotificationScheduler) waitlistExpiryPass(agg *models.Aggregate, ev *models.Event, start, now time.Time) bool {
	since := now.Sub(start)
	if since < 0 || since > waitlistExpiryWindow || len(ev.Waitlist) == 0 {
		return false
	}
	key := models.LiveMarker(ev.ID)
	if agg.Marked(key) {
		return false
	}
	msg := fmt.Sprintf("😔 Sorry, your ticket for \"%s\" could not be confirmed as the event has started.", ev.Title)
	for _, w := range ev.Waitlist {
		agg.NotifyText(w.RegNumber, msg, now)
	}
	agg.Mark(key)
	s.env.Logger.Info("Sent waitlist expiry notifications", "event_id", ev.ID, "count", len(ev.Waitlist))
	return true
}

func (s *NotificationScheduler) feedbackPass(agg *models.Aggregate, ev *models.Event, end, now time.Time) bool {
	if len(ev.Bookings) == 0 || now.Sub(end) < feedbackDelay {
		return false
	}
	key := models.FeedbackMarker(ev.ID)
	if agg.Marked(key) {
		return false
	}
	n := agg.NotifyBooked(ev, models.Notification{
		Msg:        fmt.Sprintf("📝 \"%s\" has completed! Please share your feedback.", ev.Title),
		Time:       now,
		Type:       models.NotificationFeedback,
		EventID:    ev.ID,
		EventTitle: ev.Title,
	})
	agg.Mark(key)
	s.env.Logger.Info("Sent feedback requests", "event_id", ev.ID, "count", n)
	return true
}
