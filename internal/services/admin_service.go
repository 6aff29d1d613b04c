package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/campus-hub/eventhub/internal/helpers"
	"github.com/campus-hub/eventhub/internal/models"
)

const activeWindow = 5 * time.Minute

type AdminService struct {
	env             *Env
	storage         ObjectStorage
	defaultUsername string
	defaultPassword string
}

func NewAdminService(env *Env, storage ObjectStorage, defaultUsername, defaultPassword string) *AdminService {
	return &AdminService{
		env:             env,
		storage:         storage,
		defaultUsername: defaultUsername,
		defaultPassword: defaultPassword,
	}
}

type Stats struct {
	TotalUsers      int `json:"totalUsers"`
	TotalEvents     int `json:"totalEvents"`
	TotalOrganizers int `json:"totalOrganizers"`
	ActiveUsers     int `json:"activeUsers"`
}

type IntegrityReport struct {
	Issues    []string       `json:"issues"`
	IsHealthy bool           `json:"isHealthy"`
	Counts    map[string]int `json:"stats"`
}

// Login accepts the stored admin credentials or the configured defaults.
func (as *AdminService) Login(ctx context.Context, username, password string) (string, error) {
	agg, err := as.env.Gateway.Read(ctx)
	if err != nil {
		return "", err
	}
	username = strings.TrimSpace(username)
	stored := agg.Admin
	if stored.Username != "" && strings.EqualFold(stored.Username, username) && helpers.CheckPassword(stored.Password, password) {
		return stored.Username, nil
	}
	if as.defaultUsername != "" && strings.EqualFold(as.defaultUsername, username) && as.defaultPassword != "" && as.defaultPassword == password {
		return as.defaultUsername, nil
	}
	return "", models.ErrUnauthorized
}

// Who returns the current admin username.
func (as *AdminService) Who(ctx context.Context) (string, error) {
	agg, err := as.env.Gateway.Read(ctx)
	if err != nil {
		return "", err
	}
	if agg.Admin.Username != "" {
		return agg.Admin.Username, nil
	}
	return as.defaultUsername, nil
}

func (as *AdminService) ChangeCredentials(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Invalidf("username and password are required")
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return err
	}
	return as.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		agg.Admin = models.Admin{Username: username, Password: hash}
		return nil
	})
}

func (as *AdminService) listUsers(ctx context.Context, keep func(*models.User) bool) ([]models.User, error) {
	agg, err := as.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}
	users := []models.User{}
	for i := range agg.Users {
		if keep(&agg.Users[i]) {
			users = append(users, agg.Users[i].Public())
		}
	}
	return users, nil
}

func (as *AdminService) ListStudents(ctx context.Context) ([]models.User, error) {
	return as.listUsers(ctx, func(u *models.User) bool { return u.Role == models.RoleStudent })
}

func (as *AdminService) ListOrganizers(ctx context.Context) ([]models.User, error) {
	return as.listUsers(ctx, func(u *models.User) bool { return u.Role == models.RoleOrganizer })
}

func (as *AdminService) ListPendingOrganizers(ctx context.Context) ([]models.User, error) {
	return as.listUsers(ctx, func(u *models.User) bool { return u.OrganizerStatus == models.OrganizerPending })
}

// VerifyOrganizer approves or rejects a pending organizer request.
func (as *AdminService) VerifyOrganizer(ctx context.Context, regNumber, decision, reason string) (string, error) {
	if decision != "approve" && decision != "reject" {
		return "", models.Invalidf("invalid decision %q", decision)
	}
	var status string
	err := as.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := as.env.now()
		u, err := agg.RequireUser(regNumber)
		if err != nil {
			return err
		}
		if u.OrganizerStatus != models.OrganizerPending {
			return models.Conflictf("no pending organizer request")
		}
		if decision == "approve" {
			u.OrganizerStatus = models.OrganizerApproved
			u.Role = models.RoleOrganizer
			status = "approved"
			agg.NotifyText(regNumber, "✅ Your organizer request has been approved. Organizer dashboard unlocked.", now)
			return nil
		}
		u.OrganizerStatus = models.OrganizerRejected
		status = "rejected"
		agg.NotifyText(regNumber, "❌ Your organizer request was rejected."+withReason(reason), now)
		return nil
	})
	if err != nil {
		return "", err
	}
	return status, nil
}

func withReason(reason string) string {
	if reason = strings.TrimSpace(reason); reason == "" {
		return ""
	}
	return " Reason: " + reason
}

func (as *AdminService) RemoveOrganizer(ctx context.Context, regNumber string) error {
	return as.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		u, err := agg.RequireUser(regNumber)
		if err != nil {
			return err
		}
		u.Role = models.RoleStudent
		agg.NotifyText(regNumber, "⚠️ Your organizer role has been removed by admin. You now have student access.", as.env.now())
		return nil
	})
}

// DeleteUser hard-deletes an account with the same cascade as a self-service deletion.
func (as *AdminService) DeleteUser(ctx context.Context, regNumber string) error {
	var objects []models.Media
	var eventIDs []int64
	err := as.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		if _, err := agg.RequireUser(regNumber); err != nil {
			return err
		}
		objects, eventIDs = purgeAccount(agg, regNumber)
		return nil
	})
	if err != nil {
		return err
	}

	deleteObjects(ctx, as.storage, as.env.Logger, objects)
	for _, id := range eventIDs {
		as.env.publish(PushEventsChanged, "deleted", id, "")
	}
	return nil
}

// ResetPassword sets a new password for a user whose role matches.
func (as *AdminService) ResetPassword(ctx context.Context, regNumber, role, newPassword string) error {
	if !helpers.IsPasswordStrong(newPassword) {
		return models.Invalidf("password must contain uppercase, lowercase, number and be at least 6 characters long")
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return as.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		u := agg.FindUser(regNumber)
		if u == nil || (role != "" && u.Role != role) {
			return models.NotFoundf("user not found or role does not match")
		}
		u.Password = hash
		agg.NotifyText(regNumber, "🔐 Your password has been successfully reset.", as.env.now())
		return nil
	})
}

func (as *AdminService) ListEvents(ctx context.Context) ([]models.Event, error) {
	agg, err := as.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}
	return agg.Events, nil
}

// DeleteEvent removes any event regardless of its schedule and tells its organizer why.
func (as *AdminService) DeleteEvent(ctx context.Context, eventID int64, reason string) error {
	var media []models.Media
	err := as.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		ev, err := agg.FindEvent(eventID)
		if err != nil {
			return err
		}
		agg.NotifyText(ev.CreatorRegNumber, fmt.Sprintf("❌ Your event '%s' was deleted by admin.%s", ev.Title, withReason(reason)), as.env.now())
		media = agg.RemoveMediaFor(eventID)
		agg.RemoveEvent(eventID)
		return nil
	})
	if err != nil {
		return err
	}

	deleteObjects(ctx, as.storage, as.env.Logger, media)
	as.env.publish(PushEventsChanged, "deleted", eventID, "")
	return nil
}

func (as *AdminService) ListMedia(ctx context.Context, eventID int64) ([]models.Media, error) {
	agg, err := as.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}
	return agg.MediaFor(eventID), nil
}

func (as *AdminService) DeleteMedia(ctx context.Context, mediaID int64) error {
	var removed models.Media
	err := as.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		idx := agg.MediaIndex(mediaID)
		if idx < 0 {
			return models.NotFoundf("media not found")
		}
		removed = agg.Media[idx]
		agg.Media = append(agg.Media[:idx], agg.Media[idx+1:]...)
		if ev, err := agg.FindEvent(removed.EventID); err == nil {
			agg.NotifyText(ev.CreatorRegNumber, fmt.Sprintf("🗑️ Admin deleted a media item from '%s'.", ev.Title), as.env.now())
		}
		return nil
	})
	if err != nil {
		return err
	}

	deleteObjects(ctx, as.storage, as.env.Logger, []models.Media{removed})
	as.env.publish(PushMediaChanged, "deleted", removed.EventID, "")
	return nil
}

func (as *AdminService) Stats(ctx context.Context) (*Stats, error) {
	agg, err := as.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}
	cut := as.env.now().Add(-activeWindow)
	stats := &Stats{TotalUsers: len(agg.Users), TotalEvents: len(agg.Events)}
	for _, u := range agg.Users {
		if u.Role == models.RoleOrganizer {
			stats.TotalOrganizers++
		}
		if u.LastSeen != nil && u.LastSeen.After(cut) {
			stats.ActiveUsers++
		}
	}
	return stats, nil
}

// Integrity reports dangling references in the aggregate.
func (as *AdminService) Integrity(ctx context.Context) (*IntegrityReport, error) {
	agg, err := as.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}

	issues := []string{}
	eventIDs := make(map[int64]bool, len(agg.Events))
	for _, ev := range agg.Events {
		eventIDs[ev.ID] = true
	}
	orphaned := 0
	for _, m := range agg.Media {
		if !eventIDs[m.EventID] {
			orphaned++
		}
	}
	if orphaned > 0 {
		issues = append(issues, fmt.Sprintf("%d orphaned media files", orphaned))
	}

	badCreators, badSeats := 0, 0
	for i := range agg.Events {
		ev := &agg.Events[i]
		if agg.FindUser(ev.CreatorRegNumber) == nil {
			badCreators++
		}
		if !seatsPacked(ev) {
			badSeats++
		}
	}
	if badCreators > 0 {
		issues = append(issues, fmt.Sprintf("%d events with invalid creators", badCreators))
	}
	if badSeats > 0 {
		issues = append(issues, fmt.Sprintf("%d events with inconsistent seats", badSeats))
	}

	return &IntegrityReport{
		Issues:    issues,
		IsHealthy: len(issues) == 0,
		Counts: map[string]int{
			"users":         len(agg.Users),
			"events":        len(agg.Events),
			"media":         len(agg.Media),
			"messages":      len(agg.Messages),
			"notifications": len(agg.Notifications),
		},
	}, nil
}

func seatsPacked(ev *models.Event) bool {
	if ev.Taken != len(ev.Bookings) || ev.Taken > ev.Capacity {
		return false
	}
	seen := make(map[int]bool, len(ev.Bookings))
	for _, b := range ev.Bookings {
		if b.Seat < 1 || b.Seat > ev.Taken || seen[b.Seat] {
			return false
		}
		seen[b.Seat] = true
	}
	return true
}
