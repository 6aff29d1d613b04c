package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/campus-hub/eventhub/internal/models"
)

const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

type VolunteerService struct {
	env *Env
}

func NewVolunteerService(env *Env) *VolunteerService {
	return &VolunteerService{env: env}
}

// VolunteerView is an accepted volunteer or a pending invite.
type VolunteerView struct {
	RegNumber   string `json:"regNumber"`
	Name        string `json:"name"`
	VolunteerID string `json:"volunteerId,omitempty"`
	Role        string `json:"role"`
	Status      string `json:"status"`
}

// AddVolunteer invites regNumber to take role. The invite stays pending until answered.
func (vs *VolunteerService) AddVolunteer(ctx context.Context, eventID int64, organizerReg, regNumber, role string) (*models.VolunteerRequest, error) {
	var request models.VolunteerRequest
	role = strings.TrimSpace(role)
	err := vs.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := vs.env.now()
		ev, err := agg.FindEvent(eventID)
		if err != nil {
			return err
		}
		if ev.CreatorRegNumber != organizerReg {
			return models.Forbiddenf("only the organizer can add volunteers")
		}
		if ev.HasStarted(now, vs.env.Location) {
			return models.Forbiddenf("cannot add volunteers for past events")
		}
		if _, err := agg.RequireUser(regNumber); err != nil {
			return err
		}
		if regNumber == ev.CreatorRegNumber {
			return models.Invalidf("organizer cannot be a volunteer")
		}
		if ev.IsVolunteer(regNumber) {
			return models.Conflictf("user is already a volunteer for this event")
		}
		if ev.PendingRequestIndex(regNumber) >= 0 {
			return models.Conflictf("there is already a pending request for this user")
		}
		if role == "" {
			return models.Invalidf("role is required")
		}
		if ev.RoleAssigned(role) {
			return models.Conflictf("role %q is already assigned to another volunteer", role)
		}
		if ev.RolePending(role) {
			return models.Conflictf("role %q already has a pending request", role)
		}

		request = models.VolunteerRequest{
			ID:          agg.NextID(now),
			RegNumber:   regNumber,
			Role:        role,
			Status:      models.RequestPending,
			RequestedAt: now.UTC(),
		}
		ev.VolunteerRequests = append(ev.VolunteerRequests, request)
		agg.Notify(regNumber, models.Notification{
			Msg:     fmt.Sprintf("🤝 Organizer invited you to volunteer for '%s' as '%s'.", ev.Title, role),
			Time:    now,
			Type:    models.NotificationVolunteerRequest,
			EventID: ev.ID,
			Role:    role,
		})
		touch(agg, organizerReg, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	vs.env.publish(PushEventsChanged, "volunteer_invited", eventID, "")
	return &request, nil
}

// RespondVolunteer answers the pending invite addressed to regNumber.
//
// Accepting revokes any ticket the user holds, re-packs the seats and fills
// the freed seats from the waitlist. If the role was taken meanwhile the
// invite is marked rejected and a conflict is returned.
func (vs *VolunteerService) RespondVolunteer(ctx context.Context, eventID int64, regNumber, decision string) (*models.Volunteer, error) {
	if decision != DecisionAccept && decision != DecisionReject {
		return nil, models.Invalidf("invalid decision %q", decision)
	}

	var (
		volunteer *models.Volunteer
		promoted  []string
		revoked   bool
	)
	err := vs.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		volunteer, promoted, revoked = nil, nil, false
		now := vs.env.now()
		ev, err := agg.FindEvent(eventID)
		if err != nil {
			return err
		}
		idx := ev.PendingRequestIndex(regNumber)
		if idx < 0 {
			return models.NotFoundf("no pending request found")
		}
		if ev.HasStarted(now, vs.env.Location) {
			return models.Forbiddenf("this event has already started or passed")
		}
		req := &ev.VolunteerRequests[idx]
		role := req.Role

		if decision == DecisionReject {
			req.Status = models.RequestRejected
			agg.NotifyText(regNumber, fmt.Sprintf("❌ You rejected volunteer role '%s' for '%s'.", role, ev.Title), now)
			agg.NotifyText(ev.CreatorRegNumber, fmt.Sprintf("❌ %s rejected volunteer role '%s' for '%s'.", regNumber, role, ev.Title), now)
			touch(agg, regNumber, now)
			return nil
		}

		if ev.RoleAssigned(role) {
			req.Status = models.RequestRejected
			return models.KeepChanges(models.Conflictf("role %q already assigned to someone else", role))
		}
		req.Status = models.RequestAccepted

		name := regNumber
		if u := agg.FindUser(regNumber); u != nil {
			name = u.Name
		}
		ev.Volunteers = append(ev.Volunteers, models.Volunteer{RegNumber: regNumber, Name: name, Role: role})
		ev.RenumberVolunteers()
		v := ev.Volunteers[len(ev.Volunteers)-1]
		volunteer = &v

		ev.RemoveFromWaitlist(regNumber)
		if ev.RemoveBooking(regNumber) {
			revoked = true
			agg.NotifyText(regNumber, fmt.Sprintf("🎟️ Your ticket for '%s' was removed as you are now a volunteer.", ev.Title), now)
			free := ev.Capacity - ev.Taken
			promoted = promote(agg, ev, free, func(seat int) string {
				return fmt.Sprintf("🎉 Great news! You've been auto-booked for '%s' due to a volunteer freeing up space. Your seat: %d", ev.Title, seat)
			}, now)
		}

		agg.NotifyText(regNumber, fmt.Sprintf("✅ You accepted volunteer role '%s' for '%s'.", role, ev.Title), now)
		agg.NotifyText(ev.CreatorRegNumber, fmt.Sprintf("✅ %s accepted volunteer role '%s' for '%s'.", regNumber, role, ev.Title), now)
		touch(agg, regNumber, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if decision == DecisionReject {
		vs.env.publish(PushEventsChanged, "volunteer_rejected", eventID, "")
		return nil, nil
	}
	vs.env.publish(PushEventsChanged, "volunteer_accepted", eventID, "")
	if revoked {
		vs.env.publish(PushTicketsChanged, "volunteer_accepted", eventID, regNumber)
	}
	for _, reg := range promoted {
		vs.env.publish(PushTicketsChanged, "promoted", eventID, reg)
	}
	return volunteer, nil
}

// RemoveVolunteer lets the organizer drop a volunteer.
func (vs *VolunteerService) RemoveVolunteer(ctx context.Context, eventID int64, organizerReg, regNumber string) (*models.Volunteer, error) {
	var removed models.Volunteer
	err := vs.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := vs.env.now()
		ev, err := agg.FindEvent(eventID)
		if err != nil {
			return err
		}
		if ev.CreatorRegNumber != organizerReg {
			return models.Forbiddenf("only the organizer can remove volunteers")
		}
		v, ok := ev.RemoveVolunteer(regNumber)
		if !ok {
			return models.NotFoundf("volunteer not found on this event")
		}
		removed = v
		agg.NotifyText(regNumber, fmt.Sprintf("❌ Your volunteer role for '%s' has been cancelled.", ev.Title), now)
		touch(agg, organizerReg, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	vs.env.publish(PushEventsChanged, "volunteer_removed", eventID, "")
	return &removed, nil
}

// LeaveVolunteer lets a volunteer step down.
func (vs *VolunteerService) LeaveVolunteer(ctx context.Context, eventID int64, regNumber string) error {
	err := vs.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := vs.env.now()
		ev, err := agg.FindEvent(eventID)
		if err != nil {
			return err
		}
		if _, ok := ev.RemoveVolunteer(regNumber); !ok {
			return models.NotFoundf("you are not a volunteer for this event")
		}
		agg.NotifyText(regNumber, fmt.Sprintf("🚪 You left the volunteer role for '%s'.", ev.Title), now)
		agg.NotifyText(ev.CreatorRegNumber, fmt.Sprintf("ℹ️ %s left the volunteer role for '%s'.", regNumber, ev.Title), now)
		touch(agg, regNumber, now)
		return nil
	})
	if err != nil {
		return err
	}

	vs.env.publish(PushEventsChanged, "volunteer_left", eventID, "")
	return nil
}

// ListVolunteers returns accepted volunteers followed by pending invites.
func (vs *VolunteerService) ListVolunteers(ctx context.Context, eventID int64, organizerReg string) ([]VolunteerView, error) {
	agg, err := vs.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}
	ev, err := agg.FindEvent(eventID)
	if err != nil {
		return nil, err
	}
	if ev.CreatorRegNumber != organizerReg {
		return nil, models.Forbiddenf("only the organizer can view volunteers")
	}

	nameOf := func(reg, fallback string) string {
		if u := agg.FindUser(reg); u != nil && strings.TrimSpace(u.Name) != "" {
			return strings.TrimSpace(u.Name)
		}
		if fallback != "" {
			return fallback
		}
		return reg
	}

	list := make([]VolunteerView, 0, len(ev.Volunteers)+len(ev.VolunteerRequests))
	for _, v := range ev.Volunteers {
		list = append(list, VolunteerView{
			RegNumber:   v.RegNumber,
			Name:        nameOf(v.RegNumber, v.Name),
			VolunteerID: v.VolunteerID,
			Role:        v.Role,
			Status:      models.RequestAccepted,
		})
	}
	for _, r := range ev.VolunteerRequests {
		if r.Status != models.RequestPending {
			continue
		}
		list = append(list, VolunteerView{
			RegNumber: r.RegNumber,
			Name:      nameOf(r.RegNumber, ""),
			Role:      r.Role,
			Status:    r.Status,
		})
	}
	return list, nil
}
