package handlers

import (
	"errors"
	"net/http"

	"github.com/campus-hub/eventhub/internal/models"
	"github.com/campus-hub/eventhub/internal/services"
	"github.com/gin-gonic/gin"
)

func BookEvent(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			Via string `json:"via"`
		}
		// body is optional
		_ = c.ShouldBindJSON(&req)

		booking, err := b.Book(c.Request.Context(), id, regNumber(c), req.Via)
		if err != nil {
			if errors.Is(err, models.ErrCapacityExceeded) {
				c.JSON(http.StatusConflict, models.ErrorResponse("Event is full. Join the waitlist to be notified when a seat opens"))
				return
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(booking, "Booked successfully"))
	}
}

func CancelBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := b.CancelBooking(c.Request.Context(), id, regNumber(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Booking cancelled"))
	}
}

func OrganizerCancelBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := b.OrganizerCancel(c.Request.Context(), id, regNumber(c), c.Param("reg")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Booking cancelled"))
	}
}

func JoinWaitlist(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		entry, err := b.JoinWaitlist(c.Request.Context(), id, regNumber(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(entry, "Added to waitlist"))
	}
}

func LeaveWaitlist(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := b.LeaveWaitlist(c.Request.Context(), id, regNumber(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Removed from waitlist"))
	}
}

func ListWaitlist(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		list, err := b.ListWaitlist(c.Request.Context(), id, regNumber(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(list, ""))
	}
}

func ListTickets(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tickets, err := b.ListTickets(c.Request.Context(), regNumber(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(tickets, ""))
	}
}

func AddVolunteer(v *services.VolunteerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			RegNumber string `json:"regNumber" binding:"required"`
			Role      string `json:"role" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("regNumber and role are required"))
			return
		}

		request, err := v.AddVolunteer(c.Request.Context(), id, regNumber(c), req.RegNumber, req.Role)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(request, "Volunteer request sent"))
	}
}

func RespondVolunteer(v *services.VolunteerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			Decision string `json:"decision" binding:"required,oneof=accept reject"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("decision must be accept or reject"))
			return
		}

		volunteer, err := v.RespondVolunteer(c.Request.Context(), id, regNumber(c), req.Decision)
		if err != nil {
			respondError(c, err)
			return
		}
		message := "Volunteer request rejected"
		if volunteer != nil {
			message = "You are now a volunteer for this event"
		}
		c.JSON(http.StatusOK, models.SuccessResponse(volunteer, message))
	}
}

func RemoveVolunteer(v *services.VolunteerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		removed, err := v.RemoveVolunteer(c.Request.Context(), id, regNumber(c), c.Param("reg"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(removed, "Volunteer removed"))
	}
}

func LeaveVolunteer(v *services.VolunteerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := v.LeaveVolunteer(c.Request.Context(), id, regNumber(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "You are no longer a volunteer for this event"))
	}
}

func ListVolunteers(v *services.VolunteerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		list, err := v.ListVolunteers(c.Request.Context(), id, regNumber(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(list, ""))
	}
}
