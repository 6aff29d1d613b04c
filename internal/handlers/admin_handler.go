package handlers

import (
	"net/http"

	"github.com/campus-hub/eventhub/internal/models"
	"github.com/campus-hub/eventhub/internal/services"
	"github.com/gin-gonic/gin"
)

func AdminWho(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := a.Who(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"username": username}, ""))
	}
}

func AdminChangeCredentials(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("username and password are required"))
			return
		}
		if err := a.ChangeCredentials(c.Request.Context(), req.Username, req.Password); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Admin credentials updated"))
	}
}

func AdminListStudents(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := a.ListStudents(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respondList(c, users)
	}
}

func AdminListOrganizers(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := a.ListOrganizers(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respondList(c, users)
	}
}

func AdminListPendingOrganizers(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := a.ListPendingOrganizers(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(users, ""))
	}
}

func AdminVerifyOrganizer(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Decision string `json:"decision" binding:"required,oneof=approve reject"`
			Reason   string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("decision must be approve or reject"))
			return
		}
		status, err := a.VerifyOrganizer(c.Request.Context(), c.Param("reg"), req.Decision, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"status": status}, "Organizer request "+status))
	}
}

func AdminRemoveOrganizer(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.RemoveOrganizer(c.Request.Context(), c.Param("reg")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Organizer role removed"))
	}
}

func AdminDeleteUser(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.DeleteUser(c.Request.Context(), c.Param("reg")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "User deleted"))
	}
}

func AdminResetPassword(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Role        string `json:"role"`
			NewPassword string `json:"newPassword" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("newPassword is required"))
			return
		}
		if err := a.ResetPassword(c.Request.Context(), c.Param("reg"), req.Role, req.NewPassword); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Password reset"))
	}
}

func AdminListEvents(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := a.ListEvents(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respondList(c, events)
	}
}

func AdminDeleteEvent(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			Reason string `json:"reason"`
		}
		_ = c.ShouldBindJSON(&req)
		if err := a.DeleteEvent(c.Request.Context(), id, req.Reason); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Event deleted"))
	}
}

func AdminListMedia(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		media, err := a.ListMedia(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(media, ""))
	}
}

func AdminDeleteMedia(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "mediaId")
		if !ok {
			return
		}
		if err := a.DeleteMedia(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Media deleted"))
	}
}

func AdminStats(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := a.Stats(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(stats, ""))
	}
}

func AdminIntegrity(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := a.Integrity(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(report, ""))
	}
}
