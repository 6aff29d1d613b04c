package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/campus-hub/eventhub/internal/middleware"
	"github.com/campus-hub/eventhub/internal/models"
	"github.com/gin-gonic/gin"
)

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrConflict), errors.Is(err, models.ErrCapacityExceeded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Server-side failures are
// also attached to the context for ErrorHandler to log.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, models.ErrorResponse("Internal server error"))
		return
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse(err.Error()))
}

func paramID(c *gin.Context, name string) (int64, bool) {
	raw := strings.Trim(strings.TrimSpace(c.Param(name)), "\"'")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid "+name))
		return 0, false
	}
	return id, true
}

// regNumber returns the caller's registration number. Routes using it sit
// behind AuthMiddleware and UsersOnly.
func regNumber(c *gin.Context) string {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.RegNumber()
	}
	return ""
}

// respondList writes items, one page at a time when ?page= is given.
func respondList[T any](c *gin.Context, items []T) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		c.JSON(http.StatusOK, models.SuccessResponse(items, ""))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	c.JSON(http.StatusOK, models.PaginatedResponse(items, page, limit))
}
