package handlers

import (
	"net/http"

	"github.com/campus-hub/eventhub/internal/models"
	"github.com/campus-hub/eventhub/internal/services"
	"github.com/gin-gonic/gin"
)

func SubmitFeedback(f *services.FeedbackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var in services.FeedbackInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}

		feedback, err := f.Submit(c.Request.Context(), id, regNumber(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(feedback, "Thank you for your feedback"))
	}
}

func ListFeedback(f *services.FeedbackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		list, err := f.ListForEvent(c.Request.Context(), id, regNumber(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(list, ""))
	}
}

func GetFeedback(f *services.FeedbackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		feedback, err := f.Get(c.Request.Context(), id, regNumber(c), c.Param("reg"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(feedback, ""))
	}
}

func CheckFeedback(f *services.FeedbackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		feedback, err := f.Check(c.Request.Context(), id, regNumber(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"submitted": feedback != nil,
			"feedback":  feedback,
		}, ""))
	}
}
