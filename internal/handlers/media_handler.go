package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/campus-hub/eventhub/internal/helpers"
	"github.com/campus-hub/eventhub/internal/models"
	"github.com/campus-hub/eventhub/internal/services"
	"github.com/gin-gonic/gin"
)

// formUpload opens the "file" form field. The caller must close it.
func formUpload(c *gin.Context) (services.Upload, multipart.File, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("file is required"))
		return services.Upload{}, nil, false
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("failed to read uploaded file"))
		return services.Upload{}, nil, false
	}
	return services.Upload{
		Name:        helpers.SanitizeFileName(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        f,
	}, f, true
}

func UploadMedia(m *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		upload, f, ok := formUpload(c)
		if !ok {
			return
		}
		defer f.Close()

		media, err := m.UploadMedia(c.Request.Context(), id, regNumber(c), upload)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(media, "Media uploaded"))
	}
}

func ListMedia(m *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		media, err := m.ListMedia(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(media, ""))
	}
}

func DeleteMedia(m *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "mediaId")
		if !ok {
			return
		}
		if err := m.DeleteMedia(c.Request.Context(), id, regNumber(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Media deleted"))
	}
}

func SendMessage(m *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			ToReg string `json:"toReg" binding:"required"`
			Text  string `json:"text" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("toReg and text are required"))
			return
		}

		msg, err := m.SendMessage(c.Request.Context(), id, regNumber(c), req.ToReg, req.Text)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(msg, "Message sent"))
	}
}

func SendMediaMessage(m *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		upload, f, ok := formUpload(c)
		if !ok {
			return
		}
		defer f.Close()

		msg, err := m.SendMediaMessage(c.Request.Context(), id, regNumber(c), c.PostForm("toReg"), upload)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(msg, "Media sent"))
	}
}

func GetThread(m *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		thread, err := m.Thread(c.Request.Context(), id, regNumber(c), c.Query("with"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(thread, ""))
	}
}

func ListConversations(m *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		convs, err := m.Conversations(c.Request.Context(), id, regNumber(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(convs, ""))
	}
}

func DeleteMessage(m *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "messageId")
		if !ok {
			return
		}
		if err := m.DeleteMessage(c.Request.Context(), id, regNumber(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Message deleted"))
	}
}
