package handler

import (
	"net/http"

	"carebridge-chat/internal/services"
	"carebridge-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploads services.Uploader
}

func NewUploadHandler(uploads services.Uploader) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Store uploads a file ahead of a send and returns the attachment
// descriptor the client will put on the message payload.
func (h *UploadHandler) Store(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("missing file part", "INVALID_REQUEST"))
		return
	}
	defer file.Close()

	att, err := h.uploads.Store(c.Request.Context(), userID, services.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   header.Size,
		Body:        file,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.AttachmentView{
		URL:         att.URL,
		ContentType: att.ContentType,
		SizeBytes:   att.SizeBytes,
		DisplayName: att.DisplayName,
	}))
}
