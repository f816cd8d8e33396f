package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"carebridge-chat/internal/domain/chat"
	"carebridge-chat/internal/services"
	"carebridge-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	service *services.ChatService
}

func NewMessageHandler(service *services.ChatService) *MessageHandler {
	return &MessageHandler{service: service}
}

// Send accepts either a JSON body or, for attachment-bearing sends, a
// multipart form with a "message" JSON field and a "file" part. The file is
// uploaded before the message row is inserted; upload failure aborts the
// whole send. A JSON send may instead carry the attachment descriptor a
// prior POST /uploads returned.
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.SendMessageRequest
	var upload *services.UploadInput

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := json.Unmarshal([]byte(c.PostForm("message")), &req); err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message field", "INVALID_REQUEST"))
			return
		}
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("missing file part", "INVALID_REQUEST"))
			return
		}
		defer file.Close()
		upload = &services.UploadInput{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			SizeBytes:   header.Size,
			Body:        file,
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	in := services.SendMessageInput{
		SenderID: userID,
		Body:     req.Body,
		Upload:   upload,
	}
	if req.Attachment != nil {
		in.Attachment = &chat.Attachment{
			URL:         req.Attachment.URL,
			ContentType: req.Attachment.ContentType,
			SizeBytes:   req.Attachment.SizeBytes,
			DisplayName: req.Attachment.DisplayName,
		}
	}
	if req.RecipientID != "" {
		id, err := parseUUID(req.RecipientID)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid recipient_id", "INVALID_REQUEST"))
			return
		}
		in.RecipientID = id
	}
	if req.GroupID != "" {
		id, err := parseUUID(req.GroupID)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid group_id", "INVALID_REQUEST"))
			return
		}
		in.GroupID = id
	}
	if req.ReplyToID != "" {
		id, err := parseUUID(req.ReplyToID)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid reply_to_id", "INVALID_REQUEST"))
			return
		}
		in.ReplyToID = id
	}

	msg, err := h.service.SendMessage(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewMessageView(msg)))
}

func (h *MessageHandler) ListDirect(c *gin.Context) {
	peerID, err := parseUUID(c.Param("peerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid peer id", "INVALID_REQUEST"))
		return
	}
	userID, _ := services.UserIDFromContext(c.Request.Context())

	items, err := h.service.ListDirect(c.Request.Context(), userID, peerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"messages": httpdto.NewMessageViews(items)}))
}

func (h *MessageHandler) ListGroup(c *gin.Context) {
	groupID, err := parseUUID(c.Param("groupID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid group id", "INVALID_REQUEST"))
		return
	}
	userID, _ := services.UserIDFromContext(c.Request.Context())

	items, err := h.service.ListGroup(c.Request.Context(), userID, groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"messages": httpdto.NewMessageViews(items)}))
}

func (h *MessageHandler) Delete(c *gin.Context) {
	messageID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}
	userID, _ := services.UserIDFromContext(c.Request.Context())

	if err := h.service.DeleteMessage(c.Request.Context(), userID, messageID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *MessageHandler) ToggleReaction(c *gin.Context) {
	messageID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}
	var req httpdto.ToggleReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	userID, _ := services.UserIDFromContext(c.Request.Context())

	active, err := h.service.ToggleReaction(c.Request.Context(), userID, messageID, reactionKind(req.Kind))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ToggleReactionResponse{Active: active}))
}

func (h *MessageHandler) ListReactions(c *gin.Context) {
	messageID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}
	userID, _ := services.UserIDFromContext(c.Request.Context())

	reactions, err := h.service.ListReactions(c.Request.Context(), userID, messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"reactions": httpdto.NewReactionViews(reactions)}))
}
