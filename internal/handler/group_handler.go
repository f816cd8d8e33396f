package handler

import (
	"net/http"

	"carebridge-chat/internal/services"
	"carebridge-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	service *services.GroupService
}

func NewGroupHandler(service *services.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

func (h *GroupHandler) Create(c *gin.Context) {
	var req httpdto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	userID, _ := services.UserIDFromContext(c.Request.Context())

	ch, err := h.service.Create(c.Request.Context(), userID, services.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewGroupView(ch)))
}

func (h *GroupHandler) Delete(c *gin.Context) {
	groupID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid group id", "INVALID_REQUEST"))
		return
	}
	userID, _ := services.UserIDFromContext(c.Request.Context())

	if err := h.service.Delete(c.Request.Context(), userID, groupID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *GroupHandler) List(c *gin.Context) {
	channels, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"groups": httpdto.NewGroupViews(channels)}))
}

func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid group id", "INVALID_REQUEST"))
		return
	}
	var req httpdto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	memberID, err := parseUUID(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user_id", "INVALID_REQUEST"))
		return
	}
	userID, _ := services.UserIDFromContext(c.Request.Context())

	if err := h.service.AddMember(c.Request.Context(), userID, groupID, memberID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid group id", "INVALID_REQUEST"))
		return
	}
	memberID, err := parseUUID(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}
	userID, _ := services.UserIDFromContext(c.Request.Context())

	if err := h.service.RemoveMember(c.Request.Context(), userID, groupID, memberID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *GroupHandler) ListMembers(c *gin.Context) {
	groupID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid group id", "INVALID_REQUEST"))
		return
	}
	userID, _ := services.UserIDFromContext(c.Request.Context())

	members, err := h.service.ListMembers(c.Request.Context(), userID, groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"members": httpdto.NewMemberViews(members)}))
}
