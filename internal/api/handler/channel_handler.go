package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/apexquest/apexquest/internal/api/middleware"
	"github.com/apexquest/apexquest/pkg/response"
)

// ListChannels lists every channel.
// @Summary List channels
// @Tags channels
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/channels [get]
func (h *Handler) ListChannels(c *gin.Context) {
	channels, err := h.channels.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, channels)
}

// ListMyChannels lists the channels the session user belongs to.
// @Summary List joined channels
// @Tags channels
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/channels/mine [get]
func (h *Handler) ListMyChannels(c *gin.Context) {
	channels, err := h.channels.ListForUser(c.Request.Context(), middleware.Claims(c).UserID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, channels)
}

// JoinChannel adds the session user to a channel. Joining twice is a no-op.
// @Summary Join a channel
// @Tags channels
// @Param id path string true "Channel ID"
// @Success 200 {object} response.Response
// @Router /api/v1/channels/{id}/join [post]
func (h *Handler) JoinChannel(c *gin.Context) {
	if err := h.channels.Join(c.Request.Context(), middleware.Claims(c).UserID, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// LeaveChannel removes the session user from a channel.
// @Summary Leave a channel
// @Tags channels
// @Param id path string true "Channel ID"
// @Success 200 {object} response.Response
// @Router /api/v1/channels/{id}/leave [post]
func (h *Handler) LeaveChannel(c *gin.Context) {
	if err := h.channels.Leave(c.Request.Context(), middleware.Claims(c).UserID, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

type createChannelRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
}

// CreateChannel creates a channel directly, bypassing the request queue.
// @Summary Create a channel
// @Tags channels
// @Accept json
// @Param request body createChannelRequest true "Channel"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/staff/channels [post]
func (h *Handler) CreateChannel(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ch, err := h.channels.Create(c.Request.Context(), req.Name, req.Description, req.Emoji, middleware.Claims(c).UserID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, ch)
}

// ListChannelPosts lists a channel's posts, newest first.
// @Summary List posts in a channel
// @Tags posts
// @Param id path string true "Channel ID"
// @Param limit query int false "Max posts" default(20)
// @Success 200 {object} response.Response
// @Router /api/v1/channels/{id}/posts [get]
func (h *Handler) ListChannelPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	posts, err := h.posts.ListByChannel(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, posts)
}
