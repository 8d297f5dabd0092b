package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/apexquest/apexquest/internal/api/middleware"
	"github.com/apexquest/apexquest/pkg/response"
)

type updateProfileRequest struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// UpdateProfile updates the session user's display name and bio.
// @Summary Update own profile
// @Tags users
// @Accept json
// @Param request body updateProfileRequest true "Profile fields"
// @Success 200 {object} response.Response
// @Router /api/v1/me [patch]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.users.UpdateProfile(c.Request.Context(), middleware.Claims(c).UserID, req.Name, req.Bio); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListUsers lists every user with ban status. Staff only.
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/staff/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.ListAll(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, users)
}

// ListNotifications returns the session user's notifications.
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	notifs, err := h.notifs.ListForUser(c.Request.Context(), middleware.Claims(c).UserID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, notifs)
}

// UnreadCount returns the unread-notification badge count.
// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/unread [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	count, err := h.notifs.UnreadCount(c.Request.Context(), middleware.Claims(c).UserID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}

// MarkNotificationRead marks one notification read.
// @Summary Mark notification read
// @Tags notifications
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Response
// @Router /api/v1/notifications/{id}/read [post]
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.notifs.MarkRead(c.Request.Context(), middleware.Claims(c).UserID, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// Websocket upgrades the connection for realtime pushes.
// @Summary Realtime event stream
// @Tags notifications
// @Router /api/v1/ws [get]
func (h *Handler) Websocket(c *gin.Context) {
	if err := h.hub.Serve(c.Writer, c.Request, middleware.Claims(c).UserID); err != nil {
		response.InternalError(c, err)
	}
}
