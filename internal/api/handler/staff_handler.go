package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/apexquest/apexquest/internal/api/middleware"
	"github.com/apexquest/apexquest/pkg/response"
)

type warnRequest struct {
	UserID string `json:"user_id" binding:"required"`
	PostID string `json:"post_id"`
	Reason string `json:"reason" binding:"required"`
}

type banRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
	Permanent bool   `json:"permanent"`
}

type announceRequest struct {
	Message string `json:"message" binding:"required"`
}

type staffMessageRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// WarnUser issues a warning; the third active warning bans automatically.
// @Summary Warn a user
// @Tags staff
// @Accept json
// @Param request body warnRequest true "Warning"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/staff/warn [post]
func (h *Handler) WarnUser(c *gin.Context) {
	var req warnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	level, err := h.staff.WarnUser(c.Request.Context(), req.UserID, middleware.Claims(c).UserID, req.PostID, req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"level": level})
}

// BanUser bans a user for a day, or permanently. Admin only.
// @Summary Ban a user
// @Tags staff
// @Accept json
// @Param request body banRequest true "Ban"
// @Success 200 {object} response.Response
// @Router /api/v1/staff/ban [post]
func (h *Handler) BanUser(c *gin.Context) {
	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.staff.BanUser(c.Request.Context(), req.UserID, middleware.Claims(c).UserID, req.Reason, req.Permanent); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// UnbanUser lifts a user's ban. Admin only.
// @Summary Unban a user
// @Tags staff
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Router /api/v1/staff/users/{id}/unban [post]
func (h *Handler) UnbanUser(c *gin.Context) {
	if err := h.staff.UnbanUser(c.Request.Context(), c.Param("id"), middleware.Claims(c).UserID); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// DismissFlag clears a flag from a post or reply.
// @Summary Dismiss a flag
// @Tags staff
// @Param id path string true "Target ID"
// @Success 200 {object} response.Response
// @Router /api/v1/staff/flags/{id}/dismiss [post]
func (h *Handler) DismissFlag(c *gin.Context) {
	if err := h.staff.DismissFlag(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// FlaggedContent lists flagged posts and replies for review.
// @Summary Flagged content queue
// @Tags staff
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/staff/flagged [get]
func (h *Handler) FlaggedContent(c *gin.Context) {
	items, err := h.staff.FlaggedContent(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, items)
}

// Analytics returns per-channel engagement numbers.
// @Summary Channel analytics
// @Tags staff
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/staff/analytics [get]
func (h *Handler) Analytics(c *gin.Context) {
	analytics, err := h.staff.Analytics(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, analytics)
}

// Announce queues a platform-wide notification.
// @Summary Platform announcement
// @Tags staff
// @Accept json
// @Param request body announceRequest true "Message"
// @Success 200 {object} response.Response
// @Router /api/v1/staff/announce [post]
func (h *Handler) Announce(c *gin.Context) {
	var req announceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	queued, err := h.staff.Announce(c.Request.Context(), middleware.Claims(c).UserID, req.Message)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"queued": queued})
}

// StaffMessage sends a direct staff notification to one user.
// @Summary Message a user
// @Tags staff
// @Accept json
// @Param request body staffMessageRequest true "Message"
// @Success 200 {object} response.Response
// @Router /api/v1/staff/message [post]
func (h *Handler) StaffMessage(c *gin.Context) {
	var req staffMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.staff.StaffMessage(c.Request.Context(), req.UserID, req.Message); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// UserHistory returns a user's active warnings and ban count.
// @Summary User moderation history
// @Tags staff
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Router /api/v1/staff/users/{id}/history [get]
func (h *Handler) UserHistory(c *gin.Context) {
	history, err := h.staff.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, history)
}

// ListStaff returns the moderator and admin accounts.
// @Summary List staff accounts
// @Tags staff
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/staff [get]
func (h *Handler) ListStaff(c *gin.Context) {
	staff, err := h.users.ListStaff(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, staff)
}
