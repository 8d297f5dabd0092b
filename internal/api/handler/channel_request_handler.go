package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/apexquest/apexquest/internal/api/middleware"
	"github.com/apexquest/apexquest/pkg/response"
)

type channelRequestBody struct {
	ChannelName string `json:"channel_name"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

type adminResponseBody struct {
	Response string `json:"response" binding:"required"`
}

// CreateChannelRequest submits a new channel request.
// @Summary Request a new channel
// @Tags channel-requests
// @Accept json
// @Param request body channelRequestBody true "Request"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/channel-requests [post]
func (h *Handler) CreateChannelRequest(c *gin.Context) {
	var req channelRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	created, err := h.requests.Create(c.Request.Context(), middleware.Claims(c).UserID,
		req.ChannelName, req.Description, req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, created)
}

// ListMyChannelRequests lists the session user's channel requests.
// @Summary List own channel requests
// @Tags channel-requests
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/channel-requests/mine [get]
func (h *Handler) ListMyChannelRequests(c *gin.Context) {
	reqs, err := h.requests.ListForUser(c.Request.Context(), middleware.Claims(c).UserID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, reqs)
}

// ListPendingChannelRequests lists the admin review queue.
// @Summary List pending channel requests
// @Tags channel-requests
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/staff/channel-requests [get]
func (h *Handler) ListPendingChannelRequests(c *gin.Context) {
	reqs, err := h.requests.ListPending(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, reqs)
}

// ApproveChannelRequest approves a request and creates the channel.
// @Summary Approve a channel request
// @Tags channel-requests
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Router /api/v1/staff/channel-requests/{id}/approve [post]
func (h *Handler) ApproveChannelRequest(c *gin.Context) {
	channel, err := h.requests.Approve(c.Request.Context(), c.Param("id"), middleware.Claims(c).UserID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, channel)
}

// RejectChannelRequest rejects a request with a reason.
// @Summary Reject a channel request
// @Tags channel-requests
// @Accept json
// @Param id path string true "Request ID"
// @Param request body adminResponseBody true "Reason"
// @Success 200 {object} response.Response
// @Router /api/v1/staff/channel-requests/{id}/reject [post]
func (h *Handler) RejectChannelRequest(c *gin.Context) {
	var req adminResponseBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.requests.Reject(c.Request.Context(), c.Param("id"), req.Response); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ChannelRequestNeedsInfo sends a request back to the user with a question.
// @Summary Ask for more information
// @Tags channel-requests
// @Accept json
// @Param id path string true "Request ID"
// @Param request body adminResponseBody true "Question"
// @Success 200 {object} response.Response
// @Router /api/v1/staff/channel-requests/{id}/needs-info [post]
func (h *Handler) ChannelRequestNeedsInfo(c *gin.Context) {
	var req adminResponseBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.requests.NeedsInfo(c.Request.Context(), c.Param("id"), req.Response); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// UpdateChannelRequest revises the session user's own request.
// @Summary Update own channel request
// @Tags channel-requests
// @Accept json
// @Param id path string true "Request ID"
// @Param request body channelRequestBody true "Fields"
// @Success 200 {object} response.Response
// @Router /api/v1/channel-requests/{id} [patch]
func (h *Handler) UpdateChannelRequest(c *gin.Context) {
	var req channelRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	updated, err := h.requests.Update(c.Request.Context(), c.Param("id"), middleware.Claims(c).UserID,
		req.ChannelName, req.Description, req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, updated)
}

// CancelChannelRequest withdraws the session user's own request.
// @Summary Cancel own channel request
// @Tags channel-requests
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Router /api/v1/channel-requests/{id} [delete]
func (h *Handler) CancelChannelRequest(c *gin.Context) {
	if err := h.requests.Cancel(c.Request.Context(), c.Param("id"), middleware.Claims(c).UserID); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
