package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/apexquest/apexquest/internal/api/middleware"
	"github.com/apexquest/apexquest/internal/auth"
	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/internal/realtime"
	"github.com/apexquest/apexquest/internal/service"
	"github.com/apexquest/apexquest/pkg/response"
)

// Handler carries every service the HTTP layer exposes.
type Handler struct {
	users      service.UserService
	channels   service.ChannelService
	posts      service.PostService
	notifs     service.NotificationService
	staff      service.StaffService
	requests   service.ChannelRequestService
	agent      service.AgentService
	moderation service.ModerationService
	sessions   *auth.SessionManager
	verifier   auth.Verifier
	hub        *realtime.Hub
}

func New(users service.UserService, channels service.ChannelService, posts service.PostService, notifs service.NotificationService, staff service.StaffService, requests service.ChannelRequestService, agent service.AgentService, moderation service.ModerationService, sessions *auth.SessionManager, verifier auth.Verifier, hub *realtime.Hub) *Handler {
	return &Handler{
		users: users, channels: channels, posts: posts, notifs: notifs,
		staff: staff, requests: requests, agent: agent, moderation: moderation,
		sessions: sessions, verifier: verifier, hub: hub,
	}
}

// currentUser loads the full user row for the session. Handlers that only
// need the ID should use middleware.Claims directly.
func (h *Handler) currentUser(c *gin.Context) (*model.User, bool) {
	claims := middleware.Claims(c)
	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Unauthorized(c, "unknown session user")
		return nil, false
	}
	return user, true
}

// writeServiceError maps service errors onto the response envelope.
func writeServiceError(c *gin.Context, err error) {
	var banned *service.BannedError
	var invalid *service.ValidationError
	switch {
	case errors.As(err, &invalid):
		response.BadRequest(c, invalid.Error())
	case errors.As(err, &banned):
		response.Forbidden(c, banned.Error())
	case errors.Is(err, service.ErrReplyTooDeep):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotAllowed),
		errors.Is(err, service.ErrAgentNotAuthorized):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrAlreadyFlagged),
		errors.Is(err, service.ErrPendingRequestExists),
		errors.Is(err, service.ErrRequestNotPending):
		response.Conflict(c, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFound(c, "not found")
	default:
		response.InternalError(c, err)
	}
}
