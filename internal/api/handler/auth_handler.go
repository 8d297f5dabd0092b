package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/apexquest/apexquest/internal/service"
	"github.com/apexquest/apexquest/pkg/response"
)

type loginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// Login exchanges a provider ID token for a session token.
// @Summary Log in with an identity provider ID token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "ID token"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()

	claims, err := h.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		response.Unauthorized(c, "identity verification failed")
		return
	}
	user, err := h.users.UpsertFromIdentity(ctx, service.IdentityProfile{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	token, err := h.sessions.Issue(user)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	// A banned user can still log in and read; the flag lets the client
	// explain why writes are rejected.
	ban, err := h.staff.IsBanned(ctx, user.Email)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token, "user": user, "banned": ban != nil, "ban": ban})
}

// Me returns the session's user row.
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	response.Success(c, user)
}
