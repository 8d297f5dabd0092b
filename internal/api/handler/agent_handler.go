package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/apexquest/apexquest/internal/agent"
	"github.com/apexquest/apexquest/internal/ai"
	"github.com/apexquest/apexquest/internal/api/middleware"
	"github.com/apexquest/apexquest/pkg/response"
)

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

type moderateRequest struct {
	PostID     string `json:"post_id" binding:"required"`
	FlagReason string `json:"flag_reason" binding:"required"`
}

type escalatedRequest struct {
	PostID   string      `json:"post_id" binding:"required"`
	UserID   string      `json:"user_id" binding:"required"`
	Decision ai.Decision `json:"decision" binding:"required"`
}

// AskAgent answers a question in the persona matching the user's role.
// @Summary Ask the assistant
// @Tags agent
// @Accept json
// @Produce json
// @Param request body askRequest true "Question"
// @Success 200 {object} response.Response
// @Router /api/v1/agent/ask [post]
func (h *Handler) AskAgent(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	answer, err := h.agent.Ask(c.Request.Context(), user, req.Question)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"answer": answer})
}

// AgentUsage returns today's question count against the daily limit.
// @Summary Assistant usage
// @Tags agent
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/agent/usage [get]
func (h *Handler) AgentUsage(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	usage, err := h.agent.Usage(c.Request.Context(), user.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, usage)
}

// RunModeration runs the autonomous moderator pipeline on a flagged post.
// When the moderator escalates, the admin pipeline runs on the result and
// both reports are returned.
// @Summary Run autonomous moderation
// @Tags agent
// @Accept json
// @Produce json
// @Param request body moderateRequest true "Flagged post"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/staff/moderation/run [post]
func (h *Handler) RunModeration(c *gin.Context) {
	var req moderateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	actorID := middleware.Claims(c).UserID

	modReport, err := h.moderation.ModeratorPipeline(ctx, req.PostID, req.FlagReason, actorID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	result := gin.H{"moderator": modReport}
	if modReport.Decision.Action == ai.ActionEscalate || modReport.Decision.Action == ai.ActionBan {
		adminReport, err := h.moderation.AdminPipeline(ctx, modReport, actorID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		result["admin"] = adminReport
	}
	response.Success(c, result)
}

// RunEscalated runs the admin pipeline on an already-escalated case.
// @Summary Run escalated moderation
// @Tags agent
// @Accept json
// @Produce json
// @Param request body escalatedRequest true "Escalated case"
// @Success 200 {object} response.Response
// @Router /api/v1/staff/moderation/escalated [post]
func (h *Handler) RunEscalated(c *gin.Context) {
	var req escalatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	escalated := &agent.Report{
		AgentType: agent.TypeMod,
		PostID:    req.PostID,
		UserID:    req.UserID,
		Decision:  req.Decision,
	}
	report, err := h.moderation.AdminPipeline(c.Request.Context(), escalated, middleware.Claims(c).UserID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, report)
}

// ModerationReports lists recent moderation-pipeline reports.
// @Summary List moderation reports
// @Tags agent
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/staff/moderation/reports [get]
func (h *Handler) ModerationReports(c *gin.Context) {
	response.Success(c, h.moderation.Reports())
}

// AgentActivity lists recent agent credential checks.
// @Summary List agent activity
// @Tags agent
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/staff/moderation/activity [get]
func (h *Handler) AgentActivity(c *gin.Context) {
	response.Success(c, h.moderation.Activity())
}
