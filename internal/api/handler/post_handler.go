package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/apexquest/apexquest/internal/api/middleware"
	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/pkg/response"
)

type createPostRequest struct {
	ChannelID string `json:"channel_id" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content" binding:"required"`
	Tag       string `json:"tag" binding:"required,posttag"`
}

type createReplyRequest struct {
	Content       string  `json:"content" binding:"required"`
	ParentReplyID *string `json:"parent_reply_id"`
}

type flagRequest struct {
	Reason string `json:"reason"`
}

// CreatePost creates a post in a channel.
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body createPostRequest true "Post"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.posts.Create(c.Request.Context(), middleware.Claims(c).UserID,
		req.ChannelID, req.Title, req.Content, model.PostTag(req.Tag))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, post)
}

// GetPost returns one post with author and channel.
// @Summary Get a post
// @Tags posts
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, post)
}

// DeletePost deletes a post. Authors delete their own; staff delete any.
// @Summary Delete a post
// @Tags posts
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ToggleLike likes a post, or removes the like when one exists.
// @Summary Toggle a like
// @Tags posts
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id}/like [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	result, err := h.posts.ToggleLike(c.Request.Context(), middleware.Claims(c).UserID, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// FlagPost reports a post for staff review.
// @Summary Flag a post
// @Tags posts
// @Accept json
// @Param id path string true "Post ID"
// @Param request body flagRequest false "Reason"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/posts/{id}/flag [post]
func (h *Handler) FlagPost(c *gin.Context) {
	var req flagRequest
	_ = c.ShouldBindJSON(&req)
	if err := h.posts.Flag(c.Request.Context(), c.Param("id"), middleware.Claims(c).UserID, req.Reason); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListReplies returns a post's reply tree.
// @Summary List replies
// @Tags posts
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id}/replies [get]
func (h *Handler) ListReplies(c *gin.Context) {
	replies, err := h.posts.ListReplies(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, replies)
}

// CreateReply replies to a post or to a top-level reply.
// @Summary Create a reply
// @Tags posts
// @Accept json
// @Param id path string true "Post ID"
// @Param request body createReplyRequest true "Reply"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/replies [post]
func (h *Handler) CreateReply(c *gin.Context) {
	var req createReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	reply, err := h.posts.CreateReply(c.Request.Context(), middleware.Claims(c).UserID,
		c.Param("id"), req.ParentReplyID, req.Content)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, reply)
}

// DeleteReply deletes a reply. Authors delete their own; staff delete any.
// @Summary Delete a reply
// @Tags posts
// @Param id path string true "Reply ID"
// @Success 200 {object} response.Response
// @Router /api/v1/replies/{id} [delete]
func (h *Handler) DeleteReply(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.posts.DeleteReply(c.Request.Context(), user, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// FlagReply reports a reply for staff review.
// @Summary Flag a reply
// @Tags posts
// @Accept json
// @Param id path string true "Reply ID"
// @Param request body flagRequest false "Reason"
// @Success 200 {object} response.Response
// @Router /api/v1/replies/{id}/flag [post]
func (h *Handler) FlagReply(c *gin.Context) {
	var req flagRequest
	_ = c.ShouldBindJSON(&req)
	if err := h.posts.FlagReply(c.Request.Context(), c.Param("id"), middleware.Claims(c).UserID, req.Reason); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
