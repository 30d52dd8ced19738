package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"linkboard/internal/resolver"
	"linkboard/internal/response"
)

type CommentHandler struct {
	base
}

func NewCommentHandler(r *resolver.Resolver, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{base: newBase(r, log)}
}

// List handles GET /comments.
func (h *CommentHandler) List(c *gin.Context) {
	sel, ok := h.selection(c, "Comment")
	if !ok {
		return
	}

	comments, err := h.resolver.Query().AllComment(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := projectAll(c.Request.Context(), comments, sel, h.project.comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, out)
}

// Get handles GET /comments/:id.
func (h *CommentHandler) Get(c *gin.Context) {
	sel, ok := h.selection(c, "Comment")
	if !ok {
		return
	}

	comment, err := h.resolver.Query().UniqueComment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := projectOne(c.Request.Context(), comment, sel, h.project.comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, out)
}

type postCommentRequest struct {
	Body string `json:"body"`
}

// Create handles POST /links/:id/comments.
func (h *CommentHandler) Create(c *gin.Context) {
	var req postCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "request body must be a JSON object")
		return
	}
	sel, ok := h.selection(c, "Comment")
	if !ok {
		return
	}

	comment, err := h.resolver.Mutation().PostCommentOnLink(c.Request.Context(), c.Param("id"), req.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.project.comment(c.Request.Context(), comment, sel)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, out)
}
