package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"linkboard/internal/resolver"
	"linkboard/internal/response"
)

type VoteHandler struct {
	base
}

func NewVoteHandler(r *resolver.Resolver, log zerolog.Logger) *VoteHandler {
	return &VoteHandler{base: newBase(r, log)}
}

// Vote handles POST /links/:id/votes. A repeated vote answers 409.
func (h *VoteHandler) Vote(c *gin.Context) {
	sel, ok := h.selection(c, "Vote")
	if !ok {
		return
	}

	vote, err := h.resolver.Mutation().Vote(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.project.vote(c.Request.Context(), vote, sel)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, out)
}
