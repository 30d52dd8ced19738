package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"linkboard/internal/resolver"
	"linkboard/internal/response"
)

type UserHandler struct {
	base
}

func NewUserHandler(r *resolver.Resolver, log zerolog.Logger) *UserHandler {
	return &UserHandler{base: newBase(r, log)}
}

// Me handles GET /me.
func (h *UserHandler) Me(c *gin.Context) {
	sel, ok := h.selection(c, "User")
	if !ok {
		return
	}

	user, err := h.resolver.Query().Me(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.project.user(c.Request.Context(), user, sel)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, out)
}

// Profile handles GET /users/:id. Only signed-in callers may look users up.
func (h *UserHandler) Profile(c *gin.Context) {
	sel, ok := h.selection(c, "User")
	if !ok {
		return
	}

	user, err := h.resolver.Query().GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := projectOne(c.Request.Context(), user, sel, h.project.user)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, out)
}
