package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"linkboard/internal/resolver"
	"linkboard/internal/response"
)

type AuthHandler struct {
	base
}

func NewAuthHandler(r *resolver.Resolver, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{base: newBase(r, log)}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /signup.
func (h *AuthHandler) Register(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "request body must be a JSON object")
		return
	}

	payload, err := h.resolver.Mutation().Signup(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, payload)
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "request body must be a JSON object")
		return
	}

	payload, err := h.resolver.Mutation().Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, payload)
}
