package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"linkboard/internal/resolver"
	"linkboard/internal/response"
)

type LinkHandler struct {
	base
}

func NewLinkHandler(r *resolver.Resolver, log zerolog.Logger) *LinkHandler {
	return &LinkHandler{base: newBase(r, log)}
}

// List handles GET /links?filter=&skip=&take=&orderBy=field:dir&include=
func (h *LinkHandler) List(c *gin.Context) {
	args := resolver.AllLinkArgs{}
	if filter, ok := c.GetQuery("filter"); ok {
		args.FilterNeedle = &filter
	}

	var ok bool
	if args.Skip, ok = optionalInt(c, "skip"); !ok {
		h.badRequest(c, "'skip' must be an integer")
		return
	}
	if args.Take, ok = optionalInt(c, "take"); !ok {
		h.badRequest(c, "'take' must be an integer")
		return
	}
	if orderBy := c.Query("orderBy"); orderBy != "" {
		field, direction, _ := strings.Cut(orderBy, ":")
		args.OrderBy = &resolver.LinkOrderByInput{Field: field, Direction: direction}
	}

	sel, ok := h.selection(c, "Link")
	if !ok {
		return
	}

	links, err := h.resolver.Query().AllLink(c.Request.Context(), args)
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := projectAll(c.Request.Context(), links, sel, h.project.link)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, out)
}

// Get handles GET /links/:id. An unknown id answers with null data.
func (h *LinkHandler) Get(c *gin.Context) {
	sel, ok := h.selection(c, "Link")
	if !ok {
		return
	}

	link, err := h.resolver.Query().UniqueLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := projectOne(c.Request.Context(), link, sel, h.project.link)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, out)
}

type postLinkRequest struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Create handles POST /links.
func (h *LinkHandler) Create(c *gin.Context) {
	var req postLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "request body must be a JSON object")
		return
	}
	sel, ok := h.selection(c, "Link")
	if !ok {
		return
	}

	link, err := h.resolver.Mutation().PostLink(c.Request.Context(), req.URL, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.project.link(c.Request.Context(), link, sel)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, out)
}
