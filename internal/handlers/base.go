// Package handlers exposes the resolvers over HTTP. Every handler answers
// with the envelopes of package response.
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"linkboard/internal/middleware"
	"linkboard/internal/resolver"
	"linkboard/internal/response"
)

// base is shared by every handler.
type base struct {
	resolver *resolver.Resolver
	project  projector
	log      zerolog.Logger
}

func newBase(r *resolver.Resolver, log zerolog.Logger) base {
	return base{resolver: r, project: projector{r: r}, log: log}
}

// fail reports err to the client. Errors that are not one of the resolver's
// kinds are logged here, since the client only sees a generic message.
func (b base) fail(c *gin.Context, err error) {
	requestID := middleware.GetRequestID(c)
	if _, _, known := response.Classify(err); !known {
		b.log.Error().
			Err(err).
			Str("request_id", requestID).
			Str("path", c.FullPath()).
			Msg("request failed")
	}
	_ = c.Error(err)
	response.FromError(c, err, requestID)
}

func (b base) badRequest(c *gin.Context, message string) {
	response.BadRequest(c, message, middleware.GetRequestID(c))
}

// selection parses the include parameter for the given root type.
func (b base) selection(c *gin.Context, root string) (Selection, bool) {
	sel, err := ParseSelection(root, c.Query("include"))
	if err != nil {
		b.fail(c, err)
		return nil, false
	}
	if len(sel) > 0 {
		b.log.Debug().
			Str("request_id", middleware.GetRequestID(c)).
			Str("root", root).
			Str("include", sel.String()).
			Msg("resolving relations")
	}
	return sel, true
}

// optionalInt reads an integer query parameter. A missing parameter yields nil.
// A value too large for int is clamped to the nearest bound, so range checks
// downstream still reject it as out of range.
func optionalInt(c *gin.Context, name string) (*int, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 0)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, false
	}
	n := int(v)
	return &n, true
}
