package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"linkboard/internal/models"
	"linkboard/internal/resolver"
	"linkboard/internal/response"
	"linkboard/internal/services"
)

const CallerKey = "caller"

// Authenticator resolves the Authorization header of a request.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*models.User, error)
}

// LoadCaller resolves the caller of every request and attaches it to the
// request context. A token that does not verify leaves the request anonymous;
// it never aborts it.
func LoadCaller(auth Authenticator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		switch {
		case errors.Is(err, services.ErrInvalidCredential):
			log.Debug().
				Err(err).
				Str("request_id", GetRequestID(c)).
				Msg("ignoring invalid credential")
			user = nil
		case err != nil:
			log.Error().
				Err(err).
				Str("request_id", GetRequestID(c)).
				Msg("resolving caller")
			response.InternalError(c, GetRequestID(c))
			return
		}

		if user != nil {
			c.Set(CallerKey, user)
		}
		c.Request = c.Request.WithContext(resolver.WithCaller(c.Request.Context(), user))
		c.Next()
	}
}

// CurrentUser returns the caller set by LoadCaller, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CallerKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
