package resolver

import (
	"context"

	"linkboard/internal/models"
)

type callerKey struct{}

// WithCaller attaches the resolved caller of a request to ctx. A nil user
// marks the request as anonymous.
func WithCaller(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, callerKey{}, user)
}

// CallerFrom returns the caller attached by WithCaller, or nil when the
// request is anonymous.
func CallerFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(callerKey{}).(*models.User)
	return user
}

func requireCaller(ctx context.Context) (*models.User, error) {
	user := CallerFrom(ctx)
	if user == nil {
		return nil, newError(ErrUnauthenticated, "Unauthenticated!")
	}
	return user, nil
}
