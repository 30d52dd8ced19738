// Package resolver implements the query, mutation, subscription and relation
// resolvers of the link-sharing API.
//
// Entity-returning operations hand back plain models; related entities are
// only loaded when the caller asks for them through the relation resolvers
// (Link, Comment, Vote and User).
package resolver

import (
	"context"

	"github.com/rs/zerolog"

	"linkboard/internal/pubsub"
	"linkboard/internal/store"
)

// EventBus is the publish/subscribe dependency. *pubsub.Broadcaster implements it.
type EventBus interface {
	Publish(topic pubsub.Topic, ev pubsub.Event)
	Subscribe(ctx context.Context, topic pubsub.Topic) (<-chan pubsub.Event, func())
}

// TokenIssuer signs session credentials. *services.AuthService implements it.
type TokenIssuer interface {
	IssueToken(userID uint) (string, error)
}

// Deps are the collaborators a Resolver is built from.
type Deps struct {
	Store        store.Gateway
	Events       EventBus
	Tokens       TokenIssuer
	PasswordCost int
	Log          zerolog.Logger
}

// Resolver is the root every resolver group hangs off.
type Resolver struct {
	store        store.Gateway
	events       EventBus
	tokens       TokenIssuer
	passwordCost int
	log          zerolog.Logger
}

func New(deps Deps) *Resolver {
	return &Resolver{
		store:        deps.Store,
		events:       deps.Events,
		tokens:       deps.Tokens,
		passwordCost: deps.PasswordCost,
		log:          deps.Log,
	}
}

func (r *Resolver) Query() *QueryResolver               { return &QueryResolver{r} }
func (r *Resolver) Mutation() *MutationResolver         { return &MutationResolver{r} }
func (r *Resolver) Subscription() *SubscriptionResolver { return &SubscriptionResolver{r} }
func (r *Resolver) Link() *LinkResolver                 { return &LinkResolver{r} }
func (r *Resolver) Comment() *CommentResolver           { return &CommentResolver{r} }
func (r *Resolver) Vote() *VoteResolver                 { return &VoteResolver{r} }
func (r *Resolver) User() *UserResolver                 { return &UserResolver{r} }

type (
	QueryResolver        struct{ *Resolver }
	MutationResolver     struct{ *Resolver }
	SubscriptionResolver struct{ *Resolver }
	LinkResolver         struct{ *Resolver }
	CommentResolver      struct{ *Resolver }
	VoteResolver         struct{ *Resolver }
	UserResolver         struct{ *Resolver }
)
