// Package router wires handlers and middleware onto a gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"linkboard/internal/handlers"
	"linkboard/internal/middleware"
	"linkboard/internal/resolver"
)

// Deps are what the routes are built from.
type Deps struct {
	Resolver *resolver.Resolver
	Auth     middleware.Authenticator
	Health   handlers.Pinger
	Log      zerolog.Logger
}

// New returns an engine with the middleware chain and every route registered.
func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(deps.Log),
		middleware.Logging(deps.Log),
		middleware.Metrics(),
	)
	RegisterRoutes(r, deps)
	return r
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	log := deps.Log

	linkHandler := handlers.NewLinkHandler(deps.Resolver, log)
	commentHandler := handlers.NewCommentHandler(deps.Resolver, log)
	voteHandler := handlers.NewVoteHandler(deps.Resolver, log)
	userHandler := handlers.NewUserHandler(deps.Resolver, log)
	authHandler := handlers.NewAuthHandler(deps.Resolver, log)
	subscriptionHandler := handlers.NewSubscriptionHandler(deps.Resolver, log)
	healthHandler := handlers.NewHealthHandler(deps.Health, log)

	// Operational routes skip caller resolution.
	r.GET("/healthz", healthHandler.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/")
	api.Use(middleware.LoadCaller(deps.Auth, log))
	{
		api.GET("/links", linkHandler.List)
		api.GET("/links/:id", linkHandler.Get)
		api.POST("/links", linkHandler.Create)
		api.GET("/comments", commentHandler.List)
		api.GET("/comments/:id", commentHandler.Get)
		api.POST("/links/:id/comments", commentHandler.Create)
		api.POST("/links/:id/votes", voteHandler.Vote)

		api.GET("/me", userHandler.Me)
		api.GET("/users/:id", userHandler.Profile)

		api.POST("/signup", authHandler.Register)
		api.POST("/login", authHandler.Login)

		api.GET("/subscriptions/:topic", subscriptionHandler.Stream)
		api.GET("/subscriptions/:topic/ws", subscriptionHandler.Socket)
	}
}
