package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"linkboard/internal/config"
	"linkboard/internal/db"
	"linkboard/internal/logger"
	"linkboard/internal/pubsub"
	"linkboard/internal/resolver"
	"linkboard/internal/router"
	"linkboard/internal/services"
	"linkboard/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway, closeStore, err := openStore(cfg.Database, logger.WithComponent(log, "store"))
	if err != nil {
		return err
	}
	defer closeStore()

	bus := pubsub.NewBroadcaster(cfg.Events.Buffer, logger.WithComponent(log, "pubsub"))
	auth := services.NewAuthService(cfg.Auth, gateway)
	res := resolver.New(resolver.Deps{
		Store:        gateway,
		Events:       bus,
		Tokens:       auth,
		PasswordCost: cfg.Auth.BcryptCost,
		Log:          logger.WithComponent(log, "resolver"),
	})

	gin.SetMode(cfg.Server.Mode)
	engine := router.New(router.Deps{
		Resolver: res,
		Auth:     auth,
		Health:   gateway,
		Log:      logger.WithComponent(log, "http"),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("driver", cfg.Database.Driver).Msg("linkboard server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("linkboard stopped")
	return nil
}

// openStore builds the gateway selected by cfg.Driver. The returned func
// releases it.
func openStore(cfg config.DatabaseConfig, log zerolog.Logger) (store.Gateway, func(), error) {
	if cfg.Driver == "memory" {
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return store.NewMemoryStore(), func() {}, nil
	}

	gdb, err := db.Open(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(gdb, log); err != nil {
			_ = db.Close(gdb)
			return nil, nil, err
		}
	}

	closeFn := func() {
		if err := db.Close(gdb); err != nil {
			log.Error().Err(err).Msg("closing database")
		}
	}
	return store.NewPostgresStore(gdb), closeFn, nil
}
