package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signage_server/internal/events"
	apihttp "signage_server/internal/http"
	"signage_server/internal/repository"
	"signage_server/internal/services"
	"signage_server/pkg/colors"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var memory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx, memory)
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "Keep all data in memory instead of PostgreSQL (development only)")
	return cmd
}

func runServe(parent context.Context, cmdCtx *commandContext, memory bool) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	logger := cmdCtx.logger
	defer logger.Sync()

	colors.PrintBanner(version)

	var store repository.Store
	if memory {
		colors.PrintWarning("Using the in-memory store, data is lost on exit")
		store = repository.NewMemoryStore()
	} else {
		gormStore, closeDB, err := cmdCtx.openStore(true)
		if err != nil {
			return err
		}
		defer closeDB()
		store = gormStore
	}

	assetStore, localFiles, err := buildAssets(cfg)
	if err != nil {
		return err
	}

	jwtSecret := cfg.Auth.DeviceJWTSecret
	if jwtSecret == "" {
		jwtSecret = uuid.NewString()
		colors.PrintWarning("DEVICE_JWT_SECRET is not set, device tokens will not survive a restart")
	}

	hub := apihttp.NewHub(logger)
	publisher := events.Multi{hub}
	if stream := buildRedisStream(parent, cfg.Redis, logger); stream != nil {
		defer stream.Close()
		publisher = append(publisher, stream)
	}
	notifier, err := buildNotifier(parent, cfg.Firebase, logger)
	if err != nil {
		return err
	}

	catalog := services.NewCatalogService(store, assetStore, logger)
	resolver := services.NewResolver(store, catalog)
	deps := apihttp.Deps{
		Identity:     services.NewIdentityService(store, cfg.Auth.TokenTTL.Std(), logger),
		Catalog:      catalog,
		Schedules:    services.NewScheduleService(store, notifier, publisher, logger),
		CheckIns:     services.NewCheckInService(store, catalog, resolver, publisher, logger),
		DeviceTokens: services.NewDeviceTokenService(store, jwtSecret, cfg.Auth.DeviceJWTTTL.Std()),
		Hub:          hub,
		Files:        localFiles,
	}
	server := apihttp.NewServer(cfg.HTTP, deps, logger)

	colors.PrintSubHeader("Configuration")
	colors.PrintStats("Port", cfg.HTTP.Port)
	colors.PrintStats("Timezone", cfg.Timezone)
	colors.PrintStats("Asset backend", cfg.Assets.Backend)
	colors.PrintStats("Redis stream", cfg.Redis.Enabled())
	colors.PrintStats("Push notifications", cfg.Firebase.Enabled())
	colors.PrintStats("In-memory store", memory)
	server.PrintRoutes()

	sigCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	colors.PrintSuccess("Server stopped")
	return nil
}
