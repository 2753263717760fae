package main

import (
	"context"
	"time"

	"signage_server/config"
	"signage_server/internal/assets"
	"signage_server/internal/events"
	"signage_server/internal/notify"

	"go.uber.org/zap"
)

// buildAssets returns the configured asset store, plus the local store when payloads
// are served by this process
func buildAssets(cfg *config.Config) (assets.Store, *assets.LocalStore, error) {
	if cfg.Assets.Backend == "remote" {
		return assets.NewRemoteStore(cfg.Assets.RemoteURL, cfg.Assets.RemoteToken), nil, nil
	}
	local, err := assets.NewLocalStore(cfg.Assets.Dir, cfg.Assets.BaseURL)
	if err != nil {
		return nil, nil, err
	}
	return local, local, nil
}

// buildRedisStream connects the optional check-in stream. An unreachable Redis is
// reported but not fatal: publishing is best effort.
func buildRedisStream(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *events.RedisStream {
	if !cfg.Enabled() {
		return nil
	}
	stream := events.NewRedisStream(events.NewRedisClient(cfg.Addr, cfg.Password, cfg.DB), cfg.Stream, cfg.MaxLen)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := stream.Ping(pingCtx); err != nil {
		logger.Warn("redis is not reachable, check-in events may be dropped",
			zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("streaming check-in events to redis", zap.String("addr", cfg.Addr), zap.String("stream", cfg.Stream))
	}
	return stream
}

// buildNotifier returns the FCM notifier when Firebase is configured, otherwise a log-only one
func buildNotifier(ctx context.Context, cfg config.FirebaseConfig, logger *zap.Logger) (notify.Notifier, error) {
	if !cfg.Enabled() {
		logger.Info("firebase is not configured, schedule changes are only logged")
		return notify.LogNotifier{Logger: logger}, nil
	}
	fcm, err := notify.NewFCMNotifier(ctx, cfg.CredentialsFile, cfg.ProjectID, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("firebase messaging initialized", zap.String("project_id", cfg.ProjectID))
	return fcm, nil
}
