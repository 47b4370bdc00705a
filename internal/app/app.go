// Package app wires config into the concrete stores, clients and the poller
// shared by the slotwatch and api commands.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/slotwatch/internal/config"
	"github.com/hamed0406/slotwatch/internal/cowin"
	"github.com/hamed0406/slotwatch/internal/notify"
	"github.com/hamed0406/slotwatch/internal/repo"
	"github.com/hamed0406/slotwatch/internal/repo/file"
	"github.com/hamed0406/slotwatch/internal/repo/postgres"
	"github.com/hamed0406/slotwatch/internal/scheduler"
)

type App struct {
	Store  repo.SendLogStore
	Client *cowin.Client
	Poller *scheduler.Poller // nil when no search key is configured

	closers []func()
}

// OpenStore returns the postgres store when DATABASE_URL is set, the JSON
// file store otherwise.
func OpenStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.SendLogStore, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("sendlog_store", zap.String("kind", "file"), zap.String("path", cfg.SendLogPath))
		return file.New(cfg.SendLogPath), func() {}, nil
	}
	pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	logger.Info("sendlog_store", zap.String("kind", "postgres"))
	return pg, pg.Close, nil
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{
		Store:   store,
		Client:  NewClient(cfg, logger),
		closers: []func(){closeStore},
	}

	kind, key, ok := cfg.SearchKey()
	if !ok {
		return a, nil
	}
	d := scheduler.NewDispatcher(logger, store, notify.NewSlack(logger), scheduler.DispatcherConfig{
		SlackToken:       cfg.SlackAccessToken,
		ChannelID:        cfg.SlackChannelID,
		UserID:           cfg.SlackUserID,
		PreferredCenters: cfg.PreferredCenters,
		PreferredToken:   cfg.PreferredSlackToken,
		SendLogTTL:       cfg.SendLogTTL,
	})
	a.Poller = scheduler.NewPoller(logger, a.Client, d, scheduler.PollerConfig{
		Kind:      kind,
		Key:       key,
		Whitelist: cfg.CenterWhitelist,
		Check18:   cfg.Check18,
		Check45:   cfg.Check45,
		Weeks:     cfg.ScanWeeks,
	})
	return a, nil
}

func NewClient(cfg config.Config, logger *zap.Logger) *cowin.Client {
	return cowin.NewClient(cfg.BaseURL, cfg.HTTPTimeout, cfg.RetryAttempts, cfg.RetryBackoff, cfg.RequestsPerMin, logger)
}

func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
}
