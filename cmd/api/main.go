package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/slotwatch/internal/app"
	"github.com/hamed0406/slotwatch/internal/config"
	"github.com/hamed0406/slotwatch/internal/httpapi"
	"github.com/hamed0406/slotwatch/internal/httpapi/middleware"
	"github.com/hamed0406/slotwatch/internal/logging"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup_failed", zap.Error(err))
	}
	defer a.Close()

	var runner httpapi.Runner
	if a.Poller != nil {
		runner = a.Poller
	} else {
		logger.Warn("no_search_key", zap.String("hint", "POST /api/run is disabled until ZIPCODE or DISTRICT_ID is set"))
	}
	if len(cfg.AdminAPIKeys) == 0 {
		logger.Warn("no_admin_keys", zap.String("hint", "POST /api/run is refused until ADMIN_API_KEYS is set"))
	}
	api := httpapi.NewServer(logger, a.Store, a.Client, runner, httpapi.Options{
		Keys:           middleware.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys},
		AllowedOrigins: cfg.AllowedOrigins,
		RatePerMin:     cfg.APIRatePerMin,
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: api.Router()}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_failed", zap.Error(err))
	}
}
