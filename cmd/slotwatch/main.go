package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/slotwatch/internal/app"
	"github.com/hamed0406/slotwatch/internal/config"
	"github.com/hamed0406/slotwatch/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	watch := flag.Duration("watch", cfg.WatchInterval, "poll repeatedly at this interval (0 runs once)")
	states := flag.Bool("states", false, "print CoWIN state ids and exit")
	districts := flag.Int("districts", 0, "print district ids of this state and exit")
	flag.Parse()

	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Print(err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *states:
		return printStates(ctx, cfg, logger)
	case *districts > 0:
		return printDistricts(ctx, cfg, logger, *districts)
	}

	if _, _, ok := cfg.SearchKey(); !ok {
		logger.Warn("no_search_key", zap.String("hint", "set ZIPCODE or DISTRICT_ID"))
		return 0
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup_failed", zap.Error(err))
		return 1
	}
	defer a.Close()

	if *watch > 0 {
		if err := a.Poller.Watch(ctx, *watch); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("watch_failed", zap.Error(err))
			return 1
		}
		return 0
	}

	out, err := a.Poller.RunOnce(ctx)
	if err != nil {
		logger.Error("run_failed", zap.String("run_id", out.RunID), zap.Error(err))
		return 1
	}
	for _, rep := range out.Reports {
		if rep.Err != nil {
			logger.Warn("delivery_errors", zap.Int("bracket", int(rep.Bracket)), zap.Error(rep.Err))
		}
	}
	return 0
}

func printStates(ctx context.Context, cfg config.Config, logger *zap.Logger) int {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	states, err := app.NewClient(cfg, logger).States(ctx)
	if err != nil {
		logger.Error("states_failed", zap.Error(err))
		return 1
	}
	sort.Slice(states, func(i, j int) bool { return states[i].StateID < states[j].StateID })
	for _, s := range states {
		fmt.Printf("%d\t%s\n", s.StateID, s.StateName)
	}
	return 0
}

func printDistricts(ctx context.Context, cfg config.Config, logger *zap.Logger, stateID int) int {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	ds, err := app.NewClient(cfg, logger).Districts(ctx, stateID)
	if err != nil {
		logger.Error("districts_failed", zap.Int("state_id", stateID), zap.Error(err))
		return 1
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].DistrictID < ds[j].DistrictID })
	for _, d := range ds {
		fmt.Printf("%d\t%s\n", d.DistrictID, d.DistrictName)
	}
	return 0
}
