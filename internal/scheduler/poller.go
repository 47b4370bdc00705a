package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/slotwatch/internal/cowin"
	"github.com/hamed0406/slotwatch/internal/domain"
	"github.com/hamed0406/slotwatch/internal/slots"
)

// Notifier is satisfied by *Dispatcher.
type Notifier interface {
	Notify(ctx context.Context, sessions []domain.Session) (Report, error)
}

type PollerConfig struct {
	Kind      string // slots.ByPincode or slots.ByDistrict
	Key       string
	Whitelist []int
	Check18   bool
	Check45   bool
	Weeks     int // calendar pages per run, each covers 7 days
}

type Poller struct {
	Logger   *zap.Logger
	Source   slots.Source
	Notifier Notifier
	Config   PollerConfig
	Now      func() time.Time
}

func NewPoller(logger *zap.Logger, src slots.Source, n Notifier, cfg PollerConfig) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Weeks < 1 {
		cfg.Weeks = 1
	}
	return &Poller{
		Logger:   logger,
		Source:   src,
		Notifier: n,
		Config:   cfg,
		Now:      time.Now,
	}
}

// Outcome summarises one run.
type Outcome struct {
	RunID   string
	Pages   int
	Found   int // eligible sessions across scanned pages
	State   domain.RunState
	Done    bool // both brackets notified, scanning stopped early
	Reports []Report
}

func (p *Poller) checks(b domain.Bracket) bool {
	switch b {
	case domain.Bracket18:
		return p.Config.Check18
	case domain.Bracket45:
		return p.Config.Check45
	}
	return false
}

// RunOnce fetches, filters and notifies with a fresh RunState. An upstream
// error aborts the run and is returned.
func (p *Poller) RunOnce(ctx context.Context) (Outcome, error) {
	out := Outcome{RunID: uuid.NewString()}
	log := p.Logger.With(zap.String("run_id", out.RunID))
	log.Info("run_start",
		zap.String("kind", p.Config.Kind),
		zap.String("key", p.Config.Key),
		zap.Bool("check_18", p.Config.Check18),
		zap.Bool("check_45", p.Config.Check45),
	)

	for week := 0; week < p.Config.Weeks; week++ {
		date := cowin.FormatDate(p.Now().AddDate(0, 0, 7*week))
		resp, err := slots.Fetch(ctx, p.Source, p.Config.Kind, p.Config.Key, date)
		if err != nil {
			return out, fmt.Errorf("fetch %s %s for %s: %w", p.Config.Kind, p.Config.Key, date, err)
		}
		out.Pages++
		if resp == nil || len(resp.Centers) == 0 {
			log.Info("no_centers_found", zap.String("date", date))
			break
		}

		eligible := slots.Eligible(resp, p.Config.Whitelist)
		out.Found += len(eligible)
		buckets := slots.Partition(eligible)

		for _, b := range domain.Brackets {
			if !p.checks(b) || out.State.Notified(b) || len(buckets[b]) == 0 {
				continue
			}
			rep, err := p.Notifier.Notify(ctx, buckets[b])
			if err != nil {
				return out, err
			}
			out.Reports = append(out.Reports, rep)
			out.State.Mark(b)
		}
		if out.State.Done() {
			out.Done = true
			log.Info("all_brackets_notified", zap.Int("pages", out.Pages))
			break
		}
	}

	if out.Found == 0 {
		log.Info("no_slots_available", zap.Int("pages", out.Pages))
	}
	log.Info("run_done",
		zap.Int("pages", out.Pages),
		zap.Int("found", out.Found),
		zap.Int("notifications", len(out.Reports)),
	)
	return out, nil
}

// Watch runs RunOnce every interval until ctx is cancelled. Runs never
// overlap, and a failed run is logged and retried on the next tick.
func (p *Poller) Watch(ctx context.Context, every time.Duration) error {
	secs := int(every / time.Second)
	if secs < 1 {
		secs = 1
	}
	s := gocron.NewScheduler(time.UTC)
	_, err := s.Every(secs).Seconds().SingletonMode().Do(func() {
		if _, err := p.RunOnce(ctx); err != nil {
			p.Logger.Warn("run_failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule poller: %w", err)
	}
	p.Logger.Info("watch_started", zap.Duration("every", every))
	s.StartAsync()
	<-ctx.Done()
	s.Stop()
	p.Logger.Info("watch_stopped")
	return ctx.Err()
}
