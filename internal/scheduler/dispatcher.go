package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/slotwatch/internal/domain"
	"github.com/hamed0406/slotwatch/internal/notify"
	"github.com/hamed0406/slotwatch/internal/repo"
	"github.com/hamed0406/slotwatch/internal/slots"
)

type DispatcherConfig struct {
	SlackToken       string
	ChannelID        string
	UserID           string
	PreferredCenters []int
	PreferredToken   string
	SendLogTTL       time.Duration // prune send-log entries older than this before saving
}

// Dispatcher turns one bracket's sessions into Slack messages, holding
// back sessions that were already announced too often.
type Dispatcher struct {
	logger *zap.Logger
	store  repo.SendLogStore
	sender notify.Sender
	cfg    DispatcherConfig
	now    func() time.Time
}

func NewDispatcher(logger *zap.Logger, store repo.SendLogStore, sender notify.Sender, cfg DispatcherConfig) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		logger: logger,
		store:  store,
		sender: sender,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Report describes one Notify call.
type Report struct {
	Bracket        domain.Bracket
	Skipped        string // why nothing was sent, empty when a send happened
	Lines          int
	PreferredLines int
	Suppressed     int
	Primary        notify.Delivery
	Preferred      notify.Delivery
	Persisted      bool
	Err            error // delivery failures, informational only
}

const (
	SkipNoSessions = "no_sessions"
	SkipNoToken    = "no_slack_token"
	SkipAllLimited = "all_rate_limited"
)

func Header(b domain.Bracket) string {
	return fmt.Sprintf("Vaccination slots for age %d plus are available in following centers", int(b))
}

func Summary(b domain.Bracket) string {
	return fmt.Sprintf("Vaccination slots for age %d plus are open!", int(b))
}

func Line(s domain.Session) string {
	return fmt.Sprintf("%s(%d) -> %d -> %s -> %s", s.CenterName, s.Pincode, s.AvailableCapacity, s.Vaccine, s.Date)
}

// Notify sends sessions, which must share a bracket (read from the first
// one). Delivery failures are logged and reported but do not fail the
// call; only send-log load/save errors are returned.
func (d *Dispatcher) Notify(ctx context.Context, sessions []domain.Session) (Report, error) {
	if len(sessions) == 0 {
		return Report{Skipped: SkipNoSessions}, nil
	}
	bracket := sessions[0].Bracket()
	rep := Report{Bracket: bracket}
	log := d.logger.With(zap.Int("bracket", int(bracket)))

	if d.cfg.SlackToken == "" {
		log.Info("slack_skipped_no_token", zap.Int("sessions", len(sessions)))
		rep.Skipped = SkipNoToken
		return rep, nil
	}

	sendLog, err := d.store.Load(ctx)
	if err != nil {
		return rep, fmt.Errorf("load send-log: %w", err)
	}
	preferred := slots.IDSet(d.cfg.PreferredCenters)

	blocks := []slack.Block{notify.SectionBlock(Header(bracket))}
	preferredBlocks := []slack.Block{notify.SectionBlock(Header(bracket))}

	now := d.now()
	for _, s := range sessions {
		if !sendLog.Admit(s.SessionID, s.CenterName, now) {
			rep.Suppressed++
			log.Debug("session_rate_limited",
				zap.String("session_id", s.SessionID),
				zap.String("center", s.CenterName),
			)
			continue
		}
		line := notify.ContextBlock(Line(s))
		blocks = append(blocks, line)
		rep.Lines++
		if preferred[s.CenterID] {
			preferredBlocks = append(preferredBlocks, line)
			rep.PreferredLines++
		}
	}

	if rep.Lines == 0 {
		log.Info("no_new_notifications", zap.Int("suppressed", rep.Suppressed))
		rep.Skipped = SkipAllLimited
		return rep, nil
	}

	var channels, users []string
	if d.cfg.ChannelID != "" {
		channels = []string{d.cfg.ChannelID}
	}
	if d.cfg.UserID != "" {
		users = []string{d.cfg.UserID}
	}

	rep.Primary = d.sender.Send(ctx, notify.Message{
		Token:      d.cfg.SlackToken,
		Text:       Summary(bracket),
		Blocks:     blocks,
		ChannelIDs: channels,
		UserIDs:    users,
	})
	if rep.PreferredLines > 0 && d.cfg.PreferredToken != "" {
		rep.Preferred = d.sender.Send(ctx, notify.Message{
			Token:      d.cfg.PreferredToken,
			Text:       Summary(bracket),
			Blocks:     preferredBlocks,
			ChannelIDs: channels,
			UserIDs:    users,
		})
	}
	rep.Err = multierr.Append(rep.Primary.Err, rep.Preferred.Err)

	if n := sendLog.Prune(now, d.cfg.SendLogTTL); n > 0 {
		log.Info("sendlog_pruned", zap.Int("entries", n))
	}
	if err := d.store.Save(ctx, sendLog); err != nil {
		return rep, fmt.Errorf("save send-log: %w", err)
	}
	rep.Persisted = true

	log.Info("slots_notified",
		zap.Int("lines", rep.Lines),
		zap.Int("preferred_lines", rep.PreferredLines),
		zap.Int("suppressed", rep.Suppressed),
		zap.Bool("primary_ok", rep.Primary.OK),
		zap.Bool("preferred_ok", rep.Preferred.OK),
	)
	return rep, nil
}
