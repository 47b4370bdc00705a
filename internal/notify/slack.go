package notify

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

const errNotInChannel = "not_in_channel"

var _ Sender = (*Slack)(nil)

// Slack posts through the Web API with a per-message bot token.
type Slack struct {
	APIURL string // empty uses slack.com
	Client *http.Client
	Logger *zap.Logger
}

func NewSlack(logger *zap.Logger) *Slack {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Slack{
		Client: &http.Client{Timeout: 10 * time.Second},
		Logger: logger,
	}
}

func (s *Slack) api(token string) *slack.Client {
	opts := []slack.Option{slack.OptionHTTPClient(s.Client)}
	if s.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(s.APIURL))
	}
	return slack.New(token, opts...)
}

// Send posts m. A "not_in_channel" failure is answered with one join and
// one repost; every other failure is logged and reported in Delivery.
func (s *Slack) Send(ctx context.Context, m Message) Delivery {
	if m.Text == "" && len(m.Blocks) == 0 {
		return Delivery{}
	}
	d := Delivery{Attempted: true}
	api := s.api(m.Token)

	channel := ""
	if len(m.ChannelIDs) > 0 {
		channel = m.ChannelIDs[0]
	}
	if len(m.UserIDs) > 0 {
		ch, _, _, err := api.OpenConversationContext(ctx, &slack.OpenConversationParameters{Users: m.UserIDs})
		if err != nil {
			s.Logger.Warn("slack_open_conversation_failed", zap.Strings("users", m.UserIDs), zap.Error(err))
			d.Err = err
			return d
		}
		channel = ch.ID
	}
	d.Channel = channel

	ts, err := s.post(ctx, api, channel, m)
	if err == nil {
		d.OK, d.TS = true, ts
		return d
	}
	if !isNotInChannel(err) {
		s.Logger.Warn("slack_send_failed", zap.String("channel", channel), zap.Error(err))
		d.Err = err
		return d
	}

	if _, _, _, err := api.JoinConversationContext(ctx, channel); err != nil {
		s.Logger.Warn("slack_join_failed", zap.String("channel", channel), zap.Error(err))
		d.Err = err
		return d
	}
	d.Joined = true
	ts, err = s.post(ctx, api, channel, m)
	if err != nil {
		s.Logger.Warn("slack_join_retry_failed", zap.String("channel", channel), zap.Error(err))
		d.Err = err
		return d
	}
	s.Logger.Info("slack_joined_and_sent", zap.String("channel", channel))
	d.OK, d.TS = true, ts
	return d
}

func (s *Slack) post(ctx context.Context, api *slack.Client, channel string, m Message) (string, error) {
	opts := []slack.MsgOption{slack.MsgOptionText(m.Text, false)}
	if len(m.Blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(m.Blocks...))
	}
	_, ts, err := api.PostMessageContext(ctx, channel, opts...)
	return ts, err
}

func isNotInChannel(err error) bool {
	var se slack.SlackErrorResponse
	if errors.As(err, &se) {
		return se.Err == errNotInChannel
	}
	return err != nil && err.Error() == errNotInChannel
}
