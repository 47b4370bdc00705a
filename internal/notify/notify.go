package notify

import (
	"context"

	"github.com/slack-go/slack"
)

// Message is one chat post. Either UserIDs (a DM is opened) or the first
// of ChannelIDs picks the destination.
type Message struct {
	Token      string
	Text       string
	Blocks     []slack.Block
	ChannelIDs []string
	UserIDs    []string
}

// Delivery reports what happened to a Message. Failures are never
// returned as errors by Send; they show up here.
type Delivery struct {
	Attempted bool // false when there was nothing to send
	OK        bool
	Joined    bool // a channel join was needed before the post went through
	Channel   string
	TS        string
	Err       error
}

type Sender interface {
	Send(ctx context.Context, m Message) Delivery
}

// SectionBlock is a markdown section.
func SectionBlock(text string) slack.Block {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
}

// ContextBlock is a single plain-text context line.
func ContextBlock(text string) slack.Block {
	return slack.NewContextBlock("", slack.NewTextBlockObject(slack.PlainTextType, text, false, false))
}
