package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSlack records Web API calls and answers chat.postMessage with
// postErrs in order ("" means ok).
type fakeSlack struct {
	mu       sync.Mutex
	calls    []string
	channels []string
	blocks   []string
	postErrs []string
	joinErr  string
}

func (f *fakeSlack) handler(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	method := strings.TrimPrefix(r.URL.Path, "/")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "conversations.open":
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "channel": map[string]any{"id": "D-" + r.FormValue("users")}})
	case "conversations.join":
		if f.joinErr != "" {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": f.joinErr})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "channel": map[string]any{"id": r.FormValue("channel")}})
	case "chat.postMessage":
		f.channels = append(f.channels, r.FormValue("channel"))
		f.blocks = append(f.blocks, r.FormValue("blocks"))
		errCode := ""
		if len(f.postErrs) > 0 {
			errCode, f.postErrs = f.postErrs[0], f.postErrs[1:]
		}
		if errCode != "" {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": errCode})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "channel": r.FormValue("channel"), "ts": "1620000000.000100"})
	default:
		http.NotFound(w, r)
	}
}

func newFake(t *testing.T, f *fakeSlack) *Slack {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(ts.Close)
	s := NewSlack(zap.NewNop())
	s.APIURL = ts.URL + "/"
	return s
}

func msg() Message {
	return Message{
		Token:      "xoxb-test",
		Text:       "Vaccination slots for age 18 plus are open!",
		Blocks:     []slack.Block{SectionBlock("header"), ContextBlock("PHC A(411014) -> 5 -> COVISHIELD -> 10-05-2021")},
		ChannelIDs: []string{"C1"},
	}
}

func TestSlack_PostsToChannel(t *testing.T) {
	f := &fakeSlack{}
	d := newFake(t, f).Send(context.Background(), msg())

	require.True(t, d.OK, "delivery: %+v", d)
	assert.Equal(t, "C1", d.Channel)
	assert.Equal(t, "1620000000.000100", d.TS)
	assert.Equal(t, []string{"chat.postMessage"}, f.calls)
	assert.Contains(t, f.blocks[0], "PHC A(411014)")
}

func TestSlack_UserIDsOpenDirectConversation(t *testing.T) {
	f := &fakeSlack{}
	m := msg()
	m.UserIDs = []string{"U1"}
	d := newFake(t, f).Send(context.Background(), m)

	require.True(t, d.OK)
	assert.Equal(t, []string{"conversations.open", "chat.postMessage"}, f.calls)
	assert.Equal(t, "D-U1", f.channels[0])
}

func TestSlack_NotInChannelJoinsAndRetries(t *testing.T) {
	f := &fakeSlack{postErrs: []string{"not_in_channel"}}
	d := newFake(t, f).Send(context.Background(), msg())

	require.True(t, d.OK, "delivery: %+v", d)
	assert.True(t, d.Joined)
	assert.Equal(t, []string{"chat.postMessage", "conversations.join", "chat.postMessage"}, f.calls)
}

func TestSlack_JoinRetryFailsOnce(t *testing.T) {
	f := &fakeSlack{postErrs: []string{"not_in_channel", "not_in_channel"}}
	d := newFake(t, f).Send(context.Background(), msg())

	assert.False(t, d.OK)
	assert.Error(t, d.Err)
	assert.Equal(t, []string{"chat.postMessage", "conversations.join", "chat.postMessage"}, f.calls, "only one retry")
}

func TestSlack_JoinRefused(t *testing.T) {
	f := &fakeSlack{postErrs: []string{"not_in_channel"}, joinErr: "method_not_supported_for_channel_type"}
	d := newFake(t, f).Send(context.Background(), msg())

	assert.False(t, d.OK)
	assert.False(t, d.Joined)
	assert.Equal(t, []string{"chat.postMessage", "conversations.join"}, f.calls)
}

func TestSlack_OtherErrorsAreNotRetried(t *testing.T) {
	f := &fakeSlack{postErrs: []string{"invalid_auth"}}
	d := newFake(t, f).Send(context.Background(), msg())

	assert.False(t, d.OK)
	assert.EqualError(t, d.Err, "invalid_auth")
	assert.Equal(t, []string{"chat.postMessage"}, f.calls)
}

func TestSlack_EmptyMessageIsNoop(t *testing.T) {
	f := &fakeSlack{}
	d := newFake(t, f).Send(context.Background(), Message{Token: "x", ChannelIDs: []string{"C1"}})

	assert.False(t, d.Attempted)
	assert.Empty(t, f.calls)
}
