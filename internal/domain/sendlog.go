package domain

import "time"

const (
	MaxSendsPerWindow = 5
	SendWindow        = time.Hour
)

// SendLogEntry is the persisted notification history of one session id.
type SendLogEntry struct {
	NumSends   int    `json:"num_sends"`
	LastSendDT string `json:"last_send_dt,omitempty"`
	CenterName string `json:"center_name,omitempty"`
}

// LastSend parses LastSendDT. ok is false when it is empty or malformed.
func (e SendLogEntry) LastSend() (t time.Time, ok bool) {
	if e.LastSendDT == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, e.LastSendDT)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SendLog maps session id to its entry.
type SendLog map[string]SendLogEntry

// Limited reports whether sessionID already used up its sends in the
// window that is still open at now.
func (l SendLog) Limited(sessionID string, now time.Time) bool {
	e, ok := l[sessionID]
	if !ok || e.NumSends < MaxSendsPerWindow {
		return false
	}
	last, ok := e.LastSend()
	return ok && now.Before(last.Add(SendWindow))
}

// Admit records a send for sessionID at now, unless the session is
// rate limited, in which case the entry is left untouched and false is
// returned. An expired window resets the counter before counting.
func (l SendLog) Admit(sessionID, centerName string, now time.Time) bool {
	if l.Limited(sessionID, now) {
		return false
	}
	e := l[sessionID]
	if e.NumSends >= MaxSendsPerWindow {
		e.NumSends = 0
	}
	l[sessionID] = SendLogEntry{
		NumSends:   e.NumSends + 1,
		LastSendDT: now.UTC().Format(time.RFC3339Nano),
		CenterName: centerName,
	}
	return true
}

// Prune drops entries whose last send is older than ttl and returns how
// many were removed. ttl <= 0 disables pruning. Entries without a
// readable timestamp are kept.
func (l SendLog) Prune(now time.Time, ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	n := 0
	for id, e := range l {
		last, ok := e.LastSend()
		if ok && now.Sub(last) > ttl {
			delete(l, id)
			n++
		}
	}
	return n
}

// Clone returns a shallow copy; entries are values so this is a full copy.
func (l SendLog) Clone() SendLog {
	out := make(SendLog, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}
