package domain

// Bracket is the minimum eligible age of a session.
type Bracket int

const (
	Bracket18 Bracket = 18
	Bracket45 Bracket = 45
)

// Brackets lists the brackets in the order they are checked.
var Brackets = []Bracket{Bracket18, Bracket45}

// Session is one open slot offering at a center, flattened out of a
// calendar response. It is never persisted.
type Session struct {
	CenterID          int    `json:"center_id"`
	CenterName        string `json:"name"`
	Pincode           int    `json:"pincode"`
	SessionID         string `json:"session_id"`
	AvailableCapacity int    `json:"available_capacity"`
	Date              string `json:"slot_date"`
	MinAgeLimit       int    `json:"min_age_limit"`
	Vaccine           string `json:"vaccine"`
}

func (s Session) Bracket() Bracket { return Bracket(s.MinAgeLimit) }

// RunState tracks which brackets were already notified during one run.
type RunState struct {
	Notified18 bool
	Notified45 bool
}

func (r *RunState) Notified(b Bracket) bool {
	switch b {
	case Bracket18:
		return r.Notified18
	case Bracket45:
		return r.Notified45
	}
	return false
}

func (r *RunState) Mark(b Bracket) {
	switch b {
	case Bracket18:
		r.Notified18 = true
	case Bracket45:
		r.Notified45 = true
	}
}

// Done is true once both brackets were notified; nothing else is scanned.
func (r *RunState) Done() bool { return r.Notified18 && r.Notified45 }
