package slots

import (
	"github.com/hamed0406/slotwatch/internal/cowin"
	"github.com/hamed0406/slotwatch/internal/domain"
)

// Flatten turns a calendar response into one record per (center, session).
// Sessions missing an id, capacity or age limit, and centers without an
// id, are dropped.
func Flatten(resp *cowin.CalendarResponse) []domain.Session {
	if resp == nil {
		return nil
	}
	var out []domain.Session
	for _, c := range resp.Centers {
		if c.CenterID == nil {
			continue
		}
		for _, s := range c.Sessions {
			if s.SessionID == "" || s.AvailableCapacity == nil || s.MinAgeLimit == nil {
				continue
			}
			out = append(out, domain.Session{
				CenterID:          *c.CenterID,
				CenterName:        c.Name,
				Pincode:           c.Pincode,
				SessionID:         s.SessionID,
				AvailableCapacity: int(*s.AvailableCapacity),
				Date:              s.Date,
				MinAgeLimit:       int(*s.MinAgeLimit),
				Vaccine:           s.Vaccine,
			})
		}
	}
	return out
}

// Available keeps sessions with capacity left.
func Available(in []domain.Session) []domain.Session {
	out := in[:0:0]
	for _, s := range in {
		if s.AvailableCapacity > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Whitelisted keeps sessions at the given centers. An empty whitelist keeps all.
func Whitelisted(in []domain.Session, centerIDs []int) []domain.Session {
	if len(centerIDs) == 0 {
		return in
	}
	set := IDSet(centerIDs)
	out := in[:0:0]
	for _, s := range in {
		if set[s.CenterID] {
			out = append(out, s)
		}
	}
	return out
}

// Partition buckets sessions by bracket. Ages other than 18 and 45 are ignored.
func Partition(in []domain.Session) map[domain.Bracket][]domain.Session {
	out := make(map[domain.Bracket][]domain.Session, len(domain.Brackets))
	for _, s := range in {
		switch b := s.Bracket(); b {
		case domain.Bracket18, domain.Bracket45:
			out[b] = append(out[b], s)
		}
	}
	return out
}

// Eligible runs Flatten, Available and Whitelisted in order.
func Eligible(resp *cowin.CalendarResponse, whitelist []int) []domain.Session {
	return Whitelisted(Available(Flatten(resp)), whitelist)
}

func IDSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
