package slots

import (
	"context"
	"fmt"

	"github.com/hamed0406/slotwatch/internal/cowin"
)

// Source is the part of the CoWIN client the poller needs.
type Source interface {
	CalendarByPin(ctx context.Context, pincode, date string) (*cowin.CalendarResponse, error)
	CalendarByDistrict(ctx context.Context, districtID, date string) (*cowin.CalendarResponse, error)
}

const (
	ByPincode  = "pincode"
	ByDistrict = "district"
)

// Fetch calls the calendar endpoint matching kind for one date.
func Fetch(ctx context.Context, src Source, kind, key, date string) (*cowin.CalendarResponse, error) {
	switch kind {
	case ByPincode:
		return src.CalendarByPin(ctx, key, date)
	case ByDistrict:
		return src.CalendarByDistrict(ctx, key, date)
	}
	return nil, fmt.Errorf("slots: unknown search kind %q", kind)
}
