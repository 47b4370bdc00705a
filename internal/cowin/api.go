package cowin

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// IST is the zone CoWIN dates are expressed in.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// FormatDate renders t as the DD-MM-YYYY date in India.
func FormatDate(t time.Time) string { return t.In(IST).Format("02-01-2006") }

// Today is FormatDate(time.Now()).
func Today() string { return FormatDate(time.Now()) }

func (c *Client) CalendarByPin(ctx context.Context, pincode, date string) (*CalendarResponse, error) {
	var out CalendarResponse
	q := url.Values{"pincode": {pincode}, "date": {date}}
	if err := c.Fetch(ctx, "api/v2/appointment/sessions/public/calendarByPin", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CalendarByDistrict(ctx context.Context, districtID, date string) (*CalendarResponse, error) {
	var out CalendarResponse
	q := url.Values{"district_id": {districtID}, "date": {date}}
	if err := c.Fetch(ctx, "api/v2/appointment/sessions/public/calendarByDistrict", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) States(ctx context.Context) ([]State, error) {
	var out statesResponse
	if err := c.Fetch(ctx, "api/v2/admin/location/states", nil, &out); err != nil {
		return nil, err
	}
	return out.States, nil
}

func (c *Client) Districts(ctx context.Context, stateID int) ([]District, error) {
	var out districtsResponse
	if err := c.Fetch(ctx, fmt.Sprintf("api/v2/admin/location/districts/%d", stateID), nil, &out); err != nil {
		return nil, err
	}
	return out.Districts, nil
}
