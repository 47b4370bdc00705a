package cowin

// CalendarResponse is the body of calendarByPin / calendarByDistrict.
// Fields that decide whether a session is usable are pointers so a
// missing value can be told apart from zero.
type CalendarResponse struct {
	Centers []Center `json:"centers"`
}

type Center struct {
	CenterID     *int      `json:"center_id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	StateName    string    `json:"state_name"`
	DistrictName string    `json:"district_name"`
	BlockName    string    `json:"block_name"`
	Pincode      int       `json:"pincode"`
	FeeType      string    `json:"fee_type"`
	Sessions     []Session `json:"sessions"`
}

type Session struct {
	SessionID         string   `json:"session_id"`
	Date              string   `json:"date"`
	AvailableCapacity *float64 `json:"available_capacity"`
	MinAgeLimit       *float64 `json:"min_age_limit"`
	Vaccine           string   `json:"vaccine"`
	Slots             []string `json:"slots"`
}

type State struct {
	StateID   int    `json:"state_id"`
	StateName string `json:"state_name"`
}

type District struct {
	DistrictID   int    `json:"district_id"`
	DistrictName string `json:"district_name"`
}

type statesResponse struct {
	States []State `json:"states"`
	TTL    int     `json:"ttl"`
}

type districtsResponse struct {
	Districts []District `json:"districts"`
	TTL       int        `json:"ttl"`
}
