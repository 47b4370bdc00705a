package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Search
	Zipcode         string // pincode search key; wins over DistrictID
	DistrictID      string
	CenterWhitelist []int // only these centers are reported, empty = all
	ScanWeeks       int   // calendar pages (7 days each) to scan per run
	Check18         bool
	Check45         bool

	// Slack
	SlackAccessToken    string
	SlackChannelID      string
	SlackUserID         string
	PreferredCenters    []int  // centers also reported with PreferredSlackToken
	PreferredSlackToken string

	// Upstream
	BaseURL        string        // CoWIN API base
	HTTPTimeout    time.Duration // per request
	RetryAttempts  int           // how many times to try a CoWIN call
	RetryBackoff   time.Duration // backoff between retries
	RequestsPerMin int           // outbound CoWIN quota

	// Storage
	SendLogPath string        // JSON send-log file
	SendLogTTL  time.Duration // prune entries older than this, 0 keeps all
	DatabaseURL string        // when set, the send-log lives in postgres

	// Process
	LogDir        string        // logs directory
	WatchInterval time.Duration // 0 runs once and exits
	Addr          string        // API bind address

	// API
	PublicAPIKeys  []string // may read
	AdminAPIKeys   []string // may trigger runs; none disables POST /api/run
	AllowedOrigins []string // CORS; empty sends no CORS headers
	APIRatePerMin  int      // per client IP, 0 disables
}

// SearchKey names the configured search: "pincode" or "district" with its
// value. ok is false when neither is set.
func (c Config) SearchKey() (kind, value string, ok bool) {
	if c.Zipcode != "" {
		return "pincode", c.Zipcode, true
	}
	if c.DistrictID != "" {
		return "district", c.DistrictID, true
	}
	return "", "", false
}

// FromEnv reads .env (if present) and the process environment.
func FromEnv() Config {
	// Real environment wins; a missing .env is fine.
	_ = godotenv.Load()

	return Config{
		Zipcode:         strings.TrimSpace(os.Getenv("ZIPCODE")),
		DistrictID:      strings.TrimSpace(os.Getenv("DISTRICT_ID")),
		CenterWhitelist: ParseIDs(os.Getenv("CENTER_WHITELIST")),
		ScanWeeks:       envInt("SCAN_WEEKS", 1, 1),
		Check18:         envBool("CHECK_FOR_18_YRS", true),
		Check45:         envBool("CHECK_FOR_45_YRS", false),

		SlackAccessToken:    strings.TrimSpace(os.Getenv("SLACK_ACCESS_TOKEN")),
		SlackChannelID:      strings.TrimSpace(os.Getenv("SLACK_CHANNEL_ID")),
		SlackUserID:         strings.TrimSpace(os.Getenv("SLACK_USER_ID")),
		PreferredCenters:    ParseIDs(os.Getenv("PREFERRED_CENTER_FILTER")),
		PreferredSlackToken: strings.TrimSpace(os.Getenv("PREFERRED_CENTER_SLACK_ACCESS_TOKEN")),

		BaseURL:        envString("COWIN_BASE_URL", "https://cdn-api.co-vin.in"),
		HTTPTimeout:    time.Duration(envInt("HTTP_TIMEOUT_MS", 10000, 1)) * time.Millisecond,
		RetryAttempts:  envInt("RETRY_ATTEMPTS", 3, 1),
		RetryBackoff:   time.Duration(envInt("RETRY_BACKOFF_MS", 500, 0)) * time.Millisecond,
		RequestsPerMin: envInt("COWIN_RPM", 20, 1),

		SendLogPath: envString("SENDLOG_PATH", "data_store.json"),
		SendLogTTL:  time.Duration(envInt("SENDLOG_TTL_HOURS", 168, 0)) * time.Hour,
		DatabaseURL: os.Getenv("DATABASE_URL"),

		LogDir:        envString("LOG_DIR", "logs"),
		WatchInterval: time.Duration(envInt("WATCH_INTERVAL_SEC", 0, 0)) * time.Second,
		Addr:          envString("API_ADDR", "127.0.0.1:8080"),

		PublicAPIKeys:  SplitList(os.Getenv("PUBLIC_API_KEYS")),
		AdminAPIKeys:   SplitList(os.Getenv("ADMIN_API_KEYS")),
		AllowedOrigins: SplitList(os.Getenv("ALLOWED_ORIGINS")),
		APIRatePerMin:  envInt("API_RATE_PER_MIN", 30, 0),
	}
}

// ParseIDs turns "1,2, 3" into ints. Items that are not integers are skipped.
func ParseIDs(csv string) []int {
	var out []int
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// SplitList turns "a, b,,c" into [a b c].
func SplitList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt falls back to def when the value is missing, not a number or below min.
func envInt(key string, def, min int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= min {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}
