package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/slotwatch/internal/cowin"
	apimw "github.com/hamed0406/slotwatch/internal/httpapi/middleware"
	"github.com/hamed0406/slotwatch/internal/repo"
	"github.com/hamed0406/slotwatch/internal/scheduler"
)

// Lookup is the admin part of the CoWIN API.
type Lookup interface {
	States(ctx context.Context) ([]cowin.State, error)
	Districts(ctx context.Context, stateID int) ([]cowin.District, error)
}

// Runner triggers one poll-filter-notify run.
type Runner interface {
	RunOnce(ctx context.Context) (scheduler.Outcome, error)
}

// Options holds the access settings of the API.
type Options struct {
	Keys           apimw.Keys
	AllowedOrigins []string // empty sends no CORS headers
	RatePerMin     int      // per client IP on /api, 0 disables
}

type Server struct {
	Logger  *zap.Logger
	SendLog repo.SendLogStore
	Lookup  Lookup
	Runner  Runner // nil when no search key is configured
	Options Options

	runMu sync.Mutex // one run at a time; the send-log has no locking
}

func NewServer(l *zap.Logger, sl repo.SendLogStore, lk Lookup, r Runner, opts Options) *Server {
	return &Server{Logger: l, SendLog: sl, Lookup: lk, Runner: r, Options: opts}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if len(s.Options.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.Options.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "X-API-Key", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(apimw.RateLimit(s.Options.RatePerMin, 5))

		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireAny(s.Options.Keys))
			r.Get("/sendlog", s.handleSendLog)
			r.Get("/states", s.handleStates)
			r.Get("/states/{stateID}/districts", s.handleDistricts)
		})

		r.With(apimw.RequireAdmin(s.Options.Keys)).Post("/run", s.handleRun)
	})
	return r
}

type sendLogRow struct {
	SessionID  string `json:"session_id"`
	NumSends   int    `json:"num_sends"`
	LastSendDT string `json:"last_send_dt"`
	CenterName string `json:"center_name"`
}

func (s *Server) handleSendLog(w http.ResponseWriter, r *http.Request) {
	l, err := s.SendLog.Load(r.Context())
	if err != nil {
		s.Logger.Warn("api_sendlog_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load send-log")
		return
	}
	rows := make([]sendLogRow, 0, len(l))
	for id, e := range l {
		rows = append(rows, sendLogRow{SessionID: id, NumSends: e.NumSends, LastSendDT: e.LastSendDT, CenterName: e.CenterName})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].LastSendDT > rows[j].LastSendDT })
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.Lookup.States(r.Context())
	if err != nil {
		s.upstreamError(w, "api_states_error", err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "stateID"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad state id")
		return
	}
	ds, err := s.Lookup.Districts(r.Context(), id)
	if err != nil {
		s.upstreamError(w, "api_districts_error", err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

type reportView struct {
	Bracket        int    `json:"bracket"`
	Skipped        string `json:"skipped,omitempty"`
	Lines          int    `json:"lines"`
	PreferredLines int    `json:"preferred_lines"`
	Suppressed     int    `json:"suppressed"`
	PrimaryOK      bool   `json:"primary_ok"`
	PreferredOK    bool   `json:"preferred_ok"`
	Persisted      bool   `json:"persisted"`
	Error          string `json:"error,omitempty"`
}

type outcomeView struct {
	RunID      string       `json:"run_id"`
	Pages      int          `json:"pages"`
	Found      int          `json:"found"`
	Done       bool         `json:"done"`
	Notified18 bool         `json:"notified_18"`
	Notified45 bool         `json:"notified_45"`
	Reports    []reportView `json:"reports"`
	TookMS     float64      `json:"took_ms"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.Runner == nil {
		writeError(w, http.StatusServiceUnavailable, "one of ZIPCODE or DISTRICT_ID must be set")
		return
	}
	if !s.runMu.TryLock() {
		writeError(w, http.StatusConflict, "a run is already in progress")
		return
	}
	defer s.runMu.Unlock()

	start := time.Now()
	out, err := s.Runner.RunOnce(r.Context())
	if err != nil {
		s.upstreamError(w, "api_run_error", err)
		return
	}

	view := outcomeView{
		RunID:      out.RunID,
		Pages:      out.Pages,
		Found:      out.Found,
		Done:       out.Done,
		Notified18: out.State.Notified18,
		Notified45: out.State.Notified45,
		Reports:    make([]reportView, 0, len(out.Reports)),
		TookMS:     time.Since(start).Seconds() * 1000,
	}
	for _, rep := range out.Reports {
		rv := reportView{
			Bracket:        int(rep.Bracket),
			Skipped:        rep.Skipped,
			Lines:          rep.Lines,
			PreferredLines: rep.PreferredLines,
			Suppressed:     rep.Suppressed,
			PrimaryOK:      rep.Primary.OK,
			PreferredOK:    rep.Preferred.OK,
			Persisted:      rep.Persisted,
		}
		if rep.Err != nil {
			rv.Error = rep.Err.Error()
		}
		view.Reports = append(view.Reports, rv)
	}
	s.Logger.Info("api_run", zap.String("run_id", out.RunID), zap.Int("found", out.Found))
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) upstreamError(w http.ResponseWriter, event string, err error) {
	s.Logger.Warn(event, zap.Error(err))
	var se *cowin.StatusError
	if errors.As(err, &se) {
		writeError(w, http.StatusBadGateway, se.Error())
		return
	}
	writeError(w, http.StatusBadGateway, "upstream error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
