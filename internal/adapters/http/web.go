package web

import (
	"context"
	"crypto/rand"
	"embed"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"gymboard/internal/adapters/http/middleware"
	"gymboard/internal/adapters/http/perf"
	classTypeStore "gymboard/internal/adapters/storage/classtype"
	coachStore "gymboard/internal/adapters/storage/coach"
	holidayStore "gymboard/internal/adapters/storage/holiday"
	programStore "gymboard/internal/adapters/storage/program"
	scheduleStore "gymboard/internal/adapters/storage/schedule"
	sessionStore "gymboard/internal/adapters/storage/session"
	termStore "gymboard/internal/adapters/storage/term"
	"gymboard/internal/application/orchestrators"
	"gymboard/internal/application/projections"
)

// Stores holds all storage dependencies.
type Stores struct {
	ProgramStore   programStore.Store
	ClassTypeStore classTypeStore.Store
	CoachStore     coachStore.Store
	ScheduleStore  scheduleStore.Store
	SessionStore   sessionStore.Store
	TermStore      termStore.Store
	HolidayStore   holidayStore.Store
}

// Settings carries the board display and holiday import configuration.
type Settings struct {
	Board    projections.BoardOptions
	Location *time.Location
	Feeds    []orchestrators.HolidayFeed
	Fetcher  orchestrators.FeedFetcher
	Horizon  time.Duration

	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string
	SlowRequest    time.Duration
}

// LoadCSRFKey decodes a hex CSRF secret (32 bytes).
// Production requires a key; elsewhere a random key is generated per startup.
func LoadCSRFKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, errors.New("CSRF key must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if production {
		return nil, errors.New("CSRF key is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	slog.Warn("csrf_key_random", "detail", "form tokens won't survive restart; set GYMBOARD_CSRF_KEY")
	return key, nil
}

//go:embed static
var staticFiles embed.FS

// Global stores instance (set by NewMux)
var stores *Stores

// Global settings (set by NewMux)
var settings Settings

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 20

// timeNow is a variable for testability.
var timeNow = time.Now

// NewMux wires HTTP handlers for the app.
// The returned cleanup stops background work owned by the handler chain.
func NewMux(s *Stores, cfg Settings, collector *perf.Collector) (http.Handler, func()) {
	stores = s
	settings = cfg
	if settings.Location == nil {
		settings.Location = time.Local
	}
	perfCollector = collector

	mux := http.NewServeMux()
	static, _ := fs.Sub(staticFiles, "static")
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> CSRF -> SecurityHeaders -> Recover -> Mux
	h := middleware.Chain(mux,
		middleware.Recover,
		middleware.SecurityHeaders,
		middleware.CSRF(cfg.CSRFKey, cfg.SecureCookies, cfg.TrustedOrigins),
		middleware.RateLimit(limiter),
		middleware.Timing(collector, cfg.SlowRequest),
	)
	return h, limiter.Close
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", handleHealth)

	mux.HandleFunc("/api/programs", handlePrograms)
	mux.HandleFunc("/api/class-types", handleClassTypes)
	mux.HandleFunc("/api/coaches", handleCoaches)
	mux.HandleFunc("/api/schedules", handleSchedules)
	mux.HandleFunc("/api/terms", handleTerms)
	mux.HandleFunc("/api/holidays", handleHolidays)
	mux.HandleFunc("/api/holidays/import", handleHolidayImport)
	mux.HandleFunc("/api/sessions", handleSessions)

	mux.HandleFunc("/api/boards/structure", handleStructureBoard)
	mux.HandleFunc("/api/boards/week", handleWeekBoard)
	mux.HandleFunc("/api/boards/coach-week", handleCoachWeekBoard)
	mux.HandleFunc("/api/boards/coach-week.ics", handleCoachWeekICS)
	mux.HandleFunc("/api/classes/today", handleTodaysClasses)
	mux.HandleFunc("/api/perf", handlePerf)

	mux.HandleFunc("/", handleIndex)
}

// importDeps builds the orchestrator dependencies for a holiday import.
func importDeps() orchestrators.ImportHolidaysDeps {
	return orchestrators.ImportHolidaysDeps{
		Fetcher:      settings.Fetcher,
		HolidayStore: stores.HolidayStore,
		Location:     settings.Location,
		Horizon:      settings.Horizon,
		Now:          timeNow,
	}
}

// StartHolidayRefresh schedules feed re-imports with the handlers' stores and settings.
// PRE: NewMux has been called
func StartHolidayRefresh(ctx context.Context, spec string) error {
	if len(settings.Feeds) == 0 || settings.Fetcher == nil {
		return nil
	}
	return orchestrators.StartHolidayRefresh(ctx, spec, settings.Feeds, importDeps())
}

// RefreshHolidays imports every configured feed once, skipping feeds that fail.
// PRE: NewMux has been called
func RefreshHolidays(ctx context.Context) []orchestrators.ImportHolidaysResult {
	if len(settings.Feeds) == 0 || settings.Fetcher == nil {
		return nil
	}
	return orchestrators.RefreshHolidayFeeds(ctx, settings.Feeds, importDeps())
}
