package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	web "gymboard/internal/adapters/http"
	"gymboard/internal/adapters/http/perf"
	"gymboard/internal/adapters/ics"
	"gymboard/internal/adapters/storage"
	classTypeStore "gymboard/internal/adapters/storage/classtype"
	coachStore "gymboard/internal/adapters/storage/coach"
	holidayStore "gymboard/internal/adapters/storage/holiday"
	programStore "gymboard/internal/adapters/storage/program"
	scheduleStore "gymboard/internal/adapters/storage/schedule"
	sessionStore "gymboard/internal/adapters/storage/session"
	termStore "gymboard/internal/adapters/storage/term"
	"gymboard/internal/application/orchestrators"
	"gymboard/internal/application/projections"
	"gymboard/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configPath := flag.String("config", envOrDefault("GYMBOARD_CONFIG", "gymboard.yaml"), "path to YAML config (created on first run)")
	flag.Parse()

	cfg, err := config.Load(*configPath, os.Getenv)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	// WAL mode, foreign keys and busy timeout on every pooled connection
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery())

	progStore := programStore.NewSQLiteStore(timedDB)
	ctStore := classTypeStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		ProgramStore:   progStore,
		ClassTypeStore: ctStore,
		CoachStore:     coachStore.NewSQLiteStore(timedDB),
		ScheduleStore:  scheduleStore.NewSQLiteStore(timedDB),
		SessionStore:   sessionStore.NewSQLiteStore(timedDB),
		TermStore:      termStore.NewSQLiteStore(timedDB),
		HolidayStore:   holidayStore.NewSQLiteStore(timedDB),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seeded, err := orchestrators.ExecuteSeedPrograms(ctx, orchestrators.SeedProgramsDeps{
		ProgramStore:   progStore,
		ClassTypeStore: ctStore,
	})
	if err != nil {
		log.Fatalf("failed to seed programs: %v", err)
	}
	if seeded.Programs > 0 {
		log.Printf("Seeded %d programs and %d class types", seeded.Programs, seeded.ClassTypes)
	}

	csrfKey, err := web.LoadCSRFKey(cfg.CSRFKey, cfg.IsProduction())
	if err != nil {
		log.Fatalf("invalid CSRF key: %v", err)
	}

	feeds := make([]orchestrators.HolidayFeed, 0, len(cfg.HolidayFeeds))
	for _, f := range cfg.HolidayFeeds {
		feeds = append(feeds, orchestrators.HolidayFeed{ID: f.ID, URL: f.URL})
	}

	settings := web.Settings{
		Board: projections.BoardOptions{
			Window:     cfg.Window(),
			MaxColumns: cfg.MaxColumns,
			WeekStart:  cfg.WeekStart,
		},
		Location:      cfg.Location(),
		Feeds:         feeds,
		Fetcher:       ics.NewFetcher(nil),
		Horizon:       cfg.Horizon(),
		CSRFKey:       csrfKey,
		SecureCookies: cfg.IsProduction(),
	}
	mux, closeMux := web.NewMux(stores, settings, collector)
	defer closeMux()

	if len(feeds) > 0 {
		go web.RefreshHolidays(ctx)
		if err := web.StartHolidayRefresh(ctx, cfg.RefreshCron); err != nil {
			log.Fatalf("failed to schedule holiday refresh: %v", err)
		}
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	schemaVersion, err := storage.CurrentVersion(ctx, db)
	if err != nil {
		log.Fatalf("failed to read schema version: %v", err)
	}
	log.Printf("Gymboard %s starting on %s (env=%s, tz=%s, schema=%d)", version, cfg.Addr, cfg.Env, cfg.Timezone, schemaVersion)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
		}
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
