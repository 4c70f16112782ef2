package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"gymboard/internal/domain/layout"
	"gymboard/internal/domain/schedule"
)

// Defaults applied by Normalize.
const (
	DefaultAddr        = ":8080"
	DefaultDBPath      = "gymboard.db"
	DefaultEnv         = "development"
	DefaultTimezone    = "Pacific/Auckland"
	DefaultWindowStart = "06:00"
	DefaultWindowEnd   = "21:00"
	DefaultMaxColumns  = 3
	DefaultRefreshCron = "0 3 * * *"
	DefaultSlowQueryMs = 50
	DefaultHorizonDays = 400
)

// FeedConfig is one subscribed holiday calendar.
type FeedConfig struct {
	// ID becomes the Source of every imported holiday.
	ID  string `yaml:"id" json:"id"`
	URL string `yaml:"url" json:"url"`
}

// Config is the top-level server configuration.
type Config struct {
	Addr   string `yaml:"addr" json:"addr"`
	DBPath string `yaml:"db_path" json:"db_path"`
	Env    string `yaml:"env" json:"env"`

	// CSRFKey is a 32-byte key, hex encoded. Empty means a random key per process.
	CSRFKey string `yaml:"csrf_key" json:"-"`

	// Timezone is the IANA zone the gym's wall clock runs in.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is "monday" (default) or "sunday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	WindowStart string `yaml:"window_start" json:"window_start"`
	WindowEnd   string `yaml:"window_end" json:"window_end"`

	// MaxColumns caps the lanes drawn per cluster before "+N more". 0 disables the cap.
	MaxColumns int `yaml:"max_columns" json:"max_columns"`

	// RefreshCron is a five-field cron schedule for re-importing holiday feeds.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	HolidayFeeds []FeedConfig `yaml:"holiday_feeds" json:"holiday_feeds"`

	// HorizonDays bounds expansion of recurring feed events.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	SlowQueryMs int `yaml:"slow_query_ms" json:"slow_query_ms"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	c := &Config{MaxColumns: DefaultMaxColumns}
	c.Normalize()
	return c
}

// Normalize fills in missing or invalid values with defaults.
func (c *Config) Normalize() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	if c.Env == "" {
		c.Env = DefaultEnv
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.WeekStart != schedule.Sunday {
		c.WeekStart = schedule.Monday
	}
	if _, err := layout.NewWindow(c.WindowStart, c.WindowEnd); err != nil {
		c.WindowStart, c.WindowEnd = DefaultWindowStart, DefaultWindowEnd
	}
	if c.MaxColumns < 0 {
		c.MaxColumns = 0
	}
	if c.RefreshCron == "" {
		c.RefreshCron = DefaultRefreshCron
	}
	if c.HolidayFeeds == nil {
		c.HolidayFeeds = []FeedConfig{}
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = DefaultHorizonDays
	}
	if c.SlowQueryMs <= 0 {
		c.SlowQueryMs = DefaultSlowQueryMs
	}
}

// Validate reports settings Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	seen := make(map[string]bool, len(c.HolidayFeeds))
	for _, f := range c.HolidayFeeds {
		if strings.TrimSpace(f.ID) == "" || strings.TrimSpace(f.URL) == "" {
			return errors.New("holiday feed needs an id and url")
		}
		if f.ID == "manual" {
			return errors.New(`holiday feed id "manual" is reserved`)
		}
		if seen[f.ID] {
			return fmt.Errorf("duplicate holiday feed id %q", f.ID)
		}
		seen[f.ID] = true
	}
	return nil
}

// IsProduction reports whether Env is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location loads the configured time zone.
// PRE: Validate returned nil
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Window returns the visible board window.
func (c *Config) Window() layout.Window {
	w, err := layout.NewWindow(c.WindowStart, c.WindowEnd)
	if err != nil {
		return layout.FullDay
	}
	return w
}

// SlowQuery returns the slow query threshold.
func (c *Config) SlowQuery() time.Duration {
	return time.Duration(c.SlowQueryMs) * time.Millisecond
}

// Horizon returns how far ahead recurring feed events are expanded.
func (c *Config) Horizon() time.Duration {
	return time.Duration(c.HorizonDays) * 24 * time.Hour
}

// Load reads the YAML file at path, creating it with defaults on first run,
// then overlays GYMBOARD_* environment variables via getenv.
// PRE: path is non-empty
// POST: Returned config is normalized and validated
func Load(path string, getenv func(string) string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, getenv); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(c *Config, getenv func(string) string) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"GYMBOARD_ADDR", &c.Addr},
		{"GYMBOARD_DB", &c.DBPath},
		{"GYMBOARD_ENV", &c.Env},
		{"GYMBOARD_CSRF_KEY", &c.CSRFKey},
		{"GYMBOARD_TZ", &c.Timezone},
		{"GYMBOARD_WEEK_START", &c.WeekStart},
		{"GYMBOARD_WINDOW_START", &c.WindowStart},
		{"GYMBOARD_WINDOW_END", &c.WindowEnd},
		{"GYMBOARD_REFRESH", &c.RefreshCron},
	}
	for _, s := range strs {
		if v := getenv(s.key); v != "" {
			*s.dst = v
		}
	}
	ints := []struct {
		key string
		dst *int
	}{
		{"GYMBOARD_MAX_COLUMNS", &c.MaxColumns},
		{"GYMBOARD_SLOW_QUERY_MS", &c.SlowQueryMs},
		{"GYMBOARD_HORIZON_DAYS", &c.HorizonDays},
	}
	for _, n := range ints {
		v := getenv(n.key)
		if v == "" {
			continue
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", n.key, err)
		}
		*n.dst = i
	}
	return nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".gymboard-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save writes c to path. See Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
