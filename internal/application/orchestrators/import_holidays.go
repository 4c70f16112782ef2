package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymboard/internal/adapters/ics"
	"gymboard/internal/domain/holiday"
)

// Import errors
var (
	ErrUnknownFeed     = errors.New("unknown holiday feed")
	ErrFeedUnavailable = errors.New("holiday feed unavailable")
)

// HolidayFeed is a configured ICS calendar of closure days.
type HolidayFeed struct {
	ID  string
	URL string
}

// FeedFetcher downloads a feed body.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HolidayStoreForImport defines the store interface needed by ImportHolidays.
type HolidayStoreForImport interface {
	ListBySource(ctx context.Context, source string) ([]holiday.Holiday, error)
	ReplaceSource(ctx context.Context, source string, values []holiday.Holiday) error
}

// ImportHolidaysDeps holds dependencies for ImportHolidays.
type ImportHolidaysDeps struct {
	Fetcher      FeedFetcher
	HolidayStore HolidayStoreForImport
	Location     *time.Location
	Horizon      time.Duration    // how far ahead recurring feed events are expanded
	Now          func() time.Time // defaults to time.Now
}

// ImportHolidaysResult reports the effect of one import.
type ImportHolidaysResult struct {
	FeedID   string
	Imported int // holidays now stored for the feed
	Added    int // ids not present before
	Removed  int // previous ids no longer in the feed
}

// FindFeed returns the configured feed with the given id.
func FindFeed(feeds []HolidayFeed, id string) (HolidayFeed, error) {
	for _, f := range feeds {
		if f.ID == id {
			return f, nil
		}
	}
	return HolidayFeed{}, fmt.Errorf("%w: %s", ErrUnknownFeed, id)
}

// ExecuteImportHolidays fetches one feed and replaces its previously imported holidays.
// Manual holidays and other feeds are never touched.
// PRE: feed.ID and feed.URL are non-empty
// POST: On success the store holds exactly the feed's current holidays for feed.ID
func ExecuteImportHolidays(ctx context.Context, feed HolidayFeed, deps ImportHolidaysDeps) (ImportHolidaysResult, error) {
	if feed.ID == "" || feed.ID == holiday.SourceManual {
		return ImportHolidaysResult{}, fmt.Errorf("%w: %q", ErrUnknownFeed, feed.ID)
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	body, err := deps.Fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		return ImportHolidaysResult{}, fmt.Errorf("%w: %s: %w", ErrFeedUnavailable, feed.ID, err)
	}

	opts := ics.ParseOptions{Location: deps.Location}
	if deps.Horizon > 0 {
		opts.Until = now().Add(deps.Horizon)
	}
	parsed, err := ics.ParseHolidays(feed.ID, body, opts)
	if err != nil {
		return ImportHolidaysResult{}, err
	}

	previous, err := deps.HolidayStore.ListBySource(ctx, feed.ID)
	if err != nil {
		return ImportHolidaysResult{}, fmt.Errorf("list feed %s: %w", feed.ID, err)
	}
	if err := deps.HolidayStore.ReplaceSource(ctx, feed.ID, parsed); err != nil {
		return ImportHolidaysResult{}, fmt.Errorf("store feed %s: %w", feed.ID, err)
	}

	before := make(map[string]bool, len(previous))
	for _, h := range previous {
		before[h.ID] = true
	}
	res := ImportHolidaysResult{FeedID: feed.ID, Imported: len(parsed)}
	for _, h := range parsed {
		if before[h.ID] {
			delete(before, h.ID)
			continue
		}
		res.Added++
	}
	res.Removed = len(before)

	slog.Info("holiday_import", "feed", feed.ID, "imported", res.Imported, "added", res.Added, "removed", res.Removed)
	return res, nil
}
