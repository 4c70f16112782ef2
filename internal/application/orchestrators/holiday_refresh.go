package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// StartHolidayRefresh re-imports every feed on the cron schedule spec until ctx is cancelled.
// A failing feed is logged and does not stop the others.
// PRE: spec is a standard five-field cron expression
// POST: Returns once the scheduler is running; returns an error for an invalid spec
func StartHolidayRefresh(ctx context.Context, spec string, feeds []HolidayFeed, deps ImportHolidaysDeps) error {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(spec, func() {
		RefreshHolidayFeeds(ctx, feeds, deps)
	})
	if err != nil {
		return fmt.Errorf("holiday refresh schedule %q: %w", spec, err)
	}
	c.Start()
	slog.Info("holiday_refresh_started", "spec", spec, "feeds", len(feeds))

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		slog.Info("holiday_refresh_stopped")
	}()
	return nil
}

// RefreshHolidayFeeds imports each feed in turn and returns the successful results.
func RefreshHolidayFeeds(ctx context.Context, feeds []HolidayFeed, deps ImportHolidaysDeps) []ImportHolidaysResult {
	var out []ImportHolidaysResult
	for _, f := range feeds {
		if ctx.Err() != nil {
			return out
		}
		res, err := ExecuteImportHolidays(ctx, f, deps)
		if err != nil {
			slog.Error("holiday_import_failed", "feed", f.ID, "error", err)
			continue
		}
		out = append(out, res)
	}
	return out
}
