package ics

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"gymboard/internal/domain/holiday"
)

// holidayNamespace scopes the deterministic ids of imported holidays.
var holidayNamespace = uuid.MustParse("6f1c2a8e-4b7d-4f0e-9a53-0d6c1e2b7f41")

// ErrEmptyFeed is returned for a zero-length body.
var ErrEmptyFeed = errors.New("empty ICS body")

// ParseOptions control how feed events become holidays.
type ParseOptions struct {
	Location *time.Location // calendar days are read in this zone; nil means UTC
	Until    time.Time      // recurring events are expanded up to here; zero skips them
}

// HolidayID derives a stable id for one imported holiday so re-imports upsert.
func HolidayID(feedID, uid string, day time.Time) string {
	return uuid.NewSHA1(holidayNamespace, []byte(feedID+"\x00"+uid+"\x00"+day.Format("2006-01-02"))).String()
}

// ParseHolidays maps the VEVENTs of an ICS body to holidays of source feedID.
// All-day events use an exclusive DTEND; timed events cover every day they touch.
// Events without a UID and cancelled events are skipped.
// PRE: feedID is non-empty
// POST: Every returned holiday has Source == feedID and passes Validate
func ParseHolidays(feedID string, body []byte, opts ParseOptions) ([]holiday.Holiday, error) {
	if len(body) == 0 {
		return nil, ErrEmptyFeed
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedID, err)
	}

	out := make([]holiday.Holiday, 0)
	for _, ve := range cal.Events() {
		hs, err := eventHolidays(feedID, ve, loc, opts.Until)
		if err != nil {
			slog.Warn("ics_event_skipped", "feed", feedID, "error", err)
			continue
		}
		out = append(out, hs...)
	}
	return out, nil
}

func eventHolidays(feedID string, ve *ical.VEvent, loc *time.Location, until time.Time) ([]holiday.Holiday, error) {
	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return nil, errors.New("missing UID")
	}
	uid := uidProp.Value
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil && strings.EqualFold(p.Value, "CANCELLED") {
		return nil, nil
	}
	name := "Holiday"
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil && strings.TrimSpace(p.Value) != "" {
		name = strings.TrimSpace(p.Value)
	}

	first, last, err := eventDays(ve, loc)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", uid, err)
	}

	starts := []time.Time{first}
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil && p.Value != "" {
		if until.IsZero() {
			return nil, nil
		}
		r, err := rrule.StrToRRule(p.Value)
		if err != nil {
			return nil, fmt.Errorf("event %s rrule: %w", uid, err)
		}
		r.DTStart(first)
		starts = r.Between(first, until, true)
	}

	span := int(last.Sub(first).Hours()/24 + 0.5)
	out := make([]holiday.Holiday, 0, len(starts))
	for _, s := range starts {
		day := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
		h := holiday.Holiday{
			ID:        HolidayID(feedID, uid, day),
			Name:      name,
			StartDate: day,
			EndDate:   day.AddDate(0, 0, span),
			Source:    feedID,
		}
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("event %s: %w", uid, err)
		}
		out = append(out, h)
	}
	return out, nil
}

// eventDays returns the first and last calendar day (inclusive, midnight in loc) of an event.
func eventDays(ve *ical.VEvent, loc *time.Location) (time.Time, time.Time, error) {
	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return time.Time{}, time.Time{}, errors.New("missing DTSTART")
	}

	if isDateValue(startProp) {
		first, err := time.ParseInLocation("20060102", strings.TrimSpace(startProp.Value), loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		last := first
		if endProp := ve.GetProperty(ical.ComponentPropertyDtEnd); endProp != nil {
			end, err := time.ParseInLocation("20060102", strings.TrimSpace(endProp.Value), loc)
			if err == nil && end.After(first) {
				last = end.AddDate(0, 0, -1)
			}
		}
		return first, last, nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start = start.In(loc)
	end, err := ve.GetEndAt()
	if err != nil || !end.After(start) {
		end = start
	}
	end = end.In(loc)
	first := midnight(start, loc)
	last := midnight(end, loc)
	// An event ending exactly at midnight does not touch that day.
	if end.Equal(last) && last.After(first) {
		last = last.AddDate(0, 0, -1)
	}
	return first, last, nil
}

func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
