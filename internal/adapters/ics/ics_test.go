package ics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
)

const holidayFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//holidays//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:waitangi@example.com\r\n" +
	"DTSTAMP:20260101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20260206\r\n" +
	"DTEND;VALUE=DATE:20260207\r\n" +
	"SUMMARY:Waitangi Day\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:easter@example.com\r\n" +
	"DTSTAMP:20260101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20260403\r\n" +
	"DTEND;VALUE=DATE:20260407\r\n" +
	"SUMMARY:Easter break\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:cleanup@example.com\r\n" +
	"DTSTAMP:20260101T000000Z\r\n" +
	"DTSTART:20260301T220000Z\r\n" +
	"DTEND:20260302T020000Z\r\n" +
	"SUMMARY:Mat cleaning\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:xmas@example.com\r\n" +
	"DTSTAMP:20260101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20261225\r\n" +
	"RRULE:FREQ=YEARLY\r\n" +
	"SUMMARY:Christmas\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:gone@example.com\r\n" +
	"DTSTAMP:20260101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20260601\r\n" +
	"STATUS:CANCELLED\r\n" +
	"SUMMARY:Cancelled\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTAMP:20260101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20260701\r\n" +
	"SUMMARY:No uid\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func ymd(t time.Time) string { return t.Format("2006-01-02") }

// TestParseHolidays tests all-day, multi-day, timed, recurring and skipped events.
func TestParseHolidays(t *testing.T) {
	hs, err := ParseHolidays("nz", []byte(holidayFeed), ParseOptions{
		Location: time.UTC,
		Until:    time.Date(2027, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("ParseHolidays: %v", err)
	}

	type span struct{ name, start, end string }
	want := []span{
		{"Waitangi Day", "2026-02-06", "2026-02-06"},
		{"Easter break", "2026-04-03", "2026-04-06"},
		{"Mat cleaning", "2026-03-01", "2026-03-02"},
		{"Christmas", "2026-12-25", "2026-12-25"},
		{"Christmas", "2027-12-25", "2027-12-25"},
	}
	if len(hs) != len(want) {
		t.Fatalf("got %d holidays, want %d: %+v", len(hs), len(want), hs)
	}
	seen := map[string]bool{}
	for i, w := range want {
		h := hs[i]
		if h.Name != w.name || ymd(h.StartDate) != w.start || ymd(h.EndDate) != w.end {
			t.Errorf("holiday[%d] = %s %s..%s, want %s %s..%s", i, h.Name, ymd(h.StartDate), ymd(h.EndDate), w.name, w.start, w.end)
		}
		if h.Source != "nz" {
			t.Errorf("holiday[%d].Source = %q", i, h.Source)
		}
		if seen[h.ID] {
			t.Errorf("duplicate id %s", h.ID)
		}
		seen[h.ID] = true
	}
}

// TestParseHolidays_StableIDs tests that re-parsing yields the same ids.
func TestParseHolidays_StableIDs(t *testing.T) {
	a, _ := ParseHolidays("nz", []byte(holidayFeed), ParseOptions{})
	b, _ := ParseHolidays("nz", []byte(holidayFeed), ParseOptions{})
	other, _ := ParseHolidays("au", []byte(holidayFeed), ParseOptions{})
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("lengths %d, %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("id %d changed between parses", i)
		}
		if a[i].ID == other[i].ID {
			t.Errorf("id %d shared across feeds", i)
		}
	}
	// Without a horizon the recurring event is skipped.
	if len(a) != 3 {
		t.Errorf("got %d holidays without horizon, want 3", len(a))
	}
}

// TestParseHolidays_Empty tests that an empty body is rejected.
func TestParseHolidays_Empty(t *testing.T) {
	if _, err := ParseHolidays("nz", nil, ParseOptions{}); !errors.Is(err, ErrEmptyFeed) {
		t.Errorf("empty body error = %v", err)
	}
}

// TestEncodeCalendar tests that exported events parse back.
func TestEncodeCalendar(t *testing.T) {
	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	out := EncodeCalendar("Ana - week of 2026-03-02", []Event{
		{UID: "mon-gi@2026-03-02", Summary: "Gi", Description: "Adults", Start: start, End: start.Add(time.Hour)},
		{UID: "seminar", Summary: "Seminar", Start: start.Add(48 * time.Hour), End: start.Add(50 * time.Hour)},
	}, start)

	if !strings.Contains(out, "PRODID:"+ProductID) {
		t.Errorf("missing product id in:\n%s", out)
	}
	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if got := events[0].GetProperty(ical.ComponentPropertySummary).Value; got != "Gi" {
		t.Errorf("summary = %q", got)
	}
	got, err := events[0].GetStartAt()
	if err != nil || !got.Equal(start) {
		t.Errorf("start = %v (%v), want %v", got, err, start)
	}
}

// TestFetcher_ConditionalCache tests ETag revalidation and fallback to the cached body.
func TestFetcher_ConditionalCache(t *testing.T) {
	var calls int32
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if fail.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(holidayFeed))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		body, err := f.Fetch(ctx, srv.URL+"/nz.ics?token=secret")
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if string(body) != holidayFeed {
			t.Fatalf("fetch %d body mismatch", i)
		}
	}
	fail.Store(true)
	if body, err := f.Fetch(ctx, srv.URL+"/nz.ics?token=secret"); err != nil || string(body) != holidayFeed {
		t.Errorf("fallback fetch = %d bytes, %v", len(body), err)
	}
	if _, err := f.Fetch(ctx, srv.URL+"/other.ics"); err == nil {
		t.Error("expected error for failing uncached feed")
	}
	if atomic.LoadInt32(&calls) != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
}

// TestFetcher_SizeLimit tests that oversized feeds are rejected.
func TestFetcher_SizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	f.maxBytes = 16
	if _, err := f.Fetch(context.Background(), srv.URL); !errors.Is(err, ErrFeedTooLarge) {
		t.Errorf("error = %v, want ErrFeedTooLarge", err)
	}
}

// TestRedactURL tests that secrets are stripped from logged URLs.
func TestRedactURL(t *testing.T) {
	got := redactURL("https://user:pw@cal.example.com/feed.ics?key=abc")
	if got != "https://cal.example.com/feed.ics" {
		t.Errorf("redactURL = %q", got)
	}
}
