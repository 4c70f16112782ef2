package layout_test

import (
	"errors"
	"testing"

	"gymboard/internal/domain/layout"
)

// TestParseClock tests HH:MM parsing.
func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"9:05", 545, false},
		{"23:59", 1439, false},
		{"24:00", 1440, false},
		{" 18:00 ", 1080, false},
		{"24:01", 0, true},
		{"12:60", 0, true},
		{"1200", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
		{"7:5", 0, true},
		{"+9:30", 0, true},
		{"9:+5", 0, true},
		{"-0:00", 0, true},
		{"09:-1", 0, true},
		{"0x:10", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := layout.ParseClock(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, layout.ErrInvalidClock) {
				t.Errorf("error %v is not ErrInvalidClock", err)
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

// TestFormatClock tests minute rendering.
func TestFormatClock(t *testing.T) {
	if got := layout.FormatClock(570); got != "09:30" {
		t.Errorf("FormatClock(570) = %q", got)
	}
	if got := layout.FormatClock(1440); got != "24:00" {
		t.Errorf("FormatClock(1440) = %q", got)
	}
}

// TestNewWindow tests window construction.
func TestNewWindow(t *testing.T) {
	w, err := layout.NewWindow("06:00", "22:00")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if w.StartMinute != 360 || w.EndMinute != 1320 || w.Length() != 960 {
		t.Errorf("window = %+v", w)
	}
	if _, err := layout.NewWindow("22:00", "06:00"); !errors.Is(err, layout.ErrInvalidWindow) {
		t.Errorf("reversed window error = %v, want ErrInvalidWindow", err)
	}
	if _, err := layout.NewWindow("6am", "22:00"); !errors.Is(err, layout.ErrInvalidClock) {
		t.Errorf("bad start error = %v, want ErrInvalidClock", err)
	}
}

// TestWindow_Clip tests clamping intervals to the visible window.
func TestWindow_Clip(t *testing.T) {
	w := layout.Window{StartMinute: 360, EndMinute: 1320}
	tests := []struct {
		name         string
		start, end   int
		wantS, wantE int
		wantOK       bool
	}{
		{"inside", 600, 660, 600, 660, true},
		{"starts before window", 300, 420, 360, 420, true},
		{"ends after window", 1260, 1400, 1260, 1320, true},
		{"entirely before", 200, 360, 0, 0, false},
		{"entirely after", 1320, 1380, 0, 0, false},
		{"zero width", 600, 600, 0, 0, false},
		{"reversed", 700, 600, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e, ok := w.Clip(tt.start, tt.end)
			if ok != tt.wantOK || s != tt.wantS || e != tt.wantE {
				t.Errorf("Clip(%d,%d) = (%d,%d,%v), want (%d,%d,%v)", tt.start, tt.end, s, e, ok, tt.wantS, tt.wantE, tt.wantOK)
			}
		})
	}
}

// TestCollapse tests "+N more" reporting.
func TestCollapse(t *testing.T) {
	events := []layout.Event{
		ev("A", 0, 60), ev("B", 0, 60), ev("C", 0, 60), ev("D", 10, 50),
		ev("E", 120, 180),
	}
	res := layout.Compute(events)

	over := layout.Collapse(res, 2)
	if len(over) != 1 {
		t.Fatalf("overflows = %d, want 1", len(over))
	}
	if over[0].ClusterID != 0 || over[0].Visible != 2 || over[0].Hidden != 2 {
		t.Errorf("overflow = %+v, want cluster 0 visible 2 hidden 2", over[0])
	}
	if !layout.Hidden(res, 2, 2) || layout.Hidden(res, 1, 2) || layout.Hidden(res, 4, 2) {
		t.Errorf("Hidden flags wrong for positions %+v", res.Positions)
	}

	if got := layout.Collapse(res, 0); got != nil {
		t.Errorf("Collapse with 0 = %+v, want nil", got)
	}
	if got := layout.Collapse(res, 4); len(got) != 0 {
		t.Errorf("Collapse with 4 = %+v, want none", got)
	}
}
