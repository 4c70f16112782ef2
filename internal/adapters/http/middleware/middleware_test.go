package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// TestRateLimiter_Allow tests bucket exhaustion and refill.
func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Second)
	defer rl.Close()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request within interval should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other ip should have its own bucket")
	}

	now = now.Add(time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Error("bucket should refill after interval")
	}
}

// TestRateLimiter_PartialIntervalDoesNotReset verifies rapid requests cannot dodge the limit.
func TestRateLimiter_PartialIntervalDoesNotReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	defer rl.Close()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("ip")
	for i := 0; i < 5; i++ {
		now = now.Add(300 * time.Millisecond)
		if i < 2 && rl.Allow("ip") {
			t.Fatalf("request %d allowed before a full interval elapsed", i)
		}
	}
}

// TestRateLimit_Middleware tests the 429 response, port stripping and the health exemption.
func TestRateLimit_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	defer rl.Close()
	h := RateLimit(rl)(okHandler)

	send := func(path, remote string) int {
		req := httptest.NewRequest("GET", path, nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send("/api/programs", "10.0.0.1:1111"); code != http.StatusOK {
		t.Fatalf("first = %d", code)
	}
	if code := send("/api/programs", "10.0.0.1:2222"); code != http.StatusTooManyRequests {
		t.Errorf("second from new port = %d, want 429", code)
	}
	if code := send("/health", "10.0.0.1:3333"); code != http.StatusOK {
		t.Errorf("health = %d, want 200", code)
	}
}

// TestSecurityHeaders verifies the OWASP headers are set.
func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}

// TestCSRF tests that form posts need a token and JSON requests do not.
func TestCSRF(t *testing.T) {
	key := []byte(strings.Repeat("k", 32))
	h := CSRF(key, false, nil)(okHandler)

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"json post exempt", "POST", "application/json", http.StatusOK},
		{"form post without token", "POST", "application/x-www-form-urlencoded", http.StatusForbidden},
		{"safe get", "GET", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/programs", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

// TestRecover verifies panics become 500 responses.
func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/x", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

// TestChain verifies the last middleware is outermost.
func TestChain(t *testing.T) {
	var order []string
	mk := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	Chain(okHandler, mk("inner"), mk("outer")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("order = %v", order)
	}
}
