package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiterStore_AllowAndCleanup(t *testing.T) {
	// allow 5 events immediately then the 6th should be rejected
	s := NewLimiterStore(5, 5, 100*time.Millisecond)
	defer s.Stop()

	key := "203.0.113.9"
	for i := 0; i < 5; i++ {
		if !s.Allow(key) {
			t.Fatalf("expected allow at iteration %d", i)
		}
	}

	if s.Allow(key) {
		t.Fatalf("expected limiter to block after burst consumed")
	}
}

func TestRateLimit_PerClientIP(t *testing.T) {
	s := NewLimiterStore(1, 1, time.Minute)
	defer s.Stop()

	handler := RateLimit(s)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := do("203.0.113.1:1234"); got != http.StatusOK {
		t.Fatalf("first request: got %d", got)
	}
	if got := do("203.0.113.1:5678"); got != http.StatusTooManyRequests {
		t.Fatalf("second request from same IP: got %d", got)
	}

	// a different client has its own budget
	if got := do("203.0.113.2:1234"); got != http.StatusOK {
		t.Fatalf("request from other IP: got %d", got)
	}
}
