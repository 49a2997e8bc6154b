package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 3})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d rejected under the limit", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("request over the limit was allowed")
	}
}

func TestAllowPerClient(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1})
	defer l.Stop()

	if !l.Allow("1.1.1.1") {
		t.Error("first client rejected")
	}
	if !l.Allow("2.2.2.2") {
		t.Error("second client throttled by first client's budget")
	}
	if l.ActiveClients() != 2 {
		t.Errorf("ActiveClients = %d, want 2", l.ActiveClients())
	}
}

func TestWindowReset(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1})
	defer l.Stop()

	l.Allow("1.2.3.4")
	if l.Allow("1.2.3.4") {
		t.Fatal("second request in window was allowed")
	}

	// Age the window past a minute.
	l.mu.Lock()
	l.clients["1.2.3.4"].lastRequest = time.Now().Add(-2 * time.Minute)
	l.mu.Unlock()

	if !l.Allow("1.2.3.4") {
		t.Error("request after window reset was rejected")
	}
}

func TestMiddleware(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1})
	defer l.Stop()

	handler := l.Middleware(func(r *http.Request) string { return r.RemoteAddr }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "1.2.3.4:5678"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Error("missing Retry-After header")
	}
}

func TestDropStale(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 10})
	defer l.Stop()

	l.Allow("1.2.3.4")
	l.mu.Lock()
	l.clients["1.2.3.4"].lastRequest = time.Now().Add(-time.Hour)
	l.mu.Unlock()

	l.dropStale()
	if l.ActiveClients() != 0 {
		t.Errorf("ActiveClients after cleanup = %d, want 0", l.ActiveClients())
	}
}
