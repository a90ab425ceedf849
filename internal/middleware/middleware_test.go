package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenBucket(t *testing.T) {
	now := time.Unix(1000, 0)
	tb := NewTokenBucket(2)
	tb.now = func() time.Time { return now }
	tb.lastSec = now.Unix()
	if !tb.Allow() || !tb.Allow() {
		t.Fatal("bucket refused within capacity")
	}
	if tb.Allow() {
		t.Error("bucket allowed beyond capacity")
	}
	now = now.Add(time.Second)
	if !tb.Allow() {
		t.Error("bucket not refilled on next second")
	}
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if h := RateLimit(next); h == nil {
		t.Fatal("nil handler")
	}
}

func TestRateLimitRejects(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_QPS", "1")
	h := RateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	codes := map[int]int{}
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[rec.Code]++
	}
	if codes[http.StatusTooManyRequests] == 0 {
		t.Errorf("no request limited: %v", codes)
	}
}

func TestEdgeGeo(t *testing.T) {
	var got []bool
	h := Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pt, ok := EdgeGeo(r.Context())
		got = append(got, ok)
		if ok && (pt.Lat != 32.5 || pt.Lon != -97.25) {
			t.Errorf("point = %+v", pt)
		}
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-EO-Geo-Latitude", "32.5")
	req.Header.Set("X-EO-Geo-Longitude", "-97.25")
	h.ServeHTTP(httptest.NewRecorder(), req)

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.Header.Set("X-EO-Geo-Latitude", "north")
	h.ServeHTTP(httptest.NewRecorder(), bad)

	if len(got) != 2 || !got[0] || got[1] {
		t.Errorf("got %v", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://maps.example.org")
	h := Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodOptions, "/selection", nil)
	req.Header.Set("Origin", "https://maps.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://maps.example.org" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
