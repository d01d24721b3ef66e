package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestIPRateLimiter_PerIP(t *testing.T) {
	l := NewIPRateLimiter(rate.Every(time.Hour), 2)
	h := l.Middleware(okHandler)

	do := func(remote string) int {
		req := httptest.NewRequest("POST", "/api/users", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 2; i++ {
		if code := do("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i, code)
		}
	}
	if code := do("10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Errorf("third request from same IP: got %d, want 429", code)
	}
	if code := do("10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("other IP: got %d, want 200", code)
	}
}

func TestIPRateLimiter_EvictsIdleClients(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewIPRateLimiter(rate.Every(time.Hour), 1)
	l.now = func() time.Time { return now }

	if !l.allow("10.0.0.1") {
		t.Fatal("first request should pass")
	}
	if l.allow("10.0.0.1") {
		t.Fatal("second request should be limited")
	}

	now = now.Add(limiterIdleTTL + time.Minute)
	l.allow("10.0.0.9")
	if _, ok := l.clients["10.0.0.1"]; ok {
		t.Error("idle client should have been evicted")
	}
}

func TestPerMinute_Disabled(t *testing.T) {
	l := PerMinute(0, 10)
	if l != nil {
		t.Fatal("PerMinute(0) should return nil")
	}
	rr := httptest.NewRecorder()
	l.Middleware(okHandler).ServeHTTP(rr, httptest.NewRequest("POST", "/", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("nil limiter should pass requests, got %d", rr.Code)
	}
}

func TestWritesOnly(t *testing.T) {
	block := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
	}
	h := WritesOnly(block)(okHandler)

	for method, want := range map[string]int{
		"GET":    http.StatusOK,
		"HEAD":   http.StatusOK,
		"POST":   http.StatusTeapot,
		"PATCH":  http.StatusTeapot,
		"DELETE": http.StatusTeapot,
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/api/users", nil))
		if rr.Code != want {
			t.Errorf("%s: got %d, want %d", method, rr.Code, want)
		}
	}
}

func TestMaxBytes(t *testing.T) {
	var readErr error
	h := MaxBytes(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	req := httptest.NewRequest("POST", "/api/users", strings.NewReader(`{"username":"long enough"}`))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if _, ok := readErr.(*http.MaxBytesError); !ok {
		t.Errorf("POST over limit: got %v, want *http.MaxBytesError", readErr)
	}

	readErr = nil
	req = httptest.NewRequest("DELETE", "/api/users/1", strings.NewReader(`{"username":"long enough"}`))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if readErr != nil {
		t.Errorf("DELETE should not be capped: %v", readErr)
	}
}

func TestRecoverer(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := chimw.RequestID(Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/users", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"internal server error"`) {
		t.Errorf("body: %s", rr.Body.String())
	}
	if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), "boom") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestRequestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := RequestLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/users", nil))

	out := buf.String()
	for _, want := range []string{`"msg":"request"`, `"method":"POST"`, `"path":"/api/users"`, `"status":201`, `"size":5`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %s: %s", want, out)
		}
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example.com"})(okHandler)

	req := httptest.NewRequest("OPTIONS", "/api/users", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Allow-Origin: got %q", got)
	}

	req = httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted origin got Allow-Origin %q", got)
	}
}

func TestCORS_NoOrigins(t *testing.T) {
	h := CORS(nil)(okHandler)
	req := httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS headers, got %q", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(true)(okHandler)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/users", nil))
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff")
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Error("api responses should be no-store")
	}
	if rr.Header().Get("Strict-Transport-Security") == "" {
		t.Error("missing HSTS")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Header().Get("Cache-Control") != "" {
		t.Error("home page should stay cacheable")
	}
}
