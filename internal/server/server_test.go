package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"tv-kite-bridge/internal/signal"

	"go.uber.org/zap"
)

type fakeEngine struct {
	mu       sync.Mutex
	readyErr error
	calls    []call
}

type call struct {
	base      string
	direction signal.Direction
}

func (f *fakeEngine) Ready() error { return f.readyErr }

func (f *fakeEngine) Handle(ctx context.Context, base string, direction signal.Direction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{base: base, direction: direction})
}

func newTestServer(t *testing.T, engine *fakeEngine) *Server {
	t.Helper()
	s, err := New(Config{Engine: engine, Log: zap.NewNop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func post(s *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestWebhookDispatchesBuy(t *testing.T) {
	engine := &fakeEngine{}
	s := newTestServer(t, engine)

	rec := post(s, `{"symbol":"NIFTY-GOLD","signal":"buy"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(engine.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(engine.calls))
	}
	got := engine.calls[0]
	if got.base != "NIFTYGOLD" || got.direction != signal.Long {
		t.Fatalf("dispatched %q %q", got.base, got.direction)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestWebhookMessageKeySell(t *testing.T) {
	engine := &fakeEngine{}
	s := newTestServer(t, engine)

	rec := post(s, `{"symbol":"GOLD","message":"SELL"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(engine.calls) != 1 || engine.calls[0].direction != signal.Short {
		t.Fatalf("calls = %+v", engine.calls)
	}
}

func TestWebhookIgnoresUnknownSignal(t *testing.T) {
	engine := &fakeEngine{}
	s := newTestServer(t, engine)

	rec := post(s, `{"symbol":"GOLD","signal":"hold"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ignored"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if len(engine.calls) != 0 {
		t.Fatalf("unexpected dispatch: %+v", engine.calls)
	}
}

func TestWebhookIgnoresEmptySymbol(t *testing.T) {
	engine := &fakeEngine{}
	s := newTestServer(t, engine)

	rec := post(s, `{"symbol":"123-456","signal":"buy"}`)
	if !strings.Contains(rec.Body.String(), `"status":"ignored"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if len(engine.calls) != 0 {
		t.Fatalf("unexpected dispatch: %+v", engine.calls)
	}
}

func TestWebhookBrokerUnavailable(t *testing.T) {
	engine := &fakeEngine{readyErr: errors.New("token missing")}
	s := newTestServer(t, engine)

	rec := post(s, `{"symbol":"GOLD","signal":"buy"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if len(engine.calls) != 0 {
		t.Fatalf("unexpected dispatch: %+v", engine.calls)
	}
}

func TestWebhookMalformedBody(t *testing.T) {
	engine := &fakeEngine{}
	s := newTestServer(t, engine)

	rec := post(s, `{"symbol":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(engine.calls) != 0 {
		t.Fatalf("unexpected dispatch: %+v", engine.calls)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &fakeEngine{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMetricsMounted(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s, err := New(Config{Engine: &fakeEngine{}, MetricsHandler: handler})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestNewRequiresEngine(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for missing engine")
	}
}
