package alerts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tv-kite-bridge/internal/config"

	"go.uber.org/zap"
)

func TestSendDisabledIsNoop(t *testing.T) {
	tg := NewTelegram(config.TelegramConfig{Enabled: false}, zap.NewNop())
	if err := tg.Send(context.Background(), "GOLD: NONE -> LONG"); err != nil {
		t.Fatalf("disabled send should be a no-op: %v", err)
	}
}

func TestSendRequiresCredentials(t *testing.T) {
	tg := newTelegram(config.TelegramConfig{Enabled: true}, zap.NewNop(), telegramBaseURL, nil)
	if err := tg.Send(context.Background(), "msg"); err == nil {
		t.Fatalf("expected error without token/chat_id")
	}
}

func TestSendPostsMessage(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottoken/sendMessage" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	cfg := config.TelegramConfig{Enabled: true, Token: "token", ChatID: "42"}
	tg := newTelegram(cfg, zap.NewNop(), srv.URL, srv.Client())
	if err := tg.Send(context.Background(), "GOLD: LONG -> SHORT (GOLD25FEBFUT)"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["chat_id"] != "42" || got["text"] != "GOLD: LONG -> SHORT (GOLD25FEBFUT)" {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestSendSurfacesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := config.TelegramConfig{Enabled: true, Token: "token", ChatID: "42"}
	tg := newTelegram(cfg, zap.NewNop(), srv.URL, srv.Client())
	if err := tg.Send(context.Background(), "msg"); err == nil {
		t.Fatalf("expected error for http 400")
	}
}
