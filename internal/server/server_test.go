package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"

	"linkchain/internal/config"
	"linkchain/internal/handlers"
	"linkchain/internal/middleware"
	"linkchain/internal/store"
)

type countingUpdates struct {
	n int
}

func (c *countingUpdates) HandleUpdate(context.Context, tgbotapi.Update) {
	c.n++
}

func newTestServer(t *testing.T, mode string) (*Server, *countingUpdates) {
	t.Helper()
	cfg := &config.Config{BotMode: mode, WebhookSecret: "s3cret"}
	updates := &countingUpdates{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "linkchain_test_total", Help: "test"}))

	s := New(cfg)
	s.RegisterRoutes(Routes{
		Probes:   handlers.NewProbeHandler(map[string]handlers.Pinger{"store": store.NewMemory()}),
		Webhook:  handlers.NewWebhookHandler(updates),
		Gatherer: reg,
	})
	return s, updates
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		method   string
		path     string
		secret   string
		body     string
		expected int
		updates  int
	}{
		{name: "liveness", mode: config.ModePolling, method: http.MethodGet, path: "/healthz", expected: http.StatusOK},
		{name: "readiness", mode: config.ModePolling, method: http.MethodGet, path: "/readyz", expected: http.StatusOK},
		{name: "webhook disabled when polling", mode: config.ModePolling, method: http.MethodPost, path: "/telegram/webhook", secret: "s3cret", body: `{"update_id":1}`, expected: http.StatusNotFound},
		{name: "webhook accepted", mode: config.ModeWebhook, method: http.MethodPost, path: "/telegram/webhook", secret: "s3cret", body: `{"update_id":1}`, expected: http.StatusOK, updates: 1},
		{name: "webhook wrong secret", mode: config.ModeWebhook, method: http.MethodPost, path: "/telegram/webhook", secret: "nope", body: `{"update_id":1}`, expected: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, updates := newTestServer(t, tt.mode)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.secret != "" {
				req.Header.Set(middleware.SecretTokenHeader, tt.secret)
			}
			resp, err := s.App.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.expected {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.expected)
			}
			if updates.n != tt.updates {
				t.Errorf("updates handled = %d, want %d", updates.n, tt.updates)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, config.ModePolling)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "linkchain_test_total 0") {
		t.Errorf("metrics body missing counter:\n%s", body)
	}
}
