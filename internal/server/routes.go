package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linkchain/internal/config"
	"linkchain/internal/handlers"
	"linkchain/internal/middleware"
)

// Routes holds the handlers the server exposes.
type Routes struct {
	Probes *handlers.ProbeHandler
	// Webhook is nil when updates are polled.
	Webhook  *handlers.WebhookHandler
	Gatherer prometheus.Gatherer
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(r Routes) {
	// Kubernetes probes
	s.App.Get("/healthz", r.Probes.Liveness)
	s.App.Get("/readyz", r.Probes.Readiness)

	// Prometheus metrics
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{})))

	// Telegram webhook
	if r.Webhook != nil && s.Cfg.BotMode == config.ModeWebhook {
		s.App.Post("/telegram/webhook", middleware.WebhookSecret(s.Cfg.WebhookSecret), r.Webhook.Receive)
	}
}
