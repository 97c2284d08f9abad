package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v3"
)

// UpdateHandler handles one Bot API update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u tgbotapi.Update)
}

// WebhookHandler receives updates Telegram pushes to the webhook URL.
type WebhookHandler struct {
	updates UpdateHandler
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(updates UpdateHandler) *WebhookHandler {
	return &WebhookHandler{updates: updates}
}

// Receive handles POST /telegram/webhook. Telegram retries deliveries that do
// not return 2xx, so only undecodable bodies are rejected.
func (h *WebhookHandler) Receive(c fiber.Ctx) error {
	var u tgbotapi.Update
	if err := json.Unmarshal(c.Body(), &u); err != nil {
		slog.Warn("invalid webhook body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid update",
		})
	}

	h.updates.HandleUpdate(context.WithoutCancel(c.Context()), u)
	return c.SendStatus(fiber.StatusOK)
}
