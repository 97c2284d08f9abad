package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v3"
)

// SecretTokenHeader carries the secret registered with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookSecret rejects webhook deliveries that do not carry secret.
// An empty secret disables the check.
func WebhookSecret(secret string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if secret == "" {
			return c.Next()
		}
		got := c.Get(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid secret token",
			})
		}
		return c.Next()
	}
}
