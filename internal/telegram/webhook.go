package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SetWebhook registers url as the bot's webhook. Telegram echoes secret back
// in the X-Telegram-Bot-Api-Secret-Token header of every delivery.
func SetWebhook(bot *tgbotapi.BotAPI, url, secret string, dropPending bool) error {
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)
	params.AddBool("drop_pending_updates", dropPending)
	if err := params.AddInterface("allowed_updates", []string{"message", "callback_query"}); err != nil {
		return err
	}

	if _, err := bot.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	return nil
}

// DeleteWebhook removes the webhook so updates can be polled again.
func DeleteWebhook(bot *tgbotapi.BotAPI, dropPending bool) error {
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}
