package main

import (
	"errors"
	"log"

	"github.com/spf13/cobra"

	"linkchain/internal/telegram"
)

func newWebhookCommand() *cobra.Command {
	var dropPending bool

	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the bot's Telegram webhook registration",
	}
	cmd.PersistentFlags().BoolVar(&dropPending, "drop-pending", false, "discard updates queued at Telegram")

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Register WEBHOOK_URL with Telegram",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.WebhookURL == "" {
				return errors.New("WEBHOOK_URL is required")
			}
			bot, err := telegram.NewBot(cfg.BotToken, cfg.BotDebug)
			if err != nil {
				return err
			}
			if err := telegram.SetWebhook(bot, cfg.WebhookURL, cfg.WebhookSecret, dropPending); err != nil {
				return err
			}
			log.Printf("Webhook set to %s", cfg.WebhookURL)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook so updates can be polled",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			bot, err := telegram.NewBot(cfg.BotToken, cfg.BotDebug)
			if err != nil {
				return err
			}
			if err := telegram.DeleteWebhook(bot, dropPending); err != nil {
				return err
			}
			log.Println("Webhook deleted")
			return nil
		},
	})

	return cmd
}
