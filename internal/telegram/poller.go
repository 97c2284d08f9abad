package telegram

import (
	"context"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// pollTimeout is the long-poll timeout in seconds.
const pollTimeout = 60

// UpdateHandler handles one update as an independent unit of work.
type UpdateHandler func(ctx context.Context, u tgbotapi.Update)

// Poller receives updates with getUpdates long polling.
type Poller struct {
	bot    *tgbotapi.BotAPI
	handle UpdateHandler
}

// NewPoller creates a poller delivering updates to handle.
func NewPoller(bot *tgbotapi.BotAPI, handle UpdateHandler) *Poller {
	return &Poller{bot: bot, handle: handle}
}

// Run polls until ctx is cancelled, then waits for in-flight updates.
func (p *Poller) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeout
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	updates := p.bot.GetUpdatesChan(cfg)
	log.Printf("Polling for updates as @%s", p.bot.Self.UserName)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			p.bot.StopReceivingUpdates()
			log.Println("Stopped polling for updates")
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.handle(ctx, u)
			}()
		}
	}
}
