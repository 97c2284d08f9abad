package main

import (
	"context"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"linkchain/internal/chain"
	"linkchain/internal/config"
	"linkchain/internal/conversation"
	"linkchain/internal/db"
	"linkchain/internal/handlers"
	"linkchain/internal/jobs"
	"linkchain/internal/metrics"
	"linkchain/internal/render"
	"linkchain/internal/server"
	"linkchain/internal/session"
	"linkchain/internal/store"
	"linkchain/internal/telegram"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot and its HTTP endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// backends are the stores selected by configuration.
type backends struct {
	links   store.LinkStore
	states  store.StateStore
	stats   store.Stats
	pingers map[string]handlers.Pinger
	// database is set when any backend lives in PostgreSQL.
	database *db.DB
	closeAll func()
}

func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	b := &backends{pingers: make(map[string]handlers.Pinger)}
	var closers []func()
	b.closeAll = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.UsesPostgres() {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		closers = append(closers, database.Close)

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			b.closeAll()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Println("Migrations completed successfully")
		b.database = database
		b.pingers["database"] = database
	}

	var mem *store.Memory
	memory := func() *store.Memory {
		if mem == nil {
			mem = store.NewMemory()
		}
		return mem
	}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		b.links, b.stats = b.database, b.database
	case config.BackendMemory:
		b.links, b.stats = memory(), memory()
		b.pingers["store"] = memory()
	}

	switch cfg.StateBackend {
	case config.BackendPostgres:
		b.states = b.database
	case config.BackendRedis:
		sessions := session.New(cfg.RedisURL)
		closers = append(closers, func() {
			if err := sessions.Close(); err != nil {
				log.Printf("Failed to close redis: %v", err)
			}
		})
		b.states = sessions
		b.pingers["redis"] = sessions
	case config.BackendMemory:
		b.states = memory()
	}

	return b, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	yamlCfg, err := config.LoadYAMLConfig(cfg.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", cfg.ConfigFile, err)
	}
	renderer, err := render.New(yamlCfg.Copy)
	if err != nil {
		return err
	}

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.closeAll()

	bot, err := telegram.NewBot(cfg.BotToken, cfg.BotDebug)
	if err != nil {
		return err
	}
	log.Printf("Authorized as @%s", bot.Self.UserName)

	client := telegram.NewClient(bot, bot.Self.UserName)
	machine := conversation.New(b.links, b.states, cfg.StateTTL)
	chains := chain.NewService(b.links, renderer, client, cfg.ArchiveTimeout)
	dispatcher := handlers.NewDispatcher(b.links, machine, chains, client, cfg.EventTimeout)

	metrics.Init(prometheus.DefaultRegisterer, b.stats)

	srv := server.New(cfg)
	srv.RegisterRoutes(server.Routes{
		Probes:   handlers.NewProbeHandler(b.pingers),
		Webhook:  handlers.NewWebhookHandler(dispatcher),
		Gatherer: prometheus.DefaultGatherer,
	})

	var poller *telegram.Poller
	switch cfg.BotMode {
	case config.ModeWebhook:
		if err := telegram.SetWebhook(bot, cfg.WebhookURL, cfg.WebhookSecret, false); err != nil {
			return err
		}
		log.Printf("Receiving updates at %s", cfg.WebhookURL)
	case config.ModePolling:
		// getUpdates is refused while a webhook is registered.
		if err := telegram.DeleteWebhook(bot, false); err != nil {
			return err
		}
		poller = telegram.NewPoller(bot, dispatcher.HandleUpdate)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		return srv.Shutdown()
	})

	if poller != nil {
		g.Go(func() error {
			return poller.Run(gctx)
		})
	}

	if cfg.StateBackend == config.BackendPostgres {
		janitor := jobs.NewStateJanitor(b.database, cfg.JanitorInterval)
		g.Go(func() error {
			janitor.Start(gctx)
			return nil
		})
	}

	err = g.Wait()
	log.Println("Server exited")
	return err
}
