package main

import (
	"context"
	"flag"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/srcops/notifyd/internal/actions"
	"github.com/srcops/notifyd/internal/chat"
	"github.com/srcops/notifyd/internal/config"
	"github.com/srcops/notifyd/internal/dedup"
	"github.com/srcops/notifyd/internal/github"
	"github.com/srcops/notifyd/internal/notify"
	"github.com/srcops/notifyd/internal/observability"
	"github.com/srcops/notifyd/internal/roster"
	"github.com/srcops/notifyd/internal/server"
	"github.com/srcops/notifyd/internal/webhook"
)

func main() {
	configPath := flag.String("config", "notifyd.toml", "path to notifyd config file")
	flag.Parse()

	logger := observability.InitLogger("notifyd")
	observability.RegisterMetrics()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("config_load_failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store dedup.Store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis_unreachable")
		}
		store = dedup.NewRedis(client, cfg.Dedup.TTL())
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("dedup_using_redis")
	} else {
		store = dedup.NewMemory(cfg.Dedup.TTL(), cfg.Dedup.MaxEntries)
		logger.Info().Msg("dedup_using_memory")
	}

	var sender chat.Sender = chat.Nop{}
	if cfg.Chat.Enabled {
		sender = chat.NewClient(cfg.Chat.WebhookURL, logger)
	} else {
		logger.Warn().Msg("chat_notifications_disabled")
	}

	notifier := notify.New(sender, store, logger)
	go notifier.Run(ctx)

	gh := github.NewClient(cfg.GitHub.APIURL, cfg.GitHub.Token, logger)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	bot := actions.NewBot(gh, notifier, roster.New(cfg.Roster, rng), cfg.GitHub, logger)

	dispatcher := webhook.NewDispatcher(logger)
	bot.Register(dispatcher)

	srv := server.New(cfg.Server, cfg.GitHub.WebhookSecret, dispatcher, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server_failed")
	}
	logger.Info().Msg("shutdown_complete")
}
