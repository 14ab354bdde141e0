package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nourish-chain/liquidity-pool/internal/cache"
	"github.com/nourish-chain/liquidity-pool/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// The indexer tails the live pool event feed from Redis Pub/Sub and persists
// every event into ClickHouse for analytics and audit.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	eventCache := cache.NewRedisCache(rclient, logger)

	store, err := cache.NewClickHouseStore(ctx, cache.ClickHouseConfig{
		Addr:     cfg.ClickHouseAddr,
		Database: cfg.ClickHouseDatabase,
		Username: cfg.ClickHouseUsername,
		Password: cfg.ClickHousePassword,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to ClickHouse")
	}
	defer store.Close()

	events, err := eventCache.SubscribeEvents(ctx)
	if err != nil {
		logger.WithError(err).Fatal("failed to subscribe to event feed")
	}

	logger.Info("indexer running")

	go func() {
		<-sigCh
		logger.Info("shutting down indexer")
		cancel()
	}()

	for ev := range events {
		entry := logger.WithFields(logrus.Fields{
			"kind":    ev.Kind,
			"account": ev.Account,
		})
		if err := store.InsertEvent(ctx, ev); err != nil {
			entry.WithError(err).Error("failed to persist event")
			continue
		}
		entry.Debug("event persisted")
	}
}
