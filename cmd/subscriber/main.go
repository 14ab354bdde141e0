package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nourish-chain/liquidity-pool/internal/cache"
	"github.com/nourish-chain/liquidity-pool/internal/config"
	"github.com/nourish-chain/liquidity-pool/internal/constants"
	"github.com/nourish-chain/liquidity-pool/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Example consumer of the live pool event feed. Tails the swap channel and
// one token channel alongside the firehose.
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

	logger.Info("subscriber starting")

	// Firehose: every pool event
	go func() {
		_ = eventCache.SubscribeChannel(ctx, constants.PubSubChannelAll, func(ev *models.PoolEvent) {
			logger.WithFields(logrus.Fields{
				"kind":    ev.Kind,
				"account": ev.Account,
			}).Info("event")
		})
	}()

	// Swaps only
	go func() {
		channel := constants.PubSubChannelKindPrefix + string(models.KindTokenSwapped)
		_ = eventCache.SubscribeChannel(ctx, channel, func(ev *models.PoolEvent) {
			logger.WithFields(logrus.Fields{
				"pair":       ev.FromToken + "/" + ev.ToToken,
				"amount_in":  ev.AmountIn,
				"amount_out": ev.AmountOut,
				"fee":        ev.Fee,
			}).Info("swap")
		})
	}()

	// Everything touching NRSH
	go func() {
		_ = eventCache.SubscribeChannel(ctx, constants.PubSubChannelTokenPrefix+"NRSH", func(ev *models.PoolEvent) {
			logger.WithField("kind", ev.Kind).Info("NRSH activity")
		})
	}()

	<-sigCh
	logger.Info("shutting down subscriber")
	cancel()
}
