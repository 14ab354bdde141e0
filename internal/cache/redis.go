package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nourish-chain/liquidity-pool/internal/constants"
	"github.com/nourish-chain/liquidity-pool/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisCache keeps the rolling window of recent pool events and fans every
// event out over Pub/Sub for live consumers.
type RedisCache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisCache(client *redis.Client, logger *logrus.Logger) *RedisCache {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisCache{client: client, logger: logger}
}

// Emit records the event in the recent list (capped) and publishes it to
// the all-events channel plus token- and kind-specific channels.
func (r *RedisCache) Emit(ctx context.Context, event *models.PoolEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal pool event: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.LPush(ctx, constants.RedisKeyRecentEvents, data)
	pipe.LTrim(ctx, constants.RedisKeyRecentEvents, 0, constants.MaxRecentEvents-1)

	for _, channel := range eventChannels(event) {
		pipe.Publish(ctx, channel, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("emit pool event: %w", err)
	}
	return nil
}

// GetRecentEvents returns up to limit of the most recent events, newest first.
func (r *RedisCache) GetRecentEvents(ctx context.Context, limit int64) ([]*models.PoolEvent, error) {
	if limit <= 0 {
		limit = constants.MaxRecentEvents
	}

	raw, err := r.client.LRange(ctx, constants.RedisKeyRecentEvents, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("range recent events: %w", err)
	}

	out := make([]*models.PoolEvent, 0, len(raw))
	for _, item := range raw {
		var ev models.PoolEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			r.logger.WithError(err).Warn("skipping malformed cached event")
			continue
		}
		out = append(out, &ev)
	}
	return out, nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// eventChannels lists the Pub/Sub channels an event is published to.
func eventChannels(event *models.PoolEvent) []string {
	channels := []string{
		constants.PubSubChannelAll,
		constants.PubSubChannelKindPrefix + string(event.Kind),
	}
	if event.Token != "" {
		channels = append(channels, constants.PubSubChannelTokenPrefix+event.Token)
	}
	if event.FromToken != "" {
		channels = append(channels, constants.PubSubChannelTokenPrefix+event.FromToken)
	}
	if event.ToToken != "" {
		channels = append(channels, constants.PubSubChannelTokenPrefix+event.ToToken)
	}
	return channels
}
