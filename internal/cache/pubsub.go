package cache

import (
	"context"
	"encoding/json"

	"github.com/nourish-chain/liquidity-pool/internal/constants"
	"github.com/nourish-chain/liquidity-pool/internal/models"
	"github.com/nourish-chain/liquidity-pool/internal/storage"
)

// SubscribeEvents subscribes to the all-events channel and returns a channel
// of decoded events. The channel closes when ctx is cancelled.
func (r *RedisCache) SubscribeEvents(ctx context.Context) (<-chan *models.PoolEvent, error) {
	pubsub := r.client.Subscribe(ctx, constants.PubSubChannelAll)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan *models.PoolEvent)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.PoolEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					r.logger.WithError(err).Warn("skipping malformed event payload")
					continue
				}
				select {
				case out <- &ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// SubscribeChannel delivers events from one specific channel (e.g. a token
// or kind channel) to handler until ctx is cancelled.
func (r *RedisCache) SubscribeChannel(ctx context.Context, channel string, handler storage.EventHandler) error {
	pubsub := r.client.Subscribe(ctx, channel)
	defer pubsub.Close()

	r.logger.WithField("channel", channel).Info("subscribed to event channel")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev models.PoolEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				r.logger.WithError(err).Warn("skipping malformed event payload")
				continue
			}
			handler(&ev)
		}
	}
}
