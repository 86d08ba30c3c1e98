package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisBroker relays envelopes between replicas over a redis pub/sub channel.
type RedisBroker struct {
	Client  redis.UniversalClient
	Channel string
	Logger  *slog.Logger
}

func (b *RedisBroker) Publish(ctx context.Context, env Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.Client.Publish(ctx, b.Channel, raw).Err()
}

// Subscribe delivers every envelope published on the channel until ctx ends.
func (b *RedisBroker) Subscribe(ctx context.Context, deliver func(Envelope)) error {
	sub := b.Client.Subscribe(ctx, b.Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.Logger.Warn("realtime: bad envelope on channel", slog.Any("error", err))
				continue
			}
			deliver(env)
		}
	}
}
