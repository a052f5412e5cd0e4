package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis fans messages out through Redis PUBLISH/SUBSCRIBE so every app
// instance reaches its own connected clients.
type Redis struct {
	rdb *goredis.Client
	log *zap.Logger
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{rdb: rdb, log: logger}, nil
}

func (r *Redis) Publish(ctx context.Context, channel, event string, payload any) error {
	msg, err := newMessage(channel, event, payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, channel, raw).Err()
}

func (r *Redis) Subscribe(ctx context.Context, channel string) (<-chan Message, func(), error) {
	sub := r.rdb.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis subscribe %s: %w", channel, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Message, subscriberBuffer)

	go func() {
		defer close(out)
		defer sub.Close()

		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok || m == nil {
					return
				}
				var msg Message
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					r.log.Warn("bad pubsub payload", zap.String("channel", channel), zap.Error(err))
					continue
				}
				select {
				case out <- msg:
				default:
					r.log.Debug("subscriber full; message dropped", zap.String("channel", channel))
				}
			}
		}
	}()

	return out, cancel, nil
}

func (r *Redis) Close() error { return r.rdb.Close() }
