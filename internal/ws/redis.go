package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	relayChannel = "campus:realtime"

	// hash of user id -> number of instances holding a joined channel
	presenceKey = "campus:presence"
)

// NewRedisClient parses a redis URL and checks the server is reachable.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL cannot be empty")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type relayEnvelope struct {
	Origin string          `json:"origin"`
	UserID uint            `json:"user_id"`
	Frame  json.RawMessage `json:"frame"`
}

// RedisRelay forwards deliveries between instances over redis pub/sub.
// Frames an instance published itself are ignored on receipt, since the
// publishing hub already delivered them locally.
type RedisRelay struct {
	client  *redis.Client
	channel string
	origin  string
	log     *slog.Logger
}

func NewRedisRelay(client *redis.Client, log *slog.Logger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: relayChannel,
		origin:  uuid.NewString(),
		log:     log,
	}
}

func (r *RedisRelay) Publish(ctx context.Context, userID uint, frame []byte) error {
	body, err := json.Marshal(relayEnvelope{Origin: r.origin, UserID: userID, Frame: frame})
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, body).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", r.channel, err)
	}
	return nil
}

// Run subscribes to the relay channel and hands frames from other instances
// to deliver until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context, deliver func(userID uint, frame []byte) int) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.channel, err)
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
			var env relayEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.log.Warn("bad relay payload", "error", err)
				continue
			}
			if env.Origin == r.origin {
				continue
			}
			deliver(env.UserID, env.Frame)
		}
	}
}

// RedisPresence counts, per user, the instances holding a joined channel.
type RedisPresence struct {
	client *redis.Client
	key    string
}

func NewRedisPresence(client *redis.Client) *RedisPresence {
	return &RedisPresence{client: client, key: presenceKey}
}

func (p *RedisPresence) MarkOnline(ctx context.Context, userID uint) error {
	field := strconv.FormatUint(uint64(userID), 10)
	if err := p.client.HIncrBy(ctx, p.key, field, 1).Err(); err != nil {
		return fmt.Errorf("mark user %d online: %w", userID, err)
	}
	return nil
}

func (p *RedisPresence) MarkOffline(ctx context.Context, userID uint) error {
	field := strconv.FormatUint(uint64(userID), 10)

	pipe := p.client.TxPipeline()
	left := pipe.HIncrBy(ctx, p.key, field, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mark user %d offline: %w", userID, err)
	}
	if left.Val() <= 0 {
		if err := p.client.HDel(ctx, p.key, field).Err(); err != nil {
			return fmt.Errorf("clear presence for user %d: %w", userID, err)
		}
	}
	return nil
}

func (p *RedisPresence) IsOnline(ctx context.Context, userID uint) (bool, error) {
	field := strconv.FormatUint(uint64(userID), 10)
	n, err := p.client.HGet(ctx, p.key, field).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("presence for user %d: %w", userID, err)
	}
	return n > 0, nil
}
