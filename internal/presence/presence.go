package presence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const onlineSetKey = "rubyruby:online"

// Tracker mirrors the registry's view of who is online into a Redis set,
// so the REST surface (and anything else reading Redis) can answer
// presence queries without touching the relay process state.
//
// It is strictly best-effort: a Redis outage degrades presence reporting
// and nothing else. Message routing never consults it.
type Tracker struct {
	client *redis.Client
	logger *zap.Logger
}

// New connects to Redis from a URL. A nil tracker error leaves presence
// disabled; callers decide whether that is fatal (it is not, here).
func New(redisURL string, logger *zap.Logger) (*Tracker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Tracker{
		client: redis.NewClient(opts),
		logger: logger,
	}, nil
}

// Disabled returns a tracker whose operations are all no-ops, for running
// without Redis.
func Disabled(logger *zap.Logger) *Tracker {
	return &Tracker{logger: logger}
}

func (t *Tracker) Online(ctx context.Context, username string) {
	if t.client == nil {
		return
	}
	if err := t.client.SAdd(ctx, onlineSetKey, username).Err(); err != nil {
		t.logger.Warn("presence online update failed",
			zap.String("username", username),
			zap.Error(err),
		)
	}
}

func (t *Tracker) Offline(ctx context.Context, username string) {
	if t.client == nil {
		return
	}
	if err := t.client.SRem(ctx, onlineSetKey, username).Err(); err != nil {
		t.logger.Warn("presence offline update failed",
			zap.String("username", username),
			zap.Error(err),
		)
	}
}

// List returns the usernames currently marked online. With presence
// disabled it returns an empty list and no error.
func (t *Tracker) List(ctx context.Context) ([]string, error) {
	if t.client == nil {
		return []string{}, nil
	}
	users, err := t.client.SMembers(ctx, onlineSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list online users: %w", err)
	}
	return users, nil
}

// Reset clears the online set. Called at startup so entries from a
// previous process run do not linger.
func (t *Tracker) Reset(ctx context.Context) error {
	if t.client == nil {
		return nil
	}
	if err := t.client.Del(ctx, onlineSetKey).Err(); err != nil {
		return fmt.Errorf("reset presence: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (t *Tracker) Close() error {
	if t.client == nil {
		return nil
	}
	return t.client.Close()
}
