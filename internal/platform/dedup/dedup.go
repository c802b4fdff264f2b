// Package dedup implements the transport-boundary idempotency guard of
// spec §4.4.6/§6: the chat platform may re-deliver inbound updates, and
// deduplication happens before an update reaches the pipeline, not inside
// it. Grounded on the teacher's clients/redis client construction idiom.
package dedup

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

// Guard reports whether a given platform update id has been seen before
// within the dedup window.
type Guard interface {
	// SeenBefore atomically marks updateID as seen and reports whether it
	// was ALREADY seen (true => drop the update, a duplicate delivery).
	SeenBefore(ctx context.Context, updateID string) (bool, error)
	Close() error
}

type redisGuard struct {
	rdb    *goredis.Client
	ttl    time.Duration
	prefix string
	log    *logger.Logger
}

func New(addr, prefix string, ttl time.Duration, log *logger.Logger) (Guard, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if prefix == "" {
		prefix = "bridgeos:dedup:"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisGuard{
		rdb:    rdb,
		ttl:    ttl,
		prefix: prefix,
		log:    log.With("component", "dedup.Guard"),
	}, nil
}

// SeenBefore uses SET NX EX: the first caller to set the key wins
// (not-seen-before); any subsequent caller within ttl gets NX=false,
// meaning the update id has already been processed.
func (g *redisGuard) SeenBefore(ctx context.Context, updateID string) (bool, error) {
	if updateID == "" {
		return false, fmt.Errorf("missing update id")
	}
	key := g.prefix + updateID
	set, err := g.rdb.SetNX(ctx, key, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup set nx: %w", err)
	}
	return !set, nil
}

func (g *redisGuard) Close() error {
	return g.rdb.Close()
}
