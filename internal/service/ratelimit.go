package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(key string) bool
	Close()
}

// TokenBucket is an in-memory per-key rate limiter built on x/time/rate.
// It is safe for concurrent use. Stale buckets are removed periodically.
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     rate.Limit
	capacity int

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter *rate.Limiter
	last    time.Time
}

const (
	bucketSweepInterval = 5 * time.Minute
	bucketIdleTTL       = 10 * time.Minute
)

// NewTokenBucket creates a rate limiter that allows up to capacity requests
// per key at once, refilling at perSecond tokens per second. Call Close to
// stop the background sweeper.
func NewTokenBucket(perSecond float64, capacity int) *TokenBucket {
	tb := &TokenBucket{
		buckets:  make(map[string]*bucket),
		rate:     rate.Limit(perSecond),
		capacity: capacity,
		stop:     make(chan struct{}),
	}
	go tb.sweep()
	return tb
}

// Allow reports whether key may proceed, consuming one token if so.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(tb.rate, tb.capacity)}
		tb.buckets[key] = b
	}
	b.last = now
	return b.limiter.AllowN(now, 1)
}

func (tb *TokenBucket) Close() {
	tb.stopOnce.Do(func() { close(tb.stop) })
}

func (tb *TokenBucket) sweep() {
	ticker := time.NewTicker(bucketSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			tb.removeIdle(time.Now().Add(-bucketIdleTTL))
		case <-tb.stop:
			return
		}
	}
}

func (tb *TokenBucket) removeIdle(cutoff time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	for key, b := range tb.buckets {
		if b.last.Before(cutoff) {
			delete(tb.buckets, key)
		}
	}
}

// RedisLimiter is a fixed-window limiter shared by every instance that
// points at the same Redis. If Redis is unreachable requests are allowed.
type RedisLimiter struct {
	client  *redis.Client
	prefix  string
	limit   int
	window  time.Duration
	timeout time.Duration
}

// NewRedisLimiter connects to Redis and verifies it answers. Each key may
// make limit requests per window.
func NewRedisLimiter(ctx context.Context, opts *redis.Options, limit int, window time.Duration) (*RedisLimiter, error) {
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisLimiter{
		client:  client,
		prefix:  "todo:ratelimit:",
		limit:   limit,
		window:  window,
		timeout: 250 * time.Millisecond,
	}, nil
}

func (rl *RedisLimiter) Allow(key string) bool {
	if rl.limit <= 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), rl.timeout)
	defer cancel()

	redisKey := rl.prefix + key
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	if _, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		ttl = pipe.TTL(ctx, redisKey)
		return nil
	}); err != nil {
		slog.Error("redis rate limiter", "op", "incr", "error", err)
		return true
	}

	// Counters without a TTL, new or orphaned by a failed EXPIRE, get one here.
	if ttl.Val() < 0 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			slog.Error("redis rate limiter", "op", "expire", "error", err)
		}
	}
	return incr.Val() <= int64(rl.limit)
}

func (rl *RedisLimiter) Close() {
	_ = rl.client.Close()
}
