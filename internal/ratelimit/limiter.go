package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/adapter"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
)

const (
	// DefaultKeyPrefix namespaces limiter keys in redis
	DefaultKeyPrefix = "sct:ratelimit:"

	// maxLocalKeys bounds the number of per-key local limiters kept in memory
	maxLocalKeys = 10000
)

// Config holds the limiter configuration
type Config struct {
	// PerMinute is the number of requests a key may make per minute
	PerMinute int
	// KeyPrefix is prepended to every redis key
	KeyPrefix string
}

// Decision is the outcome of a single Allow call
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed
//
//go:generate mockgen -source=limiter.go -destination=../mocks/ratelimit.go -package=mocks -mock_names=Limiter=MockLimiter
type Limiter interface {
	// Allow consumes one token for key and reports whether the request may proceed
	Allow(ctx context.Context, key string) (Decision, error)
}

type limiter struct {
	config      Config
	distributed adapter.RedisRateLimiter
	clock       adapter.Clock

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// NewLimiter creates a fixed-rate limiter backed by redis_rate.
// A nil distributed limiter keeps all state in process.
// Redis errors fall back to the in-process limiter for that call.
func NewLimiter(cfg Config, distributed adapter.RedisRateLimiter, clock adapter.Clock) (Limiter, error) {
	if cfg.PerMinute <= 0 {
		return nil, fmt.Errorf("per_minute must be positive, got %d", cfg.PerMinute)
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}

	logger.Info("Rate limiter initialized",
		zap.Int("per_minute", cfg.PerMinute),
		zap.Bool("distributed", distributed != nil))

	return &limiter{
		config:      cfg,
		distributed: distributed,
		clock:       clock,
		local:       make(map[string]*rate.Limiter),
	}, nil
}

// Allow consumes one token for key
func (l *limiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l.distributed != nil {
		res, err := l.distributed.Allow(ctx, l.config.KeyPrefix+key, redis_rate.PerMinute(l.config.PerMinute))
		if err == nil {
			return Decision{
				Allowed:    res.Allowed > 0,
				Remaining:  res.Remaining,
				RetryAfter: nonNegative(res.RetryAfter),
			}, nil
		}

		if ctx.Err() != nil {
			return Decision{}, ctx.Err()
		}

		logger.WarnCtx(ctx, "Redis rate limiter error, falling back to local",
			zap.String("key", key),
			zap.Error(err))
	}

	return l.allowLocal(key), nil
}

// allowLocal applies the same rate with an in-process token bucket
func (l *limiter) allowLocal(key string) Decision {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.local[key]
	if !ok {
		if len(l.local) >= maxLocalKeys {
			l.local = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.config.PerMinute)), l.config.PerMinute)
		l.local[key] = lim
	}

	reservation := lim.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}
	}

	return Decision{
		Allowed:   true,
		Remaining: int(math.Max(0, math.Floor(lim.TokensAt(now)))),
	}
}

// nonNegative maps redis_rate's -1 "not limited" marker to zero
func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
