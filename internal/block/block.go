package block

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/adapter"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
)

const (
	defaultHeadTTL        = 5 * time.Second
	defaultStaleWindow    = time.Minute
	defaultMaxCachedTimes = 4096
)

// headInfo is the cached ledger head
type headInfo struct {
	number    uint64
	fetchedAt time.Time
}

// Provider gives cached access to the ledger head and block timestamps.
// Ledger queries and live decoding both need them and each lookup is an RPC round trip.
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=Provider=MockBlockProvider
type Provider interface {
	// LatestBlock returns the head block number, possibly from cache
	LatestBlock(ctx context.Context) (uint64, error)

	// BlockTime returns the unix timestamp in seconds of the given block
	BlockTime(ctx context.Context, number uint64) (int64, error)
}

// Fetcher reads block information from the ledger
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=Fetcher=MockBlockFetcher
type Fetcher interface {
	// FetchLatestBlock fetches the head block number
	FetchLatestBlock(ctx context.Context) (uint64, error)

	// FetchBlockTime fetches the unix timestamp in seconds of the given block
	FetchBlockTime(ctx context.Context, number uint64) (int64, error)
}

// Config holds configuration for the Provider
type Config struct {
	// HeadTTL is how long the head block number is served from cache
	HeadTTL time.Duration

	// StaleWindow is how long a cached head may be served when fetching fails
	StaleWindow time.Duration

	// MaxCachedTimes bounds the number of block timestamps kept in memory
	MaxCachedTimes int
}

type provider struct {
	fetcher Fetcher
	config  Config
	clock   adapter.Clock

	mu     sync.RWMutex
	head   *headInfo
	times  map[uint64]int64
	order  []uint64
	cursor int
}

// NewProvider creates a Provider caching results of fetcher.
// Zero config values fall back to defaults.
func NewProvider(fetcher Fetcher, cfg Config, clock adapter.Clock) Provider {
	if cfg.HeadTTL <= 0 {
		cfg.HeadTTL = defaultHeadTTL
	}
	if cfg.StaleWindow <= 0 {
		cfg.StaleWindow = defaultStaleWindow
	}
	if cfg.MaxCachedTimes <= 0 {
		cfg.MaxCachedTimes = defaultMaxCachedTimes
	}

	return &provider{
		fetcher: fetcher,
		config:  cfg,
		clock:   clock,
		times:   make(map[uint64]int64),
		order:   make([]uint64, 0, cfg.MaxCachedTimes),
	}
}

// LatestBlock returns the head block number, using the cache while it is fresh
func (p *provider) LatestBlock(ctx context.Context) (uint64, error) {
	p.mu.RLock()
	cached := p.head
	p.mu.RUnlock()

	now := p.clock.Now()
	if cached != nil && now.Sub(cached.fetchedAt) < p.config.HeadTTL {
		return cached.number, nil
	}

	number, err := p.fetcher.FetchLatestBlock(ctx)
	if err != nil {
		if cached != nil && now.Sub(cached.fetchedAt) < p.config.StaleWindow {
			logger.WarnCtx(ctx, "Serving stale head block",
				zap.Uint64("block", cached.number),
				zap.Error(err))
			return cached.number, nil
		}
		return 0, fmt.Errorf("failed to fetch latest block: %w", err)
	}

	p.mu.Lock()
	p.head = &headInfo{number: number, fetchedAt: now}
	p.mu.Unlock()

	return number, nil
}

// BlockTime returns the block timestamp. Timestamps never change so they are
// cached until evicted by newer entries.
func (p *provider) BlockTime(ctx context.Context, number uint64) (int64, error) {
	p.mu.RLock()
	ts, ok := p.times[number]
	p.mu.RUnlock()
	if ok {
		return ts, nil
	}

	ts, err := p.fetcher.FetchBlockTime(ctx, number)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch timestamp of block %d: %w", number, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.times[number]; ok {
		return ts, nil
	}
	if len(p.order) < p.config.MaxCachedTimes {
		p.order = append(p.order, number)
	} else {
		// overwrite the oldest entry
		delete(p.times, p.order[p.cursor])
		p.order[p.cursor] = number
		p.cursor = (p.cursor + 1) % len(p.order)
	}
	p.times[number] = ts

	return ts, nil
}
