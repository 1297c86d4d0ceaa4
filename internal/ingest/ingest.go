package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/adapter"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/messaging"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/metrics"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/reconciler"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store"
)

// cursorFlushTimeout bounds the final cursor write after the context is done
const cursorFlushTimeout = 5 * time.Second

// Config holds the configuration for the ingestor
type Config struct {
	Chain            string
	StartBlock       uint64
	ResumeFromCursor bool
	EventTimeout     time.Duration // Per-event reconcile timeout, zero disables it
	CursorSaveFreq   uint64        // Save cursor every N blocks
	CursorSaveDelay  time.Duration // Or save cursor every N seconds
}

// Ingestor drives ledger events from the event source through the reconciler
//
//go:generate mockgen -source=ingest.go -destination=../mocks/ingest.go -package=mocks -mock_names=Ingestor=MockIngestor
type Ingestor interface {
	// Backfill applies every event from the start block up to the current head.
	// It returns the last block covered.
	Backfill(ctx context.Context) (uint64, error)
	// Follow applies live events from fromBlock until the context is done
	Follow(ctx context.Context, fromBlock uint64) error
	// Replay applies the events of [fromBlock, toBlock] without touching the cursor.
	// It returns the number of events applied.
	Replay(ctx context.Context, fromBlock, toBlock uint64) (int, error)
}

type ingestor struct {
	source     messaging.EventSource
	reconciler reconciler.Reconciler
	store      store.CursorStore
	publisher  messaging.Publisher
	metrics    *metrics.IngestMetrics
	config     Config
	clock      adapter.Clock
}

// NewIngestor creates a new ingestor. The publisher and metrics may be nil.
func NewIngestor(
	source messaging.EventSource,
	rec reconciler.Reconciler,
	st store.CursorStore,
	pub messaging.Publisher,
	m *metrics.IngestMetrics,
	cfg Config,
	clock adapter.Clock,
) Ingestor {
	return &ingestor{
		source:     source,
		reconciler: rec,
		store:      st,
		publisher:  pub,
		metrics:    m,
		config:     cfg,
		clock:      clock,
	}
}

// Backfill applies every event from the start block up to the current head
func (i *ingestor) Backfill(ctx context.Context) (uint64, error) {
	startBlock, err := i.startBlock(ctx)
	if err != nil {
		return 0, err
	}

	head, err := i.source.LatestBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block number: %w", err)
	}
	i.metrics.SetHead(head)

	if startBlock > head {
		logger.InfoCtx(ctx, "Nothing to backfill",
			zap.String("chain", i.config.Chain),
			zap.Uint64("start_block", startBlock),
			zap.Uint64("head", head))
		return startBlock - 1, nil
	}

	logger.InfoCtx(ctx, "Starting backfill",
		zap.String("chain", i.config.Chain),
		zap.Uint64("from", startBlock),
		zap.Uint64("to", head))

	events, err := i.source.Backfill(ctx, startBlock, head)
	if err != nil {
		return 0, fmt.Errorf("failed to backfill blocks %d-%d: %w", startBlock, head, err)
	}

	applied := i.processAll(ctx, events)
	i.saveCursor(ctx, head)

	logger.InfoCtx(ctx, "Backfill complete",
		zap.String("chain", i.config.Chain),
		zap.Int("events", len(events)),
		zap.Int("applied", applied),
		zap.Uint64("head", head))

	return head, nil
}

// startBlock resolves the first block to backfill
func (i *ingestor) startBlock(ctx context.Context) (uint64, error) {
	startBlock := i.config.StartBlock
	if !i.config.ResumeFromCursor {
		logger.InfoCtx(ctx, "Starting from configured block", zap.String("chain", i.config.Chain), zap.Uint64("block", startBlock))
		return startBlock, nil
	}

	lastBlock, err := i.store.GetBlockCursor(ctx, i.config.Chain)
	if err != nil {
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}

	if lastBlock > 0 && lastBlock+1 > startBlock {
		startBlock = lastBlock + 1
		logger.InfoCtx(ctx, "Resuming from last processed block", zap.String("chain", i.config.Chain), zap.Uint64("block", startBlock))
	} else {
		logger.InfoCtx(ctx, "Starting from configured block", zap.String("chain", i.config.Chain), zap.Uint64("block", startBlock))
	}

	return startBlock, nil
}

// Follow applies live events from fromBlock until the context is done.
// Every block below the block of the newest event is complete, so that is the
// value saved as the cursor, every CursorSaveFreq blocks or CursorSaveDelay.
func (i *ingestor) Follow(ctx context.Context, fromBlock uint64) error {
	events, err := i.source.Subscribe(ctx, fromBlock)
	if err != nil {
		return fmt.Errorf("failed to subscribe from block %d: %w", fromBlock, err)
	}

	logger.InfoCtx(ctx, "Starting event subscription", zap.String("chain", i.config.Chain), zap.Uint64("from", fromBlock))

	var lastSavedBlock uint64
	if fromBlock > 0 {
		lastSavedBlock = fromBlock - 1
	}
	completed := lastSavedBlock
	lastSaveTime := i.clock.Now()

	flush := func() {
		if completed <= lastSavedBlock {
			return
		}
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cursorFlushTimeout)
		defer cancel()
		i.saveCursor(flushCtx, completed)
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				flush()
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("event subscription for %s ended", i.config.Chain)
			}

			if event.BlockNumber > 0 && event.BlockNumber-1 > completed {
				completed = event.BlockNumber - 1
				i.metrics.SetHead(event.BlockNumber)

				shouldSave := completed-lastSavedBlock >= i.config.CursorSaveFreq ||
					i.clock.Since(lastSaveTime) >= i.config.CursorSaveDelay
				if shouldSave && i.saveCursor(ctx, completed) {
					lastSavedBlock = completed
					lastSaveTime = i.clock.Now()
				}
			}

			i.process(ctx, event)
		}
	}
}

// Replay applies the events of [fromBlock, toBlock] without touching the cursor
func (i *ingestor) Replay(ctx context.Context, fromBlock, toBlock uint64) (int, error) {
	if fromBlock > toBlock {
		return 0, fmt.Errorf("invalid block range %d-%d", fromBlock, toBlock)
	}

	events, err := i.source.Backfill(ctx, fromBlock, toBlock)
	if err != nil {
		return 0, fmt.Errorf("failed to replay blocks %d-%d: %w", fromBlock, toBlock, err)
	}

	applied := i.processAll(ctx, events)

	logger.InfoCtx(ctx, "Replay complete",
		zap.Uint64("from", fromBlock),
		zap.Uint64("to", toBlock),
		zap.Int("events", len(events)),
		zap.Int("applied", applied))

	return applied, nil
}

func (i *ingestor) processAll(ctx context.Context, events []domain.LedgerEvent) int {
	applied := 0
	for _, event := range events {
		if ctx.Err() != nil {
			break
		}
		if i.process(ctx, event) {
			applied++
		}
	}
	return applied
}

// process applies one event and publishes it. Failures are logged and counted, never returned.
func (i *ingestor) process(ctx context.Context, event domain.LedgerEvent) bool {
	kind := string(event.Kind)

	if err := event.Validate(); err != nil {
		i.metrics.IncEventFailed(kind, metrics.StageDecode)
		logger.WarnCtx(ctx, "Skipping malformed ledger event",
			zap.Error(err),
			zap.String("key", event.Key()),
			zap.Uint64("block", event.BlockNumber))
		return false
	}

	eventCtx := ctx
	if i.config.EventTimeout > 0 {
		var cancel context.CancelFunc
		eventCtx, cancel = context.WithTimeout(ctx, i.config.EventTimeout)
		defer cancel()
	}

	if err := i.reconciler.Apply(eventCtx, event); err != nil {
		i.metrics.IncEventFailed(kind, metrics.StagePersist)
		logger.ErrorCtx(ctx, fmt.Errorf("failed to apply %s event: %w", kind, err),
			zap.String("key", event.Key()),
			zap.String("batch_id", event.BatchID()),
			zap.Uint64("block", event.BlockNumber))
		return false
	}
	i.metrics.IncEventApplied(kind)

	if i.publisher != nil {
		if err := i.publisher.PublishEvent(eventCtx, event); err != nil {
			i.metrics.IncEventFailed(kind, metrics.StagePublish)
			logger.WarnCtx(ctx, "Failed to publish ledger event",
				zap.Error(err),
				zap.String("key", event.Key()))
		}
	}

	return true
}

// saveCursor stores the cursor and reports whether it was written
func (i *ingestor) saveCursor(ctx context.Context, block uint64) bool {
	if err := i.store.SetBlockCursor(ctx, i.config.Chain, block); err != nil {
		logger.WarnCtx(ctx, "Failed to save block cursor",
			zap.Error(err),
			zap.String("chain", i.config.Chain),
			zap.Uint64("block", block))
		return false
	}
	i.metrics.SetCursor(block)
	return true
}
