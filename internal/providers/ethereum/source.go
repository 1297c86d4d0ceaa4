package ethereum

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/adapter"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/block"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/messaging"
)

const (
	defaultPageSize             = uint64(50000)
	defaultQueryTimeout         = time.Minute
	defaultQueryRetries         = uint64(3)
	defaultSubscriptionBuffer   = 256
	defaultReconnectMaxInterval = 30 * time.Second
)

// Config holds the configuration for the registry event source
type Config struct {
	ContractAddress      string
	PageSize             uint64        // blocks per FilterLogs call before halving
	QueryTimeout         time.Duration // per FilterLogs call
	QueryRetries         uint64        // retries of transient FilterLogs failures
	SubscriptionBuffer   int
	ReconnectMaxInterval time.Duration
}

type eventSource struct {
	config  Config
	client  adapter.EthClient
	address common.Address
	decoder *decoder
	blocks  block.Provider
}

// NewEventSource creates an event source reading registry logs through client.
// blocks supplies the head and block timestamps for events without a time argument.
func NewEventSource(cfg Config, client adapter.EthClient, contract *abi.ABI, blocks block.Provider) (messaging.EventSource, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.ContractAddress)
	}

	d, err := newDecoder(contract)
	if err != nil {
		return nil, err
	}

	if cfg.PageSize == 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = defaultQueryTimeout
	}
	if cfg.QueryRetries == 0 {
		cfg.QueryRetries = defaultQueryRetries
	}
	if cfg.SubscriptionBuffer <= 0 {
		cfg.SubscriptionBuffer = defaultSubscriptionBuffer
	}
	if cfg.ReconnectMaxInterval <= 0 {
		cfg.ReconnectMaxInterval = defaultReconnectMaxInterval
	}

	return &eventSource{
		config:  cfg,
		client:  client,
		address: common.HexToAddress(cfg.ContractAddress),
		decoder: d,
		blocks:  blocks,
	}, nil
}

// LatestBlock returns the latest block number
func (s *eventSource) LatestBlock(ctx context.Context) (uint64, error) {
	return s.blocks.LatestBlock(ctx)
}

func (s *eventSource) query() ethereum.FilterQuery {
	return ethereum.FilterQuery{
		Addresses: []common.Address{s.address},
		Topics:    [][]common.Hash{s.decoder.topics()},
	}
}

// Backfill returns every registry event in [fromBlock, toBlock] in ledger order.
// Logs that fail to decode are logged and skipped.
func (s *eventSource) Backfill(ctx context.Context, fromBlock, toBlock uint64) ([]domain.LedgerEvent, error) {
	if fromBlock > toBlock {
		return nil, nil
	}

	logs, err := s.filterLogsWithPagination(ctx, s.query(), fromBlock, toBlock)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})

	events := make([]domain.LedgerEvent, 0, len(logs))
	for _, vLog := range logs {
		event, ok := s.toEvent(ctx, vLog)
		if !ok {
			continue
		}
		events = append(events, event)
	}

	logger.InfoCtx(ctx, "Backfilled registry events",
		zap.Uint64("fromBlock", fromBlock),
		zap.Uint64("toBlock", toBlock),
		zap.Int("logs", len(logs)),
		zap.Int("events", len(events)))

	return events, nil
}

// toEvent decodes vLog, filling the time from the block header when the event has none.
// Failures are logged and reported as !ok.
func (s *eventSource) toEvent(ctx context.Context, vLog types.Log) (domain.LedgerEvent, bool) {
	if vLog.Removed {
		logger.DebugCtx(ctx, "Skipping removed log",
			zap.String("txHash", vLog.TxHash.Hex()),
			zap.Uint("logIndex", vLog.Index))
		return domain.LedgerEvent{}, false
	}

	event, hasTime, err := s.decoder.decode(vLog)
	if err != nil {
		logger.WarnCtx(ctx, "Skipping undecodable log",
			zap.Error(err),
			zap.Uint64("block", vLog.BlockNumber),
			zap.String("txHash", vLog.TxHash.Hex()),
			zap.Uint("logIndex", vLog.Index))
		return domain.LedgerEvent{}, false
	}

	if !hasTime {
		ts, err := s.blocks.BlockTime(ctx, vLog.BlockNumber)
		if err != nil {
			logger.WarnCtx(ctx, "Skipping log without block time",
				zap.Error(err),
				zap.Uint64("block", vLog.BlockNumber),
				zap.String("txHash", vLog.TxHash.Hex()))
			return domain.LedgerEvent{}, false
		}
		setTime(&event, ts)
	}

	return event, true
}

// Subscribe streams registry events starting at fromBlock. The live subscription is
// opened first and the gap up to the current head is then filled from history, so
// nothing between a backfill and the subscription is lost. Overlapping deliveries are
// expected. A dropped subscription is reopened with exponential backoff.
func (s *eventSource) Subscribe(ctx context.Context, fromBlock uint64) (<-chan domain.LedgerEvent, error) {
	sub, logs, err := s.subscribe(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.LedgerEvent, s.config.SubscriptionBuffer)
	go s.stream(ctx, sub, logs, fromBlock, out)

	return out, nil
}

func (s *eventSource) subscribe(ctx context.Context) (ethereum.Subscription, chan types.Log, error) {
	logs := make(chan types.Log, s.config.SubscriptionBuffer)
	sub, err := s.client.SubscribeFilterLogs(ctx, s.query(), logs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrSubscriptionFailed, err)
	}
	return sub, logs, nil
}

func (s *eventSource) resubscribe(ctx context.Context) (ethereum.Subscription, chan types.Log, error) {
	var sub ethereum.Subscription
	var logs chan types.Log
	operation := func() error {
		var err error
		sub, logs, err = s.subscribe(ctx)
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = s.config.ReconnectMaxInterval
	b.MaxElapsedTime = 0 // retry until the context ends
	b.RandomizationFactor = 0.5

	var attemptCount int
	notifyOnError := func(err error, d time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Resubscribe failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", d))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notifyOnError); err != nil {
		return nil, nil, err
	}
	return sub, logs, nil
}

// stream owns out and closes it once ctx is done
func (s *eventSource) stream(ctx context.Context, sub ethereum.Subscription, logs chan types.Log, next uint64, out chan<- domain.LedgerEvent) {
	defer close(out)

	for {
		var err error
		next, err = s.consume(ctx, sub, logs, next, out)
		if ctx.Err() != nil {
			return
		}
		logger.WarnCtx(ctx, "Registry subscription interrupted, reconnecting",
			zap.Error(err),
			zap.Uint64("resumeBlock", next))

		sub, logs, err = s.resubscribe(ctx)
		if err != nil {
			return
		}
		logger.InfoCtx(ctx, "Registry subscription restored", zap.Uint64("resumeBlock", next))
	}
}

// consume catches up from next to the head and then forwards live logs until the
// subscription fails or ctx ends. It returns the block to resume from.
func (s *eventSource) consume(ctx context.Context, sub ethereum.Subscription, logs <-chan types.Log, next uint64, out chan<- domain.LedgerEvent) (uint64, error) {
	defer sub.Unsubscribe()

	headCtx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	header, err := s.client.HeaderByNumber(headCtx, nil)
	cancel()
	if err != nil {
		return next, fmt.Errorf("failed to get latest block: %w", err)
	}

	head := header.Number.Uint64()
	if head >= next {
		events, err := s.Backfill(ctx, next, head)
		if err != nil {
			return next, err
		}
		for _, event := range events {
			if !send(ctx, out, event) {
				return next, ctx.Err()
			}
		}
		next = head + 1
	}

	for {
		select {
		case <-ctx.Done():
			return next, ctx.Err()
		case err := <-sub.Err():
			if err == nil {
				err = errors.New("subscription closed")
			}
			return next, fmt.Errorf("subscription error: %w", err)
		case vLog := <-logs:
			// already delivered by the catch-up
			if vLog.BlockNumber < next {
				continue
			}
			// resume from this block after a reconnect, it may be partly delivered
			next = vLog.BlockNumber

			event, ok := s.toEvent(ctx, vLog)
			if !ok {
				continue
			}
			if !send(ctx, out, event) {
				return next, ctx.Err()
			}
		}
	}
}

func send(ctx context.Context, out chan<- domain.LedgerEvent, event domain.LedgerEvent) bool {
	select {
	case out <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close closes the connection
func (s *eventSource) Close() {
	if s.client == nil {
		return
	}

	s.client.Close()
	logger.Info("Ethereum connection closed")
}
