package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
)

// filterLogsWithPagination fetches logs matching query in [fromBlock, toBlock],
// halving the page whenever the node reports too many results.
// Each page runs under its own query timeout.
func (s *eventSource) filterLogsWithPagination(ctx context.Context, query ethereum.FilterQuery, fromBlock, toBlock uint64) ([]types.Log, error) {
	var allLogs []types.Log
	stepSize := s.config.PageSize
	currentFrom := fromBlock

	for currentFrom <= toBlock {
		currentTo := currentFrom + stepSize - 1
		if currentTo > toBlock || currentTo < currentFrom {
			currentTo = toBlock
		}

		pageQuery := query
		pageQuery.FromBlock = new(big.Int).SetUint64(currentFrom)
		pageQuery.ToBlock = new(big.Int).SetUint64(currentTo)

		logs, err := s.filterPage(ctx, pageQuery)
		if err == nil {
			allLogs = append(allLogs, logs...)
			if currentTo == toBlock {
				break
			}
			currentFrom = currentTo + 1
			continue
		}

		if !isTooManyResultsError(err) {
			return nil, fmt.Errorf("failed to get logs for range %d-%d: %w", currentFrom, currentTo, err)
		}
		if stepSize == 1 {
			return nil, fmt.Errorf("too many results in block %d: %w", currentFrom, err)
		}

		stepSize /= 2
		logger.WarnCtx(ctx, "Too many results, reducing step size",
			zap.Uint64("oldStepSize", stepSize*2),
			zap.Uint64("newStepSize", stepSize),
			zap.Uint64("fromBlock", currentFrom),
			zap.Uint64("toBlock", currentTo))
	}

	return allLogs, nil
}

// filterPage runs one FilterLogs call, retrying transient failures
func (s *eventSource) filterPage(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	operation := func() error {
		timeoutCtx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
		defer cancel()

		var err error
		logs, err = s.client.FilterLogs(timeoutCtx, query)
		if err != nil && isTooManyResultsError(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.RandomizationFactor = 0.5
	retries := backoff.WithMaxRetries(b, s.config.QueryRetries)

	if err := backoff.Retry(operation, backoff.WithContext(retries, ctx)); err != nil {
		return nil, err
	}
	return logs, nil
}

// isTooManyResultsError checks if the error is related to too many results
func isTooManyResultsError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "query returned more than 10000 results") ||
		strings.Contains(errStr, "query timeout exceeded") ||
		strings.Contains(errStr, "too many results") ||
		strings.Contains(errStr, "exceeded maximum") ||
		strings.Contains(errStr, "block range")
}
