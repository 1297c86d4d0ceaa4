package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/adapter"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/block"
)

// ethereumBlockFetcher implements block.Fetcher over block headers
type ethereumBlockFetcher struct {
	client adapter.EthClient
}

// NewBlockFetcher creates a block.Fetcher backed by client
func NewBlockFetcher(client adapter.EthClient) block.Fetcher {
	return &ethereumBlockFetcher{client: client}
}

// FetchLatestBlock fetches the latest block number from the ledger
func (f *ethereumBlockFetcher) FetchLatestBlock(ctx context.Context) (uint64, error) {
	header, err := f.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return header.Number.Uint64(), nil
}

// FetchBlockTime fetches the timestamp of the given block
func (f *ethereumBlockFetcher) FetchBlockTime(ctx context.Context, number uint64) (int64, error) {
	header, err := f.client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, fmt.Errorf("failed to get block %d: %w", number, err)
	}
	return int64(header.Time), nil //nolint:gosec,G115
}
