package messaging

import (
	"context"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
)

// EventSource defines the interface for reading provenance events from the ledger
//
//go:generate mockgen -source=event_source.go -destination=../mocks/event_source.go -package=mocks -mock_names=EventSource=MockEventSource
type EventSource interface {
	// LatestBlock returns the current head block number
	LatestBlock(ctx context.Context) (uint64, error)

	// Backfill returns every event in [fromBlock, toBlock] ordered by block and log index
	Backfill(ctx context.Context, fromBlock, toBlock uint64) ([]domain.LedgerEvent, error)

	// Subscribe streams events from fromBlock onwards.
	// The channel is closed once ctx is done.
	Subscribe(ctx context.Context, fromBlock uint64) (<-chan domain.LedgerEvent, error)

	// Close closes the connection and cleans up resources
	Close()
}
