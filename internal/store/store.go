package store

import (
	"context"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store/schema"
)

// SensorAnchorInput carries the ledger side of a sensor reading
type SensorAnchorInput struct {
	BatchID     string
	ReadingHash string
	Signer      string
	Time        int64
}

// SensorPayloadInput carries the uploaded side of a sensor reading.
// Nil fields never overwrite stored values.
type SensorPayloadInput struct {
	BatchID     string
	ReadingHash string
	RawPayload  *string
	TempC       *float64
	PayloadTS   *int64
	Nonce       *string
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	CursorStore

	// InsertBatchIfAbsent inserts the batch unless one with the same id exists.
	// It reports whether a row was written.
	InsertBatchIfAbsent(ctx context.Context, batch *schema.Batch) (bool, error)
	// InsertHandoffIfAbsent inserts the handoff unless an identical one exists.
	// It reports whether a row was written.
	InsertHandoffIfAbsent(ctx context.Context, handoff *schema.Handoff) (bool, error)
	// MergeSensorAnchor sets batch, signer and time on the reading, creating it if needed
	MergeSensorAnchor(ctx context.Context, input SensorAnchorInput) error
	// MergeSensorPayload fills payload fields on the reading, creating it if needed.
	// Existing non-null fields are kept when the input field is nil.
	MergeSensorPayload(ctx context.Context, input SensorPayloadInput) error

	// GetBatch returns the batch or nil when it does not exist
	GetBatch(ctx context.Context, batchID string) (*schema.Batch, error)
	// GetHandoffsByBatchID returns handoffs ordered by time ascending
	GetHandoffsByBatchID(ctx context.Context, batchID string) ([]schema.Handoff, error)
	// GetSensorsByBatchID returns readings ordered by anchor time ascending, unanchored last
	GetSensorsByBatchID(ctx context.Context, batchID string) ([]schema.SensorReading, error)
	// GetSensorByReadingHash returns the reading or nil when it does not exist
	GetSensorByReadingHash(ctx context.Context, readingHash string) (*schema.SensorReading, error)

	// GetActorName returns the display name for an address or nil when unknown
	GetActorName(ctx context.Context, address string) (*string, error)
	// UpsertActors inserts or renames actors
	UpsertActors(ctx context.Context, actors []schema.Actor) error

	// Ping checks the database connection
	Ping(ctx context.Context) error
}
