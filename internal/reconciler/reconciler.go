package reconciler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store/schema"
)

// Reconciler is the only writer of batches, handoffs and sensors.
// Every operation is idempotent under repeated identical input.
//
//go:generate mockgen -source=reconciler.go -destination=../mocks/reconciler.go -package=mocks -mock_names=Reconciler=MockReconciler
type Reconciler interface {
	// Apply dispatches a ledger event to the matching upsert
	Apply(ctx context.Context, event domain.LedgerEvent) error
	// UpsertBatch records a batch unless it is already known
	UpsertBatch(ctx context.Context, event domain.BatchRegistered) error
	// UpsertHandoff records a custody transfer unless it is already known
	UpsertHandoff(ctx context.Context, event domain.CustodyTransferred) error
	// MergeSensorAnchor merges the ledger side of a sensor reading
	MergeSensorAnchor(ctx context.Context, batchID, readingHash, signer string, anchoredAt int64) error
	// MergeSensorPayload merges an uploaded payload into a sensor reading
	MergeSensorPayload(ctx context.Context, batchID, readingHash string, rawPayload *string) error
}

type reconciler struct {
	store store.Store
}

// New creates a reconciler writing to st
func New(st store.Store) Reconciler {
	return &reconciler{store: st}
}

// Apply dispatches a ledger event to the matching upsert
func (r *reconciler) Apply(ctx context.Context, event domain.LedgerEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	switch event.Kind {
	case domain.EventKindBatchRegistered:
		return r.UpsertBatch(ctx, *event.BatchRegistered)
	case domain.EventKindCustodyTransferred:
		return r.UpsertHandoff(ctx, *event.CustodyTransferred)
	case domain.EventKindSensorAnchored:
		e := event.SensorAnchored
		return r.MergeSensorAnchor(ctx, e.BatchID, e.ReadingHash, e.Signer, e.Time)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownEventKind, event.Kind)
	}
}

// UpsertBatch records a batch unless it is already known. The first writer wins.
func (r *reconciler) UpsertBatch(ctx context.Context, event domain.BatchRegistered) error {
	batch := &schema.Batch{
		BatchID:      domain.NormalizeHex(event.BatchID),
		ContentRef:   optional(event.ContentRef),
		Manufacturer: optional(event.Manufacturer),
		RegisteredAt: event.Time,
	}
	if batch.BatchID == "" {
		return errors.New("batch id is required")
	}

	inserted, err := r.store.InsertBatchIfAbsent(ctx, batch)
	if err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Upserted batch",
		zap.String("batchID", batch.BatchID),
		zap.Bool("inserted", inserted))
	return nil
}

// UpsertHandoff records a custody transfer unless it is already known
func (r *reconciler) UpsertHandoff(ctx context.Context, event domain.CustodyTransferred) error {
	handoff := &schema.Handoff{
		BatchID:  domain.NormalizeHex(event.BatchID),
		FromAddr: event.FromAddr,
		ToAddr:   event.ToAddr,
		Time:     event.Time,
	}
	if handoff.BatchID == "" {
		return errors.New("batch id is required")
	}

	inserted, err := r.store.InsertHandoffIfAbsent(ctx, handoff)
	if err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Upserted handoff",
		zap.String("batchID", handoff.BatchID),
		zap.String("from", handoff.FromAddr),
		zap.String("to", handoff.ToAddr),
		zap.Bool("inserted", inserted))
	return nil
}

// MergeSensorAnchor sets signer and time on the reading, leaving payload fields untouched
func (r *reconciler) MergeSensorAnchor(ctx context.Context, batchID, readingHash, signer string, anchoredAt int64) error {
	input := store.SensorAnchorInput{
		BatchID:     domain.NormalizeHex(batchID),
		ReadingHash: domain.NormalizeHex(readingHash),
		Signer:      signer,
		Time:        anchoredAt,
	}
	if input.BatchID == "" || input.ReadingHash == "" {
		return errors.New("batch id and reading hash are required")
	}

	if err := r.store.MergeSensorAnchor(ctx, input); err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Merged sensor anchor",
		zap.String("batchID", input.BatchID),
		zap.String("readingHash", input.ReadingHash))
	return nil
}

// MergeSensorPayload stores the payload and the fields parsed from it.
// Parse failures leave the derived fields null and are not errors.
func (r *reconciler) MergeSensorPayload(ctx context.Context, batchID, readingHash string, rawPayload *string) error {
	input := store.SensorPayloadInput{
		BatchID:     domain.NormalizeHex(batchID),
		ReadingHash: domain.NormalizeHex(readingHash),
		RawPayload:  rawPayload,
	}
	if input.BatchID == "" || input.ReadingHash == "" {
		return domain.ErrMissingPayloadFields
	}

	if rawPayload != nil {
		parsed := domain.ParsePayload(*rawPayload)
		input.TempC = parsed.TempC
		input.PayloadTS = parsed.PayloadTS
		input.Nonce = parsed.Nonce
	}

	if err := r.store.MergeSensorPayload(ctx, input); err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Merged sensor payload",
		zap.String("batchID", input.BatchID),
		zap.String("readingHash", input.ReadingHash),
		zap.Bool("hasPayload", rawPayload != nil))
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
