package domain

import "fmt"

// EventKind names a registry contract event
type EventKind string

const (
	EventKindBatchRegistered    EventKind = "BatchRegistered"
	EventKindCustodyTransferred EventKind = "CustodyTransferred"
	EventKindSensorAnchored     EventKind = "SensorAnchored"
)

// EventKinds lists every registry event the indexer consumes
var EventKinds = []EventKind{
	EventKindBatchRegistered,
	EventKindCustodyTransferred,
	EventKindSensorAnchored,
}

// BatchRegistered announces a new batch and its origin
type BatchRegistered struct {
	BatchID      string `json:"batch_id"`
	ContentRef   string `json:"content_ref"`
	Manufacturer string `json:"manufacturer"`
	Time         int64  `json:"time"`
}

// CustodyTransferred records a custody handoff between two addresses
type CustodyTransferred struct {
	BatchID  string `json:"batch_id"`
	FromAddr string `json:"from_addr"`
	ToAddr   string `json:"to_addr"`
	Time     int64  `json:"time"`
}

// SensorAnchored commits a sensor reading hash on the ledger
type SensorAnchored struct {
	BatchID     string `json:"batch_id"`
	ReadingHash string `json:"reading_hash"`
	Signer      string `json:"signer"`
	Time        int64  `json:"time"`
}

// LedgerEvent is a decoded registry log. Exactly one of the variant pointers
// is set and it matches Kind.
type LedgerEvent struct {
	Kind        EventKind `json:"kind"`
	BlockNumber uint64    `json:"block_number"`
	TxHash      string    `json:"tx_hash"`
	LogIndex    uint      `json:"log_index"`

	BatchRegistered    *BatchRegistered    `json:"batch_registered,omitempty"`
	CustodyTransferred *CustodyTransferred `json:"custody_transferred,omitempty"`
	SensorAnchored     *SensorAnchored     `json:"sensor_anchored,omitempty"`
}

// NewBatchRegisteredEvent wraps e as a LedgerEvent
func NewBatchRegisteredEvent(e BatchRegistered) LedgerEvent {
	return LedgerEvent{Kind: EventKindBatchRegistered, BatchRegistered: &e}
}

// NewCustodyTransferredEvent wraps e as a LedgerEvent
func NewCustodyTransferredEvent(e CustodyTransferred) LedgerEvent {
	return LedgerEvent{Kind: EventKindCustodyTransferred, CustodyTransferred: &e}
}

// NewSensorAnchoredEvent wraps e as a LedgerEvent
func NewSensorAnchoredEvent(e SensorAnchored) LedgerEvent {
	return LedgerEvent{Kind: EventKindSensorAnchored, SensorAnchored: &e}
}

// WithLog returns a copy of the event carrying the log position
func (e LedgerEvent) WithLog(blockNumber uint64, txHash string, logIndex uint) LedgerEvent {
	e.BlockNumber = blockNumber
	e.TxHash = txHash
	e.LogIndex = logIndex
	return e
}

// BatchID returns the batch the event belongs to
func (e LedgerEvent) BatchID() string {
	switch e.Kind {
	case EventKindBatchRegistered:
		if e.BatchRegistered != nil {
			return e.BatchRegistered.BatchID
		}
	case EventKindCustodyTransferred:
		if e.CustodyTransferred != nil {
			return e.CustodyTransferred.BatchID
		}
	case EventKindSensorAnchored:
		if e.SensorAnchored != nil {
			return e.SensorAnchored.BatchID
		}
	}
	return ""
}

// Validate checks that the variant matching Kind is present
func (e LedgerEvent) Validate() error {
	var present bool
	switch e.Kind {
	case EventKindBatchRegistered:
		present = e.BatchRegistered != nil
	case EventKindCustodyTransferred:
		present = e.CustodyTransferred != nil
	case EventKindSensorAnchored:
		present = e.SensorAnchored != nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventKind, e.Kind)
	}
	if !present {
		return fmt.Errorf("%s event has no payload", e.Kind)
	}
	if e.BatchID() == "" {
		return fmt.Errorf("%s event has no batch id", e.Kind)
	}
	return nil
}

// Key identifies the log the event was decoded from
func (e LedgerEvent) Key() string {
	return fmt.Sprintf("%s:%d", e.TxHash, e.LogIndex)
}
