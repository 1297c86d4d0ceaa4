package domain

import "errors"

var (
	// ErrSubscriptionFailed is returned when subscription to ledger events fails
	ErrSubscriptionFailed = errors.New("subscription failed")

	// ErrInvalidBatchID is returned when a batch id is neither 0x hex nor decimal
	ErrInvalidBatchID = errors.New("invalid batch id")

	// ErrInvalidAddress is returned when an actor address is not a 20-byte hex address
	ErrInvalidAddress = errors.New("invalid address")

	// ErrMissingPayloadFields is returned when a payload upload lacks batchId or readingHash
	ErrMissingPayloadFields = errors.New("missing batchId or readingHash")

	// ErrUnknownEventKind is returned when a ledger event carries no recognised variant
	ErrUnknownEventKind = errors.New("unknown event kind")
)
