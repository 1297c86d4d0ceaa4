package query

import (
	"encoding/json"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/risk"
)

// BatchResponse is a registered batch with its manufacturer's display name
type BatchResponse struct {
	BatchID          string  `json:"batch_id"`
	ContentRef       *string `json:"content_ref"`
	Manufacturer     *string `json:"manufacturer"`
	ManufacturerName *string `json:"manufacturer_name"`
	CreatedAt        int64   `json:"created_at"`
}

// HandoffResponse is a custody transfer with both parties' display names
type HandoffResponse struct {
	ID       uint64  `json:"id"`
	BatchID  string  `json:"batch_id"`
	FromAddr string  `json:"from_addr"`
	FromName *string `json:"from_name"`
	ToAddr   string  `json:"to_addr"`
	ToName   *string `json:"to_name"`
	Time     int64   `json:"time"`
}

// SensorResponse is a sensor reading as merged from the anchor and the payload upload
type SensorResponse struct {
	ID          uint64   `json:"id"`
	BatchID     string   `json:"batch_id"`
	ReadingHash string   `json:"reading_hash"`
	ShortHash   string   `json:"short_hash"`
	Signer      *string  `json:"signer"`
	SignerName  *string  `json:"signer_name"`
	Time        *int64   `json:"time"`
	TempC       *float64 `json:"tempC"`
	PayloadTS   *int64   `json:"payload_ts"`
	// PayloadClock is PayloadTS rendered as HH:MM:SS:mmm
	PayloadClock *string `json:"payload_clock"`
	Nonce        *string `json:"nonce"`
	RawPayload   *string `json:"raw_payload"`
	// PayloadHashMatch reports whether the payload hashes to ReadingHash, nil without payload
	PayloadHashMatch *bool `json:"payload_hash_match"`
}

// VerifyResponse is the reconstructed provenance timeline of one batch
type VerifyResponse struct {
	Batch    *BatchResponse    `json:"batch"`
	Handoffs []HandoffResponse `json:"handoffs"`
	Sensors  []SensorResponse  `json:"sensors"`
	Risk     risk.Assessment   `json:"risk"`
}

// StorePayloadRequest is an off-chain sensor payload upload
type StorePayloadRequest struct {
	BatchID     string          `json:"batchId" validate:"required"`
	ReadingHash string          `json:"readingHash" validate:"required"`
	RawPayload  json.RawMessage `json:"rawPayload"`
}

// StorePayloadResponse acknowledges a payload upload
type StorePayloadResponse struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// ActorResponse is the display name registered for an address
type ActorResponse struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}
