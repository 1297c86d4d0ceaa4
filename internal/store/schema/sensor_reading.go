package schema

import "time"

// SensorReading represents the sensors table. A row is filled from two
// independent channels keyed by ReadingHash: the ledger anchor sets Signer and
// Time, the payload upload sets RawPayload and the parsed fields.
type SensorReading struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BatchID references the batch the reading belongs to
	BatchID string `gorm:"column:batch_id;not null;type:text;index:idx_sensors_batch_id"`
	// ReadingHash is the content hash committed on the ledger
	ReadingHash string `gorm:"column:reading_hash;not null;type:text;uniqueIndex:idx_sensors_reading_hash"`
	// Signer is the device address from the anchor event (nil until anchored)
	Signer *string `gorm:"column:signer;type:text"`
	// Time is the anchor ledger time in unix seconds (nil until anchored)
	Time *int64 `gorm:"column:time"`
	// RawPayload is the uploaded payload text (nil until uploaded)
	RawPayload *string `gorm:"column:raw_payload;type:text"`
	// TempC is the temperature parsed from the payload
	TempC *float64 `gorm:"column:temp_c"`
	// PayloadTS is the device timestamp parsed from the payload in unix milliseconds
	PayloadTS *int64 `gorm:"column:payload_ts"`
	// Nonce is the device nonce parsed from the payload
	Nonce *string `gorm:"column:nonce;type:text"`
	// CreatedAt is when either channel first created the row
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (SensorReading) TableName() string {
	return "sensors"
}

// Complete reports whether both the anchor and the payload have arrived
func (s *SensorReading) Complete() bool {
	return s.Signer != nil && s.RawPayload != nil
}
