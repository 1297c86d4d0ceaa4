package schema

// Batch represents the batches table - one row per registered batch of goods
type Batch struct {
	// BatchID is the ledger batch identifier (0x hex or decimal)
	BatchID string `gorm:"column:batch_id;primaryKey;type:text"`
	// ContentRef points at the off-chain batch document (e.g. an IPFS CID)
	ContentRef *string `gorm:"column:content_ref;type:text"`
	// Manufacturer is the address that registered the batch
	Manufacturer *string `gorm:"column:manufacturer;type:text"`
	// RegisteredAt is the ledger time of the BatchRegistered event in unix seconds
	RegisteredAt int64 `gorm:"column:created_at;not null"`
}

func (Batch) TableName() string {
	return "batches"
}
