package schema

// Handoff represents the handoffs table - append-only custody transfers per batch
type Handoff struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BatchID references the batch changing hands
	BatchID string `gorm:"column:batch_id;not null;type:text;uniqueIndex:idx_handoffs_unique,priority:1"`
	// FromAddr is the previous custodian
	FromAddr string `gorm:"column:from_addr;not null;type:text;uniqueIndex:idx_handoffs_unique,priority:2"`
	// ToAddr is the new custodian
	ToAddr string `gorm:"column:to_addr;not null;type:text;uniqueIndex:idx_handoffs_unique,priority:3"`
	// Time is the ledger time of the transfer in unix seconds
	Time int64 `gorm:"column:time;not null;uniqueIndex:idx_handoffs_unique,priority:4"`
}

func (Handoff) TableName() string {
	return "handoffs"
}
