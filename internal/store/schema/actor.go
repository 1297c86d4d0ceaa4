package schema

import "time"

// Actor represents the actors table - display names for ledger addresses
type Actor struct {
	// Address is the lower-cased ledger address
	Address string `gorm:"column:address;primaryKey;type:text"`
	// Name is the human readable actor name
	Name string `gorm:"column:name;not null;type:text"`
	// UpdatedAt is when the name was last written
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Actor) TableName() string {
	return "actors"
}
