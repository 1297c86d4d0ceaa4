package actors

import (
	"context"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store"
)

// Directory resolves ledger addresses to display names
//
//go:generate mockgen -source=directory.go -destination=../mocks/actors.go -package=mocks -mock_names=Directory=MockDirectory
type Directory interface {
	// Lookup returns the name for address, nil when the address is unknown
	Lookup(ctx context.Context, address string) (*string, error)
}

type storeDirectory struct {
	store store.Store
}

// NewStoreDirectory creates a directory backed by the actors table
func NewStoreDirectory(st store.Store) Directory {
	return &storeDirectory{store: st}
}

func (d *storeDirectory) Lookup(ctx context.Context, address string) (*string, error) {
	if address == "" {
		return nil, nil
	}
	return d.store.GetActorName(ctx, address)
}
