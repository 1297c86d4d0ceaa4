package actors

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/adapter"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store/schema"
)

// RegistryEntry is one actor in the registry file
type RegistryEntry struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// RegistryData represents the structure of the actor registry JSON file
type RegistryData struct {
	Actors []RegistryEntry `json:"actors"`
}

// RegistryLoader reads actor registry files and seeds the store
//
//go:generate mockgen -source=registry.go -destination=../mocks/actors_registry.go -package=mocks -mock_names=RegistryLoader=MockRegistryLoader
type RegistryLoader interface {
	// Load parses the registry file at filePath
	Load(filePath string) ([]schema.Actor, error)
	// Import loads filePath and upserts every actor, returning how many were written
	Import(ctx context.Context, filePath string) (int, error)
}

type registryLoader struct {
	fs    adapter.FileSystem
	json  adapter.JSON
	store store.Store
}

// NewRegistryLoader creates a RegistryLoader with injected dependencies
func NewRegistryLoader(fs adapter.FileSystem, json adapter.JSON, st store.Store) RegistryLoader {
	return &registryLoader{fs: fs, json: json, store: st}
}

// Load parses the registry file at filePath
func (l *registryLoader) Load(filePath string) ([]schema.Actor, error) {
	data, err := l.fs.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read actor registry: %w", err)
	}

	var registry RegistryData
	if err := l.json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse actor registry JSON: %w", err)
	}

	actors := make([]schema.Actor, 0, len(registry.Actors))
	for i, entry := range registry.Actors {
		address := strings.TrimSpace(entry.Address)
		name := strings.TrimSpace(entry.Name)
		if address == "" || name == "" {
			return nil, fmt.Errorf("actor registry entry %d needs both address and name", i)
		}
		actors = append(actors, schema.Actor{Address: address, Name: name})
	}

	return actors, nil
}

// Import loads filePath and upserts every actor
func (l *registryLoader) Import(ctx context.Context, filePath string) (int, error) {
	actors, err := l.Load(filePath)
	if err != nil {
		return 0, err
	}

	if err := l.store.UpsertActors(ctx, actors); err != nil {
		return 0, err
	}

	return len(actors), nil
}
