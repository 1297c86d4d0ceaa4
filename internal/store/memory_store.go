package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store/schema"
)

type handoffKey struct {
	batchID  string
	fromAddr string
	toAddr   string
	time     int64
}

// memoryStore keeps all rows in process. It enforces the same uniqueness and
// merge rules as the SQL store and is meant for tests and local tooling.
type memoryStore struct {
	mu sync.RWMutex

	batches     map[string]schema.Batch
	handoffs    []schema.Handoff
	handoffKeys map[handoffKey]struct{}
	sensors     map[string]*schema.SensorReading
	actors      map[string]string
	cursors     map[string]uint64
	nextID      uint64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() Store {
	return &memoryStore{
		batches:     make(map[string]schema.Batch),
		handoffKeys: make(map[handoffKey]struct{}),
		sensors:     make(map[string]*schema.SensorReading),
		actors:      make(map[string]string),
		cursors:     make(map[string]uint64),
	}
}

func (s *memoryStore) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *memoryStore) InsertBatchIfAbsent(ctx context.Context, batch *schema.Batch) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.batches[batch.BatchID]; ok {
		return false, nil
	}
	s.batches[batch.BatchID] = *batch
	return true, nil
}

func (s *memoryStore) InsertHandoffIfAbsent(ctx context.Context, handoff *schema.Handoff) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := handoffKey{handoff.BatchID, handoff.FromAddr, handoff.ToAddr, handoff.Time}
	if _, ok := s.handoffKeys[key]; ok {
		return false, nil
	}
	s.handoffKeys[key] = struct{}{}

	row := *handoff
	row.ID = s.id()
	handoff.ID = row.ID
	s.handoffs = append(s.handoffs, row)
	return true, nil
}

func (s *memoryStore) MergeSensorAnchor(ctx context.Context, input SensorAnchorInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	signer := input.Signer
	anchoredAt := input.Time

	row, ok := s.sensors[input.ReadingHash]
	if !ok {
		row = &schema.SensorReading{
			ID:          s.id(),
			ReadingHash: input.ReadingHash,
			CreatedAt:   time.Now().UTC(),
		}
		s.sensors[input.ReadingHash] = row
	}
	row.BatchID = input.BatchID
	row.Signer = &signer
	row.Time = &anchoredAt
	return nil
}

func (s *memoryStore) MergeSensorPayload(ctx context.Context, input SensorPayloadInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.sensors[input.ReadingHash]
	if !ok {
		row = &schema.SensorReading{
			ID:          s.id(),
			BatchID:     input.BatchID,
			ReadingHash: input.ReadingHash,
			CreatedAt:   time.Now().UTC(),
		}
		s.sensors[input.ReadingHash] = row
	}
	if input.RawPayload != nil {
		row.RawPayload = copyPtr(input.RawPayload)
	}
	if input.TempC != nil {
		row.TempC = copyPtr(input.TempC)
	}
	if input.PayloadTS != nil {
		row.PayloadTS = copyPtr(input.PayloadTS)
	}
	if input.Nonce != nil {
		row.Nonce = copyPtr(input.Nonce)
	}
	return nil
}

func (s *memoryStore) GetBatch(ctx context.Context, batchID string) (*schema.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	batch, ok := s.batches[batchID]
	if !ok {
		return nil, nil
	}
	return &batch, nil
}

func (s *memoryStore) GetHandoffsByBatchID(ctx context.Context, batchID string) ([]schema.Handoff, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var handoffs []schema.Handoff
	for _, h := range s.handoffs {
		if h.BatchID == batchID {
			handoffs = append(handoffs, h)
		}
	}
	sort.SliceStable(handoffs, func(i, j int) bool {
		if handoffs[i].Time != handoffs[j].Time {
			return handoffs[i].Time < handoffs[j].Time
		}
		return handoffs[i].ID < handoffs[j].ID
	})
	return handoffs, nil
}

func (s *memoryStore) GetSensorsByBatchID(ctx context.Context, batchID string) ([]schema.SensorReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var sensors []schema.SensorReading
	for _, row := range s.sensors {
		if row.BatchID == batchID {
			sensors = append(sensors, cloneSensor(row))
		}
	}
	sort.SliceStable(sensors, func(i, j int) bool {
		a, b := sensors[i], sensors[j]
		switch {
		case a.Time == nil && b.Time == nil:
			return a.ID < b.ID
		case a.Time == nil:
			return false
		case b.Time == nil:
			return true
		case *a.Time != *b.Time:
			return *a.Time < *b.Time
		default:
			return a.ID < b.ID
		}
	})
	return sensors, nil
}

func (s *memoryStore) GetSensorByReadingHash(ctx context.Context, readingHash string) (*schema.SensorReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.sensors[readingHash]
	if !ok {
		return nil, nil
	}
	sensor := cloneSensor(row)
	return &sensor, nil
}

func (s *memoryStore) GetActorName(ctx context.Context, address string) (*string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	name, ok := s.actors[domain.NormalizeAddress(address)]
	if !ok {
		return nil, nil
	}
	return &name, nil
}

func (s *memoryStore) UpsertActors(ctx context.Context, actors []schema.Actor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range actors {
		s.actors[domain.NormalizeAddress(a.Address)] = a.Name
	}
	return nil
}

func (s *memoryStore) GetBlockCursor(ctx context.Context, chain string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cursors[chain], nil
}

func (s *memoryStore) SetBlockCursor(ctx context.Context, chain string, blockNumber uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursors[chain] = blockNumber
	return nil
}

func (s *memoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func cloneSensor(row *schema.SensorReading) schema.SensorReading {
	c := *row
	c.Signer = copyPtr(row.Signer)
	c.Time = copyPtr(row.Time)
	c.RawPayload = copyPtr(row.RawPayload)
	c.TempC = copyPtr(row.TempC)
	c.PayloadTS = copyPtr(row.PayloadTS)
	c.Nonce = copyPtr(row.Nonce)
	return c
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
