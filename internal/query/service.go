package query

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/actors"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/adapter"
	apierrors "github.com/Gopalvamsikrishna/SupplyChainTrack/internal/api/shared/errors"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/reconciler"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/risk"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store/schema"
)

const (
	// DefaultLookupConcurrency bounds concurrent actor-name lookups per process
	DefaultLookupConcurrency = 8

	shortHashPrefix = 12
	shortHashSuffix = 6
)

// Service answers provenance queries and accepts payload uploads
//
//go:generate mockgen -source=service.go -destination=../mocks/query.go -package=mocks -mock_names=Service=MockQueryService
type Service interface {
	// Verify reconstructs the provenance timeline of a batch and scores it.
	// An unknown batch yields a response with a nil batch, not an error.
	Verify(ctx context.Context, batchID string) (*VerifyResponse, error)

	// StorePayload merges an uploaded sensor payload into its reading
	StorePayload(ctx context.Context, req StorePayloadRequest) (*StorePayloadResponse, error)

	// GetActor returns the display name of an address or nil when unknown
	GetActor(ctx context.Context, address string) (*ActorResponse, error)

	// Health checks the store connection
	Health(ctx context.Context) error

	// Close stops the lookup pool
	Close()
}

type service struct {
	store      store.Store
	reconciler reconciler.Reconciler
	directory  actors.Directory
	scorer     *risk.Scorer
	jcs        adapter.JCS
	clock      adapter.Clock
	validate   *validator.Validate
	pool       pond.Pool
}

// NewService creates the query service. lookupConcurrency <= 0 uses DefaultLookupConcurrency.
func NewService(
	st store.Store,
	rec reconciler.Reconciler,
	dir actors.Directory,
	scorer *risk.Scorer,
	jcs adapter.JCS,
	clock adapter.Clock,
	lookupConcurrency int,
) Service {
	if lookupConcurrency <= 0 {
		lookupConcurrency = DefaultLookupConcurrency
	}

	return &service{
		store:      st,
		reconciler: rec,
		directory:  dir,
		scorer:     scorer,
		jcs:        jcs,
		clock:      clock,
		validate:   newValidator(),
		pool:       pond.NewPool(lookupConcurrency),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Verify reconstructs the provenance timeline of a batch and scores it
func (s *service) Verify(ctx context.Context, batchID string) (*VerifyResponse, error) {
	id, err := domain.NormalizeBatchID(batchID)
	if err != nil {
		return nil, err
	}

	batch, err := s.store.GetBatch(ctx, id)
	if err != nil {
		return nil, apierrors.NewDatabaseError("Failed to get batch", err.Error())
	}

	// sub-query failures degrade to empty lists
	handoffs, err := s.store.GetHandoffsByBatchID(ctx, id)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("batchID", id))
		handoffs = nil
	}

	sensors, err := s.store.GetSensorsByBatchID(ctx, id)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("batchID", id))
		sensors = nil
	}

	addresses := make([]string, 0, 1+2*len(handoffs)+len(sensors))
	if batch != nil && batch.Manufacturer != nil {
		addresses = append(addresses, *batch.Manufacturer)
	}
	for _, h := range handoffs {
		addresses = append(addresses, h.FromAddr, h.ToAddr)
	}
	for _, sr := range sensors {
		if sr.Signer != nil {
			addresses = append(addresses, *sr.Signer)
		}
	}
	names := s.resolveNames(ctx, addresses)

	resp := &VerifyResponse{
		Handoffs: make([]HandoffResponse, 0, len(handoffs)),
		Sensors:  make([]SensorResponse, 0, len(sensors)),
		Risk:     s.scorer.Score(batch, handoffs, sensors, s.clock.Now()),
	}

	if batch != nil {
		resp.Batch = &BatchResponse{
			BatchID:      batch.BatchID,
			ContentRef:   batch.ContentRef,
			Manufacturer: batch.Manufacturer,
			CreatedAt:    batch.RegisteredAt,
		}
		if batch.Manufacturer != nil {
			resp.Batch.ManufacturerName = names.get(*batch.Manufacturer)
		}
	}

	for _, h := range handoffs {
		resp.Handoffs = append(resp.Handoffs, HandoffResponse{
			ID:       h.ID,
			BatchID:  h.BatchID,
			FromAddr: h.FromAddr,
			FromName: names.get(h.FromAddr),
			ToAddr:   h.ToAddr,
			ToName:   names.get(h.ToAddr),
			Time:     h.Time,
		})
	}

	for _, sr := range sensors {
		resp.Sensors = append(resp.Sensors, s.sensorResponse(sr, names))
	}

	return resp, nil
}

func (s *service) sensorResponse(sr schema.SensorReading, names actorNames) SensorResponse {
	out := SensorResponse{
		ID:               sr.ID,
		BatchID:          sr.BatchID,
		ReadingHash:      sr.ReadingHash,
		ShortHash:        domain.ShortHex(sr.ReadingHash, shortHashPrefix, shortHashSuffix),
		Signer:           sr.Signer,
		Time:             sr.Time,
		TempC:            sr.TempC,
		PayloadTS:        sr.PayloadTS,
		Nonce:            sr.Nonce,
		RawPayload:       sr.RawPayload,
		PayloadHashMatch: s.payloadHashMatch(sr.RawPayload, sr.ReadingHash),
	}
	if sr.Signer != nil {
		out.SignerName = names.get(*sr.Signer)
	}
	if sr.PayloadTS != nil {
		clock := domain.PayloadClock(*sr.PayloadTS)
		out.PayloadClock = &clock
	}
	return out
}

// payloadHashMatch compares keccak256 of the payload, as stored or in canonical
// JSON form, with the anchored reading hash
func (s *service) payloadHashMatch(raw *string, readingHash string) *bool {
	if raw == nil {
		return nil
	}

	want := domain.NormalizeHex(readingHash)
	match := crypto.Keccak256Hash([]byte(*raw)).Hex() == want
	if !match {
		if canonical, err := s.jcs.Transform([]byte(*raw)); err == nil {
			match = crypto.Keccak256Hash(canonical).Hex() == want
		}
	}
	return &match
}

// actorNames maps normalized addresses to resolved display names
type actorNames map[string]*string

func (n actorNames) get(address string) *string {
	return n[domain.NormalizeAddress(address)]
}

// resolveNames looks up each distinct address once on the bounded pool.
// Misses and lookup errors leave the name unset.
func (s *service) resolveNames(ctx context.Context, addresses []string) actorNames {
	names := make(actorNames)
	if len(addresses) == 0 {
		return names
	}

	seen := make(map[string]struct{}, len(addresses))
	var mu sync.Mutex
	group := s.pool.NewGroup()
	for _, address := range addresses {
		key := domain.NormalizeAddress(address)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		group.Submit(func() {
			name, err := s.directory.Lookup(ctx, key)
			if err != nil {
				logger.WarnCtx(ctx, "Actor lookup failed", zap.Error(err), zap.String("address", key))
				return
			}
			if name == nil {
				logger.DebugCtx(ctx, "Actor name not found", zap.String("address", key))
				return
			}

			mu.Lock()
			names[key] = name
			mu.Unlock()
		})
	}

	if err := group.Wait(); err != nil {
		logger.WarnCtx(ctx, "Actor lookups did not complete", zap.Error(err))
	}

	return names
}

// StorePayload merges an uploaded sensor payload into its reading
func (s *service) StorePayload(ctx context.Context, req StorePayloadRequest) (*StorePayloadResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingPayloadFields, describeValidation(err))
	}

	raw, err := domain.NormalizeRawPayload(req.RawPayload)
	if err != nil {
		return nil, apierrors.NewBadRequestError("Invalid rawPayload", err.Error())
	}

	err = s.reconciler.MergeSensorPayload(ctx, req.BatchID, req.ReadingHash, raw)
	if err != nil {
		if errors.Is(err, domain.ErrMissingPayloadFields) {
			return nil, err
		}
		return nil, apierrors.NewDatabaseError("Failed to store payload", err.Error())
	}

	logger.InfoCtx(ctx, "Stored sensor payload",
		zap.String("batchID", req.BatchID),
		zap.String("readingHash", req.ReadingHash),
		zap.Bool("hasPayload", raw != nil))

	return &StorePayloadResponse{OK: true}, nil
}

func describeValidation(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}

	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field()+" is "+fe.Tag())
	}
	return strings.Join(fields, ", ")
}

// GetActor returns the display name of an address or nil when unknown
func (s *service) GetActor(ctx context.Context, address string) (*ActorResponse, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}

	key := domain.NormalizeAddress(address)
	name, err := s.directory.Lookup(ctx, key)
	if err != nil {
		return nil, apierrors.NewDatabaseError("Failed to get actor", err.Error())
	}
	if name == nil {
		return nil, nil
	}

	return &ActorResponse{Address: key, Name: *name}, nil
}

// Health checks the store connection
func (s *service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close stops the lookup pool
func (s *service) Close() {
	s.pool.StopAndWait()
}
