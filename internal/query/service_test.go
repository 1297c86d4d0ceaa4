package query_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/adapter"
	apierrors "github.com/Gopalvamsikrishna/SupplyChainTrack/internal/api/shared/errors"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/mocks"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/query"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/risk"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store/schema"
)

const (
	manufacturer = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	carrier      = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	device       = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
	batchID      = "0xb1"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

// testServiceMocks contains all the mocks needed for testing the query service
type testServiceMocks struct {
	ctrl       *gomock.Controller
	store      *mocks.MockStore
	reconciler *mocks.MockReconciler
	directory  *mocks.MockDirectory
	clock      *mocks.MockClock
	service    query.Service
	now        time.Time
}

func setupTestService(t *testing.T) *testServiceMocks {
	ctrl := gomock.NewController(t)

	tm := &testServiceMocks{
		ctrl:       ctrl,
		store:      mocks.NewMockStore(ctrl),
		reconciler: mocks.NewMockReconciler(ctrl),
		directory:  mocks.NewMockDirectory(ctrl),
		clock:      mocks.NewMockClock(ctrl),
		now:        time.Unix(1_700_000_000, 0),
	}
	tm.clock.EXPECT().Now().Return(tm.now).AnyTimes()

	tm.service = query.NewService(
		tm.store,
		tm.reconciler,
		tm.directory,
		risk.NewScorer(risk.DefaultConfig()),
		adapter.NewJCS(),
		tm.clock,
		4,
	)

	return tm
}

func tearDownTestService(tm *testServiceMocks) {
	tm.service.Close()
	tm.ctrl.Finish()
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }

func TestVerify_InvalidBatchID(t *testing.T) {
	tm := setupTestService(t)
	defer tearDownTestService(tm)

	for _, id := range []string{"", "0x", "0xzz", "batch-1", "-5"} {
		_, err := tm.service.Verify(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrInvalidBatchID, id)
	}
}

func TestVerify_FullTimeline(t *testing.T) {
	tm := setupTestService(t)
	defer tearDownTestService(tm)

	exactPayload := `{"tempC":4.5,"ts":1700000000,"nonce":"n1"}`
	exactHash := crypto.Keccak256Hash([]byte(exactPayload)).Hex()

	spacedPayload := `{ "ts": 1700000100123, "tempC": 5 }`
	canonicalHash := crypto.Keccak256Hash([]byte(`{"tempC":5,"ts":1700000100123}`)).Hex()

	batch := &schema.Batch{
		BatchID:      batchID,
		ContentRef:   strPtr("ipfs://QmBatch"),
		Manufacturer: strPtr(manufacturer),
		RegisteredAt: 1000,
	}
	handoffs := []schema.Handoff{
		{ID: 1, BatchID: batchID, FromAddr: manufacturer, ToAddr: carrier, Time: 1100},
	}
	sensors := []schema.SensorReading{
		{
			ID: 1, BatchID: batchID, ReadingHash: exactHash,
			Signer: strPtr(device), Time: int64Ptr(tm.now.Unix() - 60),
			RawPayload: strPtr(exactPayload), TempC: float64Ptr(4.5), PayloadTS: int64Ptr(1_700_000_000_000), Nonce: strPtr("n1"),
		},
		{
			ID: 2, BatchID: batchID, ReadingHash: canonicalHash,
			RawPayload: strPtr(spacedPayload), TempC: float64Ptr(5), PayloadTS: int64Ptr(1_700_000_100_123),
		},
		{
			ID: 3, BatchID: batchID, ReadingHash: "0x" + "ab" + "00000000000000000000000000000000000000000000000000000000000000",
			Signer: strPtr(device), Time: int64Ptr(tm.now.Unix() - 30),
		},
	}

	tm.store.EXPECT().GetBatch(gomock.Any(), batchID).Return(batch, nil)
	tm.store.EXPECT().GetHandoffsByBatchID(gomock.Any(), batchID).Return(handoffs, nil)
	tm.store.EXPECT().GetSensorsByBatchID(gomock.Any(), batchID).Return(sensors, nil)

	// every distinct address is looked up once
	tm.directory.EXPECT().Lookup(gomock.Any(), domain.NormalizeAddress(manufacturer)).Return(strPtr("Acme Pharma"), nil)
	tm.directory.EXPECT().Lookup(gomock.Any(), domain.NormalizeAddress(carrier)).Return(strPtr("ColdChain Logistics"), nil)
	tm.directory.EXPECT().Lookup(gomock.Any(), domain.NormalizeAddress(device)).Return(nil, nil)

	resp, err := tm.service.Verify(context.Background(), "0xB1")
	require.NoError(t, err)

	require.NotNil(t, resp.Batch)
	assert.Equal(t, batchID, resp.Batch.BatchID)
	assert.Equal(t, "Acme Pharma", *resp.Batch.ManufacturerName)
	assert.Equal(t, int64(1000), resp.Batch.CreatedAt)

	require.Len(t, resp.Handoffs, 1)
	assert.Equal(t, "Acme Pharma", *resp.Handoffs[0].FromName)
	assert.Equal(t, "ColdChain Logistics", *resp.Handoffs[0].ToName)

	require.Len(t, resp.Sensors, 3)
	first := resp.Sensors[0]
	assert.Nil(t, first.SignerName)
	assert.Equal(t, exactHash[:12]+"…"+exactHash[len(exactHash)-6:], first.ShortHash)
	require.NotNil(t, first.PayloadClock)
	assert.Equal(t, "22:13:20:000", *first.PayloadClock)
	require.NotNil(t, first.PayloadHashMatch)
	assert.True(t, *first.PayloadHashMatch)

	second := resp.Sensors[1]
	assert.Nil(t, second.Signer)
	assert.Equal(t, "22:15:00:123", *second.PayloadClock)
	require.NotNil(t, second.PayloadHashMatch)
	assert.True(t, *second.PayloadHashMatch)

	third := resp.Sensors[2]
	assert.Nil(t, third.PayloadHashMatch)
	assert.Nil(t, third.PayloadClock)

	assert.Equal(t, risk.Assessment{Score: 0, Reasons: []string{}, Label: risk.LabelAuthentic}, resp.Risk)
}

func TestVerify_PayloadHashMismatch(t *testing.T) {
	tm := setupTestService(t)
	defer tearDownTestService(tm)

	sensors := []schema.SensorReading{
		{ID: 1, BatchID: batchID, ReadingHash: "0x" + "11" + "00000000000000000000000000000000000000000000000000000000000000", RawPayload: strPtr("not json")},
	}
	tm.store.EXPECT().GetBatch(gomock.Any(), batchID).Return(nil, nil)
	tm.store.EXPECT().GetHandoffsByBatchID(gomock.Any(), batchID).Return(nil, nil)
	tm.store.EXPECT().GetSensorsByBatchID(gomock.Any(), batchID).Return(sensors, nil)

	resp, err := tm.service.Verify(context.Background(), batchID)
	require.NoError(t, err)
	require.Len(t, resp.Sensors, 1)
	require.NotNil(t, resp.Sensors[0].PayloadHashMatch)
	assert.False(t, *resp.Sensors[0].PayloadHashMatch)
}

func TestVerify_UnknownBatch(t *testing.T) {
	tm := setupTestService(t)
	defer tearDownTestService(tm)

	tm.store.EXPECT().GetBatch(gomock.Any(), "42").Return(nil, nil)
	tm.store.EXPECT().GetHandoffsByBatchID(gomock.Any(), "42").Return(nil, nil)
	tm.store.EXPECT().GetSensorsByBatchID(gomock.Any(), "42").Return(nil, nil)

	resp, err := tm.service.Verify(context.Background(), "42")
	require.NoError(t, err)

	assert.Nil(t, resp.Batch)
	assert.NotNil(t, resp.Handoffs)
	assert.Empty(t, resp.Handoffs)
	assert.NotNil(t, resp.Sensors)
	assert.Equal(t, 90, resp.Risk.Score)
	assert.Equal(t, risk.LabelSuspicious, resp.Risk.Label)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"batch":null`)
	assert.Contains(t, string(body), `"handoffs":[]`)
	assert.Contains(t, string(body), `"sensors":[]`)
}

func TestVerify_BatchReadFailure(t *testing.T) {
	tm := setupTestService(t)
	defer tearDownTestService(tm)

	tm.store.EXPECT().GetBatch(gomock.Any(), batchID).Return(nil, errors.New("database is locked"))

	_, err := tm.service.Verify(context.Background(), batchID)
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierrors.ErrCodeDatabaseError, apiErr.Code)
}

func TestVerify_SubQueryFailuresDegrade(t *testing.T) {
	tm := setupTestService(t)
	defer tearDownTestService(tm)

	batch := &schema.Batch{BatchID: batchID, Manufacturer: strPtr(manufacturer), RegisteredAt: 1000}
	tm.store.EXPECT().GetBatch(gomock.Any(), batchID).Return(batch, nil)
	tm.store.EXPECT().GetHandoffsByBatchID(gomock.Any(), batchID).Return(nil, errors.New("no such table: handoffs"))
	tm.store.EXPECT().GetSensorsByBatchID(gomock.Any(), batchID).Return(nil, errors.New("no such table: sensors"))
	tm.directory.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis: connection refused"))

	resp, err := tm.service.Verify(context.Background(), batchID)
	require.NoError(t, err)

	require.NotNil(t, resp.Batch)
	assert.Nil(t, resp.Batch.ManufacturerName)
	assert.Empty(t, resp.Handoffs)
	assert.Empty(t, resp.Sensors)
	assert.Equal(t, 30, resp.Risk.Score)
	assert.Equal(t, risk.LabelReview, resp.Risk.Label)
}

func TestStorePayload_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		req  query.StorePayloadRequest
	}{
		{name: "missing batch id", req: query.StorePayloadRequest{ReadingHash: "0xaa"}},
		{name: "missing reading hash", req: query.StorePayloadRequest{BatchID: batchID}},
		{name: "missing both", req: query.StorePayloadRequest{RawPayload: json.RawMessage(`{"tempC":1}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestService(t)
			defer tearDownTestService(tm)

			_, err := tm.service.StorePayload(context.Background(), tt.req)
			assert.ErrorIs(t, err, domain.ErrMissingPayloadFields)
		})
	}
}

func TestStorePayload_WhitespaceIdentifiers(t *testing.T) {
	tm := setupTestService(t)
	defer tearDownTestService(tm)

	tm.reconciler.EXPECT().
		MergeSensorPayload(gomock.Any(), " ", "0xaa", gomock.Nil()).
		Return(domain.ErrMissingPayloadFields)

	_, err := tm.service.StorePayload(context.Background(), query.StorePayloadRequest{BatchID: " ", ReadingHash: "0xaa"})
	assert.ErrorIs(t, err, domain.ErrMissingPayloadFields)
}

func TestStorePayload_NormalizesRawPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *string
	}{
		{name: "json string is stored as its content", raw: `"{\"tempC\":4.5}"`, want: strPtr(`{"tempC":4.5}`)},
		{name: "json object is stored compact", raw: `{ "tempC": 4.5, "ts": 1 }`, want: strPtr(`{"tempC":4.5,"ts":1}`)},
		{name: "absent payload", raw: ``, want: nil},
		{name: "null payload", raw: `null`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestService(t)
			defer tearDownTestService(tm)

			tm.reconciler.EXPECT().
				MergeSensorPayload(gomock.Any(), batchID, "0xaa", gomock.Any()).
				DoAndReturn(func(_ context.Context, _, _ string, raw *string) error {
					assert.Equal(t, tt.want, raw)
					return nil
				})

			resp, err := tm.service.StorePayload(context.Background(), query.StorePayloadRequest{
				BatchID:     batchID,
				ReadingHash: "0xaa",
				RawPayload:  json.RawMessage(tt.raw),
			})
			require.NoError(t, err)
			assert.True(t, resp.OK)
		})
	}
}

func TestStorePayload_StoreFailure(t *testing.T) {
	tm := setupTestService(t)
	defer tearDownTestService(tm)

	tm.reconciler.EXPECT().
		MergeSensorPayload(gomock.Any(), batchID, "0xaa", gomock.Any()).
		Return(errors.New("disk I/O error"))

	_, err := tm.service.StorePayload(context.Background(), query.StorePayloadRequest{BatchID: batchID, ReadingHash: "0xaa"})

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierrors.ErrCodeDatabaseError, apiErr.Code)
}

func TestGetActor(t *testing.T) {
	tm := setupTestService(t)
	defer tearDownTestService(tm)

	_, err := tm.service.GetActor(context.Background(), "acme")
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)

	tm.directory.EXPECT().Lookup(gomock.Any(), domain.NormalizeAddress(manufacturer)).Return(strPtr("Acme Pharma"), nil)
	actor, err := tm.service.GetActor(context.Background(), manufacturer)
	require.NoError(t, err)
	assert.Equal(t, &query.ActorResponse{Address: domain.NormalizeAddress(manufacturer), Name: "Acme Pharma"}, actor)

	tm.directory.EXPECT().Lookup(gomock.Any(), domain.NormalizeAddress(carrier)).Return(nil, nil)
	actor, err = tm.service.GetActor(context.Background(), carrier)
	require.NoError(t, err)
	assert.Nil(t, actor)
}

func TestHealth(t *testing.T) {
	tm := setupTestService(t)
	defer tearDownTestService(tm)

	tm.store.EXPECT().Ping(gomock.Any()).Return(nil)
	assert.NoError(t, tm.service.Health(context.Background()))

	tm.store.EXPECT().Ping(gomock.Any()).Return(errors.New("sql: database is closed"))
	assert.Error(t, tm.service.Health(context.Background()))
}
