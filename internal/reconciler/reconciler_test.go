package reconciler_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/mocks"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/reconciler"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

const (
	batchID     = "0x00000000000000000000000000000000000000000000000000000000000000b1"
	readingHash = "0x5f16f4c7f149ac4f9510d9cf8cf384038ad348b3bcdc01915f95de12df9d1b02"
	payload     = `{"tempC":5.25,"ts":1700000000,"nonce":"abc"}`
)

func strPtr(s string) *string { return &s }

func ledgerEvents() []domain.LedgerEvent {
	return []domain.LedgerEvent{
		domain.NewBatchRegisteredEvent(domain.BatchRegistered{
			BatchID: batchID, ContentRef: "bafyorigin", Manufacturer: "0xF39Fd6e51aad88F6F4ce6aB8827279cffFb92266", Time: 1000,
		}).WithLog(1, "0xt1", 0),
		domain.NewCustodyTransferredEvent(domain.CustodyTransferred{
			BatchID: batchID, FromAddr: "0xF39Fd6e51aad88F6F4ce6aB8827279cffFb92266", ToAddr: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", Time: 1100,
		}).WithLog(2, "0xt2", 0),
		domain.NewSensorAnchoredEvent(domain.SensorAnchored{
			BatchID: batchID, ReadingHash: readingHash, Signer: "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC", Time: 1200,
		}).WithLog(3, "0xt3", 1),
	}
}

func TestApply_ReplayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	r := reconciler.New(st)

	for range make([]struct{}, 2) {
		for _, event := range ledgerEvents() {
			require.NoError(t, r.Apply(ctx, event))
		}
	}

	batch, err := st.GetBatch(ctx, batchID)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.Equal(t, "bafyorigin", *batch.ContentRef)

	handoffs, err := st.GetHandoffsByBatchID(ctx, batchID)
	require.NoError(t, err)
	assert.Len(t, handoffs, 1)

	sensors, err := st.GetSensorsByBatchID(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, sensors, 1)
	assert.Nil(t, sensors[0].RawPayload)
	assert.Equal(t, int64(1200), *sensors[0].Time)
}

func TestApply_InvalidEvent(t *testing.T) {
	r := reconciler.New(store.NewMemoryStore())

	err := r.Apply(context.Background(), domain.LedgerEvent{Kind: "Minted"})
	assert.True(t, errors.Is(err, domain.ErrUnknownEventKind))

	err = r.Apply(context.Background(), domain.LedgerEvent{Kind: domain.EventKindSensorAnchored})
	assert.Error(t, err)
}

func TestSensorMerge_OrderDoesNotMatter(t *testing.T) {
	ctx := context.Background()

	anchorFirst := store.NewMemoryStore()
	r1 := reconciler.New(anchorFirst)
	require.NoError(t, r1.MergeSensorAnchor(ctx, batchID, readingHash, "0xSigner", 1200))
	require.NoError(t, r1.MergeSensorPayload(ctx, batchID, readingHash, strPtr(payload)))

	payloadFirst := store.NewMemoryStore()
	r2 := reconciler.New(payloadFirst)
	require.NoError(t, r2.MergeSensorPayload(ctx, batchID, readingHash, strPtr(payload)))
	require.NoError(t, r2.MergeSensorAnchor(ctx, batchID, readingHash, "0xSigner", 1200))

	a, err := anchorFirst.GetSensorByReadingHash(ctx, readingHash)
	require.NoError(t, err)
	b, err := payloadFirst.GetSensorByReadingHash(ctx, readingHash)
	require.NoError(t, err)
	require.NotNil(t, a)
	require.NotNil(t, b)

	assert.Equal(t, a.BatchID, b.BatchID)
	assert.Equal(t, a.Signer, b.Signer)
	assert.Equal(t, a.Time, b.Time)
	assert.Equal(t, a.RawPayload, b.RawPayload)
	assert.Equal(t, a.TempC, b.TempC)
	assert.Equal(t, a.PayloadTS, b.PayloadTS)
	assert.Equal(t, a.Nonce, b.Nonce)

	require.NotNil(t, a.TempC)
	assert.Equal(t, 5.25, *a.TempC)
	assert.Equal(t, int64(1700000000000), *a.PayloadTS)
	assert.Equal(t, "abc", *a.Nonce)
}

func TestMergeSensorPayload_UnparseablePayload(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	r := reconciler.New(st)

	require.NoError(t, r.MergeSensorPayload(ctx, batchID, readingHash, strPtr(payload)))
	require.NoError(t, r.MergeSensorPayload(ctx, batchID, readingHash, strPtr("not json at all")))

	row, err := st.GetSensorByReadingHash(ctx, readingHash)
	require.NoError(t, err)
	assert.Equal(t, "not json at all", *row.RawPayload)
	assert.Equal(t, 5.25, *row.TempC, "parsed fields survive a later unparseable upload")
}

func TestMergeSensorPayload_NormalizesIdentifiers(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	r := reconciler.New(st)

	require.NoError(t, r.MergeSensorAnchor(ctx, batchID, readingHash, "0xSigner", 1))
	require.NoError(t, r.MergeSensorPayload(ctx, " 0x00000000000000000000000000000000000000000000000000000000000000B1",
		"0x5F16F4C7F149AC4F9510D9CF8CF384038AD348B3BCDC01915F95DE12DF9D1B02", strPtr(payload)))

	sensors, err := st.GetSensorsByBatchID(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, sensors, 1)
	assert.True(t, sensors[0].Complete())
}

func TestMergeSensorPayload_MissingIdentifiers(t *testing.T) {
	r := reconciler.New(store.NewMemoryStore())

	err := r.MergeSensorPayload(context.Background(), "", readingHash, strPtr(payload))
	assert.True(t, errors.Is(err, domain.ErrMissingPayloadFields))
}

func TestUpsertHandoff_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	storeErr := errors.New("disk full")
	st.EXPECT().InsertHandoffIfAbsent(gomock.Any(), gomock.Any()).Return(false, storeErr)

	err := reconciler.New(st).UpsertHandoff(context.Background(), domain.CustodyTransferred{
		BatchID: batchID, FromAddr: "0xa", ToAddr: "0xb", Time: 1,
	})
	assert.True(t, errors.Is(err, storeErr))
}
