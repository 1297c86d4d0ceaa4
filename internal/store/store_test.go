package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }

func buildTestBatch(batchID string, registeredAt int64) *schema.Batch {
	return &schema.Batch{
		BatchID:      batchID,
		ContentRef:   strPtr("bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"),
		Manufacturer: strPtr("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		RegisteredAt: registeredAt,
	}
}

func buildTestPayload(batchID, readingHash string) SensorPayloadInput {
	return SensorPayloadInput{
		BatchID:     batchID,
		ReadingHash: readingHash,
		RawPayload:  strPtr(`{"tempC":4.5,"ts":1700000000,"nonce":"n-1"}`),
		TempC:       float64Ptr(4.5),
		PayloadTS:   int64Ptr(1700000000000),
		Nonce:       strPtr("n-1"),
	}
}

// sensorContent strips the storage-assigned columns so rows from different
// merge orders can be compared
type sensorContent struct {
	BatchID     string
	ReadingHash string
	Signer      *string
	Time        *int64
	RawPayload  *string
	TempC       *float64
	PayloadTS   *int64
	Nonce       *string
}

func contentOf(s *schema.SensorReading) sensorContent {
	return sensorContent{
		BatchID:     s.BatchID,
		ReadingHash: s.ReadingHash,
		Signer:      s.Signer,
		Time:        s.Time,
		RawPayload:  s.RawPayload,
		TempC:       s.TempC,
		PayloadTS:   s.PayloadTS,
		Nonce:       s.Nonce,
	}
}

// =============================================================================
// Tests
// =============================================================================

func testInsertBatchIfAbsent(t *testing.T, store Store) {
	ctx := context.Background()

	inserted, err := store.InsertBatchIfAbsent(ctx, buildTestBatch("0xb1", 100))
	require.NoError(t, err)
	assert.True(t, inserted)

	second := buildTestBatch("0xb1", 200)
	second.ContentRef = strPtr("other")
	inserted, err = store.InsertBatchIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.False(t, inserted, "first writer wins")

	batch, err := store.GetBatch(ctx, "0xb1")
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.Equal(t, int64(100), batch.RegisteredAt)
	assert.Equal(t, "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi", *batch.ContentRef)

	missing, err := store.GetBatch(ctx, "0xdoesnotexist")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testInsertHandoffIfAbsent(t *testing.T, store Store) {
	ctx := context.Background()

	later := &schema.Handoff{BatchID: "0xb2", FromAddr: "0xA", ToAddr: "0xB", Time: 200}
	earlier := &schema.Handoff{BatchID: "0xb2", FromAddr: "0xM", ToAddr: "0xA", Time: 100}

	inserted, err := store.InsertHandoffIfAbsent(ctx, later)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.InsertHandoffIfAbsent(ctx, earlier)
	require.NoError(t, err)
	assert.True(t, inserted)

	duplicate := &schema.Handoff{BatchID: "0xb2", FromAddr: "0xA", ToAddr: "0xB", Time: 200}
	inserted, err = store.InsertHandoffIfAbsent(ctx, duplicate)
	require.NoError(t, err)
	assert.False(t, inserted)

	// same parties at a different time is a new handoff
	inserted, err = store.InsertHandoffIfAbsent(ctx, &schema.Handoff{BatchID: "0xb2", FromAddr: "0xA", ToAddr: "0xB", Time: 300})
	require.NoError(t, err)
	assert.True(t, inserted)

	handoffs, err := store.GetHandoffsByBatchID(ctx, "0xb2")
	require.NoError(t, err)
	require.Len(t, handoffs, 3)
	assert.Equal(t, int64(100), handoffs[0].Time)
	assert.Equal(t, int64(200), handoffs[1].Time)
	assert.Equal(t, int64(300), handoffs[2].Time)

	none, err := store.GetHandoffsByBatchID(ctx, "0xnone")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testSensorMergeCommutes(t *testing.T, store Store) {
	ctx := context.Background()

	anchor := func(hash string) SensorAnchorInput {
		return SensorAnchorInput{BatchID: "0xb3", ReadingHash: hash, Signer: "0xDevice", Time: 1700000100}
	}

	// anchor then payload
	require.NoError(t, store.MergeSensorAnchor(ctx, anchor("0xh1")))
	require.NoError(t, store.MergeSensorPayload(ctx, buildTestPayload("0xb3", "0xh1")))

	// payload then anchor
	require.NoError(t, store.MergeSensorPayload(ctx, buildTestPayload("0xb3", "0xh2")))
	require.NoError(t, store.MergeSensorAnchor(ctx, anchor("0xh2")))

	first, err := store.GetSensorByReadingHash(ctx, "0xh1")
	require.NoError(t, err)
	require.NotNil(t, first)
	second, err := store.GetSensorByReadingHash(ctx, "0xh2")
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.True(t, first.Complete())
	assert.True(t, second.Complete())

	a, b := contentOf(first), contentOf(second)
	b.ReadingHash = a.ReadingHash
	assert.Equal(t, a, b)
}

func testSensorPlaceholders(t *testing.T, store Store) {
	ctx := context.Background()

	require.NoError(t, store.MergeSensorAnchor(ctx, SensorAnchorInput{BatchID: "0xb4", ReadingHash: "0xanchoronly", Signer: "0xS", Time: 10}))
	require.NoError(t, store.MergeSensorPayload(ctx, buildTestPayload("0xb4", "0xpayloadonly")))

	anchored, err := store.GetSensorByReadingHash(ctx, "0xanchoronly")
	require.NoError(t, err)
	require.NotNil(t, anchored)
	assert.Nil(t, anchored.RawPayload)
	assert.Nil(t, anchored.TempC)
	assert.False(t, anchored.Complete())

	uploaded, err := store.GetSensorByReadingHash(ctx, "0xpayloadonly")
	require.NoError(t, err)
	require.NotNil(t, uploaded)
	assert.Nil(t, uploaded.Signer)
	assert.Nil(t, uploaded.Time)
	assert.False(t, uploaded.Complete())

	missing, err := store.GetSensorByReadingHash(ctx, "0xmissing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testSensorPayloadNoRegression(t *testing.T, store Store) {
	ctx := context.Background()

	require.NoError(t, store.MergeSensorPayload(ctx, buildTestPayload("0xb5", "0xh5")))

	// a later upload without parsed fields must not erase them
	require.NoError(t, store.MergeSensorPayload(ctx, SensorPayloadInput{
		BatchID:     "0xb5",
		ReadingHash: "0xh5",
		RawPayload:  strPtr(`{"nonce":"n-2"}`),
		Nonce:       strPtr("n-2"),
	}))
	// an upload with nothing usable changes nothing
	require.NoError(t, store.MergeSensorPayload(ctx, SensorPayloadInput{BatchID: "0xb5", ReadingHash: "0xh5"}))

	row, err := store.GetSensorByReadingHash(ctx, "0xh5")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, `{"nonce":"n-2"}`, *row.RawPayload)
	require.NotNil(t, row.TempC)
	assert.Equal(t, 4.5, *row.TempC)
	require.NotNil(t, row.PayloadTS)
	assert.Equal(t, int64(1700000000000), *row.PayloadTS)
	assert.Equal(t, "n-2", *row.Nonce)

	// a second anchor re-asserts the ledger fields without touching the payload
	require.NoError(t, store.MergeSensorAnchor(ctx, SensorAnchorInput{BatchID: "0xb5", ReadingHash: "0xh5", Signer: "0xS", Time: 50}))
	row, err = store.GetSensorByReadingHash(ctx, "0xh5")
	require.NoError(t, err)
	assert.Equal(t, `{"nonce":"n-2"}`, *row.RawPayload)
	assert.Equal(t, "0xS", *row.Signer)
}

func testSensorMergeIdempotent(t *testing.T, store Store) {
	ctx := context.Background()

	anchor := SensorAnchorInput{BatchID: "0xb6", ReadingHash: "0xh6", Signer: "0xS", Time: 77}
	payload := buildTestPayload("0xb6", "0xh6")

	require.NoError(t, store.MergeSensorAnchor(ctx, anchor))
	require.NoError(t, store.MergeSensorPayload(ctx, payload))
	before, err := store.GetSensorByReadingHash(ctx, "0xh6")
	require.NoError(t, err)
	require.NotNil(t, before)

	for range make([]struct{}, 3) {
		require.NoError(t, store.MergeSensorPayload(ctx, payload))
		require.NoError(t, store.MergeSensorAnchor(ctx, anchor))
	}

	after, err := store.GetSensorByReadingHash(ctx, "0xh6")
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, contentOf(before), contentOf(after))
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))

	sensors, err := store.GetSensorsByBatchID(ctx, "0xb6")
	require.NoError(t, err)
	assert.Len(t, sensors, 1)
}

func testSensorsOrdering(t *testing.T, store Store) {
	ctx := context.Background()

	require.NoError(t, store.MergeSensorPayload(ctx, buildTestPayload("0xb7", "0xunanchored")))
	require.NoError(t, store.MergeSensorAnchor(ctx, SensorAnchorInput{BatchID: "0xb7", ReadingHash: "0xlate", Signer: "0xS", Time: 300}))
	require.NoError(t, store.MergeSensorAnchor(ctx, SensorAnchorInput{BatchID: "0xb7", ReadingHash: "0xearly", Signer: "0xS", Time: 100}))

	sensors, err := store.GetSensorsByBatchID(ctx, "0xb7")
	require.NoError(t, err)
	require.Len(t, sensors, 3)
	assert.Equal(t, "0xearly", sensors[0].ReadingHash)
	assert.Equal(t, "0xlate", sensors[1].ReadingHash)
	assert.Equal(t, "0xunanchored", sensors[2].ReadingHash)
}

func testActors(t *testing.T, store Store) {
	ctx := context.Background()

	require.NoError(t, store.UpsertActors(ctx, nil))
	require.NoError(t, store.UpsertActors(ctx, []schema.Actor{
		{Address: "0xF39Fd6e51aad88F6F4ce6aB8827279cffFb92266", Name: "Acme Pharma"},
		{Address: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", Name: "Cold Chain Co"},
		{Address: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8", Name: "Cold Chain Logistics"},
	}))

	name, err := store.GetActorName(ctx, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	require.NoError(t, err)
	require.NotNil(t, name)
	assert.Equal(t, "Acme Pharma", *name)

	name, err = store.GetActorName(ctx, "0x70997970C51812DC3A010C7D01B50E0D17DC79C8")
	require.NoError(t, err)
	require.NotNil(t, name)
	assert.Equal(t, "Cold Chain Logistics", *name)

	require.NoError(t, store.UpsertActors(ctx, []schema.Actor{{Address: "0xF39Fd6e51aad88F6F4ce6aB8827279cffFb92266", Name: "Acme Labs"}}))
	name, err = store.GetActorName(ctx, "0xF39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	require.NoError(t, err)
	assert.Equal(t, "Acme Labs", *name)

	unknown, err := store.GetActorName(ctx, "0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Nil(t, unknown)
}

func testBlockCursor(t *testing.T, store Store) {
	ctx := context.Background()

	cursor, err := store.GetBlockCursor(ctx, "eip155:31337")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cursor)

	require.NoError(t, store.SetBlockCursor(ctx, "eip155:31337", 120))
	require.NoError(t, store.SetBlockCursor(ctx, "eip155:31337", 150))
	require.NoError(t, store.SetBlockCursor(ctx, "eip155:1", 7))

	cursor, err = store.GetBlockCursor(ctx, "eip155:31337")
	require.NoError(t, err)
	assert.Equal(t, uint64(150), cursor)

	cursor, err = store.GetBlockCursor(ctx, "eip155:1")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cursor)
}

// RunStoreTests runs the behavioural suite against a store implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"InsertBatchIfAbsent", testInsertBatchIfAbsent},
		{"InsertHandoffIfAbsent", testInsertHandoffIfAbsent},
		{"SensorMergeCommutes", testSensorMergeCommutes},
		{"SensorPlaceholders", testSensorPlaceholders},
		{"SensorPayloadNoRegression", testSensorPayloadNoRegression},
		{"SensorMergeIdempotent", testSensorMergeIdempotent},
		{"SensorsOrdering", testSensorsOrdering},
		{"Actors", testActors},
		{"BlockCursor", testBlockCursor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}

func TestMemoryStore(t *testing.T) {
	RunStoreTests(t, func(t *testing.T) Store { return NewMemoryStore() }, func(t *testing.T) {})
}

func TestNormalizeConnectionPoolSettings(t *testing.T) {
	open, idle, lifetime, idleTime := NormalizeConnectionPoolSettings(0, 0, 0, 0)
	assert.Equal(t, 20, open)
	assert.Equal(t, 5, idle)
	assert.Equal(t, "5m0s", lifetime.String())
	assert.Equal(t, "10m0s", idleTime.String())

	open, idle, _, _ = NormalizeConnectionPoolSettings(2, 8, 0, 0)
	assert.Equal(t, 2, open)
	assert.Equal(t, 2, idle)
}
