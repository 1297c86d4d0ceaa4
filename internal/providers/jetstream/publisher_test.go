package jetstream_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/adapter"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/messaging"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/mocks"
	natspub "github.com/Gopalvamsikrishna/SupplyChainTrack/internal/providers/jetstream"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

var testConfig = natspub.Config{
	URL:            "nats://127.0.0.1:4222",
	StreamName:     "PROVENANCE_EVENTS",
	MaxReconnects:  10,
	ReconnectWait:  2 * time.Second,
	ConnectionName: "provenance-indexer",
}

type testPublisherMocks struct {
	ctrl   *gomock.Controller
	natsJS *mocks.MockNatsJetStream
	conn   *mocks.MockNatsConn
	js     *mocks.MockJetStream
}

func setupTestPublisher(t *testing.T) *testPublisherMocks {
	ctrl := gomock.NewController(t)
	return &testPublisherMocks{
		ctrl:   ctrl,
		natsJS: mocks.NewMockNatsJetStream(ctrl),
		conn:   mocks.NewMockNatsConn(ctrl),
		js:     mocks.NewMockJetStream(ctrl),
	}
}

func (tm *testPublisherMocks) connect(t *testing.T) messaging.Publisher {
	tm.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(tm.conn, tm.js, nil)
	tm.js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cfg jetstream.StreamConfig) error {
			assert.Equal(t, "PROVENANCE_EVENTS", cfg.Name)
			assert.Equal(t, []string{"provenance.events.>"}, cfg.Subjects)
			assert.Positive(t, cfg.Duplicates)
			return nil
		})
	tm.conn.EXPECT().ConnectedUrl().Return(testConfig.URL).AnyTimes()

	pub, err := natspub.NewPublisher(context.Background(), testConfig, tm.natsJS, adapter.NewJSON())
	require.NoError(t, err)
	return pub
}

func TestNewPublisher_ConnectError(t *testing.T) {
	tm := setupTestPublisher(t)
	defer tm.ctrl.Finish()

	tm.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(nil, nil, errors.New("no servers available"))

	_, err := natspub.NewPublisher(context.Background(), testConfig, tm.natsJS, adapter.NewJSON())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to NATS")
}

func TestNewPublisher_StreamError_ClosesConnection(t *testing.T) {
	tm := setupTestPublisher(t)
	defer tm.ctrl.Finish()

	tm.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(tm.conn, tm.js, nil)
	tm.js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(errors.New("insufficient resources"))
	tm.conn.EXPECT().Close()

	_, err := natspub.NewPublisher(context.Background(), testConfig, tm.natsJS, adapter.NewJSON())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create stream PROVENANCE_EVENTS")
}

func TestPublishEvent(t *testing.T) {
	tm := setupTestPublisher(t)
	defer tm.ctrl.Finish()

	pub := tm.connect(t)

	event := domain.NewSensorAnchoredEvent(domain.SensorAnchored{
		BatchID:     "0xb1",
		ReadingHash: "0x5f16",
		Signer:      "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC",
		Time:        1200,
	}).WithLog(3, "0xt3", 1)

	tm.js.EXPECT().Publish(gomock.Any(), "provenance.events.SensorAnchored", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
			assert.Contains(t, string(data), `"reading_hash":"0x5f16"`)
			assert.Len(t, opts, 1)
			return &jetstream.PubAck{Stream: "PROVENANCE_EVENTS", Sequence: 1}, nil
		})

	require.NoError(t, pub.PublishEvent(context.Background(), event))

	tm.js.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
	err := pub.PublishEvent(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish event")

	tm.conn.EXPECT().Close()
	pub.Close()
}

func TestPublishEvent_MarshalError(t *testing.T) {
	tm := setupTestPublisher(t)
	defer tm.ctrl.Finish()

	jsonAdapter := mocks.NewMockJSON(tm.ctrl)
	tm.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(tm.conn, tm.js, nil)
	tm.js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(nil)
	tm.conn.EXPECT().ConnectedUrl().Return(testConfig.URL).AnyTimes()

	pub, err := natspub.NewPublisher(context.Background(), testConfig, tm.natsJS, jsonAdapter)
	require.NoError(t, err)

	jsonAdapter.EXPECT().Marshal(gomock.Any()).Return(nil, errors.New("unsupported value"))

	err = pub.PublishEvent(context.Background(), domain.NewBatchRegisteredEvent(domain.BatchRegistered{BatchID: "1"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to marshal event")
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "provenance.events.BatchRegistered", natspub.Subject(domain.EventKindBatchRegistered))
	assert.Equal(t, "provenance.events.CustodyTransferred", natspub.Subject(domain.EventKindCustodyTransferred))
}
