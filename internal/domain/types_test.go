package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		event   LedgerEvent
		wantErr bool
	}{
		{
			name:  "batch registered",
			event: NewBatchRegisteredEvent(BatchRegistered{BatchID: "0x01", ContentRef: "bafy", Manufacturer: "0xabc", Time: 1}),
		},
		{
			name:  "custody transferred",
			event: NewCustodyTransferredEvent(CustodyTransferred{BatchID: "7", FromAddr: "0xa", ToAddr: "0xb", Time: 2}),
		},
		{
			name:  "sensor anchored",
			event: NewSensorAnchoredEvent(SensorAnchored{BatchID: "0x01", ReadingHash: "0xfeed", Signer: "0xs", Time: 3}),
		},
		{
			name:    "kind without payload",
			event:   LedgerEvent{Kind: EventKindSensorAnchored},
			wantErr: true,
		},
		{
			name:    "mismatched payload",
			event:   LedgerEvent{Kind: EventKindBatchRegistered, SensorAnchored: &SensorAnchored{BatchID: "1"}},
			wantErr: true,
		},
		{
			name:    "missing batch id",
			event:   NewCustodyTransferredEvent(CustodyTransferred{FromAddr: "0xa", ToAddr: "0xb"}),
			wantErr: true,
		},
		{
			name:    "unknown kind",
			event:   LedgerEvent{Kind: "Minted"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.True(t, errors.Is(LedgerEvent{Kind: "Minted"}.Validate(), ErrUnknownEventKind))
}

func TestLedgerEvent_BatchIDAndKey(t *testing.T) {
	event := NewSensorAnchoredEvent(SensorAnchored{BatchID: "0x01", ReadingHash: "0xfeed"}).
		WithLog(42, "0xtx", 3)

	assert.Equal(t, "0x01", event.BatchID())
	assert.Equal(t, uint64(42), event.BlockNumber)
	assert.Equal(t, "0xtx:3", event.Key())
	assert.Equal(t, "", LedgerEvent{Kind: EventKindBatchRegistered}.BatchID())
}
