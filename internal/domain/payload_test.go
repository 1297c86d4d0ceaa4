package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRawPayload(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *string
	}{
		{name: "absent", input: "", expected: nil},
		{name: "null", input: "null", expected: nil},
		{name: "string payload kept verbatim", input: `"{\"tempC\": 4.5}"`, expected: strPtr(`{"tempC": 4.5}`)},
		{name: "object compacted", input: `{ "tempC" : 4.5, "nonce": "n1" }`, expected: strPtr(`{"tempC":4.5,"nonce":"n1"}`)},
		{name: "number", input: `42`, expected: strPtr(`42`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeRawPayload(json.RawMessage(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := NormalizeRawPayload(json.RawMessage(`{broken`))
	assert.Error(t, err)
}

func TestParsePayload(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		parsed := ParsePayload(`{"tempC": 4.5, "ts": 1700000000, "nonce": "abc"}`)

		require.NotNil(t, parsed.TempC)
		assert.Equal(t, 4.5, *parsed.TempC)
		require.NotNil(t, parsed.PayloadTS)
		assert.Equal(t, int64(1700000000000), *parsed.PayloadTS)
		require.NotNil(t, parsed.Nonce)
		assert.Equal(t, "abc", *parsed.Nonce)
	})

	t.Run("millisecond timestamp kept", func(t *testing.T) {
		parsed := ParsePayload(`{"ts": 1700000000123}`)
		require.NotNil(t, parsed.PayloadTS)
		assert.Equal(t, int64(1700000000123), *parsed.PayloadTS)
		assert.Nil(t, parsed.TempC)
		assert.Nil(t, parsed.Nonce)
	})

	t.Run("numeric strings and numeric nonce", func(t *testing.T) {
		parsed := ParsePayload(`{"tempC": "-3.25", "ts": "1700000000", "nonce": 7}`)
		require.NotNil(t, parsed.TempC)
		assert.Equal(t, -3.25, *parsed.TempC)
		require.NotNil(t, parsed.PayloadTS)
		assert.Equal(t, int64(1700000000000), *parsed.PayloadTS)
		require.NotNil(t, parsed.Nonce)
		assert.Equal(t, "7", *parsed.Nonce)
	})

	t.Run("zero ts ignored", func(t *testing.T) {
		assert.Nil(t, ParsePayload(`{"ts": 0}`).PayloadTS)
	})

	t.Run("invalid payloads yield nothing", func(t *testing.T) {
		for _, raw := range []string{"", "not json", "[1,2]", `"text"`, `{"tempC": true}`} {
			parsed := ParsePayload(raw)
			assert.Nil(t, parsed.TempC, raw)
			assert.Nil(t, parsed.PayloadTS, raw)
			assert.Nil(t, parsed.Nonce, raw)
		}
	})
}

func TestPayloadClock(t *testing.T) {
	assert.Equal(t, "22:13:20:123", PayloadClock(1700000000123))
	assert.Equal(t, "00:00:00:000", PayloadClock(0))
}

func strPtr(s string) *string {
	return &s
}
