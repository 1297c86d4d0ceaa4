package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParsedPayload holds the fields derived from a raw sensor payload.
// A nil field means the payload did not carry a usable value.
type ParsedPayload struct {
	TempC     *float64
	PayloadTS *int64 // unix milliseconds
	Nonce     *string
}

// NormalizeRawPayload returns the text to store for an uploaded payload.
// A JSON string is stored as its content, any other JSON value as compact JSON,
// and an absent or null payload as nil.
func NormalizeRawPayload(raw json.RawMessage) (*string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, err
	}
	s := buf.String()
	return &s, nil
}

// ParsePayload extracts tempC, ts and nonce from a stored payload.
// It never fails: unparseable input yields an empty ParsedPayload.
func ParsePayload(raw string) ParsedPayload {
	var parsed ParsedPayload
	if strings.TrimSpace(raw) == "" {
		return parsed
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return parsed
	}

	if v, ok := toFloat(fields["tempC"]); ok {
		parsed.TempC = &v
	}

	if v, ok := toFloat(fields["ts"]); ok && v != 0 {
		if v < MILLISECONDS_THRESHOLD {
			v *= 1000
		}
		ms := int64(v)
		parsed.PayloadTS = &ms
	}

	switch n := fields["nonce"].(type) {
	case string:
		parsed.Nonce = &n
	case json.Number:
		s := n.String()
		parsed.Nonce = &s
	}

	return parsed
}

// PayloadClock renders a millisecond timestamp as HH:MM:SS:mmm in UTC
func PayloadClock(ms int64) string {
	t := time.UnixMilli(ms).UTC()
	return t.Format("15:04:05") + ":" + t.Format(".000")[1:]
}

func toFloat(v interface{}) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch n := v.(type) {
	case json.Number:
		f, err = n.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
