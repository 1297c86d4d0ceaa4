package domain

import (
	"fmt"
	"strings"
)

// NormalizeBatchID validates a batch id and returns its canonical form.
// Accepted forms are 0x-prefixed hex (bytes32 or shorter) and unsigned decimal.
// Hex ids are lower-cased so both update channels join on the same key.
func NormalizeBatchID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidBatchID)
	}

	if hasHexPrefix(id) {
		digits := id[2:]
		if len(digits) == 0 || len(digits) > MAX_HEX_BATCH_ID_DIGITS || !isHex(digits) {
			return "", fmt.Errorf("%w: %q", ErrInvalidBatchID, raw)
		}
		return "0x" + strings.ToLower(digits), nil
	}

	if len(id) > MAX_DECIMAL_BATCH_ID_DIGITS || !isDecimal(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidBatchID, raw)
	}
	return id, nil
}

// NormalizeHex trims s and lower-cases it when it is 0x-prefixed.
// Non-hex values are only trimmed.
func NormalizeHex(s string) string {
	s = strings.TrimSpace(s)
	if hasHexPrefix(s) {
		return strings.ToLower(s)
	}
	return s
}

// NormalizeAddress returns the case-insensitive lookup key for an address
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// ShortHex abbreviates a long hex string to its first pre and last suf characters
func ShortHex(hex string, pre, suf int) string {
	if hex == "" {
		return ""
	}
	if len(hex) <= pre+suf+3 {
		return hex
	}
	return hex[:pre] + "…" + hex[len(hex)-suf:]
}

func hasHexPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func isHex(s string) bool {
	for _, c := range s {
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') && !(c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

func isDecimal(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
