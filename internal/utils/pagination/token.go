package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// EncodeSequenceToken creates an opaque token pointing after the entry with
// the given insertion sequence.
func EncodeSequenceToken(seq int64) string {
	return EncodeMultiFieldToken("seq", strconv.FormatInt(seq, 10))
}

// DecodeSequenceToken returns the sequence encoded by EncodeSequenceToken.
func DecodeSequenceToken(token string) (int64, error) {
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return 0, err
	}
	if len(parts) != 2 || parts[0] != "seq" {
		return 0, fmt.Errorf("invalid pagination token format (fields)")
	}
	seq, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || seq < 0 {
		return 0, fmt.Errorf("invalid pagination token format (sequence)")
	}
	return seq, nil
}

// EncodeMultiFieldToken creates a token with any number of string fields
func EncodeMultiFieldToken(fields ...string) string {
	tokenStr := strings.Join(fields, "|")
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	return strings.Split(string(decodedBytes), "|"), nil
}

// ClampLimit bounds a requested page size.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
