package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeSequenceToken(t *testing.T) {
	for _, seq := range []int64{0, 1, 42, 9007199254740993} {
		token := EncodeSequenceToken(seq)
		assert.NotEmpty(t, token, "Token should not be empty")

		decoded, err := DecodeSequenceToken(token)
		assert.NoError(t, err, "Decoding should not return an error")
		assert.Equal(t, seq, decoded)
	}
}

func TestDecodeSequenceToken_Invalid(t *testing.T) {
	invalidTokens := []string{
		"not-base64!@#",
		EncodeMultiFieldToken("seq"),
		EncodeMultiFieldToken("page", "3"),
		EncodeMultiFieldToken("seq", "abc"),
		EncodeMultiFieldToken("seq", "-5"),
	}
	for _, token := range invalidTokens {
		_, err := DecodeSequenceToken(token)
		assert.Error(t, err, "Token %q should be rejected", token)
	}
}

func TestMultiFieldToken(t *testing.T) {
	fields := []string{"a", "b", "c"}
	decoded, err := DecodeMultiFieldToken(EncodeMultiFieldToken(fields...))
	assert.NoError(t, err)
	assert.Equal(t, fields, decoded)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, ClampLimit(0, 50, 500))
	assert.Equal(t, 500, ClampLimit(1000, 50, 500))
	assert.Equal(t, 20, ClampLimit(20, 50, 500))
}
