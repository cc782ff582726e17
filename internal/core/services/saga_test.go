package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaga_FailUndoesInReverse(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With(slog.String("op", "CreateSale"))

	var undone []string
	sg := newSaga(logger)
	sg.Done("reserved", func(context.Context) error {
		undone = append(undone, "reserved")
		return nil
	})
	sg.Done("posted", func(context.Context) error {
		undone = append(undone, "posted")
		return errors.New("ledger unavailable")
	})

	cause := apperrors.New("CreateSale", apperrors.ErrInsufficientStock, "not enough stock")
	err := sg.Fail(context.Background(), cause)
	require.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	assert.ErrorContains(t, err, "ledger unavailable")
	assert.Equal(t, []string{"posted", "reserved"}, undone)
	assert.Equal(t, "posted", cause.Context["failed_after"])

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, `"op":`), line)
	}
}
