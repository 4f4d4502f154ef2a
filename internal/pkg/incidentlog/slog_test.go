package incidentlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogHandler_ForwardsRecords(t *testing.T) {
	h, creator := newTestHandler(t)
	logger := slog.New(NewSlogHandler(h))

	logger.Info("ignored")
	logger.Error("payment failed",
		"order", 17,
		"error", errors.New("card declined"),
		slog.Group("customer", "id", "c-9", "tier", "gold"),
	)

	require.Len(t, creator.requests, 1)
	req := creator.last()
	assert.Equal(t, "payment failed", req.Description)
	assert.Equal(t, "payment failed", derefOr(req.IncidentKey, ""))
	assert.Equal(t, map[string]any{
		"order":    int64(17),
		"error":    "card declined",
		"customer": map[string]any{"id": "c-9", "tier": "gold"},
	}, req.Details)
}

func TestSlogHandler_WithAttrsAndGroup(t *testing.T) {
	h, creator := newTestHandler(t)
	logger := slog.New(NewSlogHandler(h)).
		With("service", "billing", IncidentKeyAttr, "billing/payments").
		WithGroup("req").
		With("id", "r-1")

	logger.Error("timeout", "elapsed_ms", 1500)

	require.Len(t, creator.requests, 1)
	req := creator.last()
	assert.Equal(t, "billing/payments", derefOr(req.IncidentKey, ""))
	assert.Equal(t, map[string]any{
		"service": "billing",
		"req":     map[string]any{"id": "r-1", "elapsed_ms": int64(1500)},
	}, req.Details)
}

func TestSlogHandler_EmptyTrailingGroupOmitted(t *testing.T) {
	h, creator := newTestHandler(t)
	logger := slog.New(NewSlogHandler(h)).With("a", 1).WithGroup("empty")

	logger.Error("x")

	require.Len(t, creator.requests, 1)
	assert.Equal(t, map[string]any{"a": int64(1)}, creator.last().Details)
}

func TestSlogHandler_ReportsErrors(t *testing.T) {
	h, creator := newTestHandler(t)
	creator.err = errors.New("connection refused")

	var reported []error
	sh := NewSlogHandler(h, WithErrorHandler(func(err error) { reported = append(reported, err) }))

	rec := slog.NewRecord(timeZero, slog.LevelError, "db down", 0)
	err := sh.Handle(context.Background(), rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, creator.err)
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], creator.err)
}

func TestStderrErrorHandler(t *testing.T) {
	var buf bytes.Buffer
	StderrErrorHandler(&buf)(errors.New("boom"))
	assert.Equal(t, "incidentlog: boom\n", buf.String())
}
