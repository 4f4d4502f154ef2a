package incidentlog

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/pdtrigger/internal/pkg/pagerduty"
)

const testServiceKey = "0123456789abcdef0123456789abcdef"

func newTestHandler(t *testing.T, opts ...Option) (*Handler, *fakeCreator) {
	t.Helper()
	creator := &fakeCreator{}
	h, err := NewHandler(testServiceKey, creator, opts...)
	require.NoError(t, err)
	return h, creator
}

func TestNewHandler_Errors(t *testing.T) {
	_, err := NewHandler("", &fakeCreator{})
	assert.ErrorIs(t, err, ErrServiceKeyRequired)

	_, err = NewHandler(testServiceKey, nil)
	assert.ErrorIs(t, err, ErrCreatorRequired)
}

func TestHandler_Incident_TemplateIsFallbackKey(t *testing.T) {
	h, _ := newTestHandler(t)

	incident := h.Incident(Record{Template: "%s meets %s", Args: []any{"Sally", "Larry"}})

	assert.Equal(t, "%s meets %s", incident.IncidentKey)
	assert.Equal(t, "Sally meets Larry", incident.Message)
	assert.Empty(t, incident.Details)
}

func TestHandler_Incident_RecordKeyOverridesDefault(t *testing.T) {
	h, _ := newTestHandler(t, WithIncidentKey("ABC"))

	rec := Record{
		Template: "%s meets %s",
		Args:     []any{"Sally", "Larry"},
		Attrs:    map[string]any{IncidentKeyAttr: "DEF123", "room": "kitchen"},
	}
	incident := h.Incident(rec)

	assert.Equal(t, "DEF123", incident.IncidentKey)
	assert.Equal(t, map[string]any{"room": "kitchen"}, incident.Details)
}

func TestHandler_Incident_ConfiguredDefault(t *testing.T) {
	h, _ := newTestHandler(t, WithIncidentKey("ABC"))

	incident := h.Incident(Record{Template: "disk full"})
	assert.Equal(t, "ABC", incident.IncidentKey)

	incident = h.Incident(Record{Template: "disk full", Attrs: map[string]any{IncidentKeyAttr: 42}})
	assert.Equal(t, "42", incident.IncidentKey)
}

func TestHandler_Incident_ErrorAndStringify(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := Record{
		Template: "backup failed",
		Err:      errors.New("disk quota exceeded"),
		Attrs: map[string]any{
			"point": point{1, 2},
			"hosts": []string{"a", "b"},
		},
	}
	incident := h.Incident(rec)

	assert.Equal(t, map[string]any{
		"error": "disk quota exceeded",
		"point": "{1 2}",
		"hosts": []string{"a", "b"},
	}, incident.Details)
	assert.Equal(t, point{1, 2}, rec.Attrs["point"], "исходные Attrs не изменяются")
}

func TestHandler_HandleRecord(t *testing.T) {
	h, creator := newTestHandler(t, WithClient("billing"), WithClientURL("https://billing.example.com"))

	err := h.HandleRecord(context.Background(), Record{
		Template: "%s meets %s",
		Args:     []any{"Sally", "Larry"},
		Level:    slog.LevelError,
		Attrs:    map[string]any{"user": "u-1"},
	})
	require.NoError(t, err)
	require.Len(t, creator.requests, 1)

	req := creator.last()
	assert.Equal(t, testServiceKey, req.ServiceKey)
	assert.Equal(t, "Sally meets Larry", req.Description)
	require.NotNil(t, req.IncidentKey)
	assert.Equal(t, "%s meets %s", *req.IncidentKey)
	assert.Equal(t, map[string]any{"user": "u-1"}, req.Details)
	assert.Equal(t, "billing", derefOr(req.Client, ""))
	assert.Equal(t, "https://billing.example.com", derefOr(req.ClientURL, ""))
	assert.Nil(t, req.Contexts, "контексты из лога не прикладываются")

	payload, err := pagerduty.BuildTriggerPayload(req)
	require.NoError(t, err)
	assert.Equal(t, "trigger", payload["event_type"])
}

func TestHandler_HandleRecord_PropagatesError(t *testing.T) {
	h, creator := newTestHandler(t)
	creator.err = &pagerduty.APIError{Kind: pagerduty.ErrTooManyAPICalls, StatusCode: 403}

	err := h.HandleRecord(context.Background(), Record{Template: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, pagerduty.ErrTooManyAPICalls)
	assert.Len(t, creator.requests, 1, "повторов быть не должно")
}

func TestHandler_Enabled(t *testing.T) {
	h, _ := newTestHandler(t)
	assert.False(t, h.Enabled(slog.LevelWarn))
	assert.True(t, h.Enabled(slog.LevelError))

	h, _ = newTestHandler(t, WithMinLevel(slog.LevelWarn))
	assert.True(t, h.Enabled(slog.LevelWarn))
	assert.False(t, h.Enabled(slog.LevelInfo))
}

func TestHandler_Clone(t *testing.T) {
	h, creator := newTestHandler(t,
		WithMinLevel(slog.LevelDebug),
		WithIncidentKey("payments"),
	)

	c := h.Clone(WithMinLevel(slog.LevelError))
	assert.True(t, h.Enabled(slog.LevelDebug), "исходный Handler не меняется")
	assert.False(t, c.Enabled(slog.LevelWarn))
	assert.True(t, c.Enabled(slog.LevelError))

	require.NoError(t, c.HandleRecord(context.Background(), Record{Template: "db down", Level: slog.LevelError}))
	assert.Equal(t, "payments", derefOr(creator.last().IncidentKey, ""))
}
