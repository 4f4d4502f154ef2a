package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/pdtrigger/internal/pkg/apperrors"
)

func TestTrigger_Success(t *testing.T) {
	events, url := newFakeEvents(t, http.StatusOK, successBody)
	setupEnv(t, url)

	detailsFile := filepath.Join(t.TempDir(), "details.yaml")
	require.NoError(t, os.WriteFile(detailsFile, []byte("host: db-01\nfree_mb: 12\nmounts:\n  - /var\n"), 0o600))

	code, stdout, _ := runCLI(t, "", "trigger",
		"-m", "db-01: диск заполнен",
		"--incident-key", "db-01/disk",
		"--client", "cron",
		"--details-file", detailsFile,
		"--detail", "host=db-02",
		"--context", "type=link,href=https://ci.example.com/run/42,text=CI",
		"--context", "type=image,src=https://graphs.example.com/disk.png",
	)
	require.Equal(t, 0, code, stdout)

	res := decodeResult(t, stdout)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, "trigger", res.Command)
	assert.Equal(t, "srv-incident-key", res.Data["incident_key"])
	assert.Equal(t, "Event processed", res.Data["message"])
	assert.Len(t, res.Metadata.TraceID, 32)
	assert.Equal(t, "v1", res.Metadata.APIVersion)

	got := events.events()
	require.Len(t, got, 1)
	event := got[0]
	assert.Equal(t, testServiceKey, event["service_key"])
	assert.Equal(t, "trigger", event["event_type"])
	assert.Equal(t, "db-01: диск заполнен", event["description"])
	assert.Equal(t, "db-01/disk", event["incident_key"])
	assert.Equal(t, "cron", event["client"])
	assert.NotContains(t, event, "client_url")
	assert.Equal(t, map[string]any{
		"host":    "db-02",
		"free_mb": float64(12),
		"mounts":  []any{"/var"},
	}, event["details"])
	assert.Equal(t, []any{
		map[string]any{"type": "link", "href": "https://ci.example.com/run/42", "text": "CI"},
		map[string]any{"type": "image", "src": "https://graphs.example.com/disk.png"},
	}, event["contexts"])
}

func TestTrigger_DefaultsFromConfig(t *testing.T) {
	events, url := newFakeEvents(t, http.StatusOK, successBody)
	setupEnv(t, url)
	t.Setenv("PD_INCIDENT_KEY", "nightly-backup")
	t.Setenv("PD_CLIENT", "backup-cron")

	code, stdout, _ := runCLI(t, "", "trigger", "-m", "backup failed", "--client", "")
	require.Equal(t, 0, code, stdout)

	got := events.events()
	require.Len(t, got, 1)
	assert.Equal(t, "nightly-backup", got[0]["incident_key"])
	assert.Equal(t, "", got[0]["client"], "явно пустой флаг передаётся как пустая строка")
	assert.NotContains(t, got[0], "details")
	assert.NotContains(t, got[0], "contexts")
}

func TestTrigger_MessageFromStdinWithEncoding(t *testing.T) {
	events, url := newFakeEvents(t, http.StatusOK, successBody)
	setupEnv(t, url)

	cp1251 := string([]byte{0xcf, 0xf0, 0xe8, 0xe2, 0xe5, 0xf2}) + "\n"
	code, stdout, _ := runCLI(t, cp1251, "trigger", "-m", "-", "--input-encoding", "cp1251")
	require.Equal(t, 0, code, stdout)

	got := events.events()
	require.Len(t, got, 1)
	assert.Equal(t, "Привет", got[0]["description"])
}

func TestTrigger_DryRun(t *testing.T) {
	events, url := newFakeEvents(t, http.StatusOK, successBody)
	setupEnv(t, url)

	code, stdout, _ := runCLI(t, "", "trigger", "-m", "check", "--incident-key", "k", "--dry-run")
	require.Equal(t, 0, code, stdout)

	res := decodeResult(t, stdout)
	assert.Equal(t, true, res.Data["dry_run"])
	payload, ok := res.Data["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "check", payload["description"])
	assert.Equal(t, "k", payload["incident_key"])
	assert.Equal(t, strings.Repeat("*", 28)+"5b6a", payload["service_key"])
	assert.NotContains(t, stdout, testServiceKey)
	assert.Empty(t, events.events())
}

func TestTrigger_DryRunFromEnv(t *testing.T) {
	events, url := newFakeEvents(t, http.StatusOK, successBody)
	setupEnv(t, url)
	t.Setenv("PD_DRY_RUN", "true")

	code, stdout, _ := runCLI(t, "", "trigger", "-m", "check")
	require.Equal(t, 0, code, stdout)
	assert.Equal(t, true, decodeResult(t, stdout).Data["dry_run"])
	assert.Empty(t, events.events())
}

func TestTrigger_TextOutput(t *testing.T) {
	_, url := newFakeEvents(t, http.StatusOK, successBody)
	setupEnv(t, url)

	code, stdout, _ := runCLI(t, "", "--format", "text", "trigger", "-m", "text please")
	require.Equal(t, 0, code, stdout)
	assert.Contains(t, stdout, "trigger: success")
	assert.Contains(t, stdout, "Incident key: srv-incident-key")
}

func TestTrigger_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		args     []string
		wantCode string
		wantExit int
		wantSent int
	}{
		{
			name:     "message too long",
			status:   http.StatusOK,
			body:     successBody,
			args:     []string{"-m", strings.Repeat("x", 1025)},
			wantCode: apperrors.ErrTriggerValidation,
			wantExit: 2,
		},
		{
			name:     "invalid context",
			status:   http.StatusOK,
			body:     successBody,
			args:     []string{"-m", "m", "--context", "type=link,text=no-href"},
			wantCode: apperrors.ErrTriggerValidation,
			wantExit: 2,
		},
		{
			name:     "malformed detail",
			status:   http.StatusOK,
			body:     successBody,
			args:     []string{"-m", "m", "--detail", "novalue"},
			wantCode: apperrors.ErrTriggerInput,
			wantExit: 2,
		},
		{
			name:     "missing details file",
			status:   http.StatusOK,
			body:     successBody,
			args:     []string{"-m", "m", "--details-file", "/nonexistent/details.yaml"},
			wantCode: apperrors.ErrTriggerInput,
			wantExit: 2,
		},
		{
			name:     "rejected",
			status:   http.StatusBadRequest,
			body:     `{"status":"invalid event","message":"Event object is invalid","errors":["Service key is the wrong length"]}`,
			args:     []string{"-m", "m"},
			wantCode: apperrors.ErrAPIRequestRejected,
			wantExit: 3,
			wantSent: 1,
		},
		{
			name:     "rate limited",
			status:   http.StatusForbidden,
			body:     `<html>slow down</html>`,
			args:     []string{"-m", "m"},
			wantCode: apperrors.ErrAPIRateLimited,
			wantExit: 3,
			wantSent: 1,
		},
		{
			name:     "server error",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			args:     []string{"-m", "m"},
			wantCode: apperrors.ErrAPIServerError,
			wantExit: 4,
			wantSent: 1,
		},
		{
			name:     "unknown status",
			status:   http.StatusTeapot,
			body:     `{"status":"teapot"}`,
			args:     []string{"-m", "m"},
			wantCode: apperrors.ErrAPIUnknown,
			wantExit: 3,
			wantSent: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, url := newFakeEvents(t, tt.status, tt.body)
			setupEnv(t, url)

			code, stdout, _ := runCLI(t, "", append([]string{"trigger"}, tt.args...)...)
			assert.Equal(t, tt.wantExit, code)

			res := decodeResult(t, stdout)
			assert.Equal(t, "error", res.Status)
			require.NotNil(t, res.Error)
			assert.Equal(t, tt.wantCode, res.Error.Code)
			assert.NotContains(t, res.Error.Message, testServiceKey)
			assert.Len(t, events.events(), tt.wantSent)
		})
	}
}

func TestTrigger_TransportError(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1/create_event.json")

	code, stdout, _ := runCLI(t, "", "trigger", "-m", "unreachable")
	assert.Equal(t, 4, code)

	res := decodeResult(t, stdout)
	require.NotNil(t, res.Error)
	assert.Equal(t, apperrors.ErrTransport, res.Error.Code)
}

func TestTrigger_MirrorSkipsDeliveryFailure(t *testing.T) {
	events, url := newFakeEvents(t, http.StatusForbidden, `{}`)
	setupEnv(t, url)
	t.Setenv("PD_LOG_MIRROR_ERRORS", "true")

	code, stdout, _ := runCLI(t, "", "trigger", "-m", "disk full")
	assert.Equal(t, 3, code)
	assert.Equal(t, apperrors.ErrAPIRateLimited, decodeResult(t, stdout).Error.Code)

	got := events.events()
	require.Len(t, got, 1, "сбой доставки не отправляется повторно через зеркало")
	assert.Equal(t, "disk full", got[0]["description"])
}

func TestTrigger_MirrorReportsInputFailure(t *testing.T) {
	events, url := newFakeEvents(t, http.StatusOK, successBody)
	setupEnv(t, url)
	t.Setenv("PD_LOG_MIRROR_ERRORS", "true")

	code, _, _ := runCLI(t, "", "trigger", "-m", "x",
		"--details-file", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, 2, code)

	got := events.events()
	require.Len(t, got, 1)
	assert.Equal(t, "команда завершилась с ошибкой", got[0]["description"])
}

func TestTrigger_MissingServiceKey(t *testing.T) {
	_, url := newFakeEvents(t, http.StatusOK, successBody)
	setupEnv(t, url)
	t.Setenv("PD_SERVICE_KEY", "")

	code, stdout, _ := runCLI(t, "", "trigger", "-m", "m")
	assert.Equal(t, 2, code)

	res := decodeResult(t, stdout)
	require.NotNil(t, res.Error)
	assert.Equal(t, apperrors.ErrConfigValidate, res.Error.Code)
}

func TestTrigger_MessageFlagRequired(t *testing.T) {
	_, url := newFakeEvents(t, http.StatusOK, successBody)
	setupEnv(t, url)

	code, stdout, stderr := runCLI(t, "", "trigger")
	assert.Equal(t, exitCodeUsage, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, `"message"`)
}

func TestParseContexts(t *testing.T) {
	contexts, err := parseContexts(nil)
	require.NoError(t, err)
	assert.Nil(t, contexts)

	contexts, err = parseContexts([]string{"type=image,src=https://x/y.png,alt=graph"})
	require.NoError(t, err)
	require.Len(t, contexts, 1)
	assert.Equal(t, map[string]any{"type": "image", "src": "https://x/y.png", "alt": "graph"}, contexts[0].ToMap())

	_, err = parseContexts([]string{"src=https://x/y.png"})
	assert.Error(t, err, "без type")

	_, err = parseContexts([]string{"type=image,broken"})
	assert.Error(t, err)
}

func TestBuildDetails(t *testing.T) {
	details, err := buildDetails("", nil)
	require.NoError(t, err)
	assert.Nil(t, details)

	path := filepath.Join(t.TempDir(), "d.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": "1", "nested": {"b": true}}`), 0o600))

	details, err = buildDetails(path, []string{"a=2", "c=x=y"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a":      "2",
		"c":      "x=y",
		"nested": map[string]any{"b": true},
	}, details)
}

func TestBuildDetails_NonStringYAMLKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.yaml")
	require.NoError(t, os.WriteFile(path, []byte("codes:\n  200: ok\n  503: down\nhosts:\n  - {1: db-01}\n"), 0o600))

	details, err := buildDetails(path, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"codes": map[string]any{"200": "ok", "503": "down"},
		"hosts": []any{map[string]any{"1": "db-01"}},
	}, details)
}

func TestTrigger_DetailsFileWithNonStringKeys(t *testing.T) {
	events, url := newFakeEvents(t, http.StatusOK, successBody)
	setupEnv(t, url)

	path := filepath.Join(t.TempDir(), "d.yaml")
	require.NoError(t, os.WriteFile(path, []byte("codes:\n  200: ok\n"), 0o600))

	code, stdout, _ := runCLI(t, "", "trigger", "-m", "x", "--details-file", path)
	require.Equal(t, 0, code, stdout)

	got := events.events()
	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{"codes": map[string]any{"200": "ok"}}, got[0]["details"])
}
