package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const testServiceKey = "9f2c4e1b7a3d4c8e9b0a1f2e3d4c5b6a"

// fakeEvents имитирует events API: отвечает заданным статусом и телом
// и сохраняет полученные события.
type fakeEvents struct {
	mu       sync.Mutex
	status   int
	body     string
	received []map[string]any
}

func newFakeEvents(t *testing.T, status int, body string) (*fakeEvents, string) {
	t.Helper()
	f := &fakeEvents{status: status, body: body}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var payload map[string]any
		require.NoError(t, json.Unmarshal(raw, &payload))

		f.mu.Lock()
		f.received = append(f.received, payload)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
	}))
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func (f *fakeEvents) events() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.received...)
}

const successBody = `{"status":"success","message":"Event processed","incident_key":"srv-incident-key"}`

// setupEnv настраивает конфигурацию через PD_* переменные окружения.
func setupEnv(t *testing.T, endpoint string) {
	t.Helper()
	t.Setenv("PD_CONFIG", "")
	t.Setenv("PD_SERVICE_KEY", testServiceKey)
	t.Setenv("PD_API_ENDPOINT", endpoint)
	t.Setenv("PD_LOG_LEVEL", "error")
	t.Setenv("PD_OUTPUT_FORMAT", "json")
}

func runCLI(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

// cliResult — JSON вывод команды.
type cliResult struct {
	Status  string         `json:"status"`
	Command string         `json:"command"`
	Data    map[string]any `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Metadata struct {
		TraceID    string `json:"trace_id"`
		APIVersion string `json:"api_version"`
	} `json:"metadata"`
}

func decodeResult(t *testing.T, stdout string) cliResult {
	t.Helper()
	var res cliResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res), "stdout: %s", stdout)
	return res
}
