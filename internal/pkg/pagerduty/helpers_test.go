package pagerduty

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Kargones/pdtrigger/internal/pkg/logging"
)

// mockHTTPClient — mock для HTTPClient.
type mockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
	// Requests хранит все полученные запросы для проверки.
	Requests []*http.Request
	// Bodies хранит прочитанные тела запросов.
	Bodies [][]byte
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
	if req.Body != nil {
		body, _ := io.ReadAll(req.Body)
		m.Bodies = append(m.Bodies, body)
		req.Body = io.NopCloser(bytes.NewReader(body))
	}
	return m.DoFunc(req)
}

// mockHTTPResponse создаёт mock HTTP response с JSON телом.
func mockHTTPResponse(statusCode int, body any) *http.Response {
	jsonBody, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewReader(jsonBody)),
	}
}

// rawHTTPResponse создаёт mock HTTP response с произвольным телом.
func rawHTTPResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// testLogger реализует logging.Logger и запоминает сообщения с аргументами.
type testLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

func (l *testLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *testLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }
func (l *testLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *testLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *testLogger) Error(msg string, args ...any) { l.add("error", msg, args) }
func (l *testLogger) With(_ ...any) logging.Logger  { return l }

// dump возвращает все сообщения и аргументы одной строкой для поиска подстрок.
func (l *testLogger) dump() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var b strings.Builder
	for _, e := range l.entries {
		b.WriteString(e.level + " " + e.msg)
		for _, a := range e.args {
			b.WriteString(" ")
			b.WriteString(toString(a))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func toString(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// testRecorder запоминает вызовы RecordTrigger.
type testRecorder struct {
	outcomes  []string
	durations []time.Duration
}

func (r *testRecorder) RecordTrigger(outcome string, d time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
	r.durations = append(r.durations, d)
}

func strPtr(s string) *string { return &s }
