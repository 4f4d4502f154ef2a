// Package pagerduty реализует клиент generic events API (v1): модель
// контекстов инцидента, сборку payload события "trigger" и классификацию
// ответов сервиса.
//
// Клиент делает ровно один POST на вызов. Повторы, очереди и back-pressure
// при 403 — забота вызывающего кода.
package pagerduty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/pdtrigger/internal/pkg/logging"
	"github.com/Kargones/pdtrigger/internal/pkg/redact"
)

// maxResponseBodySize — максимальный размер читаемого тела ответа (64 KB).
const maxResponseBodySize = 64 << 10

// tracerName — имя instrumentation scope для span-ов клиента.
const tracerName = "github.com/Kargones/pdtrigger/internal/pkg/pagerduty"

// HTTPClient определяет интерфейс HTTP клиента для тестирования.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Recorder принимает исход и длительность каждого вызова CreateTrigger.
// metrics.Collector удовлетворяет этому интерфейсу.
type Recorder interface {
	RecordTrigger(outcome string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordTrigger(string, time.Duration) {}

// ClientOption настраивает Client.
type ClientOption func(*Client)

// WithRecorder подключает сбор метрик вызовов.
func WithRecorder(r Recorder) ClientOption {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithTracerProvider задаёт TracerProvider. По умолчанию глобальный otel.
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// Client отправляет события в events API.
// Безопасен для конкурентного использования: состояние после создания не меняется.
type Client struct {
	config     Config
	logger     logging.Logger
	httpClient HTTPClient
	recorder   Recorder
	tracer     trace.Tracer
}

// NewClient создаёт Client с указанной конфигурацией.
// Параметры:
//   - config: адрес endpoint, таймаут и User-Agent
//   - logger: логгер для диагностических сообщений
//   - opts: метрики и трейсинг
func NewClient(config Config, logger logging.Logger, opts ...ClientOption) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.withDefaults()
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	c := &Client{
		config:     config,
		logger:     logger,
		httpClient: &http.Client{Timeout: config.Timeout},
		recorder:   nopRecorder{},
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// SetHTTPClient устанавливает кастомный HTTPClient (для тестирования).
func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

// Endpoint возвращает адрес, на который отправляются события.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// CreateTrigger собирает payload, отправляет его одним POST запросом
// и классифицирует ответ.
//
// Ошибки валидации (ErrValidation) возвращаются до сетевого вызова.
// Ответы сервиса возвращаются как *APIError. Ошибки транспорта и
// отмена ctx возвращаются обёрнутыми как есть.
func (c *Client) CreateTrigger(ctx context.Context, req TriggerRequest) (resp EventResponse, err error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "pagerduty.CreateTrigger",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("pagerduty.event_type", EventTypeTrigger),
			attribute.Bool("pagerduty.has_incident_key", req.IncidentKey != nil),
			attribute.Int("pagerduty.contexts", len(req.Contexts)),
		),
	)
	defer func() {
		outcome := Outcome(err)
		span.SetAttributes(attribute.String("pagerduty.outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
		c.recorder.RecordTrigger(outcome, time.Since(start))
	}()

	payload, err := BuildTriggerPayload(req)
	if err != nil {
		c.logger.Warn("событие не прошло локальную валидацию",
			"error", err.Error(),
		)
		return nil, err
	}

	c.logger.Debug("отправка trigger события",
		"endpoint", redact.URL(c.config.Endpoint),
		"service_key", redact.Secret(req.ServiceKey),
		"description_length", len([]rune(req.Description)),
	)

	status, body, err := c.post(ctx, payload)
	if err != nil {
		c.logger.Error("ошибка отправки trigger события",
			"endpoint", redact.URL(c.config.Endpoint),
			"error", err.Error(),
		)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	resp, err = ClassifyResponse(status, body)
	if err != nil {
		c.logger.Warn("events API вернул ошибку",
			"status_code", status,
			"error", err.Error(),
		)
		return nil, err
	}

	c.logger.Info("trigger событие принято",
		"incident_key", resp.IncidentKey(),
		"status", resp.Status(),
	)
	return resp, nil
}

// post отправляет payload и возвращает HTTP статус и разобранное тело.
// Тело разбирается только если оно нужно для классификации статуса.
func (c *Client) post(ctx context.Context, payload map[string]any) (int, any, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, &ValidationError{Field: "payload", Reason: err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return 0, nil, fmt.Errorf("pagerduty: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.config.UserAgent)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("pagerduty: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	limited := io.LimitReader(httpResp.Body, maxResponseBodySize)
	if !needsBody(httpResp.StatusCode) {
		// Дренируем body для переиспользования keep-alive соединения.
		_, _ = io.Copy(io.Discard, limited) //nolint:errcheck // best-effort drain
		return httpResp.StatusCode, nil, nil
	}

	raw, err := io.ReadAll(limited)
	if err != nil {
		return 0, nil, fmt.Errorf("pagerduty: failed to read response: %w", err)
	}
	body, err := decodeBody(raw)
	if err != nil {
		return 0, nil, fmt.Errorf("pagerduty: failed to decode response (HTTP %d): %w", httpResp.StatusCode, err)
	}
	return httpResp.StatusCode, body, nil
}

// decodeBody разбирает JSON тело ответа. Пустое тело — nil.
func decodeBody(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}
