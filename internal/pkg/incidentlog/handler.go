// Package incidentlog превращает записи лога в инциденты events API.
//
// Handler выводит из записи incident_key, текст и details и делает один
// вызов CreateTrigger. SlogHandler подключает его к log/slog,
// DecodeJSONRecord позволяет пересылать готовые JSON логи.
package incidentlog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Kargones/pdtrigger/internal/pkg/logging"
	"github.com/Kargones/pdtrigger/internal/pkg/pagerduty"
)

// TriggerCreator создаёт trigger событие. *pagerduty.Client удовлетворяет
// этому интерфейсу.
type TriggerCreator interface {
	CreateTrigger(ctx context.Context, req pagerduty.TriggerRequest) (pagerduty.EventResponse, error)
}

// LogIncident — данные инцидента, выведенные из одной записи.
type LogIncident struct {
	IncidentKey string
	Message     string
	Details     map[string]any
}

// Option настраивает Handler.
type Option func(*Handler)

// WithIncidentKey задаёт incident_key по умолчанию.
func WithIncidentKey(key string) Option {
	return func(h *Handler) { h.incidentKey = &key }
}

// WithClient задаёт поле client создаваемых событий.
func WithClient(client string) Option {
	return func(h *Handler) { h.client = &client }
}

// WithClientURL задаёт поле client_url создаваемых событий.
func WithClientURL(clientURL string) Option {
	return func(h *Handler) { h.clientURL = &clientURL }
}

// WithMinLevel задаёт минимальный уровень записей для Enabled.
// По умолчанию slog.LevelError.
func WithMinLevel(level slog.Level) Option {
	return func(h *Handler) { h.minLevel = level }
}

// WithLogger задаёт логгер для диагностики самого Handler.
func WithLogger(logger logging.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Handler создаёт по инциденту на каждую переданную ему запись.
// Настройки не меняются после создания, поэтому Handler безопасен
// для конкурентного использования.
type Handler struct {
	serviceKey  string
	creator     TriggerCreator
	incidentKey *string
	client      *string
	clientURL   *string
	minLevel    slog.Level
	logger      logging.Logger
}

// NewHandler создаёт Handler.
// Параметры:
//   - serviceKey: ключ интеграции сервиса, обязателен
//   - creator: точка создания trigger событий, обычно *pagerduty.Client
//   - opts: incident_key по умолчанию, атрибуция, минимальный уровень
func NewHandler(serviceKey string, creator TriggerCreator, opts ...Option) (*Handler, error) {
	if serviceKey == "" {
		return nil, ErrServiceKeyRequired
	}
	if creator == nil {
		return nil, ErrCreatorRequired
	}
	h := &Handler{
		serviceKey: serviceKey,
		creator:    creator,
		minLevel:   slog.LevelError,
		logger:     logging.NewNopLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// Clone возвращает копию Handler с применёнными opts.
// Исходный Handler не меняется.
func (h *Handler) Clone(opts ...Option) *Handler {
	c := *h
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return &c
}

// Enabled сообщает, должны ли записи уровня level становиться инцидентами.
func (h *Handler) Enabled(level slog.Level) bool {
	return level >= h.minLevel
}

// Incident выводит данные инцидента из записи.
//
// details — все Attrs, кроме incident_key, плюс details.error с текстом
// Err. incident_key берётся из поля записи, затем из значения по
// умолчанию, затем из неформатированного шаблона сообщения.
func (h *Handler) Incident(rec Record) LogIncident {
	details := make(map[string]any, len(rec.Attrs)+1)
	for k, v := range rec.Attrs {
		if k == IncidentKeyAttr {
			continue
		}
		details[k] = v
	}
	if rec.Err != nil {
		details[ErrorDetailKey] = rec.Err.Error()
	}

	return LogIncident{
		IncidentKey: h.resolveIncidentKey(rec),
		Message:     rec.Message(),
		Details:     stringifyAttrs(details),
	}
}

func (h *Handler) resolveIncidentKey(rec Record) string {
	if v, ok := rec.Attrs[IncidentKeyAttr]; ok && v != nil {
		if s, isString := v.(string); isString {
			return s
		}
		return fmt.Sprint(v)
	}
	if h.incidentKey != nil {
		return *h.incidentKey
	}
	return rec.Template
}

// HandleRecord создаёт инцидент из записи одним вызовом CreateTrigger.
// Уровень записи не проверяется: фильтрация — задача вызывающего через Enabled.
// Ошибка создания возвращается как есть, без повторов.
func (h *Handler) HandleRecord(ctx context.Context, rec Record) error {
	incident := h.Incident(rec)

	opts := []pagerduty.TriggerOption{
		pagerduty.WithIncidentKey(incident.IncidentKey),
		pagerduty.WithDetails(incident.Details),
	}
	if h.client != nil {
		opts = append(opts, pagerduty.WithClient(*h.client))
	}
	if h.clientURL != nil {
		opts = append(opts, pagerduty.WithClientURL(*h.clientURL))
	}

	req := pagerduty.NewTriggerRequest(h.serviceKey, incident.Message, opts...)
	if _, err := h.creator.CreateTrigger(ctx, req); err != nil {
		return fmt.Errorf("incidentlog: create trigger for %q: %w", incident.IncidentKey, err)
	}

	h.logger.Debug("запись лога отправлена как инцидент",
		"incident_key", incident.IncidentKey,
		"level", rec.Level.String(),
	)
	return nil
}
