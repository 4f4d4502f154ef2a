package pagerduty

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// MaxDescriptionLength — максимальная длина description в символах.
// Проверяется локально до любого сетевого вызова.
const MaxDescriptionLength = 1024

// EventTypeTrigger — единственный поддерживаемый тип события.
const EventTypeTrigger = "trigger"

// TriggerRequest описывает одно событие "trigger".
//
// Опциональные поля различают "не передано" и "передано пустым":
// nil указатель или nil map/slice не попадают в payload, а пустая
// строка, пустая map или пустой slice — попадают.
type TriggerRequest struct {
	// ServiceKey — ключ интеграции сервиса. Секрет, не логируется.
	ServiceKey string

	// IncidentKey — ключ дедупликации. Повторные trigger с тем же ключом
	// дописываются к открытому инциденту вместо новой эскалации.
	IncidentKey *string

	// Description — текст инцидента, не длиннее MaxDescriptionLength символов.
	Description string

	// Client и ClientURL — атрибуция источника события.
	Client    *string
	ClientURL *string

	// Details — произвольные структурированные данные.
	Details map[string]any

	// Contexts — изображения и ссылки в порядке отображения.
	Contexts []Context
}

// TriggerOption задаёт опциональное поле TriggerRequest.
type TriggerOption func(*TriggerRequest)

// NewTriggerRequest создаёт TriggerRequest с обязательными полями и опциями.
//
//	req := pagerduty.NewTriggerRequest(key, "disk full",
//	    pagerduty.WithIncidentKey("db-01/disk"),
//	    pagerduty.WithDetails(map[string]any{"free_mb": 12}),
//	)
func NewTriggerRequest(serviceKey, message string, opts ...TriggerOption) TriggerRequest {
	req := TriggerRequest{ServiceKey: serviceKey, Description: message}
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	return req
}

// WithIncidentKey задаёт incident_key.
func WithIncidentKey(key string) TriggerOption {
	return func(r *TriggerRequest) { r.IncidentKey = &key }
}

// WithClient задаёт client.
func WithClient(client string) TriggerOption {
	return func(r *TriggerRequest) { r.Client = &client }
}

// WithClientURL задаёт client_url.
func WithClientURL(clientURL string) TriggerOption {
	return func(r *TriggerRequest) { r.ClientURL = &clientURL }
}

// WithDetails задаёт details. nil map трактуется как "не передано".
func WithDetails(details map[string]any) TriggerOption {
	return func(r *TriggerRequest) { r.Details = details }
}

// WithContexts задаёт contexts. Пустой non-nil slice сериализуется как [].
func WithContexts(contexts ...Context) TriggerOption {
	return func(r *TriggerRequest) {
		if contexts == nil {
			contexts = []Context{}
		}
		r.Contexts = contexts
	}
}

// BuildTriggerPayload проверяет запрос и собирает JSON-совместимый payload.
// Функция чистая: сетевых вызовов нет.
//
// Длина description проверяется первой, затем кодируемость details
// в JSON. Всегда присутствуют service_key,
// event_type="trigger" и description; опциональные ключи — только если
// поле было передано.
func BuildTriggerPayload(req TriggerRequest) (map[string]any, error) {
	if n := utf8.RuneCountInString(req.Description); n > MaxDescriptionLength {
		return nil, &ValidationError{
			Field:  "description",
			Reason: fmt.Sprintf("message is %d characters, limit is %d", n, MaxDescriptionLength),
			Err:    ErrMessageTooLong,
		}
	}

	payload := map[string]any{
		"service_key": req.ServiceKey,
		"event_type":  EventTypeTrigger,
		"description": req.Description,
	}

	if req.IncidentKey != nil {
		payload["incident_key"] = *req.IncidentKey
	}
	if req.Client != nil {
		payload["client"] = *req.Client
	}
	if req.ClientURL != nil {
		payload["client_url"] = *req.ClientURL
	}
	if req.Details != nil {
		if _, err := json.Marshal(req.Details); err != nil {
			return nil, &ValidationError{Field: "details", Reason: err.Error(), Err: ErrDetailsNotJSON}
		}
		payload["details"] = req.Details
	}

	if req.Contexts != nil {
		contexts := make([]map[string]any, 0, len(req.Contexts))
		for i, c := range req.Contexts {
			if c == nil {
				return nil, newValidationError(fmt.Sprintf("contexts[%d]", i), "context is nil")
			}
			contexts = append(contexts, c.ToMap())
		}
		payload["contexts"] = contexts
	}

	return payload, nil
}
