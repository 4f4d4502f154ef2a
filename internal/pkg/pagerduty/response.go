package pagerduty

import (
	"fmt"
	"net/http"
)

// EventResponse — тело успешного ответа events API.
// Обычно содержит status, message и incident_key.
type EventResponse map[string]any

// IncidentKey возвращает incident_key из ответа или пустую строку.
func (r EventResponse) IncidentKey() string {
	return r.stringField("incident_key")
}

// Status возвращает status из ответа ("success").
func (r EventResponse) Status() string {
	return r.stringField("status")
}

// Message возвращает message из ответа.
func (r EventResponse) Message() string {
	return r.stringField("message")
}

func (r EventResponse) stringField(name string) string {
	if v, ok := r[name].(string); ok {
		return v
	}
	return ""
}

// ClassifyResponse превращает HTTP статус и разобранное JSON тело в
// результат вызова. Функция чистая, порядок проверки:
//
//	200  → EventResponse(body)
//	400  → APIError{ErrRequestRejected, body}
//	403  → APIError{ErrTooManyAPICalls}, тело не сохраняется
//	5xx  → APIError{ErrServerError, status}
//	иное → APIError{ErrUnknownAPIError, status, body}
func ClassifyResponse(statusCode int, body any) (EventResponse, error) {
	switch {
	case statusCode == http.StatusOK:
		return successBody(body)
	case statusCode == http.StatusBadRequest:
		return nil, &APIError{Kind: ErrRequestRejected, StatusCode: statusCode, Body: body}
	case statusCode == http.StatusForbidden:
		return nil, &APIError{Kind: ErrTooManyAPICalls, StatusCode: statusCode}
	case statusCode >= http.StatusInternalServerError:
		return nil, &APIError{Kind: ErrServerError, StatusCode: statusCode}
	default:
		return nil, &APIError{Kind: ErrUnknownAPIError, StatusCode: statusCode, Body: body}
	}
}

func successBody(body any) (EventResponse, error) {
	switch b := body.(type) {
	case EventResponse:
		return b, nil
	case map[string]any:
		return EventResponse(b), nil
	case nil:
		return EventResponse{}, nil
	default:
		return nil, fmt.Errorf("pagerduty: unexpected success body of type %T", body)
	}
}

// needsBody сообщает, используется ли тело ответа при данном статусе.
// Для 403 и 5xx тело не разбирается: там часто HTML от балансировщика.
func needsBody(statusCode int) bool {
	return statusCode != http.StatusForbidden && statusCode < http.StatusInternalServerError
}
