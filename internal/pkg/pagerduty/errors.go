package pagerduty

import (
	"errors"
	"fmt"

	"github.com/Kargones/pdtrigger/internal/pkg/apperrors"
)

// Локальные ошибки валидации. Никогда не уходят в сеть.
var (
	// ErrValidation — общий sentinel для всех локальных ошибок валидации.
	ErrValidation = errors.New("pagerduty: validation failed")

	// ErrMessageTooLong — description длиннее MaxDescriptionLength символов.
	ErrMessageTooLong = errors.New("pagerduty: message is too long to be passed to the events API")

	// ErrDetailsNotJSON — details содержат значения, не кодируемые в JSON.
	ErrDetailsNotJSON = errors.New("pagerduty: details cannot be encoded as JSON")
)

// Классифицированные ответы events API.
var (
	// ErrRequestRejected — HTTP 400, сервис отклонил payload своей валидацией.
	ErrRequestRejected = errors.New("pagerduty: request rejected")

	// ErrTooManyAPICalls — HTTP 403, превышен лимит вызовов API.
	ErrTooManyAPICalls = errors.New("pagerduty: too many API calls")

	// ErrServerError — HTTP 5xx, сбой на стороне сервиса.
	ErrServerError = errors.New("pagerduty: server error")

	// ErrUnknownAPIError — любой другой HTTP статус.
	ErrUnknownAPIError = errors.New("pagerduty: unknown API error")
)

// Ошибки конфигурации клиента.
var (
	// ErrEndpointInvalid — endpoint не является http(s) URL с host.
	ErrEndpointInvalid = errors.New("pagerduty: endpoint must be an http(s) URL with host")

	// ErrTimeoutInvalid — отрицательный таймаут.
	ErrTimeoutInvalid = errors.New("pagerduty: timeout must not be negative")
)

// ValidationError описывает локальную ошибку валидации конкретного поля.
// errors.Is(err, ErrValidation) истинно для любой ValidationError.
type ValidationError struct {
	// Field — имя поля в терминах events API ("description", "src", "href", ...).
	Field string

	// Reason — человекочитаемая причина.
	Reason string

	// Err — более конкретный sentinel (например ErrMessageTooLong), может быть nil.
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pagerduty: invalid %s: %s", e.Field, e.Reason)
}

// Unwrap возвращает конкретный sentinel, если он задан.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is позволяет сопоставлять любую ValidationError с ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// APIError — классифицированный неуспешный ответ events API.
// Kind — один из ErrRequestRejected, ErrTooManyAPICalls, ErrServerError, ErrUnknownAPIError.
type APIError struct {
	Kind error

	// StatusCode — HTTP статус ответа.
	StatusCode int

	// Body — разобранное JSON тело ответа. Для ErrTooManyAPICalls и
	// ErrServerError не сохраняется.
	Body any
}

func (e *APIError) Error() string {
	switch e.Kind {
	case ErrTooManyAPICalls:
		return e.Kind.Error()
	case ErrServerError:
		return fmt.Sprintf("%v: HTTP %d", e.Kind, e.StatusCode)
	default:
		return fmt.Sprintf("%v: HTTP %d: %v", e.Kind, e.StatusCode, e.Body)
	}
}

// Unwrap возвращает Kind для errors.Is.
func (e *APIError) Unwrap() error {
	return e.Kind
}

// ErrorCode сопоставляет ошибку CreateTrigger с кодом apperrors.
// Ошибки, не относящиеся к классификации, считаются транспортными.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return apperrors.ErrTriggerValidation
	case errors.Is(err, ErrRequestRejected):
		return apperrors.ErrAPIRequestRejected
	case errors.Is(err, ErrTooManyAPICalls):
		return apperrors.ErrAPIRateLimited
	case errors.Is(err, ErrServerError):
		return apperrors.ErrAPIServerError
	case errors.Is(err, ErrUnknownAPIError):
		return apperrors.ErrAPIUnknown
	default:
		return apperrors.ErrTransport
	}
}

// Outcome возвращает метку исхода вызова для метрик.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrValidation):
		return OutcomeValidation
	case errors.Is(err, ErrRequestRejected):
		return OutcomeRejected
	case errors.Is(err, ErrTooManyAPICalls):
		return OutcomeRateLimited
	case errors.Is(err, ErrServerError):
		return OutcomeServerError
	case errors.Is(err, ErrUnknownAPIError):
		return OutcomeUnknown
	default:
		return OutcomeTransport
	}
}

// Метки исходов CreateTrigger.
const (
	OutcomeSuccess     = "success"
	OutcomeValidation  = "validation"
	OutcomeRejected    = "rejected"
	OutcomeRateLimited = "rate_limited"
	OutcomeServerError = "server_error"
	OutcomeUnknown     = "unknown"
	OutcomeTransport   = "transport"
)
