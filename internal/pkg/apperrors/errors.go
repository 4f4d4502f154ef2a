// Package apperrors предоставляет структурированные ошибки приложения.
// Переименован из errors чтобы избежать конфликта со стандартной библиотекой.
package apperrors

import "fmt"

// Коды ошибок в иерархическом формате: CATEGORY.SPECIFIC_ERROR.
// Позволяет grep по категориям: `grep "API\."` для всех ошибок events API.
const (
	// Category: CONFIG — ошибки загрузки и валидации конфигурации.
	ErrConfigLoad     = "CONFIG.LOAD_FAILED"
	ErrConfigValidate = "CONFIG.VALIDATION_FAILED"

	// Category: TRIGGER — локальные ошибки до сетевого вызова.
	ErrTriggerValidation = "TRIGGER.VALIDATION_FAILED"
	ErrTriggerInput      = "TRIGGER.INPUT_FAILED"

	// Category: API — классифицированные ответы events API.
	ErrAPIRequestRejected = "API.REQUEST_REJECTED"
	ErrAPIRateLimited     = "API.RATE_LIMITED"
	ErrAPIServerError     = "API.SERVER_ERROR"
	ErrAPIUnknown         = "API.UNKNOWN_ERROR"

	// Category: TRANSPORT — сетевые ошибки, не классифицируемые по HTTP статусу.
	ErrTransport = "TRANSPORT.FAILED"

	// Category: RELAY — ошибки пересылки лог-записей.
	ErrRelayDecode = "RELAY.DECODE_FAILED"

	// Category: OUTPUT — ошибки форматирования вывода.
	ErrOutputFormat = "OUTPUT.FORMAT_FAILED"
)

// AppError представляет структурированную ошибку приложения.
// Реализует error interface и поддерживает wrapping через Unwrap().
//
// ВАЖНО: Message НЕ ДОЛЖЕН содержать секреты (service key, токены).
//
// Пример использования:
//
//	return apperrors.NewAppError(apperrors.ErrConfigLoad,
//	    "не удалось загрузить конфигурацию",
//	    err)
type AppError struct {
	// Code — машиночитаемый код ошибки в формате CATEGORY.SPECIFIC.
	Code string `json:"code"`

	// Message — человекочитаемое описание ошибки.
	Message string `json:"message"`

	// Cause — wrapped оригинальная ошибка.
	// Не сериализуется в JSON: может содержать тело ответа сервиса.
	Cause error `json:"-"`
}

// Error реализует интерфейс error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap возвращает wrapped ошибку для errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError создаёт новый AppError с заданным кодом, сообщением и причиной.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ExitCode возвращает код завершения процесса для кода ошибки.
// 2 — ошибки конфигурации и ввода, 3 — отказ сервиса, 4 — сбой доставки.
func ExitCode(code string) int {
	switch code {
	case ErrConfigLoad, ErrConfigValidate, ErrTriggerValidation, ErrTriggerInput, ErrRelayDecode:
		return 2
	case ErrAPIRequestRejected, ErrAPIRateLimited, ErrAPIUnknown:
		return 3
	case ErrAPIServerError, ErrTransport:
		return 4
	default:
		return 1
	}
}
