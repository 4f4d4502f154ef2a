package incidentlog

import "errors"

var (
	// ErrServiceKeyRequired — Handler создаётся без ключа сервиса.
	ErrServiceKeyRequired = errors.New("incidentlog: service key is required")

	// ErrCreatorRequired — Handler создаётся без TriggerCreator.
	ErrCreatorRequired = errors.New("incidentlog: trigger creator is required")

	// ErrInvalidRecord — строка не является JSON записью slog.
	ErrInvalidRecord = errors.New("incidentlog: invalid log record")
)
