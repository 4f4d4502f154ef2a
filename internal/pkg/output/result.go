// Package output форматирует результаты команд pd-trigger в JSON или текст.
package output

// StatusSuccess и StatusError — возможные значения поля Status в Result.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIVersion — версия формата JSON вывода.
const APIVersion = "v1"

// Result — структурированный результат выполнения команды.
type Result struct {
	// Status: "success" или "error".
	Status string `json:"status"`

	// Command — имя выполненной команды.
	Command string `json:"command"`

	// Data — payload команды: TriggerData или RelayData.
	Data any `json:"data,omitempty"`

	// Error заполняется только при Status == StatusError.
	Error *ErrorInfo `json:"error,omitempty"`

	Metadata *Metadata `json:"metadata,omitempty"`
}

// ErrorInfo — ошибка в машиночитаемом виде.
// Message не должен содержать service key.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Metadata содержит метаданные выполнения команды.
type Metadata struct {
	DurationMs int64  `json:"duration_ms"`
	TraceID    string `json:"trace_id,omitempty"`
	APIVersion string `json:"api_version"`
}

// TriggerData — результат команды trigger.
type TriggerData struct {
	IncidentKey string `json:"incident_key,omitempty"`
	Status      string `json:"status,omitempty"`
	Message     string `json:"message,omitempty"`
	DryRun      bool   `json:"dry_run,omitempty"`
	Payload     any    `json:"payload,omitempty"`
}

// RelayData — результат команды relay.
type RelayData struct {
	// Read — прочитано непустых строк.
	Read int `json:"read"`
	// Forwarded — создано инцидентов.
	Forwarded int `json:"forwarded"`
	// Skipped — записи ниже минимального уровня.
	Skipped int `json:"skipped"`
}
