package output

import "strings"

// FormatJSON и FormatText — поддерживаемые форматы вывода.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// NewWriter создаёт Writer по имени формата без учёта регистра.
// Неизвестный формат даёт TextWriter.
func NewWriter(format string) Writer {
	if strings.EqualFold(strings.TrimSpace(format), FormatJSON) {
		return NewJSONWriter()
	}
	return NewTextWriter()
}

// ValidFormat сообщает, поддерживается ли формат.
func ValidFormat(format string) bool {
	f := strings.ToLower(strings.TrimSpace(format))
	return f == FormatJSON || f == FormatText
}
