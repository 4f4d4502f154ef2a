package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// TextWriter форматирует Result в человекочитаемый текст.
type TextWriter struct{}

// NewTextWriter создаёт новый TextWriter.
func NewTextWriter() *TextWriter {
	return &TextWriter{}
}

// Write форматирует result в текст и записывает в w.
func (t *TextWriter) Write(w io.Writer, result *Result) error {
	if result == nil {
		return nil
	}

	if _, err := fmt.Fprintf(w, "%s: %s\n", result.Command, result.Status); err != nil {
		return err
	}

	if result.Error != nil {
		if _, err := fmt.Fprintf(w, "Error [%s]: %s\n", result.Error.Code, result.Error.Message); err != nil {
			return err
		}
	}

	if err := writeData(w, result.Data); err != nil {
		return err
	}

	if result.Metadata != nil && result.Metadata.DurationMs > 0 {
		if _, err := fmt.Fprintf(w, "Время выполнения: %s\n", formatDuration(result.Metadata.DurationMs)); err != nil {
			return err
		}
	}
	return nil
}

func writeData(w io.Writer, data any) error {
	switch d := data.(type) {
	case nil:
		return nil
	case *TriggerData:
		return writeTriggerData(w, d)
	case *RelayData:
		_, err := fmt.Fprintf(w, "Прочитано: %d, отправлено: %d, пропущено: %d\n", d.Read, d.Forwarded, d.Skipped)
		return err
	default:
		dataJSON, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("не удалось сериализовать Data: %w", err)
		}
		_, err = fmt.Fprintf(w, "Data: %s\n", dataJSON)
		return err
	}
}

func writeTriggerData(w io.Writer, d *TriggerData) error {
	if d.DryRun {
		payload, err := json.MarshalIndent(d.Payload, "", "  ")
		if err != nil {
			return fmt.Errorf("не удалось сериализовать payload: %w", err)
		}
		_, err = fmt.Fprintf(w, "Payload (не отправлен):\n%s\n", payload)
		return err
	}
	if d.IncidentKey != "" {
		if _, err := fmt.Fprintf(w, "Incident key: %s\n", d.IncidentKey); err != nil {
			return err
		}
	}
	if d.Message != "" {
		if _, err := fmt.Fprintf(w, "Ответ: %s\n", d.Message); err != nil {
			return err
		}
	}
	return nil
}

// formatDuration форматирует длительность: мс, секунды с десятыми или минуты.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dмс", ms)
	}
	sec := ms / 1000
	if sec < 60 {
		return fmt.Sprintf("%.1fс", float64(ms)/1000)
	}
	return fmt.Sprintf("%dм %dс", sec/60, sec%60)
}
