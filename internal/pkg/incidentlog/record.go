package incidentlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Зарезервированные имена полей записи.
const (
	// IncidentKeyAttr — поле записи, переопределяющее incident_key.
	IncidentKeyAttr = "incident_key"

	// ErrorDetailKey — ключ details с текстом ошибки.
	ErrorDetailKey = "error"
)

// Record — структурированная запись лога, из которой создаётся инцидент.
type Record struct {
	// Template — шаблон сообщения до подстановки аргументов.
	Template string

	// Args — позиционные аргументы шаблона.
	Args []any

	Level slog.Level
	Time  time.Time

	// Attrs — дополнительные поля записи. Попадают в details.
	Attrs map[string]any

	// Err — ошибка, приложенная к записи.
	Err error
}

// Message возвращает текст записи: шаблон с подставленными аргументами.
func (r Record) Message() string {
	if len(r.Args) == 0 {
		return r.Template
	}
	return fmt.Sprintf(r.Template, r.Args...)
}

// baselineKeys — стандартные поля JSON записи slog, не относящиеся к details.
var baselineKeys = []string{slog.TimeKey, slog.LevelKey, slog.MessageKey, slog.SourceKey}

// DecodeJSONRecord разбирает одну строку, записанную slog.JSONHandler.
// Поля time, level, msg и source образуют базовую схему, остальные
// становятся Attrs. Отсутствующий level трактуется как INFO.
func DecodeJSONRecord(line []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if raw == nil {
		return Record{}, fmt.Errorf("%w: not a JSON object", ErrInvalidRecord)
	}

	msg, ok := raw[slog.MessageKey].(string)
	if !ok {
		return Record{}, fmt.Errorf("%w: %q is missing or not a string", ErrInvalidRecord, slog.MessageKey)
	}

	rec := Record{Template: msg, Level: slog.LevelInfo}

	if v, present := raw[slog.LevelKey]; present {
		s, isString := v.(string)
		if !isString {
			return Record{}, fmt.Errorf("%w: %q is not a string", ErrInvalidRecord, slog.LevelKey)
		}
		if err := rec.Level.UnmarshalText([]byte(s)); err != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
	}

	if v, present := raw[slog.TimeKey]; present {
		s, isString := v.(string)
		if !isString {
			return Record{}, fmt.Errorf("%w: %q is not a string", ErrInvalidRecord, slog.TimeKey)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		rec.Time = t
	}

	for _, k := range baselineKeys {
		delete(raw, k)
	}
	rec.Attrs = raw
	return rec, nil
}
