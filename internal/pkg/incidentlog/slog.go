package incidentlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
)

// SlogOption настраивает SlogHandler.
type SlogOption func(*SlogHandler)

// WithErrorHandler задаёт функцию, получающую ошибки создания инцидентов.
// slog.Logger отбрасывает ошибку Handle, поэтому без неё сбой был бы не виден.
func WithErrorHandler(fn func(error)) SlogOption {
	return func(s *SlogHandler) {
		if fn != nil {
			s.onError = fn
		}
	}
}

// StderrErrorHandler возвращает функцию, печатающую ошибку строкой в w.
func StderrErrorHandler(w io.Writer) func(error) {
	if w == nil {
		w = os.Stderr
	}
	return func(err error) {
		fmt.Fprintf(w, "incidentlog: %v\n", err) //nolint:errcheck // нечего делать с ошибкой записи в stderr
	}
}

// groupOrAttrs — либо открытая группа, либо атрибуты из WithAttrs.
type groupOrAttrs struct {
	group string
	attrs []slog.Attr
}

// SlogHandler — slog.Handler, создающий инцидент на каждую запись
// с уровнем не ниже минимального уровня Handler.
type SlogHandler struct {
	handler *Handler
	goas    []groupOrAttrs
	onError func(error)
}

// NewSlogHandler создаёт SlogHandler поверх h.
func NewSlogHandler(h *Handler, opts ...SlogOption) *SlogHandler {
	s := &SlogHandler{
		handler: h,
		onError: StderrErrorHandler(os.Stderr),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Enabled реализует slog.Handler.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return s.handler.Enabled(level)
}

// Handle реализует slog.Handler. Атрибут "error" верхнего уровня со
// значением типа error становится Record.Err; группы становятся
// вложенными map.
func (s *SlogHandler) Handle(ctx context.Context, r slog.Record) error {
	rec := Record{
		Template: r.Message,
		Level:    r.Level,
		Time:     r.Time,
		Attrs:    make(map[string]any, r.NumAttrs()),
	}

	goas := s.goas
	if r.NumAttrs() == 0 {
		// Пустые группы в конце не порождают вложенных map.
		for len(goas) > 0 && goas[len(goas)-1].group != "" {
			goas = goas[:len(goas)-1]
		}
	}

	cur := rec.Attrs
	topLevel := true
	for _, goa := range goas {
		if goa.group != "" {
			nested := map[string]any{}
			cur[goa.group] = nested
			cur = nested
			topLevel = false
			continue
		}
		for _, a := range goa.attrs {
			addAttr(&rec, cur, a, topLevel)
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(&rec, cur, a, topLevel)
		return true
	})

	if err := s.handler.HandleRecord(ctx, rec); err != nil {
		s.onError(err)
		return err
	}
	return nil
}

// WithAttrs реализует slog.Handler.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	return s.withGroupOrAttrs(groupOrAttrs{attrs: attrs})
}

// WithGroup реализует slog.Handler.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	return s.withGroupOrAttrs(groupOrAttrs{group: name})
}

func (s *SlogHandler) withGroupOrAttrs(goa groupOrAttrs) *SlogHandler {
	s2 := *s
	s2.goas = append(slices.Clip(s.goas), goa)
	return &s2
}

func addAttr(rec *Record, m map[string]any, a slog.Attr, topLevel bool) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		if len(attrs) == 0 {
			return
		}
		if a.Key == "" {
			for _, ga := range attrs {
				addAttr(rec, m, ga, topLevel)
			}
			return
		}
		nested := map[string]any{}
		for _, ga := range attrs {
			addAttr(rec, nested, ga, false)
		}
		m[a.Key] = nested
		return
	}

	if topLevel && a.Key == ErrorDetailKey {
		if err, ok := a.Value.Any().(error); ok {
			rec.Err = err
			return
		}
	}
	m[a.Key] = a.Value.Any()
}
