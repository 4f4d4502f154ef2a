package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Kargones/pdtrigger/internal/constants"
)

// NewLogger создаёт Logger с заданной конфигурацией.
//
// Режимы вывода (config.Output):
//   - "stderr" или "" (default): os.Stderr
//   - "file": файл с ротацией через lumberjack (MaxSize, MaxBackups, MaxAge, Compress)
func NewLogger(config Config, extra ...slog.Handler) Logger {
	return NewLoggerWithHandlers(config, newWriter(config), extra...)
}

func newWriter(config Config) io.Writer {
	switch config.Output {
	case OutputFile:
		return newLumberjackWriter(config)
	case OutputStderr, "":
		return os.Stderr
	default:
		_, _ = fmt.Fprintf(os.Stderr, //nolint:errcheck // bootstrap stderr
			"WARNING: неизвестный logging output %q, используется stderr\n", config.Output)
		return os.Stderr
	}
}

// newLumberjackWriter создаёт io.Writer с ротацией.
// Создаёт директорию для файла логов; при ошибке или пустом FilePath
// возвращает os.Stderr.
func newLumberjackWriter(config Config) io.Writer {
	if config.FilePath == "" {
		_, _ = os.Stderr.WriteString("WARNING: logging output=file, но filePath пуст, используется stderr\n") //nolint:errcheck // bootstrap stderr
		return os.Stderr
	}

	dir := filepath.Dir(config.FilePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermStandard); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, //nolint:errcheck // bootstrap stderr
				"WARNING: не удалось создать директорию логов %q: %v, используется stderr\n", dir, err)
			return os.Stderr
		}
	}

	return &lumberjack.Logger{
		Filename:   config.FilePath,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}
}

// NewLoggerWithWriter создаёт Logger, пишущий в w. Используется в тестах.
func NewLoggerWithWriter(config Config, w io.Writer) Logger {
	return NewLoggerWithHandlers(config, w)
}

// NewLoggerWithHandlers создаёт Logger, который пишет в w и дополнительно
// передаёт каждую запись в extra обработчики (например, incidentlog.SlogHandler).
// Уровень из config применяется только к основному выводу: extra обработчики
// фильтруют записи своим Enabled.
func NewLoggerWithHandlers(config Config, w io.Writer, extra ...slog.Handler) Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(config.Level)}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	if len(extra) > 0 {
		handler = newFanoutHandler(append([]slog.Handler{handler}, extra...)...)
	}

	return NewSlogAdapter(slog.New(handler))
}

// parseLevel конвертирует строковый уровень в slog.Level.
// Неизвестное значение — slog.LevelInfo.
func parseLevel(level string) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel — экспортируемый вариант parseLevel для конфигурации
// других slog обработчиков теми же строковыми уровнями.
func ParseLevel(level string) slog.Level {
	return parseLevel(level)
}
