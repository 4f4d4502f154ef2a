package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/pdtrigger/internal/config"
	"github.com/Kargones/pdtrigger/internal/constants"
	"github.com/Kargones/pdtrigger/internal/di"
	"github.com/Kargones/pdtrigger/internal/pkg/apperrors"
	"github.com/Kargones/pdtrigger/internal/pkg/output"
	"github.com/Kargones/pdtrigger/internal/pkg/pagerduty"
	"github.com/Kargones/pdtrigger/internal/pkg/tracing"
)

// shutdownTimeout ограничивает отправку метрик и span-ов после команды.
const shutdownTimeout = 5 * time.Second

// commandFunc выполняет команду и возвращает Data для output.Result.
// Data возвращается и вместе с ошибкой, если частичный результат имеет смысл.
type commandFunc func(ctx context.Context, app *di.App) (any, error)

// execute загружает конфигурацию, собирает App, выполняет fn внутри
// корневого span-а, завершает телеметрию и выводит результат.
// mutate применяет флаги команды к конфигурации до валидации.
func execute(ctx context.Context, s *streams, g *globalFlags, name string,
	mutate func(*config.Config), fn commandFunc) error {
	start := time.Now()

	cfg, err := loadConfig(g, mutate)
	if err != nil {
		format := g.format
		if cfg != nil {
			format = cfg.OutputFormat
		}
		return finish(s, output.NewWriter(format), name, start, "", nil, err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return finish(s, output.NewWriter(cfg.OutputFormat), name, start, "", nil,
			apperrors.NewAppError(apperrors.ErrConfigValidate, "не удалось инициализировать зависимости", err))
	}

	ctx = tracing.WithTraceID(ctx, app.TraceID)
	ctx = tracing.ContextWithOTelTraceID(ctx, app.TraceID)
	logger := app.Logger.With("trace_id", app.TraceID, "command", name)
	clientLogger := app.ClientLogger.With("trace_id", app.TraceID, "command", name)
	logger.Debug("информация о сборке",
		"version", constants.Version,
		"commit_hash", constants.PreCommitHash,
	)

	ctx, span := otel.Tracer(constants.AppName).Start(ctx, name,
		trace.WithAttributes(
			attribute.String("command", name),
			attribute.String("trace_id", app.TraceID),
		),
	)
	data, runErr := fn(ctx, app)
	if runErr != nil {
		code := toAppError(runErr).Code
		span.RecordError(runErr)
		span.SetStatus(codes.Error, code)
		failLogger := logger
		if isDeliveryError(runErr) {
			failLogger = clientLogger
		}
		failLogger.Error("команда завершилась с ошибкой",
			"code", code,
			"error", runErr,
		)
	}
	span.End()

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := app.Close(closeCtx); err != nil {
		logger.Warn("ошибка завершения телеметрии", "error", err.Error())
	}

	return finish(s, app.OutputWriter, name, start, app.TraceID, data, runErr)
}

// loadConfig читает конфигурацию и применяет к ней флаги.
// Конфигурация возвращается и при ошибке валидации, чтобы вывести
// ошибку в настроенном формате.
func loadConfig(g *globalFlags, mutate func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.format != "" {
		cfg.OutputFormat = g.format
	}
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if err := cfg.RequireServiceKey(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// finish выводит результат команды и превращает ошибку в exitError.
func finish(s *streams, w output.Writer, name string, start time.Time, traceID string, data any, err error) error {
	result := &output.Result{
		Status:  output.StatusSuccess,
		Command: name,
		Data:    data,
		Metadata: &output.Metadata{
			DurationMs: time.Since(start).Milliseconds(),
			TraceID:    traceID,
			APIVersion: output.APIVersion,
		},
	}

	exitCode := 0
	if err != nil {
		appErr := toAppError(err)
		result.Status = output.StatusError
		result.Error = &output.ErrorInfo{Code: appErr.Code, Message: errorMessage(appErr)}
		exitCode = apperrors.ExitCode(appErr.Code)
	}

	if writeErr := w.Write(s.out, result); writeErr != nil {
		fmt.Fprintf(s.err, "%s: %v\n", apperrors.ErrOutputFormat, writeErr) //nolint:errcheck // stderr
		if exitCode == 0 {
			exitCode = 1
		}
	}
	if exitCode != 0 {
		return &exitError{code: exitCode, err: err}
	}
	return nil
}

// errorMessages — описания кодов ошибок CreateTrigger для вывода.
var errorMessages = map[string]string{
	apperrors.ErrTriggerValidation:  "событие не прошло локальную валидацию",
	apperrors.ErrAPIRequestRejected: "events API отклонил событие",
	apperrors.ErrAPIRateLimited:     "превышен лимит вызовов events API",
	apperrors.ErrAPIServerError:     "ошибка на стороне events API",
	apperrors.ErrAPIUnknown:         "неожиданный ответ events API",
	apperrors.ErrTransport:          "не удалось доставить событие",
}

// toAppError приводит ошибку команды к AppError. Ошибки клиента events API
// классифицируются через pagerduty.ErrorCode.
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	code := pagerduty.ErrorCode(err)
	return apperrors.NewAppError(code, errorMessages[code], err)
}

// isDeliveryError сообщает, что ошибка пришла из вызова events API
// (или его отмены), а не из разбора ввода или конфигурации. Такие ошибки
// не зеркалируются в инциденты: это был бы второй POST в тот же сервис.
func isDeliveryError(err error) bool {
	var appErr *apperrors.AppError
	return !errors.As(err, &appErr)
}

func errorMessage(e *apperrors.AppError) string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}
