package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Kargones/pdtrigger/internal/config"
	"github.com/Kargones/pdtrigger/internal/constants"
	"github.com/Kargones/pdtrigger/internal/di"
	"github.com/Kargones/pdtrigger/internal/pkg/apperrors"
	"github.com/Kargones/pdtrigger/internal/pkg/incidentlog"
	"github.com/Kargones/pdtrigger/internal/pkg/output"
	"github.com/Kargones/pdtrigger/internal/pkg/textenc"
)

// maxRelayLineSize — максимальная длина одной JSON записи в stdin (1 MB).
const maxRelayLineSize = 1 << 20

func newRelayCmd(s *streams, g *globalFlags) *cobra.Command {
	var minLevel, inputEncoding string

	cmd := &cobra.Command{
		Use:   constants.CmdRelay,
		Short: "Превратить JSON логи из stdin в инциденты",
		Long: `Читает из stdin записи slog.JSONHandler, по одной на строку, и создаёт
инцидент для каждой записи с уровнем не ниже --min-level.

incident_key берётся из поля записи incident_key, затем из incidentKey
конфигурации, затем из текста сообщения. Остальные поля, кроме time,
level, msg и source, становятся details.

Первая ошибка останавливает пересылку: оставшиеся строки не читаются.`,
		Example: `  my-service 2>&1 >/dev/null | pd-trigger relay --min-level warn`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mutate := func(cfg *config.Config) {
				if cmd.Flags().Changed("min-level") {
					cfg.Relay.MinLevel = minLevel
				}
				if cmd.Flags().Changed("input-encoding") {
					cfg.InputEncoding = inputEncoding
				}
			}
			return execute(cmd.Context(), s, g, constants.CmdRelay, mutate,
				func(ctx context.Context, app *di.App) (any, error) {
					return runRelay(ctx, s.in, app)
				})
		},
	}

	cmd.Flags().StringVar(&minLevel, "min-level", "", "минимальный уровень записи: debug, info, warn, error")
	cmd.Flags().StringVar(&inputEncoding, "input-encoding", "", "кодировка stdin, например koi8-r")
	return cmd
}

// runRelay пересылает записи из stdin. Счётчики возвращаются и при ошибке.
func runRelay(ctx context.Context, stdin io.Reader, app *di.App) (any, error) {
	data := &output.RelayData{}

	r, err := textenc.NewReader(stdin, app.Config.InputEncoding)
	if err != nil {
		return data, apperrors.NewAppError(apperrors.ErrRelayDecode, "неизвестная кодировка ввода", err)
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxRelayLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return data, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		data.Read++

		rec, err := incidentlog.DecodeJSONRecord(line)
		if err != nil {
			return data, apperrors.NewAppError(apperrors.ErrRelayDecode,
				fmt.Sprintf("строка %d не является JSON записью", lineNo), err)
		}
		if !app.Incidents.Enabled(rec.Level) {
			data.Skipped++
			continue
		}
		if err := app.Incidents.HandleRecord(ctx, rec); err != nil {
			return data, err
		}
		data.Forwarded++
	}
	if err := scanner.Err(); err != nil {
		return data, apperrors.NewAppError(apperrors.ErrRelayDecode, "ошибка чтения stdin", err)
	}
	return data, nil
}
