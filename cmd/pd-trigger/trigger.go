package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/Kargones/pdtrigger/internal/config"
	"github.com/Kargones/pdtrigger/internal/constants"
	"github.com/Kargones/pdtrigger/internal/di"
	"github.com/Kargones/pdtrigger/internal/pkg/apperrors"
	"github.com/Kargones/pdtrigger/internal/pkg/output"
	"github.com/Kargones/pdtrigger/internal/pkg/pagerduty"
	"github.com/Kargones/pdtrigger/internal/pkg/redact"
	"github.com/Kargones/pdtrigger/internal/pkg/textenc"
)

// messageFromStdin — значение --message, означающее чтение текста из stdin.
const messageFromStdin = "-"

type triggerOptions struct {
	message       string
	incidentKey   string
	client        string
	clientURL     string
	detailsFile   string
	details       []string
	contexts      []string
	inputEncoding string
	dryRun        bool
}

func newTriggerCmd(s *streams, g *globalFlags) *cobra.Command {
	opts := &triggerOptions{}

	cmd := &cobra.Command{
		Use:   constants.CmdTrigger,
		Short: "Создать инцидент из сообщения",
		Long: `Отправляет одно trigger событие. Повторные события с тем же
--incident-key дописываются к открытому инциденту.

Флаги --incident-key, --client и --client-url переопределяют значения
incidentKey, client и clientUrl из конфигурации. Пустое значение флага
передаётся в событие как пустая строка.`,
		Example: `  pd-trigger trigger -m "db-01: диск заполнен" --incident-key db-01/disk
  df -h | pd-trigger trigger -m - --detail host=db-01
  pd-trigger trigger -m "деплой упал" \
      --context type=link,href=https://ci.example.com/run/42,text=CI \
      --details-file details.yaml --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mutate := func(cfg *config.Config) {
				if cmd.Flags().Changed("input-encoding") {
					cfg.InputEncoding = opts.inputEncoding
				}
			}
			return execute(cmd.Context(), s, g, constants.CmdTrigger, mutate,
				func(ctx context.Context, app *di.App) (any, error) {
					return runTrigger(ctx, cmd.Flags(), s.in, app, opts)
				})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.message, "message", "m", "", `текст инцидента; "-" читает его из stdin`)
	f.StringVar(&opts.incidentKey, "incident-key", "", "ключ дедупликации инцидента")
	f.StringVar(&opts.client, "client", "", "имя системы-источника события")
	f.StringVar(&opts.clientURL, "client-url", "", "ссылка на систему-источник")
	f.StringVar(&opts.detailsFile, "details-file", "", "YAML или JSON файл с details")
	f.StringArrayVar(&opts.details, "detail", nil, "поле details key=value, можно повторять")
	f.StringArrayVar(&opts.contexts, "context", nil,
		"контекст type=image,src=URL[,href=URL][,alt=TEXT] или type=link,href=URL[,text=TEXT]")
	f.StringVar(&opts.inputEncoding, "input-encoding", "", "кодировка stdin, например cp1251")
	f.BoolVar(&opts.dryRun, "dry-run", false, "показать payload без отправки (или PD_DRY_RUN=true)")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func runTrigger(ctx context.Context, flags *pflag.FlagSet, stdin io.Reader, app *di.App, opts *triggerOptions) (any, error) {
	cfg := app.Config

	message, err := readMessage(opts.message, stdin, cfg.InputEncoding)
	if err != nil {
		return nil, err
	}
	details, err := buildDetails(opts.detailsFile, opts.details)
	if err != nil {
		return nil, err
	}
	contexts, err := parseContexts(opts.contexts)
	if err != nil {
		return nil, err
	}

	var reqOpts []pagerduty.TriggerOption
	if v, ok := flagOrDefault(flags, "incident-key", opts.incidentKey, cfg.IncidentKey); ok {
		reqOpts = append(reqOpts, pagerduty.WithIncidentKey(v))
	}
	if v, ok := flagOrDefault(flags, "client", opts.client, cfg.Client); ok {
		reqOpts = append(reqOpts, pagerduty.WithClient(v))
	}
	if v, ok := flagOrDefault(flags, "client-url", opts.clientURL, cfg.ClientURL); ok {
		reqOpts = append(reqOpts, pagerduty.WithClientURL(v))
	}
	if details != nil {
		reqOpts = append(reqOpts, pagerduty.WithDetails(details))
	}
	if contexts != nil {
		reqOpts = append(reqOpts, pagerduty.WithContexts(contexts...))
	}
	req := pagerduty.NewTriggerRequest(cfg.ServiceKey, message, reqOpts...)

	if opts.dryRun || cfg.DryRun {
		payload, err := pagerduty.BuildTriggerPayload(req)
		if err != nil {
			return nil, err
		}
		payload["service_key"] = redact.Secret(cfg.ServiceKey)
		return &output.TriggerData{DryRun: true, Payload: payload}, nil
	}

	resp, err := app.Client.CreateTrigger(ctx, req)
	if err != nil {
		return nil, err
	}
	return &output.TriggerData{
		IncidentKey: resp.IncidentKey(),
		Status:      resp.Status(),
		Message:     resp.Message(),
	}, nil
}

// flagOrDefault возвращает значение флага, если он задан явно, иначе
// непустое значение из конфигурации.
func flagOrDefault(flags *pflag.FlagSet, name, value, def string) (string, bool) {
	if flags.Changed(name) {
		return value, true
	}
	return def, def != ""
}

// readMessage возвращает текст инцидента. "-" читает stdin в кодировке
// encoding без завершающего перевода строки.
func readMessage(message string, stdin io.Reader, encoding string) (string, error) {
	if message != messageFromStdin {
		return message, nil
	}
	r, err := textenc.NewReader(stdin, encoding)
	if err != nil {
		return "", apperrors.NewAppError(apperrors.ErrTriggerInput, "неизвестная кодировка ввода", err)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", apperrors.NewAppError(apperrors.ErrTriggerInput, "не удалось прочитать сообщение из stdin", err)
	}
	return strings.TrimRight(string(raw), "\r\n"), nil
}

// buildDetails читает details из файла и дополняет их парами key=value.
// Пары переопределяют ключи файла. Без файла и пар возвращает nil.
func buildDetails(path string, pairs []string) (map[string]any, error) {
	var details map[string]any
	if path != "" {
		raw, err := os.ReadFile(path) //nolint:gosec // путь задан пользователем
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrTriggerInput,
				fmt.Sprintf("не удалось прочитать %s", path), err)
		}
		// JSON файл тоже валидный YAML.
		if err := yaml.Unmarshal(raw, &details); err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrTriggerInput,
				fmt.Sprintf("%s не является YAML/JSON объектом", path), err)
		}
		if details == nil {
			details = map[string]any{}
		}
		for k, v := range details {
			details[k] = normalizeYAML(v)
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, apperrors.NewAppError(apperrors.ErrTriggerInput,
				fmt.Sprintf("--detail %q: ожидается key=value", pair), nil)
		}
		if details == nil {
			details = map[string]any{}
		}
		details[key] = value
	}
	return details, nil
}

// normalizeYAML заменяет map[any]any, которые yaml.v3 создаёт для
// вложенных map с ключами не-строками, на map[string]any.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeYAML(item)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return m
	case []any:
		for i, item := range t {
			t[i] = normalizeYAML(item)
		}
		return t
	default:
		return v
	}
}

// parseContexts разбирает значения --context вида "type=link,href=...,text=...".
// Без флагов возвращает nil.
func parseContexts(specs []string) ([]pagerduty.Context, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	contexts := make([]pagerduty.Context, 0, len(specs))
	for _, spec := range specs {
		var kind string
		fields := map[string]string{}
		for _, part := range strings.Split(spec, ",") {
			key, value, ok := strings.Cut(part, "=")
			if !ok || key == "" {
				return nil, apperrors.NewAppError(apperrors.ErrTriggerInput,
					fmt.Sprintf("--context %q: ожидается key=value через запятую", spec), nil)
			}
			if key == "type" {
				kind = value
				continue
			}
			fields[key] = value
		}
		c, err := pagerduty.NewContext(kind, fields)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrTriggerValidation,
				fmt.Sprintf("--context %q", spec), err)
		}
		contexts = append(contexts, c)
	}
	return contexts, nil
}
