package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/Kargones/pdtrigger/internal/constants"
)

// streams — стандартные потоки команды. Подменяются в тестах.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// globalFlags — флаги, общие для всех команд.
type globalFlags struct {
	configPath string
	format     string
}

func newRootCmd(s *streams) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   constants.AppName,
		Short: "Создание инцидентов через generic events API",
		Long: `pd-trigger отправляет trigger события в generic events API (v1).

Команды:
  pd-trigger trigger   Создать инцидент из сообщения
  pd-trigger relay     Превратить JSON логи из stdin в инциденты
  pd-trigger version   Версия и коммит сборки

Service key задаётся через PD_SERVICE_KEY или serviceKey в файле --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "",
		"YAML файл конфигурации (по умолчанию $PD_CONFIG)")
	root.PersistentFlags().StringVar(&g.format, "format", "",
		"формат вывода: text или json (по умолчанию outputFormat из конфигурации)")

	root.Version = constants.Version
	root.AddCommand(
		newTriggerCmd(s, g),
		newRelayCmd(s, g),
		newVersionCmd(s, g),
	)
	return root
}
