// Package constants содержит константы, общие для команд pd-trigger.
package constants

// AppName — имя приложения в логах, User-Agent и resource attributes.
const AppName = "pd-trigger"

// APIVersion — версия формата JSON вывода команд.
const APIVersion = "v1"

// Version и PreCommitHash задаются при сборке:
//
//	go build -ldflags "-X github.com/Kargones/pdtrigger/internal/constants.Version=1.2.0 \
//	    -X github.com/Kargones/pdtrigger/internal/constants.PreCommitHash=$(git rev-parse --short HEAD)"
var (
	Version       = "dev"
	PreCommitHash = "unknown"
)

// UserAgent возвращает значение заголовка User-Agent запросов к events API.
func UserAgent() string {
	return AppName + "/" + Version
}

// Имена команд CLI.
const (
	CmdTrigger = "trigger"
	CmdRelay   = "relay"
	CmdVersion = "version"
)
