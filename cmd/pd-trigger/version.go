package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kargones/pdtrigger/internal/constants"
	"github.com/Kargones/pdtrigger/internal/pkg/output"
)

type versionData struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	APIVersion string `json:"api_version"`
}

// newVersionCmd не читает конфигурацию: формат берётся из --format
// или PD_OUTPUT_FORMAT.
func newVersionCmd(s *streams, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   constants.CmdVersion,
		Short: "Версия и коммит сборки",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			format := g.format
			if format == "" {
				format = os.Getenv("PD_OUTPUT_FORMAT")
			}
			data := &versionData{
				Version:    constants.Version,
				Commit:     constants.PreCommitHash,
				APIVersion: constants.APIVersion,
			}
			return finish(s, output.NewWriter(format), constants.CmdVersion, time.Now(), "", data, nil)
		},
	}
}
