// Package scribecmder
package scribecmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/Pagnarith-Pit/code-scribe-analytics-lab/cmd/scribe/ask"
	configcmder "github.com/Pagnarith-Pit/code-scribe-analytics-lab/cmd/scribe/config"
	initcmder "github.com/Pagnarith-Pit/code-scribe-analytics-lab/cmd/scribe/init"
	servecmder "github.com/Pagnarith-Pit/code-scribe-analytics-lab/cmd/scribe/serve"
	versioncmder "github.com/Pagnarith-Pit/code-scribe-analytics-lab/cmd/version"
)

const scribeLongDesc string = `Scribe is a tutoring backend that streams language-model replies to
learners and tracks how long they spend on each subproblem.

Run the server using:
  scribe serve         Run the tutoring API server
  scribe ask           Send a tutor request to a running server
  scribe init          Create a local .scribe/ directory`

const scribeShortDesc string = "Scribe - streaming tutor backend"

func NewScribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "scribe",
		Short:        scribeShortDesc,
		Long:         scribeLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .scribe/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
