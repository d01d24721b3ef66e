package root

import (
	"github.com/spf13/cobra"

	"github.com/crucial707/user-api/cmd/cli/config"
)

// RootCmd is the userctl entry point; subcommand packages attach themselves to it.
var RootCmd = &cobra.Command{
	Use:           "userctl",
	Short:         "User API CLI",
	Long:          "Command line interface for the User API. Lists, creates, renames and deletes users over HTTP.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().String("api-url", config.APIURL(), "base URL of the User API (env "+config.EnvAPIURL+")")
}

// GetRoot returns the RootCmd.
func GetRoot() *cobra.Command {
	return RootCmd
}
