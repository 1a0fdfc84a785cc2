// Package cli is the backoffice command line: the gateway server and a
// terminal view of the list screens.
package cli

import (
	"fmt"
	"os"

	intconfig "backoffice/internal/config"
	"backoffice/internal/utils"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "backoffice",
		Short:         "Back-office gateway for the salon booking marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newListCmd())
	return cmd
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func loadEnv() (intconfig.Env, error) {
	env, err := intconfig.LoadEnv()
	if err != nil {
		return env, err
	}
	if err := utils.ConfigureLogger(env.LogLevel, env.LogFormat); err != nil {
		return env, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return env, nil
}
