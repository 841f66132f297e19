package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "pomodoro",
		Short: "Pomodoro timer for the terminal",
		Long: `A pomodoro timer with task tracking and session history.

Without a subcommand the interactive timer is launched.`,
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (YAML)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), rootCmd.Version)
	},
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
