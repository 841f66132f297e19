package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pomodoro_tui/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change timer settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: "Change one setting. Durations are in seconds.\n\nKeys: " +
		strings.Join(settings.Keys, ", "),
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := settings.Marshal(a.settings.Read())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", a.settings.Path(), data)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	next := a.settings.Read()
	if err := next.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := a.settings.Update(next); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
	return nil
}
