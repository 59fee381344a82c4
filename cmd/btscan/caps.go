package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/srg/btscan/internal/permissions"
)

// capsCmd shows which radio capabilities the configured platform requires
// and which of them are missing.
var capsCmd = &cobra.Command{
	Use:   "caps",
	Short: "Show required and missing radio capabilities",
	RunE:  runCaps,
}

func runCaps(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	granted := cfg.grantedSet()
	required := permissions.Required(cfg.PlatformVersion)
	missing := permissions.Missing(cfg.PlatformVersion, granted)

	fmt.Printf("Platform version: %d\n\n", cfg.PlatformVersion)
	for _, c := range required.Sorted() {
		if granted.Has(c) {
			color.Green("  %-18s granted", c)
		} else {
			color.Red("  %-18s MISSING", c)
		}
	}

	if !missing.IsEmpty() {
		fmt.Println()
		newConsoleRequester().RequestCapabilities(missing)
	}
	return nil
}

// consoleRequester stands in for the OS grant dialog: it can only tell the
// user what to grant. Callers re-check via permissions.Missing afterwards.
type consoleRequester struct{}

func newConsoleRequester() permissions.Requester {
	return consoleRequester{}
}

func (consoleRequester) RequestCapabilities(required permissions.Set) {
	fmt.Println("The following capabilities must be granted before scanning:")
	for _, c := range required.Sorted() {
		fmt.Printf("  - %s\n", c)
	}
	fmt.Println("Add them to the 'granted' list in ~/.btscan.yaml once held.")
}
