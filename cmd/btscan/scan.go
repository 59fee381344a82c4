package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/srg/btscan/internal/device"
	"github.com/srg/btscan/internal/permissions"
	"github.com/srg/btscan/scanner"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for nearby Bluetooth devices",
	Long: `Scan for nearby Bluetooth devices and display normalized records.

Classic mode runs one inquiry pass and ends when the platform reports the
inquiry finished. Low-energy mode listens for advertisements and ends after
the timeout, since that mode has no natural end signal. Ctrl+C cancels a
running scan in either mode; devices reported before the cancel are kept.`,
	RunE: runScan,
}

var (
	scanModeFlag string
	scanTimeout  time.Duration
	scanFormat   string
	scanWatch    bool
)

func init() {
	scanCmd.Flags().StringVarP(&scanModeFlag, "mode", "m", "", "Discovery mode (classic, le); default from config")
	scanCmd.Flags().DurationVarP(&scanTimeout, "timeout", "t", 0, "Low-energy scan timeout; default from config")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "table", "Output format (table, json)")
	scanCmd.Flags().BoolVarP(&scanWatch, "watch", "w", false, "Redraw the device table as results arrive")
	scanCmd.Flags().Bool("verbose", false, "Enable debug logging")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanFormat != "table" && scanFormat != "json" {
		return fmt.Errorf("invalid format %q: must be table or json", scanFormat)
	}

	logger, err := configureLogger(cmd)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	modeStr := scanModeFlag
	if modeStr == "" {
		modeStr = cfg.Mode
	}
	mode, err := scanner.ParseMode(modeStr)
	if err != nil {
		return err
	}

	timeout := scanTimeout
	if timeout <= 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	granted := cfg.grantedSet()
	coord := scanner.NewCoordinator(scanner.Config{
		Logger:          logger,
		PlatformVersion: cfg.PlatformVersion,
		Granted:         granted,
		LETimeout:       timeout,
	})

	if err := coord.Start(mode); err != nil {
		if missing := permissions.Missing(cfg.PlatformVersion, granted); !missing.IsEmpty() {
			newConsoleRequester().RequestCapabilities(missing)
		}
		return err
	}

	// Ctrl+C cancels the session; the completion event still arrives and
	// already-reported devices are kept.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var progress *countdownPrinter
	if !scanWatch && scanFormat == "table" {
		progressTimeout := timeout
		if mode == scanner.ModeClassic {
			progressTimeout = 0 // classic ends on the platform's schedule
		}
		progress = newCountdownPrinter("Scanning for devices...", progressTimeout)
		progress.Start()
	}

	for coord.Scanning() || len(coord.Events()) > 0 {
		select {
		case ev := <-coord.Events():
			switch ev.Type {
			case scanner.EventDeviceFound:
				if scanWatch {
					clearScreen()
					if err := displayDevicesTable(coord.Devices()); err != nil {
						logger.WithError(err).Warn("failed to render device table")
					}
				}
			case scanner.EventScanComplete:
				if progress != nil {
					progress.Stop()
					progress = nil
				}
				return displayDevices(coord.Devices())
			}
		case <-sigCh:
			fmt.Println("\nCtrl+C pressed, cancelling scan...")
			coord.Cancel()
		}
	}

	if progress != nil {
		progress.Stop()
	}
	return displayDevices(coord.Devices())
}

func displayDevices(devices []device.Record) error {
	if scanFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(devices)
	}
	return displayDevicesTable(devices)
}

func displayDevicesTable(devices []device.Record) error {
	if len(devices) == 0 {
		fmt.Println("No devices discovered")
		return nil
	}

	var base io.Writer = os.Stdout
	w := tabwriter.NewWriter(base, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tCATEGORY")
	fmt.Fprintln(w, strings.Repeat("-", 60))

	for _, d := range devices {
		name := d.Name
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, d.Address, d.Category)
	}
	return w.Flush()
}

func clearScreen() {
	fmt.Print("\033[2J\033[H")
}
