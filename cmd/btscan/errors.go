package main

import (
	"errors"

	"github.com/srg/btscan/scanner"
)

// FormatUserError turns internal errors into actionable messages for the
// terminal. Unknown errors pass through unchanged.
func FormatUserError(err error) string {
	switch {
	case errors.Is(err, scanner.ErrPermissionDenied):
		return err.Error() + "\nGrant the listed capabilities (see 'btscan caps') and retry."
	case errors.Is(err, scanner.ErrRadioUnavailable):
		return "no usable Bluetooth adapter - check that Bluetooth is enabled"
	case errors.Is(err, scanner.ErrStartFailed):
		return "the adapter refused to start discovery - it may be busy, retry in a moment"
	case errors.Is(err, scanner.ErrScanInProgress):
		return "a scan is already running - cancel it first"
	default:
		return err.Error()
	}
}
