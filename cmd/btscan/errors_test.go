package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/srg/btscan/scanner"
	"github.com/stretchr/testify/require"
)

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{
			name:     "permission denied points at caps command",
			err:      fmt.Errorf("%w: [radio.scan]", scanner.ErrPermissionDenied),
			contains: "btscan caps",
		},
		{
			name:     "radio unavailable",
			err:      scanner.ErrRadioUnavailable,
			contains: "Bluetooth adapter",
		},
		{
			name:     "start failed suggests retry",
			err:      fmt.Errorf("%w: hci0 busy", scanner.ErrStartFailed),
			contains: "retry",
		},
		{
			name:     "scan in progress",
			err:      scanner.ErrScanInProgress,
			contains: "already running",
		},
		{
			name:     "unknown errors pass through",
			err:      errors.New("something else"),
			contains: "something else",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Contains(t, FormatUserError(tt.err), tt.contains)
		})
	}
}
