// Package scanner implements dual-mode Bluetooth device discovery: an
// inquiry-based classic scan and an advertisement-based low-energy scan,
// coordinated behind a single start/cancel surface with per-session
// deduplication of results.
package scanner

import (
	"errors"
	"time"

	"github.com/srg/btscan/internal/device"
)

// Mode selects which discovery mechanism a session uses.
type Mode int

const (
	ModeClassic Mode = iota
	ModeLowEnergy
)

func (m Mode) String() string {
	switch m {
	case ModeClassic:
		return "classic"
	case ModeLowEnergy:
		return "le"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "classic":
		return ModeClassic, nil
	case "le", "ble", "low-energy":
		return ModeLowEnergy, nil
	default:
		return 0, errors.New("invalid mode: must be classic or le")
	}
}

// DefaultLETimeout bounds a low-energy scan, which has no natural end signal.
const DefaultLETimeout = 12 * time.Second

var (
	// ErrScanInProgress is returned by Start while a session is running.
	ErrScanInProgress = errors.New("scan already in progress")
	// ErrPermissionDenied is returned when required capabilities are missing.
	ErrPermissionDenied = errors.New("missing radio capabilities")
	// ErrRadioUnavailable is returned when no usable radio adapter exists.
	ErrRadioUnavailable = errors.New("radio unavailable")
	// ErrStartFailed is returned when the platform refused to begin the
	// inquiry or scan. The session is torn down; it never stays running.
	ErrStartFailed = errors.New("failed to start discovery")
)

// DeviceScanner drives one bounded discovery pass. Start returns once
// discovery is underway; records and the completion signal arrive via the
// callbacks on scanner-owned goroutines. Cancel never blocks on platform
// teardown and guarantees onDone fires at most once per pass.
type DeviceScanner interface {
	Start(onFound func(device.Record), onDone func()) error
	Cancel()
}

// EventType tags entries on the coordinator's event stream.
type EventType int

const (
	// EventDeviceFound carries a newly discovered, deduplicated record.
	EventDeviceFound EventType = iota
	// EventScanComplete marks the end of a session, natural or cancelled.
	EventScanComplete
)

// Event is one entry on the live stream consumed by the UI.
type Event struct {
	Type   EventType
	Record device.Record
}
