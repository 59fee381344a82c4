package scanner

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/btscan/internal/device"
	"github.com/srg/btscan/internal/radio"
)

// LowEnergy drives one advertisement-based discovery pass with a hard
// timeout. The platform never signals a natural end for this mode, so the
// pass ends only by timeout or Cancel. A LowEnergy is single-use.
type LowEnergy struct {
	svc     radio.LEService
	timeout time.Duration
	logger  *logrus.Logger

	timer  *time.Timer
	onDone func()
	done   atomic.Bool
}

// NewLowEnergy creates a low-energy scanner. A non-positive timeout selects
// DefaultLETimeout.
func NewLowEnergy(svc radio.LEService, timeout time.Duration, logger *logrus.Logger) *LowEnergy {
	if timeout <= 0 {
		timeout = DefaultLETimeout
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &LowEnergy{svc: svc, timeout: timeout, logger: logger}
}

// Start registers the advertisement handler and arms the timeout.
func (l *LowEnergy) Start(onFound func(device.Record), onDone func()) error {
	l.onDone = onDone

	err := l.svc.StartScan(func(adv radio.Advertisement) {
		if l.done.Load() {
			return
		}
		if adv.Address == "" {
			// Report without a resolvable device handle.
			return
		}
		rec := device.NewRecord(adv.Name, adv.Address, adv.ClassCode)
		l.logger.WithFields(logrus.Fields{
			"address": rec.Address,
			"rssi":    adv.RSSI,
		}).Debug("advertisement result")
		onFound(rec)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStartFailed, err)
	}

	l.timer = time.AfterFunc(l.timeout, func() {
		// The timer fires on its own goroutine; a cancel may already have
		// finalized this pass.
		if l.done.Load() {
			return
		}
		l.logger.WithField("timeout", l.timeout).Debug("LE scan timeout elapsed")
		l.finalize()
	})
	return nil
}

// Cancel stops the scan and finalizes immediately. The pending timer becomes
// a no-op.
func (l *LowEnergy) Cancel() {
	l.finalize()
}

// finalize stops the platform scan and signals completion, at most once per
// pass regardless of how the timeout and cancel paths race.
func (l *LowEnergy) finalize() {
	if !l.done.CompareAndSwap(false, true) {
		return
	}
	if l.timer != nil {
		l.timer.Stop()
	}
	if err := l.svc.StopScan(); err != nil {
		l.logger.WithError(err).Warn("LE scan teardown failed")
	}
	l.onDone()
}
