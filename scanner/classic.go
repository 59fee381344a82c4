package scanner

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/srg/btscan/internal/async"
	"github.com/srg/btscan/internal/device"
	"github.com/srg/btscan/internal/permissions"
	"github.com/srg/btscan/internal/radio"
)

// Classic drives one inquiry-based discovery pass over a classic radio
// service. A Classic is single-use: one Start, then natural completion or
// Cancel.
type Classic struct {
	svc             radio.ClassicService
	platformVersion int
	granted         permissions.Set
	logger          *logrus.Logger

	sub    radio.Subscription
	onDone func()
	done   atomic.Bool
}

// NewClassic creates a classic scanner. The platform version and grant set
// drive the legacy location pre-check that some platforms require before an
// inquiry may begin.
func NewClassic(svc radio.ClassicService, platformVersion int, granted permissions.Set, logger *logrus.Logger) *Classic {
	if logger == nil {
		logger = logrus.New()
	}
	return &Classic{
		svc:             svc,
		platformVersion: platformVersion,
		granted:         granted,
		logger:          logger,
	}
}

// Start subscribes to the inquiry event kinds and begins the inquiry.
// On any failure the subscription is torn down before returning, so the
// caller never observes a half-started pass.
func (c *Classic) Start(onFound func(device.Record), onDone func()) error {
	// Legacy platforms refuse inquiries without the location grant. Failing
	// here, before anything is registered, keeps the failure synchronous
	// instead of the stuck no-completion state.
	if c.platformVersion < permissions.ScanCapabilityVersion &&
		!c.granted.Has(permissions.CapCoarseLocation) {
		return fmt.Errorf("%w: %s required for inquiry below platform version %d",
			ErrPermissionDenied, permissions.CapCoarseLocation, permissions.ScanCapabilityVersion)
	}

	sub, err := c.svc.Subscribe(radio.InquiryStarted, radio.DeviceFound, radio.InquiryFinished)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRadioUnavailable, err)
	}
	c.sub = sub
	c.onDone = onDone

	if err := c.svc.StartInquiry(); err != nil {
		if terr := sub.Unsubscribe(); terr != nil {
			c.logger.WithError(terr).Warn("failed to unsubscribe after start failure")
		}
		return fmt.Errorf("%w: %v", ErrStartFailed, err)
	}

	async.Go("classic-inquiry-pump", func() { c.pump(onFound) })
	return nil
}

// pump translates inquiry events into records until the finished event
// arrives or the subscription is torn down by Cancel.
func (c *Classic) pump(onFound func(device.Record)) {
	for ev := range c.sub.Events() {
		switch ev.Kind {
		case radio.InquiryStarted:
			c.logger.Debug("inquiry started")
		case radio.DeviceFound:
			name := ev.Name
			if !ev.NameKnown {
				name = ""
			}
			rec := device.NewRecord(name, ev.Address, ev.ClassCode)
			c.logger.WithFields(logrus.Fields{
				"address":  rec.Address,
				"category": rec.Category,
			}).Debug("inquiry result")
			onFound(rec)
		case radio.InquiryFinished:
			c.finalize()
			return
		}
	}
}

// Cancel requests the platform cancel the inquiry and finalizes immediately:
// the platform does not reliably deliver a finished event after a cancel.
func (c *Classic) Cancel() {
	if err := c.svc.CancelInquiry(); err != nil {
		c.logger.WithError(err).Warn("failed to cancel inquiry")
	}
	c.finalize()
}

// finalize unsubscribes and signals completion. At most one of the natural
// and cancel paths executes the teardown.
func (c *Classic) finalize() {
	if !c.done.CompareAndSwap(false, true) {
		return
	}
	if err := c.sub.Unsubscribe(); err != nil {
		c.logger.WithError(err).Warn("inquiry teardown failed")
	}
	c.onDone()
}
