// Package radio abstracts the two platform radio services behind small
// interfaces: a classic inquiry service driven by subscription events and a
// low-energy advertisement service driven by a result callback. Production
// backends live in this package; tests inject fakes from radiotest.
package radio

import "errors"

// ErrUnavailable indicates no usable radio adapter (absent, disabled, or the
// backing tool/stack is missing).
var ErrUnavailable = errors.New("radio unavailable")

// ClassicEventKind identifies one of the inquiry event kinds a subscriber
// can register for.
type ClassicEventKind int

const (
	InquiryStarted ClassicEventKind = iota
	DeviceFound
	InquiryFinished
)

// ClassicEvent is one event delivered to a classic inquiry subscription.
type ClassicEvent struct {
	Kind      ClassicEventKind
	Address   string
	Name      string
	NameKnown bool // false when name resolution failed or was denied
	ClassCode uint32
}

// Subscription is a live registration for classic inquiry events. It must be
// torn down explicitly with Unsubscribe; the events channel is closed as part
// of teardown.
type Subscription interface {
	Events() <-chan ClassicEvent
	Unsubscribe() error
}

// ClassicService drives inquiry-based discovery of devices in discoverable
// mode. Events are delivered only to active subscriptions.
type ClassicService interface {
	Subscribe(kinds ...ClassicEventKind) (Subscription, error)
	StartInquiry() error
	CancelInquiry() error
}

// Advertisement is one low-energy advertisement report. Address may be empty
// when the underlying device handle could not be resolved; such reports are
// skipped by callers.
type Advertisement struct {
	Address   string
	Name      string
	ClassCode uint32
	RSSI      int
}

// LEService drives advertisement-based discovery. There is no natural end
// signal: scanning continues until StopScan.
type LEService interface {
	StartScan(handler func(Advertisement)) error
	StopScan() error
}
