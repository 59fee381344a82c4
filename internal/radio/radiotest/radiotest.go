// Package radiotest provides scriptable in-memory implementations of the
// radio services for scanner tests.
package radiotest

import (
	"sync"
	"sync/atomic"

	"github.com/srg/btscan/internal/radio"
)

// FakeClassic is a scriptable radio.ClassicService. Tests emit events with
// the Emit helpers and inspect call counters afterwards.
type FakeClassic struct {
	// StartErr, when set, is returned by StartInquiry.
	StartErr error
	// SubscribeErr, when set, is returned by Subscribe.
	SubscribeErr error

	StartCalls  atomic.Int32
	CancelCalls atomic.Int32

	mu   sync.Mutex
	subs []*fakeSubscription
}

type fakeSubscription struct {
	parent *FakeClassic
	events chan radio.ClassicEvent
	once   sync.Once
	closed atomic.Bool
}

func (s *fakeSubscription) Events() <-chan radio.ClassicEvent {
	return s.events
}

func (s *fakeSubscription) Unsubscribe() error {
	s.once.Do(func() {
		s.parent.mu.Lock()
		s.closed.Store(true)
		close(s.events)
		s.parent.mu.Unlock()
	})
	return nil
}

func (f *FakeClassic) Subscribe(kinds ...radio.ClassicEventKind) (radio.Subscription, error) {
	if f.SubscribeErr != nil {
		return nil, f.SubscribeErr
	}
	sub := &fakeSubscription{parent: f, events: make(chan radio.ClassicEvent, 64)}
	f.mu.Lock()
	f.subs = append(f.subs, sub)
	f.mu.Unlock()
	return sub, nil
}

func (f *FakeClassic) StartInquiry() error {
	f.StartCalls.Add(1)
	return f.StartErr
}

func (f *FakeClassic) CancelInquiry() error {
	f.CancelCalls.Add(1)
	return nil
}

// Emit delivers an event to every live subscription.
func (f *FakeClassic) Emit(ev radio.ClassicEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if !sub.closed.Load() {
			sub.events <- ev
		}
	}
}

// EmitFound delivers a device-found event.
func (f *FakeClassic) EmitFound(address, name string, classCode uint32) {
	f.Emit(radio.ClassicEvent{
		Kind:      radio.DeviceFound,
		Address:   address,
		Name:      name,
		NameKnown: name != "",
		ClassCode: classCode,
	})
}

// EmitFinished delivers the natural end-of-inquiry event.
func (f *FakeClassic) EmitFinished() {
	f.Emit(radio.ClassicEvent{Kind: radio.InquiryFinished})
}

// ActiveSubscriptions counts subscriptions that were not yet torn down.
func (f *FakeClassic) ActiveSubscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, sub := range f.subs {
		if !sub.closed.Load() {
			n++
		}
	}
	return n
}

// FakeLE is a scriptable radio.LEService. Advertise pushes a report through
// the handler registered by StartScan.
type FakeLE struct {
	// StartErr, when set, is returned by StartScan.
	StartErr error

	StopCalls atomic.Int32

	mu      sync.Mutex
	handler func(radio.Advertisement)
}

func (f *FakeLE) StartScan(handler func(radio.Advertisement)) error {
	if f.StartErr != nil {
		return f.StartErr
	}
	f.mu.Lock()
	f.handler = handler
	f.mu.Unlock()
	return nil
}

func (f *FakeLE) StopScan() error {
	f.StopCalls.Add(1)
	f.mu.Lock()
	f.handler = nil
	f.mu.Unlock()
	return nil
}

// Advertise delivers one advertisement report to the active handler, if any.
func (f *FakeLE) Advertise(adv radio.Advertisement) {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler != nil {
		handler(adv)
	}
}

// Scanning reports whether a handler is currently registered.
func (f *FakeLE) Scanning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handler != nil
}
