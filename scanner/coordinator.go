package scanner

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/srg/btscan/internal/device"
	"github.com/srg/btscan/internal/permissions"
	"github.com/srg/btscan/internal/radio"
	"github.com/srg/btscan/internal/ringchan"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// SessionState tracks one discovery session through its lifecycle.
type SessionState int32

const (
	StateIdle SessionState = iota
	StateRunning
	StateCancelling
	StateDone
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCancelling:
		return "cancelling"
	case StateDone:
		return "done"
	default:
		return "invalid"
	}
}

// Session is one bounded start-to-finish discovery attempt. Done is terminal:
// a fresh Start constructs a brand-new session rather than resurrecting an
// old one.
type Session struct {
	ID        uuid.UUID
	Mode      Mode
	StartedAt time.Time

	state   atomic.Int32
	seen    *hashmap.Map[string, struct{}]
	scanner DeviceScanner

	mu      sync.Mutex
	results *orderedmap.OrderedMap[string, device.Record]
}

func newSession(mode Mode, ds DeviceScanner) *Session {
	s := &Session{
		ID:        uuid.New(),
		Mode:      mode,
		StartedAt: time.Now(),
		seen:      hashmap.New[string, struct{}](),
		scanner:   ds,
		results:   orderedmap.New[string, device.Record](),
	}
	s.state.Store(int32(StateRunning))
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Active reports whether the session still owns its subscription.
func (s *Session) Active() bool {
	st := s.State()
	return st == StateRunning || st == StateCancelling
}

// transition performs a checked state change. The Running-to-Done edge being a
// compare-and-swap is what makes finalize idempotent under the cancel/timeout
// race.
func (s *Session) transition(from, to SessionState) bool {
	return s.state.CompareAndSwap(int32(from), int32(to))
}

// record stores rec if its address was never seen this session. Reports
// whether the record was accepted; the first write for an address wins.
func (s *Session) record(rec device.Record) bool {
	if !s.seen.Insert(rec.Address, struct{}{}) {
		return false
	}
	s.mu.Lock()
	s.results.Set(rec.Address, rec)
	s.mu.Unlock()
	return true
}

// Records returns the accepted records in discovery order.
func (s *Session) Records() []device.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]device.Record, 0, s.results.Len())
	for pair := s.results.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Config assembles a Coordinator. Zero-value services fall back to the
// production radio factories.
type Config struct {
	Logger          *logrus.Logger
	PlatformVersion int
	Granted         permissions.Set

	// Classic and LE override the production radio services, mainly for
	// tests. When nil, radio.ClassicFactory / radio.LEFactory are consulted
	// at Start time.
	Classic radio.ClassicService
	LE      radio.LEService

	// LETimeout bounds low-energy sessions; zero selects DefaultLETimeout.
	LETimeout time.Duration

	// EventBuffer sizes the live event stream; zero selects 128.
	EventBuffer int

	// OnDeviceFound and OnScanComplete, when set, are invoked in addition
	// to the event stream. They arrive on scanner goroutines; UI callers
	// must marshal to their own rendering context.
	OnDeviceFound  func(device.Record)
	OnScanComplete func()
}

// Coordinator is the single entry and exit point for scan lifecycle: it
// selects the scanner for the requested mode, enforces session exclusivity
// and permission gating, deduplicates results, and exposes the live stream
// plus the scanning flag to the UI collaborator.
type Coordinator struct {
	cfg      Config
	logger   *logrus.Logger
	events   *ringchan.Ring[Event]
	scanning atomic.Bool

	mu      sync.Mutex
	session *Session
}

// NewCoordinator creates a coordinator. The config is captured by value;
// later mutation has no effect.
func NewCoordinator(cfg Config) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 128
	}
	return &Coordinator{
		cfg:    cfg,
		logger: cfg.Logger,
		events: ringchan.New[Event](cfg.EventBuffer),
	}
}

// Start begins a discovery session in the given mode. It performs the
// permission and availability checks synchronously, registers the scanner,
// and returns without blocking; results arrive on the event stream.
func (c *Coordinator) Start(mode Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil && c.session.Active() {
		return fmt.Errorf("%w: session %s is %s",
			ErrScanInProgress, c.session.ID, c.session.State())
	}

	if missing := permissions.Missing(c.cfg.PlatformVersion, c.cfg.Granted); !missing.IsEmpty() {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, missing.Sorted())
	}

	ds, err := c.buildScanner(mode)
	if err != nil {
		return err
	}

	sess := newSession(mode, ds)
	c.session = sess
	c.scanning.Store(true)

	if err := ds.Start(c.foundFunc(sess), c.doneFunc(sess)); err != nil {
		// The platform refused to begin: drop the session entirely so the
		// coordinator is immediately startable again.
		sess.transition(StateRunning, StateDone)
		c.session = nil
		c.scanning.Store(false)
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"session": sess.ID,
		"mode":    mode.String(),
	}).Info("scan started")
	return nil
}

// Cancel stops the running session, if any. It is a no-op without one. The
// session state flips synchronously, so a subsequent Start is accepted
// without racing the old session's teardown.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	if sess == nil || !sess.transition(StateRunning, StateCancelling) {
		return
	}
	c.logger.WithField("session", sess.ID).Info("cancelling scan")
	sess.scanner.Cancel()
}

// Scanning reports whether a session is currently running.
func (c *Coordinator) Scanning() bool {
	return c.scanning.Load()
}

// Events returns the live stream of device-found and completion events.
func (c *Coordinator) Events() <-chan Event {
	return c.events.C()
}

// Devices returns the current (or last) session's accepted records in
// discovery order. The list resets when the next session starts.
func (c *Coordinator) Devices() []device.Record {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()
	if sess == nil {
		return nil
	}
	return sess.Records()
}

func (c *Coordinator) buildScanner(mode Mode) (DeviceScanner, error) {
	switch mode {
	case ModeClassic:
		svc := c.cfg.Classic
		if svc == nil {
			var err error
			if svc, err = radio.ClassicFactory(c.logger); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRadioUnavailable, err)
			}
		}
		return NewClassic(svc, c.cfg.PlatformVersion, c.cfg.Granted, c.logger), nil
	case ModeLowEnergy:
		svc := c.cfg.LE
		if svc == nil {
			var err error
			if svc, err = radio.LEFactory(c.logger); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRadioUnavailable, err)
			}
		}
		return NewLowEnergy(svc, c.cfg.LETimeout, c.logger), nil
	default:
		return nil, fmt.Errorf("unsupported mode %d", mode)
	}
}

// foundFunc builds the scanner's onFound: dedup first, then forward.
func (c *Coordinator) foundFunc(sess *Session) func(device.Record) {
	return func(rec device.Record) {
		if sess.State() != StateRunning {
			// Late event after finalize; the session's list is closed.
			return
		}
		if !sess.record(rec) {
			return
		}
		c.logger.WithFields(logrus.Fields{
			"session":  sess.ID,
			"address":  rec.Address,
			"name":     rec.Name,
			"category": rec.Category,
		}).Info("discovered device")
		c.events.Send(Event{Type: EventDeviceFound, Record: rec})
		if cb := c.cfg.OnDeviceFound; cb != nil {
			cb(rec)
		}
	}
}

// doneFunc builds the scanner's onDone: exactly one completion per session,
// whichever of the natural and cancel paths gets there first.
func (c *Coordinator) doneFunc(sess *Session) func() {
	return func() {
		if !sess.transition(StateRunning, StateDone) &&
			!sess.transition(StateCancelling, StateDone) {
			return
		}
		c.scanning.Store(false)
		c.logger.WithFields(logrus.Fields{
			"session": sess.ID,
			"devices": len(sess.Records()),
		}).Info("scan complete")
		c.events.Send(Event{Type: EventScanComplete})
		if cb := c.cfg.OnScanComplete; cb != nil {
			cb()
		}
	}
}
