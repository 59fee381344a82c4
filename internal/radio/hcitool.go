package radio

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ClassicFactory creates the classic inquiry service. It is a variable so
// tests can override it.
var ClassicFactory = func(logger *logrus.Logger) (ClassicService, error) {
	if _, err := exec.LookPath("hcitool"); err != nil {
		return nil, fmt.Errorf("%w: hcitool not found: %v", ErrUnavailable, err)
	}
	return NewHCIToolService(logger), nil
}

var addressPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)

// HCIToolService runs classic inquiry by driving `hcitool scan` as a
// subprocess and parsing its output. One inquiry may run at a time.
type HCIToolService struct {
	logger *logrus.Logger

	mu      sync.Mutex
	subs    map[*hciSubscription]struct{}
	cancel  context.CancelFunc
	running bool
}

// NewHCIToolService creates a classic service backed by hcitool.
func NewHCIToolService(logger *logrus.Logger) *HCIToolService {
	if logger == nil {
		logger = logrus.New()
	}
	return &HCIToolService{
		logger: logger,
		subs:   make(map[*hciSubscription]struct{}),
	}
}

type hciSubscription struct {
	svc    *HCIToolService
	kinds  map[ClassicEventKind]struct{}
	events chan ClassicEvent
	once   sync.Once
}

func (s *hciSubscription) Events() <-chan ClassicEvent {
	return s.events
}

func (s *hciSubscription) Unsubscribe() error {
	s.once.Do(func() {
		// Removal and close happen under the service lock so broadcast can
		// never send on a closed channel.
		s.svc.mu.Lock()
		delete(s.svc.subs, s)
		close(s.events)
		s.svc.mu.Unlock()
	})
	return nil
}

// Subscribe registers for the given event kinds. An empty kind list
// subscribes to all kinds.
func (h *HCIToolService) Subscribe(kinds ...ClassicEventKind) (Subscription, error) {
	sub := &hciSubscription{
		svc:    h,
		kinds:  make(map[ClassicEventKind]struct{}, len(kinds)),
		events: make(chan ClassicEvent, 64),
	}
	for _, k := range kinds {
		sub.kinds[k] = struct{}{}
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub, nil
}

func (h *HCIToolService) broadcast(ev ClassicEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if len(sub.kinds) > 0 {
			if _, ok := sub.kinds[ev.Kind]; !ok {
				continue
			}
		}
		select {
		case sub.events <- ev:
		default:
			h.logger.WithField("address", ev.Address).Warn("dropping classic event, subscriber too slow")
		}
	}
}

// StartInquiry begins one inquiry pass. It returns once the subprocess has
// started; events are delivered asynchronously to subscribers.
func (h *HCIToolService) StartInquiry() error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return fmt.Errorf("inquiry already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, "hcitool", "scan", "--class", "--flush")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		h.mu.Unlock()
		return fmt.Errorf("failed to attach to hcitool: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		h.mu.Unlock()
		return fmt.Errorf("%w: failed to start hcitool: %v", ErrUnavailable, err)
	}
	h.cancel = cancel
	h.running = true
	h.mu.Unlock()

	h.broadcast(ClassicEvent{Kind: InquiryStarted})

	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if ev, ok := parseInquiryLine(scanner.Text()); ok {
				h.broadcast(ev)
			}
		}
		_ = cmd.Wait()

		h.mu.Lock()
		cancelled := ctx.Err() != nil
		h.running = false
		h.cancel = nil
		h.mu.Unlock()

		// A cancelled inquiry does not reliably produce a finished event
		// on real stacks; callers finalize themselves on cancel.
		if !cancelled {
			h.broadcast(ClassicEvent{Kind: InquiryFinished})
		}
	}()

	return nil
}

// CancelInquiry kills the running inquiry subprocess, if any. No finished
// event is delivered for a cancelled inquiry.
func (h *HCIToolService) CancelInquiry() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running || h.cancel == nil {
		return nil
	}
	h.cancel()
	return nil
}

// parseInquiryLine extracts a device-found event from one line of
// `hcitool scan --class` output. Lines look like:
//
//	AA:BB:CC:DD:EE:FF	0x7a020c	Living Room TV
//
// The class column and the name may each be absent.
func parseInquiryLine(line string) (ClassicEvent, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "Scanning") {
		return ClassicEvent{}, false
	}

	var parts []string
	for _, col := range strings.Split(line, "\t") {
		if col = strings.TrimSpace(col); col != "" {
			parts = append(parts, col)
		}
	}
	if len(parts) == 0 || !addressPattern.MatchString(parts[0]) {
		return ClassicEvent{}, false
	}

	ev := ClassicEvent{Kind: DeviceFound, Address: strings.ToUpper(parts[0])}
	rest := parts[1:]
	if len(rest) > 0 && strings.HasPrefix(rest[0], "0x") {
		if code, err := strconv.ParseUint(rest[0][2:], 16, 32); err == nil {
			ev.ClassCode = uint32(code)
		}
		rest = rest[1:]
	}
	if len(rest) > 0 && rest[0] != "n/a" {
		ev.Name = rest[0]
		ev.NameKnown = true
	}
	return ev, true
}
