package radio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	blelib "github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/sirupsen/logrus"
)

// LEFactory creates the low-energy advertisement service. It is a variable so
// tests can override it.
var LEFactory = func(logger *logrus.Logger) (LEService, error) {
	dev, err := linux.NewDevice()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return NewGobleService(dev, logger), nil
}

// GobleService adapts a ble.Device to the push-style LEService contract.
// The underlying Scan call blocks until its context ends, so it runs on its
// own goroutine; StopScan cancels that context.
type GobleService struct {
	dev    blelib.Device
	logger *logrus.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewGobleService wraps an already-opened BLE device.
func NewGobleService(dev blelib.Device, logger *logrus.Logger) *GobleService {
	if logger == nil {
		logger = logrus.New()
	}
	return &GobleService{dev: dev, logger: logger}
}

// StartScan begins delivering advertisement reports to handler. It returns
// once scanning is underway; reports arrive on the scan goroutine.
func (g *GobleService) StartScan(handler func(Advertisement)) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		return fmt.Errorf("scan already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel

	go func() {
		err := g.dev.Scan(ctx, true, func(adv blelib.Advertisement) {
			handler(newAdvertisement(adv))
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			g.logger.WithError(err).Warn("LE scan terminated")
		}
	}()
	return nil
}

// StopScan cancels the running scan. Safe to call when no scan is running.
func (g *GobleService) StopScan() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	return nil
}

func newAdvertisement(adv blelib.Advertisement) Advertisement {
	out := Advertisement{
		Name: adv.LocalName(),
		RSSI: adv.RSSI(),
	}
	if addr := adv.Addr(); addr != nil {
		out.Address = strings.ToUpper(addr.String())
	}
	return out
}
