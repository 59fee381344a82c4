package scanner_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/btscan/internal/device"
	"github.com/srg/btscan/internal/permissions"
	"github.com/srg/btscan/internal/radio/radiotest"
	"github.com/srg/btscan/scanner"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ClassicScannerTestSuite struct {
	suite.Suite

	logger *logrus.Logger
	svc    *radiotest.FakeClassic
}

func (suite *ClassicScannerTestSuite) SetupTest() {
	suite.logger = logrus.New()
	suite.logger.SetLevel(logrus.PanicLevel)
	suite.svc = &radiotest.FakeClassic{}
}

func (suite *ClassicScannerTestSuite) allGranted() permissions.Set {
	return permissions.NewSet(
		permissions.CapRadio, permissions.CapRadioAdmin,
		permissions.CapRadioScan, permissions.CapCoarseLocation)
}

func (suite *ClassicScannerTestSuite) TestLegacyLocationPreCheck() {
	granted := permissions.NewSet(permissions.CapRadio, permissions.CapRadioAdmin)
	c := scanner.NewClassic(suite.svc, permissions.ScanCapabilityVersion-1, granted, suite.logger)

	err := c.Start(func(device.Record) {}, func() {})

	suite.ErrorIs(err, scanner.ErrPermissionDenied)
	suite.EqualValues(0, suite.svc.StartCalls.Load(), "inquiry must not begin without the location grant")
	suite.Equal(0, suite.svc.ActiveSubscriptions())
}

func (suite *ClassicScannerTestSuite) TestModernPlatformSkipsLocationCheck() {
	granted := permissions.NewSet(permissions.CapRadio, permissions.CapRadioAdmin, permissions.CapRadioScan)
	c := scanner.NewClassic(suite.svc, permissions.ScanCapabilityVersion, granted, suite.logger)

	done := make(chan struct{})
	err := c.Start(func(device.Record) {}, func() { close(done) })

	suite.Require().NoError(err)
	suite.EqualValues(1, suite.svc.StartCalls.Load())

	suite.svc.EmitFinished()
	select {
	case <-done:
	case <-time.After(waitTimeout):
		suite.FailNow("onDone never fired")
	}
}

func (suite *ClassicScannerTestSuite) TestStartFailureTearsDownSubscription() {
	suite.svc.StartErr = errors.New("adapter busy")
	c := scanner.NewClassic(suite.svc, permissions.ScanCapabilityVersion, suite.allGranted(), suite.logger)

	doneCalls := 0
	err := c.Start(func(device.Record) {}, func() { doneCalls++ })

	suite.ErrorIs(err, scanner.ErrStartFailed)
	suite.Equal(0, suite.svc.ActiveSubscriptions())
	suite.Equal(0, doneCalls, "a failed start reports via the error, not onDone")
}

func (suite *ClassicScannerTestSuite) TestFinalizeIdempotentUnderCancelFinishRace() {
	c := scanner.NewClassic(suite.svc, permissions.ScanCapabilityVersion, suite.allGranted(), suite.logger)

	var doneCalls atomic.Int32
	done := make(chan struct{}, 2)
	require.NoError(suite.T(), c.Start(func(device.Record) {}, func() {
		doneCalls.Add(1)
		done <- struct{}{}
	}))

	// Drive both completion paths; exactly one may win.
	c.Cancel()
	suite.svc.EmitFinished()
	c.Cancel()

	select {
	case <-done:
	case <-time.After(waitTimeout):
		suite.FailNow("onDone never fired")
	}
	// Allow any erroneous second invocation to land before asserting.
	time.Sleep(50 * time.Millisecond)

	suite.EqualValues(1, doneCalls.Load())
	suite.Equal(0, suite.svc.ActiveSubscriptions(), "exactly one teardown")
}

func (suite *ClassicScannerTestSuite) TestNameFallback() {
	c := scanner.NewClassic(suite.svc, permissions.ScanCapabilityVersion, suite.allGranted(), suite.logger)

	records := make(chan device.Record, 4)
	require.NoError(suite.T(), c.Start(
		func(rec device.Record) { records <- rec },
		func() {},
	))

	suite.svc.EmitFound("AA:BB:CC:DD:EE:FF", "", 0x000580)

	select {
	case rec := <-records:
		suite.Equal(device.UnknownName, rec.Name)
		suite.Equal("Peripheral", rec.Category)
	case <-time.After(waitTimeout):
		suite.FailNow("record never delivered")
	}

	c.Cancel()
}

func TestClassicScannerTestSuite(t *testing.T) {
	suite.Run(t, new(ClassicScannerTestSuite))
}
