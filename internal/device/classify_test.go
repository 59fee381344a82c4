package device_test

import (
	"testing"

	"github.com/srg/btscan/internal/device"
	"github.com/stretchr/testify/suite"
)

type ClassifyTestSuite struct {
	suite.Suite
}

func (suite *ClassifyTestSuite) TestKnownMajorClasses() {
	tests := []struct {
		name     string
		code     uint32
		expected string
	}{
		{"computer desktop", 0x000104, "Computer"},
		{"computer laptop", 0x00010C, "Computer"},
		{"phone smartphone", 0x00020C, "Phone"},
		{"phone cellular", 0x000204, "Phone"},
		{"audio headset", 0x000404, "Audio/Video"},
		{"audio loudspeaker", 0x000414, "Audio/Video"},
		{"peripheral keyboard", 0x000540, "Peripheral"},
		{"peripheral mouse", 0x000580, "Peripheral"},
		{"imaging printer", 0x000680, "Imaging Device"},
		{"health heart rate", 0x000914, "Health Device"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.Equal(tt.expected, device.Classify(tt.code))
		})
	}
}

func (suite *ClassifyTestSuite) TestUnrecognizedCodes() {
	tests := []struct {
		name string
		code uint32
	}{
		{"zero code", 0},
		{"miscellaneous major", 0x000004},
		{"lan access point", 0x000304},
		{"wearable", 0x000704},
		{"toy", 0x000804},
		{"uncategorized", 0x001F00},
		{"garbage high bits", 0xFFFFFF},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.Equal(device.CategoryUnknown, device.Classify(tt.code))
		})
	}
}

func (suite *ClassifyTestSuite) TestNewRecord() {
	suite.Run("applies name fallback", func() {
		r := device.NewRecord("", "AA:BB:CC:DD:EE:FF", 0x000204)

		suite.Equal(device.UnknownName, r.Name)
		suite.Equal("AA:BB:CC:DD:EE:FF", r.Address)
		suite.Equal("Phone", r.Category)
	})

	suite.Run("keeps resolved name", func() {
		r := device.NewRecord("Pixel 9", "AA:BB:CC:DD:EE:FF", 0x000204)

		suite.Equal("Pixel 9", r.Name)
	})

	suite.Run("identity is address alone", func() {
		a := device.NewRecord("Pixel 9", "AA:BB:CC:DD:EE:FF", 0x000204)
		b := device.NewRecord("Renamed", "AA:BB:CC:DD:EE:FF", 0)

		suite.True(a.SameDevice(b))
		suite.NotEqual(a, b)
	})
}

func TestClassifyTestSuite(t *testing.T) {
	suite.Run(t, new(ClassifyTestSuite))
}
