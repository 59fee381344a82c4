package radio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseInquiryLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected ClassicEvent
		ok       bool
	}{
		{
			name: "address class and name",
			line: "aa:bb:cc:dd:ee:ff\t0x7a020c\tLiving Room TV",
			expected: ClassicEvent{
				Kind:      DeviceFound,
				Address:   "AA:BB:CC:DD:EE:FF",
				Name:      "Living Room TV",
				NameKnown: true,
				ClassCode: 0x7a020c,
			},
			ok: true,
		},
		{
			name: "address and name without class",
			line: "00:11:22:33:44:55\tJBL Flip",
			expected: ClassicEvent{
				Kind:      DeviceFound,
				Address:   "00:11:22:33:44:55",
				Name:      "JBL Flip",
				NameKnown: true,
			},
			ok: true,
		},
		{
			name:     "address only",
			line:     "00:11:22:33:44:55",
			expected: ClassicEvent{Kind: DeviceFound, Address: "00:11:22:33:44:55"},
			ok:       true,
		},
		{
			name: "unresolved name placeholder",
			line: "00:11:22:33:44:55\t0x5a020c\tn/a",
			expected: ClassicEvent{
				Kind:      DeviceFound,
				Address:   "00:11:22:33:44:55",
				ClassCode: 0x5a020c,
			},
			ok: true,
		},
		{
			name: "extra tabs between columns",
			line: "00:11:22:33:44:55\t\t0x200404\t\tPixel Buds",
			expected: ClassicEvent{
				Kind:      DeviceFound,
				Address:   "00:11:22:33:44:55",
				Name:      "Pixel Buds",
				NameKnown: true,
				ClassCode: 0x200404,
			},
			ok: true,
		},
		{name: "scanning header", line: "Scanning ...", ok: false},
		{name: "blank line", line: "   ", ok: false},
		{name: "garbage", line: "not-an-address\tfoo", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := parseInquiryLine(tt.line)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.expected, ev)
			}
		})
	}
}

func TestSubscriptionFiltersKinds(t *testing.T) {
	svc := NewHCIToolService(nil)

	all, err := svc.Subscribe()
	require.NoError(t, err)
	foundOnly, err := svc.Subscribe(DeviceFound)
	require.NoError(t, err)

	svc.broadcast(ClassicEvent{Kind: InquiryStarted})
	svc.broadcast(ClassicEvent{Kind: DeviceFound, Address: "00:11:22:33:44:55"})

	require.Len(t, all.Events(), 2)
	require.Len(t, foundOnly.Events(), 1)

	require.NoError(t, foundOnly.Unsubscribe())
	require.NoError(t, foundOnly.Unsubscribe(), "unsubscribe must be idempotent")

	svc.broadcast(ClassicEvent{Kind: InquiryFinished})
	require.Len(t, all.Events(), 3)
	require.NoError(t, all.Unsubscribe())

	_, open := <-foundOnly.Events()
	require.True(t, open, "one buffered event remains")
	_, open = <-foundOnly.Events()
	require.False(t, open, "channel closed after unsubscribe drains")
}
