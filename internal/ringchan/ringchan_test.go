package ringchan_test

import (
	"testing"

	"github.com/srg/btscan/internal/ringchan"
	"github.com/stretchr/testify/require"
)

func TestRingDropsOldestWhenFull(t *testing.T) {
	r := ringchan.New[int](3)

	for i := 1; i <= 5; i++ {
		r.Send(i)
	}
	r.Close()

	var got []int
	for v := range r.C() {
		got = append(got, v)
	}

	require.Equal(t, []int{3, 4, 5}, got)
	require.EqualValues(t, 2, r.Dropped())
}

func TestRingTrySend(t *testing.T) {
	r := ringchan.New[string](1)

	require.True(t, r.TrySend("a"))
	require.False(t, r.TrySend("b"))
	require.Equal(t, 1, r.Len())

	v, ok := <-r.C()
	require.True(t, ok)
	require.Equal(t, "a", v)
}

func TestRingPanicsOnZeroCapacity(t *testing.T) {
	require.Panics(t, func() { ringchan.New[int](0) })
}
