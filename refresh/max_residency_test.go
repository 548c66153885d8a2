package refresh

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMaxResidencyFresh(t *testing.T) {
	var fired atomic.Int32
	hook := NewMaxResidency(time.Minute, func() { fired.Add(1) }, nil)

	now := time.Now()
	hook.OnRead(now.Add(-30*time.Second), now)
	hook.OnRead(now.Add(-time.Minute), now) // exactly at the bound: still fresh

	require.Never(t, func() bool { return fired.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestMaxResidencyTriggers(t *testing.T) {
	var fired atomic.Int32
	hook := NewMaxResidency(time.Minute, func() { fired.Add(1) }, nil)

	now := time.Now()
	hook.OnRead(now.Add(-2*time.Minute), now)

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
}

func TestMaxResidencySingleOutstandingTrigger(t *testing.T) {
	var fired atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	hook := NewMaxResidency(time.Minute, func() {
		fired.Add(1)
		close(started)
		<-release
	}, nil)

	now := time.Now()
	hook.OnRead(now.Add(-2*time.Minute), now)
	<-started

	// Reads while the reload is outstanding must not stack more triggers.
	for i := 0; i < 10; i++ {
		hook.OnRead(now.Add(-2*time.Minute), now)
	}
	close(release)

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
	require.Never(t, func() bool { return fired.Load() > 1 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestMaxResidencyDisabled(t *testing.T) {
	var fired atomic.Int32
	hook := NewMaxResidency(0, func() { fired.Add(1) }, nil)

	now := time.Now()
	hook.OnRead(now.Add(-24*time.Hour), now)
	require.Never(t, func() bool { return fired.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}
