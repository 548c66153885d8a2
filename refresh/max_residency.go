package refresh

import (
	"sync/atomic"
	"time"

	"github.com/jvb127/faultserve/types"
)

/*
MaxResidency triggers a background reload when the resident dataset has been
installed for longer than Bound.

The reader that trips the hook is served the current resident dataset as
usual; the reload happens off to the side and installs monotonically. At
most one triggered reload is outstanding at a time.
*/
type MaxResidency struct {
	bound   time.Duration
	trigger func()
	metrics types.Metrics

	inFlight atomic.Bool
}

// NewMaxResidency creates the hook. trigger is the loader's background
// reload entry point; it runs on a fresh goroutine.
func NewMaxResidency(bound time.Duration, trigger func(), metrics types.Metrics) *MaxResidency {
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	return &MaxResidency{bound: bound, trigger: trigger, metrics: metrics}
}

// OnRead checks the install age and fires the trigger when it exceeds the
// bound. Non-blocking on every path.
func (m *MaxResidency) OnRead(installedAt time.Time, now time.Time) {
	if m.bound <= 0 || now.Sub(installedAt) <= m.bound {
		return
	}
	if !m.inFlight.CompareAndSwap(false, true) {
		return
	}
	m.metrics.Refresh()
	go func() {
		defer m.inFlight.Store(false)
		m.trigger()
	}()
}
