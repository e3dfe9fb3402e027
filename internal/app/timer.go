package app

import (
	"time"

	"github.com/bft-labs/slship/internal/ports"
)

// DefaultDrainInterval is the drain period used when no timer is supplied.
const DefaultDrainInterval = 2 * time.Second

// DrainTimerFunc adapts a function to ports.DrainTimer.
type DrainTimerFunc func() <-chan time.Time

// Arm calls f.
func (f DrainTimerFunc) Arm() <-chan time.Time {
	return f()
}

type intervalTimer struct {
	d time.Duration
	t *time.Timer
}

// IntervalTimer returns a DrainTimer that fires d after each Arm. It reuses
// one runtime timer and must only be armed again after it has fired. The
// returned timer has a Stop method, which a Session calls when it ends.
func IntervalTimer(d time.Duration) ports.DrainTimer {
	if d <= 0 {
		d = DefaultDrainInterval
	}
	return &intervalTimer{d: d}
}

func (it *intervalTimer) Arm() <-chan time.Time {
	if it.t == nil {
		it.t = time.NewTimer(it.d)
	} else {
		it.t.Reset(it.d)
	}
	return it.t.C
}

// Stop cancels a pending tick.
func (it *intervalTimer) Stop() {
	if it.t != nil {
		it.t.Stop()
	}
}
