package app

import (
	"testing"
	"time"
)

func TestIntervalTimer_Rearms(t *testing.T) {
	timer := IntervalTimer(5 * time.Millisecond)

	for i := 0; i < 3; i++ {
		select {
		case <-timer.Arm():
		case <-time.After(time.Second):
			t.Fatalf("tick %d did not fire", i)
		}
	}
}

func TestDrainTimerFunc(t *testing.T) {
	ch := make(chan time.Time, 1)
	calls := 0
	timer := DrainTimerFunc(func() <-chan time.Time {
		calls++
		return ch
	})

	if timer.Arm() != (<-chan time.Time)(ch) {
		t.Error("Arm() returned a different channel")
	}
	if calls != 1 {
		t.Errorf("calls = %d", calls)
	}
}

func TestIntervalTimer_Stop(t *testing.T) {
	timer := IntervalTimer(10 * time.Millisecond)
	tick := timer.Arm()

	st, ok := timer.(interface{ Stop() })
	if !ok {
		t.Fatal("IntervalTimer has no Stop method")
	}
	st.Stop()

	select {
	case <-tick:
		t.Fatal("stopped timer fired")
	case <-time.After(50 * time.Millisecond):
	}
}
