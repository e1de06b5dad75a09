package timers

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestArmFires(t *testing.T) {
	r := NewRegistry()
	fired := make(chan struct{})

	r.Arm("user-1", 10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	// The callback unregisters itself before running.
	deadline := time.Now().Add(time.Second)
	for r.Armed("user-1") && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if r.Armed("user-1") {
		t.Error("fired timer still registered")
	}
}

func TestArmReplacesExisting(t *testing.T) {
	r := NewRegistry()
	var first, second atomic.Int32

	r.Arm("user-1", 20*time.Millisecond, func() { first.Add(1) })
	r.Arm("user-1", 30*time.Millisecond, func() { second.Add(1) })

	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (re-arm must replace)", r.Len())
	}

	time.Sleep(100 * time.Millisecond)

	if got := first.Load(); got != 0 {
		t.Errorf("replaced timer fired %d times, want 0", got)
	}
	if got := second.Load(); got != 1 {
		t.Errorf("replacement timer fired %d times, want 1", got)
	}
}

func TestCancel(t *testing.T) {
	r := NewRegistry()
	var fired atomic.Int32

	r.Arm("user-1", 20*time.Millisecond, func() { fired.Add(1) })

	if !r.Cancel("user-1") {
		t.Fatal("Cancel should report an armed timer")
	}
	if r.Cancel("user-1") {
		t.Fatal("second Cancel should report nothing to cancel")
	}

	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("cancelled timer fired %d times, want 0", got)
	}
}

func TestStopAll(t *testing.T) {
	r := NewRegistry()
	var fired atomic.Int32

	for _, key := range []string{"a", "b", "c"} {
		r.Arm(key, 20*time.Millisecond, func() { fired.Add(1) })
	}
	r.StopAll()

	if r.Len() != 0 {
		t.Errorf("Len() = %d after StopAll, want 0", r.Len())
	}

	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("%d timers fired after StopAll, want 0", got)
	}
}
