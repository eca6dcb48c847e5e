package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/banshee-data/aco.dashboard/internal/timeutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newMock() *timeutil.MockClock {
	return timeutil.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestDebouncer_BurstRunsOnce(t *testing.T) {
	clock := newMock()
	var calls atomic.Int32
	d := New(clock, 150*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 10; i++ {
		d.Trigger()
		clock.Advance(100 * time.Millisecond)
	}
	if got := calls.Load(); got != 0 {
		t.Fatalf("fired during the burst: calls=%d", got)
	}

	clock.Advance(50 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1 after quiescence", got)
	}

	clock.Advance(time.Second)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestDebouncer_SeparateBurstsRunSeparately(t *testing.T) {
	clock := newMock()
	var calls atomic.Int32
	d := New(clock, 150*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	clock.Advance(200 * time.Millisecond)
	d.Trigger()
	d.Trigger()
	clock.Advance(200 * time.Millisecond)

	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestDebouncer_Flush(t *testing.T) {
	clock := newMock()
	var calls atomic.Int32
	d := New(clock, 150*time.Millisecond, func() { calls.Add(1) })

	if d.Flush() {
		t.Error("Flush with nothing pending should report false")
	}
	d.Trigger()
	if !d.Flush() {
		t.Error("Flush with a pending call should report true")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
	clock.Advance(time.Second)
	if got := calls.Load(); got != 1 {
		t.Errorf("flushed call ran again: calls=%d", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	clock := newMock()
	var calls atomic.Int32
	d := New(clock, 150*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	d.Stop()
	d.Trigger()
	clock.Advance(time.Second)

	if got := calls.Load(); got != 0 {
		t.Errorf("calls = %d, want 0 after Stop", got)
	}
	if clock.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", clock.Pending())
	}
}

func TestDebouncer_RealClock(t *testing.T) {
	done := make(chan struct{}, 4)
	d := New(nil, 100*time.Millisecond, func() { done <- struct{}{} })
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never ran")
	}
	select {
	case <-done:
		t.Error("burst produced more than one call")
	case <-time.After(300 * time.Millisecond):
	}
}
