package timer

import (
	"testing"
	"time"
)

func TestScheduleOnceFiresAfterDelay(t *testing.T) {
	m := NewManager()
	calls := 0
	h := m.ScheduleOnce(time.Second, func() { calls++ })

	if h == 0 {
		t.Fatalf("expected non-zero handle")
	}
	if !m.IsPending(h) {
		t.Fatalf("expected timer to be pending after scheduling")
	}

	if fired := m.Advance(500 * time.Millisecond); fired != 0 {
		t.Fatalf("expected no timers to fire at 0.5s, got %d", fired)
	}
	if !m.IsPending(h) {
		t.Fatalf("expected timer to still be pending at 0.5s")
	}

	if fired := m.Advance(500 * time.Millisecond); fired != 1 {
		t.Fatalf("expected 1 timer to fire at 1s, got %d", fired)
	}
	if calls != 1 {
		t.Fatalf("expected callback to run once, ran %d times", calls)
	}
	if m.IsPending(h) {
		t.Fatalf("expected timer to no longer be pending after firing")
	}

	m.Advance(10 * time.Second)
	if calls != 1 {
		t.Fatalf("single-shot timer fired again: %d calls", calls)
	}
}

func TestAdvanceFiresInDueOrder(t *testing.T) {
	m := NewManager()
	var order []string
	m.ScheduleOnce(3*time.Second, func() { order = append(order, "c") })
	m.ScheduleOnce(1*time.Second, func() { order = append(order, "a") })
	m.ScheduleOnce(2*time.Second, func() { order = append(order, "b1") })
	m.ScheduleOnce(2*time.Second, func() { order = append(order, "b2") })

	if fired := m.Advance(5 * time.Second); fired != 4 {
		t.Fatalf("expected 4 timers fired, got %d", fired)
	}

	want := []string{"a", "b1", "b2", "c"}
	if len(order) != len(want) {
		t.Fatalf("expected order %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

func TestCancel(t *testing.T) {
	m := NewManager()
	fired := false
	h := m.ScheduleOnce(time.Second, func() { fired = true })

	if !m.Cancel(h) {
		t.Fatalf("expected cancel of pending timer to succeed")
	}
	if m.Cancel(h) {
		t.Fatalf("expected second cancel to fail")
	}
	if m.IsPending(h) {
		t.Fatalf("cancelled timer reported pending")
	}

	m.Advance(2 * time.Second)
	if fired {
		t.Fatalf("cancelled timer fired")
	}
}

func TestCallbackCancelsLaterTimer(t *testing.T) {
	m := NewManager()
	var second Handle
	secondFired := false
	m.ScheduleOnce(time.Second, func() { m.Cancel(second) })
	second = m.ScheduleOnce(2*time.Second, func() { secondFired = true })

	if fired := m.Advance(3 * time.Second); fired != 1 {
		t.Fatalf("expected 1 timer fired, got %d", fired)
	}
	if secondFired {
		t.Fatalf("timer cancelled by an earlier callback still fired")
	}
}

func TestCallbackSchedulesForNextAdvance(t *testing.T) {
	m := NewManager()
	inner := 0
	m.ScheduleOnce(0, func() {
		m.ScheduleOnce(0, func() { inner++ })
	})

	if fired := m.Advance(time.Millisecond); fired != 1 {
		t.Fatalf("expected only the outer timer to fire, got %d", fired)
	}
	if inner != 0 {
		t.Fatalf("timer scheduled inside a callback fired in the same advance")
	}
	if m.Pending() != 1 {
		t.Fatalf("expected 1 pending timer, got %d", m.Pending())
	}

	m.Advance(0)
	if inner != 1 {
		t.Fatalf("expected inner timer to fire on the next advance, got %d", inner)
	}
}

func TestUnknownHandle(t *testing.T) {
	m := NewManager()
	if m.IsPending(0) {
		t.Fatalf("zero handle reported pending")
	}
	if m.IsPending(42) {
		t.Fatalf("unknown handle reported pending")
	}
}

func TestNegativeAdvanceDoesNotRewind(t *testing.T) {
	m := NewManager()
	m.Advance(time.Second)
	m.Advance(-time.Second)
	if m.Now() != time.Second {
		t.Fatalf("expected clock at 1s, got %v", m.Now())
	}
}
