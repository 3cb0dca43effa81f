// Package timer provides single-shot timers driven by the game loop clock.
//
// Timers never fire on their own goroutine: the owner advances the clock once per
// tick and due callbacks run synchronously inside Advance. This keeps everything a
// callback touches on the same goroutine as the rest of the simulation.
package timer

import (
	"cmp"
	"slices"
	"time"
)

// Handle identifies a scheduled timer. The zero Handle is never issued.
type Handle uint64

// entry is a pending timer.
type entry struct {
	handle Handle
	due    time.Duration
	fn     func()
}

// Manager owns a set of single-shot timers and a monotonic clock.
// It is not safe for concurrent use.
type Manager struct {
	now     time.Duration
	next    Handle
	pending map[Handle]*entry

	// Reusable buffer for collecting due timers (avoids per-tick allocation)
	dueBuf []*entry
}

// NewManager creates a timer manager with its clock at zero.
func NewManager() *Manager {
	return &Manager{
		next:    1,
		pending: make(map[Handle]*entry),
	}
}

// ScheduleOnce registers fn to run once, delay after the current clock.
// A non-positive delay fires on the next Advance.
func (m *Manager) ScheduleOnce(delay time.Duration, fn func()) Handle {
	if delay < 0 {
		delay = 0
	}
	h := m.next
	m.next++
	m.pending[h] = &entry{handle: h, due: m.now + delay, fn: fn}
	return h
}

// IsPending reports whether the timer is scheduled and has not fired or been cancelled.
func (m *Manager) IsPending(h Handle) bool {
	_, ok := m.pending[h]
	return ok
}

// Cancel removes a pending timer. Returns false if it was not pending.
func (m *Manager) Cancel(h Handle) bool {
	if _, ok := m.pending[h]; !ok {
		return false
	}
	delete(m.pending, h)
	return true
}

// Pending returns the number of timers waiting to fire.
func (m *Manager) Pending() int {
	return len(m.pending)
}

// Now returns the manager's clock.
func (m *Manager) Now() time.Duration {
	return m.now
}

// Advance moves the clock forward by dt and fires every timer that is due,
// earliest first (ties in scheduling order). Returns the number of timers fired.
//
// A timer cancelled by an earlier callback in the same Advance does not fire.
// Timers scheduled by a callback are only considered on the next Advance.
func (m *Manager) Advance(dt time.Duration) int {
	if dt > 0 {
		m.now += dt
	}

	due := m.dueBuf[:0]
	for _, e := range m.pending {
		if e.due <= m.now {
			due = append(due, e)
		}
	}
	if len(due) == 0 {
		m.dueBuf = due
		return 0
	}

	slices.SortFunc(due, func(a, b *entry) int {
		return cmp.Or(cmp.Compare(a.due, b.due), cmp.Compare(a.handle, b.handle))
	})

	fired := 0
	for _, e := range due {
		// Skip timers cancelled by an earlier callback
		if _, ok := m.pending[e.handle]; !ok {
			continue
		}
		delete(m.pending, e.handle)
		if e.fn != nil {
			e.fn()
		}
		fired++
	}

	clear(due)
	m.dueBuf = due[:0]
	return fired
}
