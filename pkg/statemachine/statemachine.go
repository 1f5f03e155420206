// Package statemachine provides a serialized state driver following Rob
// Pike's state-function pattern. A Machine owns one entity: dispatched state
// chains and Do blocks run one at a time, which is the entity's mutual
// exclusion, and at most one delayed step may be pending at any moment.
package statemachine

import (
	"sync"
	"time"
)

// StateFn is a state function following Rob Pike's pattern: it acts on the
// entity and returns the next state function, or nil to stop.
type StateFn[T any] func(*T) StateFn[T]

// Machine serializes all access to its entity. Dispatch runs a state chain to
// completion; DispatchAfter schedules a single future step. Scheduling again
// replaces the pending step, and a replaced or cancelled step never runs,
// even if its timer already fired.
type Machine[T any] struct {
	run    sync.Mutex // held while a chain or Do block executes
	entity *T

	tmu   sync.Mutex // guards seq and timer only
	seq   uint64
	timer *time.Timer
}

// New creates a machine for the given entity.
func New[T any](entity *T) *Machine[T] {
	return &Machine[T]{entity: entity}
}

// Dispatch runs fn and every state function it chains to, serialized against
// all other dispatches on this machine. A pending delayed step is left
// untouched; cancel it explicitly if the dispatched state supersedes it.
func (m *Machine[T]) Dispatch(fn StateFn[T]) {
	if fn == nil {
		return
	}
	m.run.Lock()
	defer m.run.Unlock()
	m.runChain(fn)
}

// Do runs fn on the entity under the same serialization as Dispatch. Used for
// reads and one-off mutations that are not states.
func (m *Machine[T]) Do(fn func(*T)) {
	m.run.Lock()
	defer m.run.Unlock()
	fn(m.entity)
}

// DispatchAfter schedules fn to be dispatched after d, replacing any pending
// delayed step. Safe to call from within a running state function.
func (m *Machine[T]) DispatchAfter(d time.Duration, fn StateFn[T]) {
	m.tmu.Lock()
	defer m.tmu.Unlock()

	m.seq++
	token := m.seq
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(d, func() { m.fire(token, fn) })
}

// CancelPending drops the pending delayed step, if any. Safe to call from
// within a running state function.
func (m *Machine[T]) CancelPending() {
	m.tmu.Lock()
	defer m.tmu.Unlock()
	m.seq++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// fire runs a delayed step if it is still the pending one. The token is
// checked again after the run lock is acquired: the step may have been
// replaced while the timer goroutine waited for an in-flight chain.
func (m *Machine[T]) fire(token uint64, fn StateFn[T]) {
	if !m.pendingIs(token) {
		return
	}
	m.run.Lock()
	defer m.run.Unlock()
	if !m.pendingIs(token) {
		return
	}
	m.runChain(fn)
}

func (m *Machine[T]) pendingIs(token uint64) bool {
	m.tmu.Lock()
	defer m.tmu.Unlock()
	return m.seq == token
}

func (m *Machine[T]) runChain(fn StateFn[T]) {
	for fn != nil {
		fn = fn(m.entity)
	}
}
