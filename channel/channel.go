// Package channel implements a resettable version of the oneshot transfer:
// the same sender/receiver pair can carry a sequence of one-shot exchanges,
// with either side calling Reset between rounds to return the shared slot
// to empty.
//
// Reset safety is built on generations. Each read snapshots the current
// generation under the slot's lock and then waits on the snapshot, so a
// concurrent Reset can never swap the wait channel out from under a parked
// reader. Resetting an unfulfilled generation wakes its parked readers with
// [oneshot.ErrBrokenSender]: an untimed [Receiver.Get] propagates that
// failure, while the bounded [Receiver.GetFor] reports it as an ordinary
// timeout.
package channel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/creachadair/oneshot"
)

// A gen records the outcome of one generation of the slot. Its done
// channel is closed after val and err are populated; a reader that has
// seen done closed may read both without holding the slot lock.
type gen[T any] struct {
	val  T
	err  error
	done chan struct{}
}

func newGen[T any]() *gen[T] { return &gen[T]{done: make(chan struct{})} }

// shared is the slot jointly owned by a sender and a receiver. Unlike the
// single-use slot, transitions are guarded by a mutex rather than an
// atomic flag, because a reset replaces the generation a reader would
// otherwise wait on. The lock is held only to transition or snapshot,
// never across a wait.
type shared[T any] struct {
	μ    sync.Mutex
	used bool    // an outcome was delivered in the current generation
	cur  *gen[T] // the generation new reads attach to
}

// resolve attempts the one transition allowed in the current generation,
// and reports whether this call delivered the outcome.
func (s *shared[T]) resolve(val T, err error) bool {
	s.μ.Lock()
	defer s.μ.Unlock()
	if s.used {
		return false
	}
	s.used = true
	s.cur.val, s.cur.err = val, err
	close(s.cur.done)
	return true
}

// reset retires the current generation and installs a fresh empty one.
// If the retired generation was never fulfilled, it is completed with
// [oneshot.ErrBrokenSender] so that readers parked on it wake up; readers
// that already completed hold their own generation and are unaffected.
func (s *shared[T]) reset() {
	s.μ.Lock()
	defer s.μ.Unlock()
	if !s.used {
		s.cur.err = oneshot.ErrBrokenSender
		close(s.cur.done)
	}
	s.cur = newGen[T]()
	s.used = false
}

// snapshot returns the generation current at the time of the call.
func (s *shared[T]) snapshot() *gen[T] {
	s.μ.Lock()
	defer s.μ.Unlock()
	return s.cur
}

// New creates a fresh resettable slot and returns the sender and receiver
// handles bound to it. The slot persists as long as either handle does;
// Reset clears it without replacing it.
func New[T any]() (*Sender[T], *Receiver[T]) {
	s := &shared[T]{cur: newGen[T]()}
	return &Sender[T]{state: s}, &Receiver[T]{state: s}
}

// A Sender is the producing handle of a resettable transfer. A zero
// Sender, or one released by [Sender.Close] or emptied by [Sender.Take],
// is detached: its methods report failure without blocking.
//
// Send, Fail, and Reset are safe for concurrent use. Close and Take modify
// the handle itself and must not be called concurrently with its other
// methods.
type Sender[T any] struct {
	state *shared[T]
}

// Send delivers v to the receiver and reports whether it did so. Send
// reports false, and has no effect, if an outcome was already delivered in
// the current generation or s is detached.
func (s *Sender[T]) Send(v T) bool {
	if s.state == nil {
		return false
	}
	return s.state.resolve(v, nil)
}

// Fail delivers err as a failure to the receiver and reports whether it
// did so, with the same no-effect cases as [Sender.Send].
func (s *Sender[T]) Fail(err error) bool {
	if s.state == nil {
		return false
	}
	var zero T
	return s.state.resolve(zero, err)
}

// Reset returns the slot to empty, discarding any outcome delivered in the
// current generation, and reports whether s is bound to a slot. Either
// side may reset; redundant resets from both sides are harmless.
func (s *Sender[T]) Reset() bool {
	if s.state == nil {
		return false
	}
	s.state.reset()
	return true
}

// Close releases s and detaches it. If the current generation holds no
// outcome, the receiver is given [oneshot.ErrBrokenSender]. Close reports
// [oneshot.ErrNoState] if s is already detached.
func (s *Sender[T]) Close() error {
	if s.state == nil {
		return oneshot.ErrNoState
	}
	var zero T
	s.state.resolve(zero, oneshot.ErrBrokenSender)
	s.state = nil
	return nil
}

// Take moves the binding of from to s, leaving from detached. If s was
// bound to a slot, that slot is finalized exactly as by [Sender.Close], so
// rebinding a live sender is observably the same as closing it and
// constructing a new one. A nil from leaves s detached.
func (s *Sender[T]) Take(from *Sender[T]) {
	if s == from {
		return
	}
	if s.state != nil {
		var zero T
		s.state.resolve(zero, oneshot.ErrBrokenSender)
	}
	if from == nil {
		s.state = nil
		return
	}
	s.state, from.state = from.state, nil
}

// A Receiver is the consuming handle of a resettable transfer. A zero
// Receiver is detached: its methods report [oneshot.ErrNoState] without
// blocking.
//
// The read methods and Reset are safe for concurrent use; each read waits
// on the generation it snapshotted, so a concurrent Reset wakes it rather
// than tearing it.
type Receiver[T any] struct {
	state *shared[T]
}

// Get blocks until the current generation is populated, then returns the
// delivered value or failure. If the generation is retired by a Reset
// while Get is waiting, Get reports [oneshot.ErrBrokenSender]. Get on a
// detached receiver reports [oneshot.ErrNoState] immediately.
func (r *Receiver[T]) Get() (T, error) {
	if r.state == nil {
		var zero T
		return zero, oneshot.ErrNoState
	}
	g := r.state.snapshot()
	<-g.done
	return g.val, g.err
}

// GetContext is [Receiver.Get] with cancellation: if ctx ends before the
// generation is populated, it returns a zero value and ctx.Err().
// Cancellation does not disturb the slot.
func (r *Receiver[T]) GetContext(ctx context.Context) (T, error) {
	if r.state == nil {
		var zero T
		return zero, oneshot.ErrNoState
	}
	g := r.state.snapshot()
	select {
	case <-g.done:
		return g.val, g.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// GetFor blocks up to d for the current generation to be populated, then
// returns the delivered value or failure. If the generation is still empty
// when d elapses, GetFor reports [oneshot.ErrTimeout]; the slot is
// untouched, and a later read observes the eventual outcome.
//
// A broken-sender outcome, such as a Reset retiring the generation GetFor
// is waiting on, is reported as [oneshot.ErrTimeout] rather than
// [oneshot.ErrBrokenSender]. A failure delivered by [Sender.Fail] is
// surfaced verbatim. This asymmetry with [Receiver.Get] is deliberate.
func (r *Receiver[T]) GetFor(d time.Duration) (T, error) {
	var zero T
	if r.state == nil {
		return zero, oneshot.ErrNoState
	}
	g := r.state.snapshot()
	select {
	case <-g.done:
		// N.B. checked first so that a zero or negative duration still
		// observes an already-populated generation.
	default:
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-g.done:
		case <-t.C:
			return zero, oneshot.ErrTimeout
		}
	}
	if errors.Is(g.err, oneshot.ErrBrokenSender) {
		return zero, oneshot.ErrTimeout
	}
	return g.val, g.err
}

// Ready reports whether the current generation is populated. Ready does
// not block, and reports false on a detached receiver.
func (r *Receiver[T]) Ready() bool {
	if r.state == nil {
		return false
	}
	g := r.state.snapshot()
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

// Reset returns the slot to empty, exactly as [Sender.Reset] does, and
// reports whether r is bound to a slot.
func (r *Receiver[T]) Reset() bool {
	if r.state == nil {
		return false
	}
	r.state.reset()
	return true
}
