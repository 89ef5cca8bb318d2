// Package oneshot implements a single-use rendezvous between one producer
// and one consumer of a value.
//
// A call to [New] returns a [Sender] and a [Receiver] bound to a shared
// slot. The sender delivers a value with [Sender.Send] or a failure with
// [Sender.Fail], exactly one of which can ever succeed. The receiver
// observes the outcome with [Receiver.Get], which blocks until the slot is
// populated, or with the bounded [Receiver.GetFor] and non-blocking
// [Receiver.Ready].
//
// If the sender is released with [Sender.Close] (or replaced with
// [Sender.Take]) before delivering an outcome, the receiver observes
// [ErrBrokenSender].
//
// For a resettable slot that can carry a sequence of one-shot exchanges,
// see the channel subpackage.
package oneshot

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

var (
	// ErrNoState is reported by operations on a handle that is not bound to
	// a slot, either because it is a zero value or because it was released.
	ErrNoState = errors.New("handle has no state")

	// ErrBrokenSender is reported to the receiver when the sender was
	// released without delivering a value or a failure.
	ErrBrokenSender = errors.New("sender closed without a value")

	// ErrTimeout is reported by a bounded read when the slot is still empty
	// at the end of the wait.
	ErrTimeout = errors.New("timed out waiting for a value")
)

// shared is the slot jointly owned by a sender and a receiver. The one
// successful producer action wins the compare-and-swap on used, populates
// val or err, and closes done. Closing done publishes the outcome, so a
// receiver that has seen done closed may read val and err without further
// synchronization.
type shared[T any] struct {
	used atomic.Bool // set by the one successful producer action
	val  T
	err  error
	done chan struct{} // closed once val or err is populated
}

// resolve attempts the one allowed transition out of empty, and reports
// whether this call delivered the outcome. Concurrent calls are safe;
// exactly one succeeds and the rest have no effect.
func (s *shared[T]) resolve(val T, err error) bool {
	if !s.used.CompareAndSwap(false, true) {
		return false
	}
	s.val, s.err = val, err
	close(s.done)
	return true
}

// New creates a fresh empty slot and returns the sender and receiver
// handles bound to it. The slot persists as long as either handle does.
func New[T any]() (*Sender[T], *Receiver[T]) {
	s := &shared[T]{done: make(chan struct{})}
	return &Sender[T]{state: s}, &Receiver[T]{state: s}
}

// A Sender is the producing handle of a one-shot transfer. A zero Sender,
// or one released by [Sender.Close] or emptied by [Sender.Take], is
// detached: its methods report failure without blocking.
//
// Send and Fail are safe for concurrent use; when they race, exactly one
// call delivers its outcome. Close and Take modify the handle itself and
// must not be called concurrently with its other methods.
type Sender[T any] struct {
	state *shared[T]
}

// Send delivers v to the receiver and reports whether it did so. Send
// reports false, and has no effect, if an outcome was already delivered or
// s is detached.
func (s *Sender[T]) Send(v T) bool {
	if s.state == nil {
		return false
	}
	return s.state.resolve(v, nil)
}

// Fail delivers err as a failure to the receiver and reports whether it
// did so. Fail reports false, and has no effect, if an outcome was already
// delivered or s is detached.
func (s *Sender[T]) Fail(err error) bool {
	if s.state == nil {
		return false
	}
	var zero T
	return s.state.resolve(zero, err)
}

// Close releases s and detaches it. If no outcome was delivered, the
// receiver is given [ErrBrokenSender]; if the slot was concurrently
// fulfilled, the delivered outcome stands. Close reports [ErrNoState] if s
// is already detached.
func (s *Sender[T]) Close() error {
	if s.state == nil {
		return ErrNoState
	}
	var zero T
	s.state.resolve(zero, ErrBrokenSender)
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
		s.state.resolve(zero, ErrBrokenSender)
	}
	if from == nil {
		s.state = nil
		return
	}
	s.state, from.state = from.state, nil
}

// A Receiver is the consuming handle of a one-shot transfer. A zero
// Receiver is detached: its methods report [ErrNoState] without blocking.
//
// The read methods are safe for concurrent use; any number of reads may
// block or time out on the slot without disturbing it.
type Receiver[T any] struct {
	state *shared[T]
}

// Get blocks until the slot is populated, then returns the delivered value
// or failure. Get on a detached receiver reports [ErrNoState] immediately.
//
// Get may be called repeatedly; every call reports the same outcome.
func (r *Receiver[T]) Get() (T, error) {
	if r.state == nil {
		var zero T
		return zero, ErrNoState
	}
	<-r.state.done
	return r.state.val, r.state.err
}

// GetContext is [Receiver.Get] with cancellation: if ctx ends before the
// slot is populated, it returns a zero value and ctx.Err(). Cancellation
// does not disturb the slot; a later read observes the eventual outcome.
func (r *Receiver[T]) GetContext(ctx context.Context) (T, error) {
	if r.state == nil {
		var zero T
		return zero, ErrNoState
	}
	select {
	case <-r.state.done:
		return r.state.val, r.state.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// GetFor blocks up to d for the slot to be populated, then returns the
// delivered value or failure. If the slot is still empty when d elapses,
// GetFor reports [ErrTimeout]; the slot is untouched, and a later read
// observes the eventual outcome.
func (r *Receiver[T]) GetFor(d time.Duration) (T, error) {
	if r.state == nil {
		var zero T
		return zero, ErrNoState
	}
	select {
	case <-r.state.done:
		// N.B. checked first so that a zero or negative duration still
		// observes an already-populated slot.
		return r.state.val, r.state.err
	default:
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-r.state.done:
		return r.state.val, r.state.err
	case <-t.C:
		var zero T
		return zero, ErrTimeout
	}
}

// Ready reports whether the slot is populated. Ready does not block, and
// reports false on a detached receiver.
func (r *Receiver[T]) Ready() bool {
	if r.state == nil {
		return false
	}
	select {
	case <-r.state.done:
		return true
	default:
		return false
	}
}
