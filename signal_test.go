package oneshot_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/creachadair/oneshot"
	"github.com/fortytw2/leaktest"
)

func TestSignal(t *testing.T) {
	defer leaktest.Check(t)()

	t.Run("Complete", func(t *testing.T) {
		s, r := oneshot.NewSignal()

		if r.Ready() {
			t.Error("Ready reported true before completion")
		}

		var wg sync.WaitGroup
		wg.Add(1)
		time.AfterFunc(5*time.Millisecond, func() {
			defer wg.Done()
			if !s.Send() {
				t.Error("Send reported false")
			}
		})

		if err := r.Get(); err != nil {
			t.Errorf("Get: unexpected error: %v", err)
		}
		wg.Wait()

		if !r.Ready() {
			t.Error("Ready reported false after completion")
		}
		if s.Send() {
			t.Error("Send (again) reported true")
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		s, r := oneshot.NewSignal()

		if err := r.GetFor(10 * time.Millisecond); !errors.Is(err, oneshot.ErrTimeout) {
			t.Errorf("GetFor: got %v, want %v", err, oneshot.ErrTimeout)
		}

		// The timeout left the slot alone.
		s.Send()
		if err := r.GetFor(0); err != nil {
			t.Errorf("GetFor(0): unexpected error: %v", err)
		}
	})

	t.Run("Context", func(t *testing.T) {
		s, r := oneshot.NewSignal()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		if err := r.GetContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("GetContext: got %v, want %v", err, context.DeadlineExceeded)
		}

		// Cancellation did not consume the slot.
		s.Send()
		if err := r.GetContext(context.Background()); err != nil {
			t.Errorf("GetContext: unexpected error: %v", err)
		}
	})

	t.Run("Broken", func(t *testing.T) {
		s, r := oneshot.NewSignal()

		if err := s.Close(); err != nil {
			t.Errorf("Close: unexpected error: %v", err)
		}
		if err := r.Get(); !errors.Is(err, oneshot.ErrBrokenSender) {
			t.Errorf("Get: got %v, want %v", err, oneshot.ErrBrokenSender)
		}
	})

	t.Run("Fail", func(t *testing.T) {
		errBroke := errors.New("something broke")
		s, r := oneshot.NewSignal()

		if !s.Fail(errBroke) {
			t.Error("Fail reported false")
		}
		if err := r.Get(); !errors.Is(err, errBroke) {
			t.Errorf("Get: got %v, want %v", err, errBroke)
		}
	})

	t.Run("Detached", func(t *testing.T) {
		var s oneshot.SignalSender
		var r oneshot.SignalReceiver

		if s.Send() {
			t.Error("Send on a zero sender reported true")
		}
		if err := s.Close(); !errors.Is(err, oneshot.ErrNoState) {
			t.Errorf("Close: got %v, want %v", err, oneshot.ErrNoState)
		}
		if err := r.Get(); !errors.Is(err, oneshot.ErrNoState) {
			t.Errorf("Get: got %v, want %v", err, oneshot.ErrNoState)
		}
		if r.Ready() {
			t.Error("Ready on a zero receiver reported true")
		}
	})

	t.Run("Take", func(t *testing.T) {
		s1, r1 := oneshot.NewSignal()
		s2, r2 := oneshot.NewSignal()

		s1.Take(s2)
		if err := r1.Get(); !errors.Is(err, oneshot.ErrBrokenSender) {
			t.Errorf("Get(r1): got %v, want %v", err, oneshot.ErrBrokenSender)
		}
		if s2.Send() {
			t.Error("Send on the donor sender reported true")
		}
		if !s1.Send() {
			t.Error("Send on the rebound sender reported false")
		}
		if err := r2.Get(); err != nil {
			t.Errorf("Get(r2): unexpected error: %v", err)
		}
	})
}
