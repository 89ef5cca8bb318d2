package oneshot

import (
	"context"
	"time"
)

// NewSignal creates a fresh empty slot carrying no payload, where delivery
// reports only completion, and returns the handles bound to it. Signal
// handles have the same operation set and failure behavior as the generic
// [Sender] and [Receiver].
func NewSignal() (*SignalSender, *SignalReceiver) {
	s, r := New[struct{}]()
	return &SignalSender{s: *s}, &SignalReceiver{r: *r}
}

// A SignalSender is the producing handle of a payload-free transfer.
// It behaves as a [Sender] whose Send takes no argument.
type SignalSender struct {
	s Sender[struct{}]
}

// Send marks the transfer complete and reports whether it did so.
func (s *SignalSender) Send() bool { return s.s.Send(struct{}{}) }

// Fail delivers err as a failure and reports whether it did so.
func (s *SignalSender) Fail(err error) bool { return s.s.Fail(err) }

// Close releases s, exactly as [Sender.Close] does.
func (s *SignalSender) Close() error { return s.s.Close() }

// Take moves the binding of from to s, exactly as [Sender.Take] does.
func (s *SignalSender) Take(from *SignalSender) {
	if from == nil {
		s.s.Take(nil)
		return
	}
	s.s.Take(&from.s)
}

// A SignalReceiver is the consuming handle of a payload-free transfer.
// It behaves as a [Receiver] whose reads report only completion.
type SignalReceiver struct {
	r Receiver[struct{}]
}

// Get blocks until the transfer completes or fails. It returns nil on
// completion and otherwise the failure, as [Receiver.Get] does.
func (r *SignalReceiver) Get() error {
	_, err := r.r.Get()
	return err
}

// GetContext is Get with cancellation, as [Receiver.GetContext].
func (r *SignalReceiver) GetContext(ctx context.Context) error {
	_, err := r.r.GetContext(ctx)
	return err
}

// GetFor blocks up to d for completion, as [Receiver.GetFor].
func (r *SignalReceiver) GetFor(d time.Duration) error {
	_, err := r.r.GetFor(d)
	return err
}

// Ready reports whether the transfer has completed or failed.
func (r *SignalReceiver) Ready() bool { return r.r.Ready() }
