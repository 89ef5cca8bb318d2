package channel_test

import (
	"fmt"

	"github.com/creachadair/oneshot/channel"
)

func ExampleNew() {
	s, r := channel.New[int]()

	// The same slot carries a sequence of one-shot exchanges, with a reset
	// between rounds.
	for i := 1; i <= 3; i++ {
		go s.Send(i * 10)

		v, err := r.Get()
		fmt.Println(v, err)

		s.Reset()
		r.Reset()
	}
	// Output:
	// 10 <nil>
	// 20 <nil>
	// 30 <nil>
}

func ExampleNewSignal() {
	s, r := channel.NewSignal()

	go s.Send()
	if err := r.Get(); err == nil {
		fmt.Println("round 1 done")
	}

	s.Reset()
	r.Reset()

	go s.Send()
	if err := r.Get(); err == nil {
		fmt.Println("round 2 done")
	}
	// Output:
	// round 1 done
	// round 2 done
}
