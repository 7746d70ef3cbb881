package pipeline

import (
	"context"
	"testing"
)

// feed sends 0..total-1 on a new channel and closes it.
func feed(t *testing.T, total int) chan int {
	t.Helper()

	return feedAndCancel(t, total, -1, nil)
}

// feedAndCancel is feed, calling cancel right before sending cancelAt.
func feedAndCancel(t *testing.T, total, cancelAt int, cancel context.CancelFunc) chan int {
	t.Helper()

	in := make(chan int)

	go func() {
		defer close(in)

		for i := range total {
			if i == cancelAt && cancel != nil {
				cancel()
			}
			in <- i
		}
	}()

	return in
}

func drain(t *testing.T, output <-chan int) []int {
	t.Helper()

	res := []int{}
	for v := range output {
		res = append(res, v)
	}

	return res
}
