package pipeline_test

import (
	"context"
	"sync"
	"testing"
)

func rootInts(total int) func(ctx context.Context, rootChan chan<- int) error {
	return func(ctx context.Context, rootChan chan<- int) error {
		for i := range total {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case rootChan <- i:
			}
		}

		return nil
	}
}

// recorder collects the elements seen by a sink.
type recorder struct {
	mu  sync.Mutex
	got []int
}

func (r *recorder) sink(_ context.Context, in int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, in)

	return nil
}

func (r *recorder) values(t *testing.T) []int {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]int(nil), r.got...)
}
