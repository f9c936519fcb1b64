package scheduler

import (
	"context"
	"sync"
)

// Outcome is the result of one item in a fan-out.
type Outcome[T any] struct {
	Item T
	Err  error
}

// Settled partitions a fan-out by outcome. Order within each partition
// follows the input order.
type Settled[T any] struct {
	Succeeded []T
	Failed    []Outcome[T]
}

// FirstError returns the first failure in input order, nil if none.
func (s Settled[T]) FirstError() error {
	if len(s.Failed) == 0 {
		return nil
	}
	return s.Failed[0].Err
}

// SettleAll runs fn for every item concurrently and waits for all of them.
// A failure never cancels or rolls back the rest; every outcome is tracked
// independently and partitioned afterwards.
func SettleAll[T any](ctx context.Context, items []T, fn func(context.Context, T) error) Settled[T] {
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			errs[i] = fn(ctx, item)
		}(i, item)
	}
	wg.Wait()

	var out Settled[T]
	for i, item := range items {
		if errs[i] != nil {
			out.Failed = append(out.Failed, Outcome[T]{Item: item, Err: errs[i]})
		} else {
			out.Succeeded = append(out.Succeeded, item)
		}
	}
	return out
}
