package util

import (
	"context"
	"sync"
)

// ParallelMap runs fn over inputs with at most workerLimit goroutines and
// returns the outputs in input order. The first error cancels the context
// passed to the remaining calls and is returned. When parent ends before every
// input was handed to a worker, parent.Err() is returned and the unfed slots are
// left zero.
func ParallelMap[T, R any](parent context.Context, inputs []T, workerLimit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	if err := parent.Err(); err != nil {
		return make([]R, len(inputs)), err
	}

	if workerLimit <= 0 {
		workerLimit = 1
	}
	if workerLimit > len(inputs) {
		workerLimit = len(inputs)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	out := make([]R, len(inputs))
	tasks := make(chan int)
	errCh := make(chan error, 1)

	// workers
	wg := sync.WaitGroup{}
	for i := 0; i < workerLimit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				res, err := fn(ctx, inputs[idx])
				if err != nil {
					select {
					case errCh <- err:
						cancel() // stop others
					default:
					}
					return
				}
				out[idx] = res
			}
		}()
	}

	// feed tasks
	fed := make(chan bool, 1)
	go func() {
		defer close(tasks)
		for idx := range inputs {
			select {
			case <-ctx.Done():
				fed <- false
				return
			case tasks <- idx:
			}
		}
		fed <- true
	}()

	wg.Wait()
	cancel()
	complete := <-fed

	select {
	case err := <-errCh:
		return out, err
	default:
	}
	if !complete {
		if err := parent.Err(); err != nil {
			return out, err
		}
		return out, context.Canceled
	}
	return out, nil
}
