package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Func processes one input.
type Func[In, Out any] func(ctx context.Context, in In) (Out, error)

// Result is the outcome of one input.
type Result[Out any] struct {
	Index    int
	Value    Out
	Err      error
	Duration time.Duration
	WorkerID int
}

// Stats contains worker pool statistics.
type Stats struct {
	Name        string  `json:"name"`
	Workers     int     `json:"workers"`
	Active      int64   `json:"active"`
	Completed   int64   `json:"completed"`
	Failed      int64   `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// WorkerPool applies a Func with bounded parallelism. A WorkerPool may be
// reused; Run calls may overlap.
type WorkerPool[In, Out any] struct {
	name    string
	workers int
	fn      Func[In, Out]

	active    atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// New creates a pool with the given number of workers (at least one).
func New[In, Out any](name string, workers int, fn Func[In, Out]) *WorkerPool[In, Out] {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool[In, Out]{name: name, workers: workers, fn: fn}
}

// Run processes every input and returns one Result per input, in input
// order. Inputs not started before ctx is done fail with ctx.Err().
func (p *WorkerPool[In, Out]) Run(ctx context.Context, inputs []In) []Result[Out] {
	results := make([]Result[Out], len(inputs))
	indexes := make(chan int)

	workers := min(p.workers, len(inputs))
	var wg sync.WaitGroup
	for id := 0; id < workers; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = p.process(ctx, id, i, inputs[i])
			}
		}()
	}

	for i := range inputs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results
}

// process runs one task and records its outcome.
func (p *WorkerPool[In, Out]) process(ctx context.Context, workerID, index int, in In) (result Result[Out]) {
	p.active.Add(1)
	defer p.active.Add(-1)

	start := time.Now()
	result = Result[Out]{Index: index, WorkerID: workerID}

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("panic in task %d: %v", index, r)
		}
		result.Duration = time.Since(start)
		if result.Err != nil {
			p.failed.Add(1)
		} else {
			p.completed.Add(1)
		}
	}()

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	result.Value, result.Err = p.fn(ctx, in)
	return result
}

// Stats returns current worker pool statistics.
func (p *WorkerPool[In, Out]) Stats() Stats {
	completed := p.completed.Load()
	failed := p.failed.Load()
	total := completed + failed

	var successRate float64
	if total > 0 {
		successRate = float64(completed) / float64(total) * 100
	}

	return Stats{
		Name:        p.name,
		Workers:     p.workers,
		Active:      p.active.Load(),
		Completed:   completed,
		Failed:      failed,
		SuccessRate: successRate,
	}
}
