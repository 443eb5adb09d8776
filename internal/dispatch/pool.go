package dispatch

import (
	"context"
	"fmt"
	"sync"

	"dwfx2pdf/internal/convert"
)

type job struct {
	ctx     context.Context
	task    convert.Task
	index   int
	results chan<- indexedOutcome
}

type indexedOutcome struct {
	index   int
	outcome convert.Outcome
}

// Pool runs conversion tasks with bounded parallelism.
type Pool struct {
	runner  convert.Runner
	workers int

	jobs chan job
	wg   sync.WaitGroup

	closeOnce sync.Once
}

// NewPool constructs a pool with the given worker count and starts its
// workers. An invalid worker count is a configuration error reported before
// any task runs.
func NewPool(runner convert.Runner, workers int) (*Pool, error) {
	if runner == nil {
		return nil, fmt.Errorf("dispatch: runner is required")
	}
	if workers < 1 {
		return nil, fmt.Errorf("dispatch: worker count must be at least 1, got %d", workers)
	}

	p := &Pool{
		runner:  runner,
		workers: workers,
		jobs:    make(chan job),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p, nil
}

// Workers returns the pool's concurrency ceiling.
func (p *Pool) Workers() int {
	return p.workers
}

// Close stops accepting work and waits for in-flight tasks to finish.
// Queued tasks still drain; nothing is killed mid-conversion.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}

// RunBatch executes tasks over the shared pool and returns one Outcome per
// task, positionally aligned with the input regardless of completion order.
func (p *Pool) RunBatch(ctx context.Context, tasks []convert.Task) []convert.Outcome {
	return p.RunBatchFunc(ctx, tasks, nil)
}

// RunBatchFunc behaves like RunBatch and additionally invokes onOutcome for
// each task as it finishes, in completion order. The callback runs on the
// calling goroutine while workers are still busy, so it must not block; a nil
// callback is allowed.
func (p *Pool) RunBatchFunc(ctx context.Context, tasks []convert.Task, onOutcome func(convert.Outcome)) []convert.Outcome {
	if len(tasks) == 0 {
		return nil
	}

	// The results channel holds every outcome, so neither the sender
	// goroutine nor the workers can block on delivery.
	results := make(chan indexedOutcome, len(tasks))
	go func() {
		for i, task := range tasks {
			select {
			case p.jobs <- job{ctx: ctx, task: task, index: i, results: results}:
			case <-ctx.Done():
				results <- indexedOutcome{index: i, outcome: convert.InternalFailure(task, ctx.Err())}
			}
		}
	}()

	outcomes := make([]convert.Outcome, len(tasks))
	for range tasks {
		res := <-results
		outcomes[res.index] = res.outcome
		if onOutcome != nil {
			onOutcome(res.outcome)
		}
	}
	return outcomes
}

// Submit runs a single task over the same pool and queue as batches, so
// watch and upload submissions share the batch concurrency budget.
func (p *Pool) Submit(ctx context.Context, task convert.Task) convert.Outcome {
	return p.RunBatch(ctx, []convert.Task{task})[0]
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		j.results <- indexedOutcome{index: j.index, outcome: p.execute(j)}
	}
}

// execute shields the pool from both task-context cancellation and bugs in
// the runner: a panic becomes an internal-error Outcome instead of taking the
// worker down.
func (p *Pool) execute(j job) (outcome convert.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = convert.InternalFailure(j.task, fmt.Errorf("worker panic: %v", r))
		}
	}()

	if err := j.ctx.Err(); err != nil {
		return convert.InternalFailure(j.task, err)
	}
	return p.runner.Execute(j.ctx, j.task)
}
