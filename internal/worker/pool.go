// Package worker runs blend jobs in parallel.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/MeKo-Tech/photoblend/internal/pipeline"
)

// Generator renders and exports a single job.
// pipeline.Generator satisfies it.
type Generator interface {
	Generate(ctx context.Context, job pipeline.Job) (location string, err error)
}

// Task is one queued job.
type Task struct {
	Index int // position in the batch
	Job   pipeline.Job
}

// Result is the outcome of a task.
type Result struct {
	Task     Task
	Location string
	Err      error
	Elapsed  time.Duration
}

// ProgressFunc is called after each task completes.
type ProgressFunc func(completed, total, failed int)

// Config configures the worker pool.
type Config struct {
	Workers    int
	Generator  Generator
	OnProgress ProgressFunc
}

// Pool runs jobs on a fixed number of workers.
type Pool struct {
	workers    int
	generator  Generator
	onProgress ProgressFunc
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		generator:  cfg.Generator,
		onProgress: cfg.OnProgress,
	}
}

// Tasks wraps jobs into indexed tasks.
func Tasks(jobs []pipeline.Job) []Task {
	tasks := make([]Task, len(jobs))
	for i, job := range jobs {
		tasks[i] = Task{Index: i, Job: job}
	}
	return tasks
}

// Run executes all tasks and blocks until they finish or ctx is cancelled.
// Results come back in task order; tasks skipped after cancellation carry ctx.Err().
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan int)
	resultCh := make(chan int, len(tasks))
	results := make([]Result, len(tasks))
	for i, task := range tasks {
		results[i] = Result{Task: task}
	}

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range taskCh {
				results[idx] = p.run(ctx, tasks[idx])
				resultCh <- idx
			}
		}()
	}

	go func() {
		defer close(taskCh)
		for i := range tasks {
			select {
			case taskCh <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		var completed, failed int
		for idx := range resultCh {
			completed++
			if results[idx].Err != nil {
				failed++
			}
			if p.onProgress != nil {
				p.onProgress(completed, len(tasks), failed)
			}
		}
	}()

	wg.Wait()
	close(resultCh)
	<-done

	// anything never handed to a worker was cancelled
	if err := ctx.Err(); err != nil {
		for i := range results {
			if results[i].Location == "" && results[i].Err == nil {
				results[i].Err = err
			}
		}
	}

	return results
}

func (p *Pool) run(ctx context.Context, task Task) Result {
	if err := ctx.Err(); err != nil {
		return Result{Task: task, Err: err}
	}

	start := time.Now()
	loc, err := p.generator.Generate(ctx, task.Job)

	return Result{
		Task:     task,
		Location: loc,
		Err:      err,
		Elapsed:  time.Since(start),
	}
}

// Failed returns the failed results.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
