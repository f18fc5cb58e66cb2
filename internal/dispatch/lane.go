package dispatch

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Handler processes one delivery task. It owns its own error handling; a
// task failure is recorded on the job, never bubbled up to the lane.
type Handler func(ctx context.Context, task Task)

// Lane is an independent in-process delivery pipeline: a buffered queue
// drained by a fixed-size worker pool. Each chamber gets its own lane so the
// chambers never share a retry or concurrency budget.
type Lane struct {
	name    string
	tasks   chan Task
	workers int
	handle  Handler
	logger  *slog.Logger
}

func NewLane(name string, workers, buffer int, handle Handler, logger *slog.Logger) *Lane {
	if workers < 1 {
		workers = 1
	}
	return &Lane{
		name:    name,
		tasks:   make(chan Task, buffer),
		workers: workers,
		handle:  handle,
		logger:  logger,
	}
}

// Enqueue places a task on the lane. Blocks only when the buffer is full.
func (l *Lane) Enqueue(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case l.tasks <- task:
		return nil
	}
}

// Run drains the lane with the configured number of workers until the
// context is canceled.
func (l *Lane) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < l.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case task := <-l.tasks:
					l.handle(ctx, task)
				}
			}
		})
	}
	err := g.Wait()
	l.logger.Info("lane stopped", "lane", l.name)
	return err
}
