package jobs

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

// WorkerPool runs submitted tasks on a fixed number of goroutines.
type WorkerPool struct {
	ctx   context.Context
	pool  chan Task
	wg    sync.WaitGroup
	close sync.Once
}

// NewWorkerPool starts size workers. Tasks receive ctx.
func NewWorkerPool(ctx context.Context, size int) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	wp := &WorkerPool{ctx: ctx, pool: make(chan Task, size)}

	wp.wg.Add(size)
	for i := 0; i < size; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.pool {
		if err := task(wp.ctx); err != nil {
			zap.L().Error("task execution failed", zap.Error(err))
		}
	}
}

// AddTask queues task, blocking while the queue is full.
func (wp *WorkerPool) AddTask(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case wp.pool <- task:
		return nil
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
// AddTask must not be called after Close.
func (wp *WorkerPool) Close() {
	wp.close.Do(func() { close(wp.pool) })
	wp.wg.Wait()
}
