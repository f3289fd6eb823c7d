package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool(t *testing.T) {
	tests := []struct {
		name       string
		numTasks   int
		numWorkers int
		failEvery  int
	}{
		{name: "Simple tasks", numTasks: 5, numWorkers: 2},
		{name: "Failing tasks do not stop the pool", numTasks: 4, numWorkers: 2, failEvery: 2},
		{name: "Zero size falls back to one worker", numTasks: 3, numWorkers: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wp := NewWorkerPool(context.Background(), tt.numWorkers)

			var executed atomic.Int64
			for i := 1; i <= tt.numTasks; i++ {
				err := wp.AddTask(context.Background(), func(context.Context) error {
					executed.Add(1)
					if tt.failEvery > 0 && i%tt.failEvery == 0 {
						return errors.New("task failed")
					}
					return nil
				})
				require.NoError(t, err)
			}
			wp.Close()

			assert.Equal(t, int64(tt.numTasks), executed.Load())
		})
	}
}

func TestWorkerPool_AddTaskCanceled(t *testing.T) {
	wp := NewWorkerPool(context.Background(), 1)
	defer wp.Close()

	block := make(chan struct{})
	defer close(block)
	// one task occupies the worker, one fills the queue
	require.NoError(t, wp.AddTask(context.Background(), func(context.Context) error { <-block; return nil }))
	require.NoError(t, wp.AddTask(context.Background(), func(context.Context) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := wp.AddTask(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkerPool_CloseTwice(t *testing.T) {
	wp := NewWorkerPool(context.Background(), 1)
	wp.Close()
	assert.NotPanics(t, wp.Close)
}
