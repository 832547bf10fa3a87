package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunnerPreservesInputOrder(t *testing.T) {
	runner := NewRunner(RunnerConfig{Concurrency: 3})

	batch := make([]Task, 10)
	for i := range batch {
		id := fmt.Sprintf("task-%d", i)
		batch[i] = Task{ID: id, Kind: "test", Run: func(context.Context) error { return nil }}
	}

	results := runner.Run(context.Background(), batch)
	require.Len(t, results, 10)
	for i, result := range results {
		require.Equal(t, fmt.Sprintf("task-%d", i), result.ID)
		require.False(t, result.Failed())
	}
}

func TestRunnerFailuresDoNotAbortBatch(t *testing.T) {
	runner := NewRunner(RunnerConfig{Concurrency: 2})
	boom := errors.New("boom")

	var succeeded int32
	batch := []Task{
		{ID: "a", Kind: "test", Run: func(context.Context) error { return boom }},
		{ID: "b", Kind: "test", Run: func(context.Context) error {
			atomic.AddInt32(&succeeded, 1)
			return nil
		}},
		{ID: "c", Kind: "test", Run: func(context.Context) error {
			atomic.AddInt32(&succeeded, 1)
			return nil
		}},
	}

	results := runner.Run(context.Background(), batch)
	require.True(t, results[0].Failed())
	require.ErrorIs(t, results[0].Err, boom)
	require.False(t, results[1].Failed())
	require.False(t, results[2].Failed())
	require.Equal(t, int32(2), atomic.LoadInt32(&succeeded))
}

func TestRunnerCancelledContextFailsRemaining(t *testing.T) {
	runner := NewRunner(RunnerConfig{Concurrency: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int32
	batch := []Task{
		{ID: "a", Kind: "test", Run: func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}},
		{ID: "b", Kind: "test", Run: func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}},
	}

	results := runner.Run(ctx, batch)
	require.Equal(t, int32(0), atomic.LoadInt32(&ran))
	for _, result := range results {
		require.True(t, result.Failed())
		require.ErrorIs(t, result.Err, context.Canceled)
	}
}

func TestRunnerEmptyBatch(t *testing.T) {
	runner := NewRunner(RunnerConfig{})
	require.Empty(t, runner.Run(context.Background(), nil))
}
