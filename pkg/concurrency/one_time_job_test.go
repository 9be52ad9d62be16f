package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOneTimeJobOnlyOneTaker(t *testing.T) {
	t.Parallel()

	job := NewOneTimeJob()
	var takers atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if job.TryTake() {
				takers.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), takers.Load())
	select {
	case <-job.Done():
		t.Fatal("taking the job must not complete it")
	default:
	}
}

func TestOneTimeJobCompleteOnce(t *testing.T) {
	t.Parallel()

	job := NewOneTimeJob()
	require.False(t, job.Complete(), "completing a job that was never taken must fail")

	require.True(t, job.TryTake())
	require.True(t, job.Complete())
	require.False(t, job.Complete())
	require.False(t, job.TryTake())

	select {
	case <-job.Done():
	default:
		t.Fatal("completed job should be done")
	}
}
