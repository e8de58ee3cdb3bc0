package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQueue_RunsJobsInSubmissionOrder(t *testing.T) {
	q := NewQueue(16, nil)
	q.Start(context.Background())

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, q.Submit(context.Background(), func(context.Context) {
			got = append(got, i)
		}))
	}
	q.Stop()

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestQueue_DoReturnsJobError(t *testing.T) {
	q := NewQueue(1, nil)
	q.Start(context.Background())
	defer q.Stop()

	boom := errors.New("boom")
	err := q.Do(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, q.Do(context.Background(), func(context.Context) error { return nil }))
}

func TestQueue_PanicIsContained(t *testing.T) {
	q := NewQueue(1, nil)
	q.Start(context.Background())
	defer q.Stop()

	err := q.Do(context.Background(), func(context.Context) error { panic("bad job") })
	assert.ErrorIs(t, err, ErrJobPanicked)

	// The owning goroutine survives.
	assert.NoError(t, q.Do(context.Background(), func(context.Context) error { return nil }))
}

func TestQueue_SubmitAfterStop(t *testing.T) {
	q := NewQueue(1, nil)
	q.Start(context.Background())
	q.Stop()

	assert.ErrorIs(t, q.Submit(context.Background(), func(context.Context) {}), ErrStopped)
	assert.False(t, q.TrySubmit(func(context.Context) {}))
	assert.ErrorIs(t, q.Do(context.Background(), func(context.Context) error { return nil }), ErrStopped)
}

func TestQueue_SubmitHonorsContextWhenFull(t *testing.T) {
	q := NewQueue(1, nil)
	release := make(chan struct{})
	running := make(chan struct{})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Submit(context.Background(), func(context.Context) {
		close(running)
		<-release
	}))
	<-running
	require.NoError(t, q.Submit(context.Background(), func(context.Context) {}))
	assert.False(t, q.TrySubmit(func(context.Context) {}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Submit(ctx, func(context.Context) {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}

func TestQueue_StopWithoutStart(t *testing.T) {
	q := NewQueue(1, nil)
	done := make(chan struct{})
	go func() {
		q.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a queue that never started")
	}
}

func TestQueue_ConcurrentSubmittersAreSerialized(t *testing.T) {
	q := NewQueue(4, nil)
	q.Start(context.Background())

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = q.Do(context.Background(), func(context.Context) error {
					counter++
					return nil
				})
			}
		}()
	}
	wg.Wait()
	q.Stop()

	assert.Equal(t, 400, counter)
}
