package tsched

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// gateTask blocks its worker until release is closed, so tests can pile
// up submissions behind a busy pool.
func gateTask(release <-chan struct{}) Task {
	return NewTask("gate", func(ctx context.Context) (any, error) {
		select {
		case <-release:
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}

func TestTaskSuccess(t *testing.T) {
	s := New(fastOpts(2))
	defer s.Stop()

	h, err := s.Submit(NewTask("ok", instantWork("hello")), Normal, noRetry)
	require.NoError(t, err)

	st := h.Wait()
	require.Equal(t, StatusCompleted, st.Kind)
	require.Equal(t, OutcomeSuccess, st.Outcome.Kind)
	require.Equal(t, "hello", st.Outcome.Payload)
}

func TestSubmitNilWork(t *testing.T) {
	s := New(fastOpts(1))
	defer s.Stop()

	_, err := s.Submit(Task{Name: "empty"}, Normal, noRetry)
	require.ErrorIs(t, err, ErrNilWork)

	_, err = s.Submit(NewTask("bad prio", instantWork(nil)), Priority(42), noRetry)
	require.ErrorIs(t, err, ErrInvalidPriority)
}

func TestRetryThenSuccess(t *testing.T) {
	s := New(fastOpts(1))
	defer s.Stop()

	var attempts int32
	task := NewTask("flaky", func(context.Context) (any, error) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return nil, errors.New("transient")
		}
		return "finally", nil
	})

	cfg := TaskConfig{MaxRetries: 3, RetryBaseDelay: 2 * time.Millisecond, RetryMaxDelay: 5 * time.Millisecond}
	h, err := s.Submit(task, Normal, cfg)
	require.NoError(t, err)

	st := h.Wait()
	require.Equal(t, OutcomeSuccess, st.Outcome.Kind)
	require.Equal(t, "finally", st.Outcome.Payload)
	require.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestRetryExhaustion(t *testing.T) {
	s := New(fastOpts(1))
	defer s.Stop()

	boom := errors.New("always")
	var attempts int32
	task := NewTask("doomed", func(context.Context) (any, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, boom
	})

	// max_retries = 2 means exactly 3 total attempts
	cfg := TaskConfig{MaxRetries: 2, RetryBaseDelay: 2 * time.Millisecond, RetryMaxDelay: 5 * time.Millisecond}
	h, err := s.Submit(task, Normal, cfg)
	require.NoError(t, err)

	st := h.Wait()
	require.Equal(t, StatusCompleted, st.Kind)
	require.Equal(t, OutcomeFailure, st.Outcome.Kind)
	require.ErrorIs(t, st.Outcome.Err, boom)
	require.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestTimeoutOutcome(t *testing.T) {
	s := New(fastOpts(1))
	defer s.Stop()

	cfg := TaskConfig{Timeout: 100 * time.Millisecond, MaxRetries: -1}
	start := time.Now()
	h, err := s.Submit(NewTask("slow", sleepWork(10*time.Second)), Normal, cfg)
	require.NoError(t, err)

	st := h.Wait()
	require.Equal(t, OutcomeTimeout, st.Outcome.Kind)
	require.Less(t, time.Since(start), 2*time.Second, "timeout must not wait out the task")
}

func TestCancelWhileRunning(t *testing.T) {
	s := New(fastOpts(1))
	defer s.Stop()

	start := time.Now()
	h, err := s.Submit(NewTask("slow", sleepWork(10*time.Second)), Normal, noRetry)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	h.Cancel()

	st := h.Wait()
	require.Equal(t, StatusCancelled, st.Kind)
	require.Less(t, time.Since(start), 2*time.Second, "cancellation must not wait out the task")
}

func TestCancelBeforeDequeue(t *testing.T) {
	s := New(fastOpts(1))
	defer s.Stop()

	release := make(chan struct{})
	_, err := s.Submit(gateTask(release), Critical, noRetry)
	require.NoError(t, err)
	waitUntil(t, time.Second, func() bool { return s.ActiveWorkers() == 1 })

	var ran atomic.Bool
	victim := NewTask("victim", func(context.Context) (any, error) {
		ran.Store(true)
		return nil, nil
	})
	h, err := s.Submit(victim, Normal, noRetry)
	require.NoError(t, err)

	h.Cancel()
	close(release)

	st := h.Wait()
	require.Equal(t, StatusCancelled, st.Kind)
	require.False(t, ran.Load(), "a task cancelled while queued must never start")
}

func TestCancelDuringBackoff(t *testing.T) {
	s := New(fastOpts(1))
	defer s.Stop()

	var attempts int32
	step := make(chan struct{})
	task := NewTask("backoff", func(context.Context) (any, error) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			close(step)
		}
		return nil, errors.New("boom")
	})

	cfg := TaskConfig{MaxRetries: 4, RetryBaseDelay: 100 * time.Millisecond, RetryMaxDelay: 100 * time.Millisecond}
	h, err := s.Submit(task, Normal, cfg)
	require.NoError(t, err)

	// wait until the first attempt happened, then cancel during backoff
	select {
	case <-step:
	case <-time.After(time.Second):
		t.Fatal("first attempt did not happen in time")
	}
	h.Cancel()

	st := h.Wait()
	require.Equal(t, StatusCancelled, st.Kind)
	require.EqualValues(t, 1, atomic.LoadInt32(&attempts), "no attempts after cancel")
}

func TestPriorityExecutionOrder(t *testing.T) {
	s := New(fastOpts(1))
	defer s.Stop()

	release := make(chan struct{})
	gh, err := s.Submit(gateTask(release), Critical, noRetry)
	require.NoError(t, err)
	waitUntil(t, time.Second, func() bool { return s.ActiveWorkers() == 1 })

	var mu sync.Mutex
	var order []string
	record := func(name string) Task {
		return NewTask(name, func(context.Context) (any, error) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil, nil
		})
	}

	var handles []*TaskHandle
	for _, sub := range []struct {
		name string
		prio Priority
	}{
		{"low-1", Low},
		{"crit-1", Critical},
		{"norm-1", Normal},
		{"crit-2", Critical},
		{"high-1", High},
	} {
		h, err := s.Submit(record(sub.name), sub.prio, noRetry)
		require.NoError(t, err)
		handles = append(handles, h)
	}
	waitUntil(t, time.Second, func() bool { return s.QueueDepth() == 5 })

	close(release)
	gh.Wait()
	for _, h := range handles {
		h.Wait()
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"crit-1", "crit-2", "high-1", "norm-1", "low-1"}, order)
}

func TestFifoWithinPriority(t *testing.T) {
	s := New(fastOpts(1))
	defer s.Stop()

	release := make(chan struct{})
	gh, err := s.Submit(gateTask(release), Critical, noRetry)
	require.NoError(t, err)
	waitUntil(t, time.Second, func() bool { return s.ActiveWorkers() == 1 })

	var mu sync.Mutex
	var order []string
	var handles []*TaskHandle
	for _, name := range []string{"a", "b", "c"} {
		name := name
		h, err := s.Submit(NewTask(name, func(context.Context) (any, error) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil, nil
		}), Normal, noRetry)
		require.NoError(t, err)
		handles = append(handles, h)
	}
	waitUntil(t, time.Second, func() bool { return s.QueueDepth() == 3 })

	close(release)
	gh.Wait()
	for _, h := range handles {
		h.Wait()
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestFifoQueueStrategyIgnoresPriority(t *testing.T) {
	opts := fastOpts(1)
	opts.Queue = QueueFifo
	s := New(opts)
	defer s.Stop()

	release := make(chan struct{})
	gh, err := s.Submit(gateTask(release), Critical, noRetry)
	require.NoError(t, err)
	waitUntil(t, time.Second, func() bool { return s.ActiveWorkers() == 1 })

	var mu sync.Mutex
	var order []string
	var handles []*TaskHandle
	for _, sub := range []struct {
		name string
		prio Priority
	}{
		{"first-low", Low},
		{"second-critical", Critical},
		{"third-normal", Normal},
	} {
		sub := sub
		h, err := s.Submit(NewTask(sub.name, func(context.Context) (any, error) {
			mu.Lock()
			order = append(order, sub.name)
			mu.Unlock()
			return nil, nil
		}), sub.prio, noRetry)
		require.NoError(t, err)
		handles = append(handles, h)
	}
	waitUntil(t, time.Second, func() bool { return s.QueueDepth() == 3 })

	close(release)
	gh.Wait()
	for _, h := range handles {
		h.Wait()
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"first-low", "second-critical", "third-normal"}, order)
}

func TestShutdownDrainsAcceptedWork(t *testing.T) {
	s := New(fastOpts(2))

	var handles []*TaskHandle
	for i := 0; i < 5; i++ {
		h, err := s.Submit(NewTask("drain", sleepWork(100*time.Millisecond)), Normal, noRetry)
		require.NoError(t, err)
		handles = append(handles, h)
	}

	require.NoError(t, s.Shutdown(context.Background()))

	for _, h := range handles {
		require.True(t, h.Status().Terminal(), "every accepted task must reach a terminal state before shutdown returns")
	}
	require.EqualValues(t, 0, s.ActiveWorkers())
}

func TestSubmitAfterShutdown(t *testing.T) {
	s := New(fastOpts(1))
	require.NoError(t, s.Shutdown(context.Background()))

	_, err := s.Submit(NewTask("late", instantWork(nil)), Normal, noRetry)
	require.ErrorIs(t, err, ErrShuttingDown)

	_, err = s.TrySubmit(NewTask("late", instantWork(nil)), Normal, noRetry)
	require.ErrorIs(t, err, ErrShuttingDown)
}

func TestShutdownTimeout(t *testing.T) {
	s := New(fastOpts(1))

	started := make(chan struct{})
	h, err := s.Submit(NewTask("busy", func(ctx context.Context) (any, error) {
		close(started)
		time.Sleep(300 * time.Millisecond)
		return nil, nil
	}), Normal, noRetry)
	require.NoError(t, err)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, s.Shutdown(ctx), context.DeadlineExceeded)

	// the drain keeps going in the background; a second call completes it
	require.NoError(t, s.Shutdown(context.Background()))
	require.True(t, h.Status().Terminal())
}

func TestPanicIsolation(t *testing.T) {
	s := New(fastOpts(1))
	defer s.Stop()

	ph, err := s.Submit(NewTask("panicky", func(context.Context) (any, error) {
		panic("boom")
	}), Normal, noRetry)
	require.NoError(t, err)

	nh, err := s.Submit(NewTask("normal", instantWork("fine")), Normal, noRetry)
	require.NoError(t, err)

	require.Equal(t, OutcomeFailure, ph.Wait().Outcome.Kind)
	require.Equal(t, OutcomeSuccess, nh.Wait().Outcome.Kind, "worker must survive a panicking task")
}

func TestOnTaskErrorCallback(t *testing.T) {
	s := New(fastOpts(1))
	defer s.Stop()

	errCh := make(chan error, 1)
	s.OnTaskError(func(err error) { errCh <- err })

	boom := errors.New("boom")
	h, err := s.Submit(NewTask("bad", failWork(boom)), Normal, noRetry)
	require.NoError(t, err)
	h.Wait()

	select {
	case got := <-errCh:
		require.ErrorIs(t, got, boom)
	case <-time.After(time.Second):
		t.Fatal("OnTaskError was not invoked")
	}
}
