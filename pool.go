package tsched

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
	lg "github.com/Andrej220/go-utils/zlog"
)

// pool runs the worker loops and the dispatcher goroutine.
//
// Producers funnel tasks into submitCh (the bounded backpressure point).
// The dispatcher is the sole owner of the priority queue: it ingests from
// submitCh, keeps tasks ordered, and feeds workCh. Workers pull from
// workCh and run tasks to a terminal outcome, retrying in place: a
// retried attempt never re-enters the queue and never competes for
// priority against newly submitted tasks.
type pool struct {
	opts    Options
	metrics *Metrics

	submitCh chan *queuedTask
	workCh   chan *queuedTask

	closed chan struct{} // signals no more submissions
	stopCh chan struct{} // tells the dispatcher to drain and exit
	doneCh chan struct{} // closed when the dispatcher has exited

	wg            sync.WaitGroup
	stopOnce      sync.Once
	seq           atomic.Uint64
	activeWorkers atomic.Int32

	// OnTaskError, if set, receives the reason for every task that ends
	// in a terminal Failure or Timeout. OnInternalError receives
	// non-task failures such as a periodic trigger that could not
	// submit. Both may be nil.
	OnTaskError     func(error)
	OnInternalError func(error)
}

func newPool(opts Options, metrics *Metrics) *pool {
	opts.FillDefaults()
	p := &pool{
		opts:     opts,
		metrics:  metrics,
		submitCh: make(chan *queuedTask, opts.QueueCapacity),
		workCh:   make(chan *queuedTask),
		closed:   make(chan struct{}),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for i := 0; i < opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.dispatcher()
	return p
}

// enqueue wraps a task with its sequence number and handle and hands it
// to the dispatcher. Blocks when the submit channel is full; block=false
// turns that into ErrQueueFull.
func (p *pool) enqueue(task Task, prio Priority, cfg TaskConfig, block bool) (*TaskHandle, error) {
	if task.Work == nil {
		return nil, ErrNilWork
	}
	if !prio.Valid() {
		return nil, ErrInvalidPriority
	}
	select {
	case <-p.closed:
		return nil, ErrShuttingDown
	default:
	}

	qt := &queuedTask{
		task:       task,
		priority:   prio,
		sequence:   p.seq.Add(1),
		config:     cfg,
		handle:     newHandle(task.ID),
		enqueuedAt: time.Now(),
	}

	if block {
		select {
		case p.submitCh <- qt:
		case <-p.closed:
			return nil, ErrShuttingDown
		}
	} else {
		select {
		case p.submitCh <- qt:
		case <-p.closed:
			return nil, ErrShuttingDown
		default:
			return nil, ErrQueueFull
		}
	}

	p.metrics.incSubmitted()
	lg.FromContext(context.Background()).Info("task submitted",
		lg.String("task", task.Name),
		lg.String("priority", prio.String()),
	)
	return qt.handle, nil
}

// dispatcher is a dedicated goroutine that:
//   - owns the dispatcher queue exclusively (no lock needed on the heap)
//   - ingests submissions and keeps them in (priority, sequence) order
//   - feeds ready tasks to workers
//   - drains the queue on shutdown
//
// While blocked handing a task to a busy worker it keeps ingesting, and
// a newly arrived task that outranks the held one displaces it back into
// the queue. The held task has not started running, so this is a
// reorder among queued tasks, not a lifecycle regression.
func (p *pool) dispatcher() {
	q := p.newQueue()
	var held *queuedTask

	for {
		if held == nil {
			held, _ = q.Pop()
		}
		if held != nil {
			select {
			case p.workCh <- held:
				held = nil
			case qt := <-p.submitCh:
				q.Push(qt)
				// FIFO order is arrival order, so a newcomer can never
				// displace the held task there; re-inserting would also
				// put the held task at the ring's tail.
				if p.opts.Queue == QueuePriority && qt.outranks(held) {
					q.Push(held)
					held = nil
				}
			case <-p.stopCh:
				p.drain(q, held)
				return
			}
		} else {
			select {
			case qt := <-p.submitCh:
				q.Push(qt)
			case <-p.stopCh:
				p.drain(q, nil)
				return
			}
		}
	}
}

// drain flushes everything already accepted (the submit channel backlog,
// the held task, and the queue) into the workers, then closes workCh so
// the worker loops exit once in-flight tasks finish.
func (p *pool) drain(q schedQueue, held *queuedTask) {
	for {
		select {
		case qt := <-p.submitCh:
			q.Push(qt)
			continue
		default:
		}
		break
	}
	if held != nil {
		q.Push(held)
	}
	for {
		qt, ok := q.Pop()
		if !ok {
			break
		}
		p.workCh <- qt
	}
	close(p.workCh)
	close(p.doneCh)
}

// shutdown stops intake, drains queued and in-flight work, and waits for
// the dispatcher and all workers to exit. ctx bounds the wait only; the
// drain itself keeps going in the background after an early return.
func (p *pool) shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() {
		close(p.closed) // reject new tasks
		close(p.stopCh) // drain
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-p.doneCh
		p.wg.Wait()
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pool) worker() {
	defer p.wg.Done()
	for qt := range p.workCh {
		p.metrics.decQueued()
		p.activeWorkers.Add(1)
		p.runTask(qt)
		p.activeWorkers.Add(-1)
	}
}

// runTask drives one task to a terminal outcome: cancellation check,
// attempt loop with backoff, then metrics and handle publication.
func (p *pool) runTask(qt *queuedTask) {
	logger := lg.FromContext(context.Background()).With(
		lg.String("task", qt.task.Name),
		lg.String("priority", qt.priority.String()),
	)

	// a task cancelled while still queued never starts
	if qt.handle.cancelRequested() {
		p.finish(qt, cancelledOutcome)
		return
	}
	qt.handle.markRunning()
	logger.Info("worker processing task", lg.Int32("active_workers", p.activeWorkers.Load()))

	timeout := qt.config.Timeout
	if timeout <= 0 {
		timeout = p.opts.DefaultTimeout
	}
	pol := p.retryPolicy(qt.config)
	bo := boff.New(pol.Initial, pol.Max, time.Now().UnixNano())

	var out Outcome
	for attempt := 1; ; attempt++ {
		out = runCancellable(qt.task, timeout, qt.handle.cancelSignal())
		if !pol.ShouldRetry(out) || attempt == pol.Attempts {
			break
		}

		delay := bo.Next()
		logger.Warn("task attempt failed; backing off",
			lg.Int("attempt", attempt),
			lg.String("outcome", out.Kind.String()),
			lg.String("sleep", delay.String()),
		)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-qt.handle.cancelSignal():
			if !timer.Stop() {
				<-timer.C // drain if timer already fired
			}
			out = cancelledOutcome
		}
		if out.Kind == OutcomeCancelled {
			break
		}
	}
	p.finish(qt, out)
}

// finish publishes the terminal outcome to the handle and the counters.
func (p *pool) finish(qt *queuedTask, out Outcome) {
	qt.handle.complete(out)
	p.metrics.observeTerminal(out.Kind, time.Since(qt.enqueuedAt))

	logger := lg.FromContext(context.Background()).With(lg.String("task", qt.task.Name))
	switch out.Kind {
	case OutcomeSuccess:
		logger.Info("task completed")
	case OutcomeCancelled:
		logger.Info("task cancelled")
	default:
		logger.Error("task failed", lg.String("outcome", out.Kind.String()), lg.Any("error", out.Err))
		if p.OnTaskError != nil {
			err := out.Err
			if err == nil {
				err = ErrTaskTimeout
			}
			p.OnTaskError(err)
		}
	}
}

func (p *pool) reportInternalError(err error) {
	if p.OnInternalError != nil {
		p.OnInternalError(err)
	}
}
