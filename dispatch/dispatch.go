// Package dispatch runs enrichment jobs on a supervised worker pool. Intake
// hands lead ids to Enqueue and returns immediately; a bounded queue plus
// panic recovery keeps one bad lead from taking the pool down.
package dispatch

import (
	"context"
	"sync"

	"github.com/nementium/agentcore/fault"
	"github.com/nementium/agentcore/logging"
)

const (
	// DefaultQueueSize bounds how many leads may wait for a worker.
	DefaultQueueSize = 64
	// DefaultWorkers is the number of concurrent pipeline runs.
	DefaultWorkers = 2
)

// JobFunc processes one lead.
type JobFunc func(ctx context.Context, leadID int64)

// Options configures a Dispatcher.
type Options struct {
	QueueSize int
	Workers   int
	Logger    logging.Logger
}

// Dispatcher owns the queue and the workers.
type Dispatcher struct {
	run     JobFunc
	queue   chan int64
	workers int
	logger  logging.Logger

	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a stopped Dispatcher.
func New(run JobFunc, optFns ...func(o *Options)) *Dispatcher {
	opts := Options{
		QueueSize: DefaultQueueSize,
		Workers:   DefaultWorkers,
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	return &Dispatcher{
		run:     run,
		queue:   make(chan int64, opts.QueueSize),
		workers: opts.Workers,
		logger:  opts.Logger,
	}
}

// Start launches the workers. They stop when ctx is cancelled or, after
// Stop, when the queue drains.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.worker(ctx, i)
		}
		d.logger.Info("dispatcher started", "workers", d.workers, "queue_size", cap(d.queue))
	})
}

// Enqueue hands a lead to the pool without blocking. A full queue is an
// error; the caller decides whether to retry or surface it.
func (d *Dispatcher) Enqueue(leadID int64) error {
	select {
	case d.queue <- leadID:
		return nil
	default:
		return fault.New(fault.ToolExecution, "dispatch queue is full")
	}
}

// Stop closes the queue and waits for the workers to finish what is already
// queued. Safe to call more than once.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("dispatch worker stopping", "worker", id, "reason", ctx.Err().Error())
			return
		case leadID, ok := <-d.queue:
			if !ok {
				return
			}
			d.safeRun(ctx, leadID)
		}
	}
}

// safeRun isolates a job so a panicking pipeline run never kills the worker.
func (d *Dispatcher) safeRun(ctx context.Context, leadID int64) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("job panicked", "lead_id", leadID, "panic", r)
		}
	}()
	d.run(ctx, leadID)
}
