package playcore

import (
	"context"
	"sync"
)

// DispatchMode selects how submitted requests are scheduled.
type DispatchMode int

const (
	// DispatchSerialized runs at most one executor at a time, in FIFO
	// submission order. The default: it avoids concurrent refresh triggers
	// and lost-update races on the same storage key.
	DispatchSerialized DispatchMode = iota
	// DispatchParallel launches every request immediately with no ordering
	// guarantee. Opt-in for throughput.
	DispatchParallel
)

// dispatcher owns the FIFO queue. Entries leave the queue the moment their
// executor is launched, not when it finishes.
type dispatcher struct {
	mode    DispatchMode
	metrics *MetricsCollector

	mu      sync.Mutex
	queue   []*pendingRequest
	running bool
	closed  bool
}

type pendingRequest struct {
	ctx  context.Context
	run  func(context.Context) Result
	done chan Result
}

func newDispatcher(mode DispatchMode, metrics *MetricsCollector) *dispatcher {
	return &dispatcher{mode: mode, metrics: metrics}
}

// Submit schedules run and returns a channel that receives its single Result.
// The channel is buffered, so an abandoned caller never blocks the pipeline.
func (d *dispatcher) Submit(ctx context.Context, run func(context.Context) Result) <-chan Result {
	done := make(chan Result, 1)
	p := &pendingRequest{ctx: ctx, run: run, done: done}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		done <- Failure(NewError(KindCancelled, "client closed", 0, nil))
		return done
	}

	if d.mode == DispatchParallel {
		d.mu.Unlock()
		go func() { done <- run(ctx) }()
		return done
	}

	d.queue = append(d.queue, p)
	d.metrics.RecordQueueDepth(len(d.queue))
	if !d.running {
		d.running = true
		go d.loop()
	}
	d.mu.Unlock()
	return done
}

// loop drains the FIFO one executor at a time.
func (d *dispatcher) loop() {
	for {
		d.mu.Lock()
		if d.closed || len(d.queue) == 0 {
			d.running = false
			d.mu.Unlock()
			return
		}
		p := d.queue[0]
		d.queue = d.queue[1:]
		d.metrics.RecordQueueDepth(len(d.queue))
		d.mu.Unlock()

		p.done <- p.run(p.ctx)
	}
}

// Close rejects future submissions and releases every queued request with a
// CANCELLED result. The request currently in flight, if any, still completes.
func (d *dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	pending := d.queue
	d.queue = nil
	d.metrics.RecordQueueDepth(0)
	d.mu.Unlock()

	for _, p := range pending {
		p.done <- Failure(NewError(KindCancelled, "client closed", 0, nil))
	}
}
