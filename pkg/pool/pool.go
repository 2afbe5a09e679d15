// Package pool implements a dynamic worker pool that multiplexes short,
// opaque work items over a bounded number of worker goroutines, growing and
// shrinking the goroutine count in response to load.
//
// A single mutex guards every piece of shared state: the task queue, the
// live/idle worker counts, and the pool's lifecycle state. Workers never
// hold the mutex while a task is actually running. Waiting for new work is
// modeled with a broadcast channel that is closed and replaced on every
// state change a waiting worker might care about, which gives the same
// "wait with timeout, wake on signal" behavior as a condition variable
// without needing one.
package pool

import (
	"sync"
	"time"

	"github.com/guti2010/corepool/internal/logging"
)

// state is the pool's lifecycle state.
type state int

const (
	running state = iota
	stopping
	stopped
)

// Pool is a bounded, elastic pool of worker goroutines executing opaque
// nullary tasks. Construct one with New; the zero value is not usable.
type Pool struct {
	mu sync.Mutex

	queue []func()
	state state

	numThreads int
	numIdle    int

	lowWatermark  int
	highWatermark int
	maxQueueSize  int
	idleTimeout   time.Duration

	notifyCh chan struct{} // closed+replaced whenever a waiting worker should recheck
	stopped  chan struct{} // closed once the pool reaches the Stopped state
}

// New constructs a pool in the running state and immediately spawns low
// worker goroutines. low must be <= high; high is the ceiling on resident
// workers, maxQueueSize is the bound on pending tasks, and idleTimeout is
// how long an idle worker waits for work before it becomes a shrink
// candidate.
func New(low, high, maxQueueSize int, idleTimeout time.Duration) *Pool {
	if low < 0 {
		low = 0
	}
	if high < low {
		high = low
	}
	if maxQueueSize < 0 {
		maxQueueSize = 0
	}

	p := &Pool{
		state:         running,
		numThreads:    low,
		numIdle:       low,
		lowWatermark:  low,
		highWatermark: high,
		maxQueueSize:  maxQueueSize,
		idleTimeout:   idleTimeout,
		notifyCh:      make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	for i := 0; i < low; i++ {
		go p.worker()
	}
	return p
}

// signal wakes every worker currently waiting for news. Must be called with
// p.mu held.
func (p *Pool) signal() {
	close(p.notifyCh)
	p.notifyCh = make(chan struct{})
}

// Execute tries to schedule task. It returns true iff, at the moment of
// submission, the pool is running, the queue is not already at capacity,
// and either an idle worker exists or the pool can grow to service it.
// Execute never blocks on the task's execution; it only ever blocks briefly
// to acquire the internal mutex.
func (p *Pool) Execute(task func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != running {
		return false
	}
	if len(p.queue) >= p.maxQueueSize {
		return false
	}

	if p.numIdle > 0 {
		p.queue = append(p.queue, task)
		p.signal()
		return true
	}

	if p.numThreads < p.highWatermark {
		p.queue = append(p.queue, task)
		p.numThreads++
		p.numIdle++
		go p.worker()
		return true
	}

	return false
}

// Stop transitions the pool from running to stopping: no further
// submissions are accepted, but tasks already queued still run. If await is
// true, Stop blocks until every worker has exited (the pool has reached the
// Stopped state). Calling Stop more than once, or after the pool has
// already stopped, is a no-op beyond an optional wait.
func (p *Pool) Stop(await bool) {
	p.mu.Lock()
	if p.state == running {
		p.state = stopping
		if p.numThreads == 0 {
			p.state = stopped
			close(p.stopped)
		} else {
			p.signal()
		}
	}
	stoppedCh := p.stopped
	p.mu.Unlock()

	if await {
		<-stoppedCh
	}
}

// Close stops the pool and waits for every worker to exit. It is equivalent
// to Stop(true) and is safe to call more than once.
func (p *Pool) Close() { p.Stop(true) }

// Stats is a point-in-time snapshot of the pool's counters, useful for
// tests and operational introspection. It is not a metrics-export facility.
type Stats struct {
	NumThreads int
	NumIdle    int
	QueueLen   int
}

// Stats returns a snapshot of the pool's current counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{NumThreads: p.numThreads, NumIdle: p.numIdle, QueueLen: len(p.queue)}
}

// worker is the body every pool goroutine runs until it decides to shrink
// or the pool drains to completion.
func (p *Pool) worker() {
	for {
		task, exit := p.waitForTask()
		if exit {
			break
		}
		p.runTask(task)
	}
	p.retire()
}

// waitForTask blocks until a task is available, the pool is draining with
// an empty queue, or this worker should shrink after an idle timeout. On
// success it returns with numIdle already decremented on the caller's
// behalf.
func (p *Pool) waitForTask() (task func(), exit bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		if len(p.queue) > 0 {
			task = p.queue[0]
			p.queue[0] = nil
			p.queue = p.queue[1:]
			p.numIdle--
			return task, false
		}
		if p.state != running {
			return nil, true
		}

		ch := p.notifyCh
		p.mu.Unlock()
		timedOut := false
		select {
		case <-ch:
		case <-time.After(p.idleTimeout):
			timedOut = true
		}
		p.mu.Lock()

		if timedOut && len(p.queue) == 0 && p.state == running && p.numThreads > p.lowWatermark {
			return nil, true
		}
		// Otherwise loop around and recheck: either real work arrived, the
		// state changed, or this worker must keep waiting below watermark.
	}
}

// runTask executes task outside the pool's mutex. A panicking task is
// logged and then terminates the process: tasks are expected to contain
// their own error handling, and uncaught failures are programmer errors
// with no retry path.
func (p *Pool) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger.Fatal().Interface("panic", r).Msg("pool task panicked; terminating")
		}
		p.mu.Lock()
		p.numIdle++
		p.mu.Unlock()
	}()
	task()
}

// retire removes this worker from the live counts — it was still counted
// idle at the moment it chose to exit the loop, so both numIdle and
// numThreads decrement here — and, if it was the last one and the pool is
// draining, flips the pool to Stopped.
func (p *Pool) retire() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.numIdle--
	p.numThreads--
	if p.numThreads == 0 && p.state == stopping {
		p.state = stopped
		close(p.stopped)
	}
}
