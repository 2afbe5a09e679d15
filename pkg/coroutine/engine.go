// Package coroutine implements a cooperative scheduler that multiplexes many
// user-defined routines onto a single logical thread of control: at any
// instant exactly one routine (or the root caller) is actually running, and
// every other registered routine is parked waiting for its turn.
//
// The original design this is modeled on snapshots and restores slices of a
// shared native call stack by hand (setjmp/longjmp plus a memcpy of the
// stack region each routine has touched). That mechanism is host-specific
// and has no faithful analogue in Go. Instead, each routine here gets its
// own real goroutine with its own real stack, and "Store"/"Restore" become
// nothing more than a channel handoff: parking a goroutine on a channel
// receive is the store, and a subsequent send to that channel is the
// restore. The scheduling contract — yield, sched(target), and completion —
// is preserved exactly; only the stack-snapshot plumbing is gone, which
// matches this package's own license to treat that mechanism as an
// implementation detail rather than part of the external contract.
package coroutine

import "sync"

// Routine is a cooperatively scheduled unit of execution registered with an
// Engine. The zero value is not meaningful; obtain one from Engine.Go.
type Routine struct {
	name  string
	entry func()
	turn  chan struct{}

	caller *Routine
	callee *Routine
	prev   *Routine
	next   *Routine
}

// Name returns the routine's diagnostic name, set at creation time.
func (r *Routine) Name() string { return r.name }

// Engine owns the alive list of routines and tracks which one (if any) is
// presently executing. A single Engine must be driven from one logical
// thread of control at a time; it performs no internal synchronization
// beyond what the handoff protocol itself requires, matching the
// single-threaded contract of the design it implements.
type Engine struct {
	mu        sync.Mutex
	aliveHead *Routine
	current   *Routine
	rootTurn  chan struct{}
}

// New constructs an idle Engine with no registered routines.
func New() *Engine {
	return &Engine{rootTurn: make(chan struct{})}
}

// Go registers a new routine running entry and links it into the alive
// list. The routine does not begin executing until the engine schedules
// into it via Start, Sched, or a yield resolving to it.
func (e *Engine) Go(name string, entry func()) *Routine {
	r := &Routine{name: name, entry: entry, turn: make(chan struct{})}

	e.mu.Lock()
	e.prepend(r)
	e.mu.Unlock()

	go func() {
		<-r.turn
		r.entry()
		e.complete(r)
	}()

	return r
}

// Start begins scheduling: if any routine is alive, control transfers to
// the head of the alive list and Start blocks until control returns to the
// caller (every routine has yielded back to the root or completed). If no
// routine is alive, Start returns immediately.
func (e *Engine) Start() {
	e.Sched(nil)
}

// Yield voluntarily reschedules; it is Sched(nil). From the root it starts
// the head of the alive list. From within a routine it resumes that
// routine's caller if it has one, otherwise some other alive routine; if no
// other routine is alive it is a no-op and the current routine keeps
// running (control does not go back to the root until it completes).
func (e *Engine) Yield() {
	e.Sched(nil)
}

// Sched switches to a specific routine. A nil target resolves per Yield's
// policy when called from the root, or to the current routine's caller
// (falling back to any other alive routine, or a no-op) when called from
// within a routine. If target is already the current routine, Sched is a
// no-op. If target is blocked in the middle of a caller/callee chain, Sched
// unwinds to the innermost callee before switching.
func (e *Engine) Sched(target *Routine) {
	e.mu.Lock()
	cur := e.current

	if target == cur {
		e.mu.Unlock()
		return
	}

	if target == nil {
		switch {
		case cur == nil:
			if e.aliveHead == nil {
				e.mu.Unlock()
				return
			}
			target = e.aliveHead
		case cur.caller != nil:
			target = cur.caller
		default:
			if other := e.anyOtherAlive(cur); other != nil {
				target = other
			} else {
				target = cur
			}
		}
	}

	if target == cur {
		e.mu.Unlock()
		return
	}

	if target.callee != nil && target.callee == cur {
		target.callee = nil
		cur.caller = nil
	}
	for target.callee != nil {
		target = target.callee
	}

	target.caller = cur
	if cur != nil {
		cur.callee = target
	}
	e.current = target
	e.mu.Unlock()

	e.handoff(cur, target)
}

// handoff gives the turn to to, then parks the caller (from, or the root if
// from is nil) until it is given the turn again.
func (e *Engine) handoff(from, to *Routine) {
	to.turn <- struct{}{}
	if from == nil {
		<-e.rootTurn
	} else {
		<-from.turn
	}
}

// complete is invoked once, by a routine's own goroutine, immediately after
// its entry function returns. It unlinks the routine from the alive list
// and transfers control onward: to its caller if it has one, otherwise to
// any other alive routine, otherwise to the root.
func (e *Engine) complete(r *Routine) {
	e.mu.Lock()
	e.unlink(r)

	if r.caller != nil {
		r.caller.callee = nil
	}

	var next *Routine
	if r.caller != nil {
		next = r.caller
	} else if other := e.anyOtherAlive(r); other != nil {
		next = other
	}
	e.current = next
	e.mu.Unlock()

	if next != nil {
		next.turn <- struct{}{}
	} else {
		e.rootTurn <- struct{}{}
	}
}

// prepend links r in as the new head of the alive list. Must be called
// with e.mu held.
func (e *Engine) prepend(r *Routine) {
	r.next = e.aliveHead
	if e.aliveHead != nil {
		e.aliveHead.prev = r
	}
	r.prev = nil
	e.aliveHead = r
}

// unlink removes r from the alive list. Must be called with e.mu held.
func (e *Engine) unlink(r *Routine) {
	if r.prev != nil {
		r.prev.next = r.next
	} else {
		e.aliveHead = r.next
	}
	if r.next != nil {
		r.next.prev = r.prev
	}
	r.prev, r.next = nil, nil
}

// anyOtherAlive returns some alive routine other than exclude, or nil if
// none exists. Must be called with e.mu held.
func (e *Engine) anyOtherAlive(exclude *Routine) *Routine {
	for p := e.aliveHead; p != nil; p = p.next {
		if p != exclude {
			return p
		}
	}
	return nil
}

// Alive reports whether any routine is still registered in the alive list,
// useful for tests asserting that every routine eventually reaps itself.
func (e *Engine) Alive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.aliveHead != nil
}
