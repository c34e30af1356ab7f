package main

// Deferred effects (mine arming, chain-lightning links, charge release) are
// scheduled against the simulation clock and carry the target's id and
// generation. A timer whose target is gone, or whose generation no longer
// matches, is a no-op: fire later, verify state, act or skip.

type timer struct {
	seq       uint64
	fireAt    float64 // sim ms
	targetID  string  // "" = world-level, no staleness check
	targetGen uint64
	fn        func(*World)
}

type timerQueue struct {
	pending []timer
	nextSeq uint64
}

// ScheduleAfter queues fn to run delayMs of simulation time from now. When
// targetID names an entity, the call is dropped if that entity is already
// gone, and the queued timer is skipped if the entity is removed (or its id
// reused) before it fires.
func (w *World) ScheduleAfter(delayMs float64, targetID string, fn func(*World)) {
	var gen uint64
	if targetID != "" {
		e := w.entities[targetID]
		if e == nil {
			return
		}
		gen = e.Gen
	}
	w.timers.nextSeq++
	w.timers.pending = append(w.timers.pending, timer{
		seq:       w.timers.nextSeq,
		fireAt:    w.now + delayMs,
		targetID:  targetID,
		targetGen: gen,
		fn:        fn,
	})
}

// PendingTimers returns the number of queued deferred effects.
func (w *World) PendingTimers() int {
	return len(w.timers.pending)
}

// runTimers fires every due timer once, in schedule order. Callbacks may
// schedule further timers; those run on a later step.
func (w *World) runTimers() {
	if len(w.timers.pending) == 0 {
		return
	}
	due := make([]timer, 0, 4)
	keep := w.timers.pending[:0]
	for _, t := range w.timers.pending {
		if t.fireAt <= w.now {
			due = append(due, t)
		} else {
			keep = append(keep, t)
		}
	}
	w.timers.pending = keep

	for _, t := range due {
		if t.targetID != "" {
			e := w.entities[t.targetID]
			if e == nil || e.Gen != t.targetGen {
				continue // stale: owner removed since scheduling
			}
		}
		t.fn(w)
	}
}

func (q *timerQueue) cancelFor(targetID string) {
	keep := q.pending[:0]
	for _, t := range q.pending {
		if t.targetID != targetID {
			keep = append(keep, t)
		}
	}
	q.pending = keep
}

func (q *timerQueue) cancelAll() {
	q.pending = q.pending[:0]
}
