package main

// World owns the entity collection for one match. It is not safe for
// concurrent use; the owning Game serializes all access.
type World struct {
	Bounds      Vec2
	Gravity     Vec2
	AirFriction float64

	entities map[string]*Entity
	order    []string // insertion order; all iteration goes through this for determinism

	now         float64 // sim clock, ms, advanced only by fixed steps
	accumulator float64 // leftover real time, seconds
	rng         *Rand
	timers      timerQueue
	grid        *SpatialGrid
	nextGen     uint64
	bots        map[string]*BotController

	// OnKill is invoked once when a hit reduces an entity to zero health.
	OnKill func(killerID string, victim *Entity)

	queryBuf []string // scratch for grid queries
}

// NewWorld creates an empty world with the given bounds and RNG seed.
func NewWorld(width, height float64, seed uint64) *World {
	return &World{
		Bounds:      V(width, height),
		AirFriction: 1.0,
		entities:    make(map[string]*Entity),
		rng:         NewRand(seed),
		grid:        NewSpatialGrid(width, height),
		bots:        make(map[string]*BotController),
	}
}

// Now returns the simulation clock in milliseconds.
func (w *World) Now() float64 {
	return w.now
}

// Rand returns the world's deterministic generator.
func (w *World) Rand() *Rand {
	return w.rng
}

// Add inserts an entity, stamping its generation and spawn time.
func (w *World) Add(e *Entity) *Entity {
	w.nextGen++
	e.Gen = w.nextGen
	e.SpawnedAt = w.now
	w.entities[e.ID] = e
	w.order = append(w.order, e.ID)
	return e
}

// Remove deletes an entity and cancels its pending deferred effects.
func (w *World) Remove(id string) {
	if _, ok := w.entities[id]; !ok {
		return
	}
	delete(w.entities, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.timers.cancelFor(id)
	delete(w.bots, id)
}

// Get returns an entity by id, or nil if it has been removed.
func (w *World) Get(id string) *Entity {
	return w.entities[id]
}

// Count returns the number of entities of a kind.
func (w *World) Count(kind EntityKind) int {
	n := 0
	for _, id := range w.order {
		if w.entities[id].Kind == kind {
			n++
		}
	}
	return n
}

// Entities returns a snapshot slice in insertion order. Callers may mutate
// the world while ranging over it.
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.entities[id])
	}
	return out
}

// LiveCompetitors counts entities that count toward the win condition.
func (w *World) LiveCompetitors() int {
	n := 0
	for _, id := range w.order {
		e := w.entities[id]
		if e.Competitor() && e.Alive() {
			n++
		}
	}
	return n
}

// QueryCircle returns live entities whose circles overlap the given circle,
// in insertion order. Uses the broad-phase grid populated this step.
func (w *World) QueryCircle(pos Vec2, radius float64) []*Entity {
	w.queryBuf = w.grid.QueryBuf(pos.X, pos.Y, radius, w.queryBuf[:0])
	var out []*Entity
	seen := make(map[string]bool, len(w.queryBuf))
	for _, id := range w.queryBuf {
		if seen[id] {
			continue
		}
		seen[id] = true
		e := w.entities[id]
		if e == nil || !e.Alive() {
			continue
		}
		if e.Pos.DistanceSq(pos) <= (radius+e.Radius)*(radius+e.Radius) {
			out = append(out, e)
		}
	}
	return out
}

// NearestMatch finds the closest live entity to pos within maxRange that
// satisfies pred. Returns nil when nothing qualifies.
func (w *World) NearestMatch(pos Vec2, maxRange float64, pred func(*Entity) bool) *Entity {
	best := maxRange * maxRange
	var found *Entity
	for _, id := range w.order {
		e := w.entities[id]
		if !e.Alive() || !pred(e) {
			continue
		}
		d2 := e.Pos.DistanceSq(pos)
		if d2 < best {
			best = d2
			found = e
		}
	}
	return found
}

// NearestEnemy finds the closest live player entity that is neither the
// owner nor the entity itself.
func (w *World) NearestEnemy(ownerID string, pos Vec2, maxRange float64) *Entity {
	return w.NearestMatch(pos, maxRange, func(e *Entity) bool {
		return e.Kind == KindPlayer && e.ID != ownerID
	})
}

func (w *World) reportKill(killerID string, victim *Entity) {
	if killer := w.entities[killerID]; killer != nil && killer.Arch != nil && killer.Arch.OnKill != nil {
		killer.Arch.OnKill(w, killer, victim.ID)
	}
	if w.OnKill != nil {
		w.OnKill(killerID, victim)
	}
}

// Clear removes all entities and cancels every pending deferred effect, so
// nothing from a stopped match can act on a fresh one.
func (w *World) Clear() {
	w.timers.cancelAll()
	w.entities = make(map[string]*Entity)
	w.order = w.order[:0]
	w.bots = make(map[string]*BotController)
	w.accumulator = 0
}
