package main

import "math"

const (
	TickRate    = 60 // physics ticks per second
	FixedStep   = 1.0 / TickRate
	FixedStepMs = 1000.0 / TickRate

	// Advance never runs more than this many steps per call, so a stalled
	// caller can't trigger a spiral of death.
	maxStepsPerAdvance = 6
)

// Collision/response tuning. Matches are tuned to stay lively: restitution
// slightly amplifies energy and player speed renormalizes toward a constant,
// so entities keep bouncing instead of settling.
const (
	posCorrectPercent = 0.8
	posCorrectSlop    = 0.01

	restitutionBias  = 1.06 // > 1: impulses amplify rather than dampen
	collisionPerturb = 9.0  // random post-impulse velocity jitter
	boundaryNudge    = 14.0 // perpendicular kick on wall bounce

	chainKnockRadius   = 70.0
	chainKnockFactor   = 0.35
	chainKnockMinSpeed = 180.0

	bodyDamageScale      = 0.05 // body-body damage is a fraction of raw damage
	bodyDamageCap        = 15.0
	bodyDamageMinClosing = 140.0

	PlayerTargetSpeed = 240.0
	speedRenormRate   = 0.08
	stopThreshold     = 2.0
)

// Advance runs whole fixed steps covering elapsed seconds of real time and
// banks the remainder, making trajectories independent of the caller's frame
// rate. Returns the number of steps executed.
func (w *World) Advance(elapsed float64) int {
	w.accumulator += elapsed
	steps := 0
	for w.accumulator >= FixedStep && steps < maxStepsPerAdvance {
		w.Step()
		w.accumulator -= FixedStep
		steps++
	}
	if w.accumulator >= FixedStep {
		// Fell badly behind; drop the backlog rather than fast-forwarding.
		w.accumulator = 0
	}
	return steps
}

// Step advances the simulation by exactly one fixed timestep.
func (w *World) Step() {
	w.now += FixedStepMs

	// 1. Expiry sweep: drop dead and timed-out entities.
	for _, e := range w.Entities() {
		if e.dead || e.HP <= 0 || e.Expired(w.now) {
			w.Remove(e.ID)
		}
	}

	// Bots act like external input: they push acceleration and fire intents
	// before anything moves.
	w.runBots()

	snapshot := w.Entities()

	// 2. Integration.
	for _, e := range snapshot {
		if e.Static {
			continue
		}
		switch e.Kind {
		case KindProjectile:
			// Position-only update: predictable straight-line or
			// behavior-scripted motion, no force accumulation.
			e.Pos = e.Pos.Add(e.Vel.Scale(FixedStep))
		default:
			if e.Immobilized(w.now) {
				e.Acc = Vec2{}
				continue
			}
			e.Vel = e.Vel.Add(e.Acc.Add(w.Gravity).Scale(FixedStep))
			e.Pos = e.Pos.Add(e.Vel.Scale(FixedStep))
			e.Acc = Vec2{}
		}
	}

	// 3. Boundary handling.
	for _, e := range snapshot {
		w.handleBounds(e)
	}

	// 4+5. Collision detection and resolution.
	w.resolveCollisions()

	// 6. Friction / speed renormalization.
	for _, e := range snapshot {
		w.applyFriction(e)
	}

	// Projectile behavior hooks react to the resolved physics state.
	for _, e := range snapshot {
		if w.Get(e.ID) == nil || !e.Alive() {
			continue
		}
		if e.Hooks != nil && e.Hooks.OnUpdate != nil {
			e.Hooks.OnUpdate(w, e, FixedStep)
		}
		if e.Arch != nil && e.Arch.OnUpdate != nil {
			e.Arch.OnUpdate(w, e)
		}
	}

	// Status effects tick and expire.
	for _, e := range snapshot {
		if w.Get(e.ID) == nil || !e.Alive() {
			continue
		}
		w.updateStatuses(e)
	}

	// Deferred effects scheduled for this point in sim time.
	w.runTimers()
}

// handleBounds reflects movers off the four world edges and destroys
// projectiles that leave the arena.
func (w *World) handleBounds(e *Entity) {
	if e.Kind == KindProjectile {
		if e.Pos.X < -e.Radius || e.Pos.X > w.Bounds.X+e.Radius ||
			e.Pos.Y < -e.Radius || e.Pos.Y > w.Bounds.Y+e.Radius {
			w.Remove(e.ID)
		}
		return
	}
	if e.Static || e.Kind == KindAura {
		return
	}

	// Reflect with restitution plus a perpendicular nudge, so entities
	// don't settle into degenerate back-and-forth loops along a wall.
	r := e.Radius
	if e.Pos.X < r {
		e.Pos.X = r
		e.Vel.X = -e.Vel.X * e.Restitution
		e.Vel.Y += w.rng.Range(-1, 1) * boundaryNudge
	} else if e.Pos.X > w.Bounds.X-r {
		e.Pos.X = w.Bounds.X - r
		e.Vel.X = -e.Vel.X * e.Restitution
		e.Vel.Y += w.rng.Range(-1, 1) * boundaryNudge
	}
	if e.Pos.Y < r {
		e.Pos.Y = r
		e.Vel.Y = -e.Vel.Y * e.Restitution
		e.Vel.X += w.rng.Range(-1, 1) * boundaryNudge
	} else if e.Pos.Y > w.Bounds.Y-r {
		e.Pos.Y = w.Bounds.Y - r
		e.Vel.Y = -e.Vel.Y * e.Restitution
		e.Vel.X += w.rng.Range(-1, 1) * boundaryNudge
	}
}

// resolveCollisions rebuilds the broad-phase grid and resolves every
// overlapping circle pair once, in insertion order.
func (w *World) resolveCollisions() {
	w.grid.Clear()
	index := make(map[string]int, len(w.order))
	for i, id := range w.order {
		index[id] = i
		e := w.entities[id]
		if e.Kind == KindAura {
			continue // auras act through area queries, not contact
		}
		w.grid.InsertCircle(e.Pos.X, e.Pos.Y, e.Radius, id)
	}

	for _, aid := range append([]string(nil), w.order...) {
		a := w.entities[aid]
		if a == nil || !a.Alive() || a.Kind == KindAura {
			continue
		}
		w.queryBuf = w.grid.QueryBuf(a.Pos.X, a.Pos.Y, a.Radius+SpatialCellSize, w.queryBuf[:0])
		for _, bid := range w.queryBuf {
			if index[bid] <= index[aid] {
				continue // each pair once
			}
			b := w.entities[bid]
			if b == nil || !b.Alive() || !a.Alive() {
				continue // partner removed earlier this pass
			}
			if a.Kind == KindProjectile && b.Kind == KindProjectile {
				continue // projectiles never collide with each other
			}
			dist := a.Pos.Distance(b.Pos)
			if dist >= a.Radius+b.Radius {
				continue
			}
			normal := b.Pos.Sub(a.Pos).Normalize()
			if normal.IsZero() {
				normal = FromAngle(w.rng.Range(0, 2*math.Pi))
			}
			w.resolvePair(a, b, normal, a.Radius+b.Radius-dist)
		}
	}
}

func (w *World) resolvePair(a, b *Entity, normal Vec2, penetration float64) {
	// Pickups only react to players: contact heals and consumes the orb.
	if a.Kind == KindPickup || b.Kind == KindPickup {
		pickup, other := a, b
		if b.Kind == KindPickup {
			pickup, other = b, a
		}
		if other.Kind == KindPlayer {
			other.Heal(pickup.Damage)
			w.Remove(pickup.ID)
		}
		return
	}

	if a.Kind == KindProjectile || b.Kind == KindProjectile {
		proj, target := a, b
		if b.Kind == KindProjectile {
			proj, target = b, a
		}
		w.resolveProjectileHit(proj, target)
		return
	}

	w.resolveBodyContact(a, b, normal, penetration)
}

// resolveProjectileHit applies projectile damage and runs the behavior's
// collision hook. The owner is never a valid target; the projectile passes
// through without any interaction.
func (w *World) resolveProjectileHit(proj, target *Entity) {
	if target.ID == proj.OwnerID {
		return
	}
	w.DamageEntity(target, proj.Damage, proj.OwnerID)

	keep := false
	if proj.Hooks != nil && proj.Hooks.OnCollision != nil {
		keep = proj.Hooks.OnCollision(w, proj, target)
	}
	if !keep {
		w.Remove(proj.ID)
	}
}

// resolveBodyContact separates two solid bodies, applies momentum damage and
// an energy-amplified elastic impulse, then shoves through to a nearby third
// entity (chain knockback).
func (w *World) resolveBodyContact(a, b *Entity, normal Vec2, penetration float64) {
	invMassSum := a.InvMass() + b.InvMass()
	if invMassSum == 0 {
		return
	}

	// Positional correction distributed by inverse mass; static bodies
	// absorb none of it.
	if penetration > posCorrectSlop {
		corr := (penetration - posCorrectSlop) / invMassSum * posCorrectPercent
		a.Pos = a.Pos.Sub(normal.Scale(corr * a.InvMass()))
		b.Pos = b.Pos.Add(normal.Scale(corr * b.InvMass()))
	}

	relVel := b.Vel.Sub(a.Vel)
	velAlongNormal := relVel.Dot(normal)

	// Momentum damage: a fraction of full damage so ramming stays viable
	// without ending matches instantly. Gated per side by the
	// invulnerability window inside DamageEntity.
	closing := -velAlongNormal
	if closing > bodyDamageMinClosing {
		base := (closing - bodyDamageMinClosing) * bodyDamageScale
		w.DamageEntity(a, Clamp(base+b.Damage*0.25, 0, bodyDamageCap), b.ID)
		w.DamageEntity(b, Clamp(base+a.Damage*0.25, 0, bodyDamageCap), a.ID)
	}

	if velAlongNormal < 0 {
		e := math.Min(a.Restitution, b.Restitution) * restitutionBias
		j := -(1 + e) * velAlongNormal / invMassSum
		impulse := normal.Scale(j)
		a.Vel = a.Vel.Sub(impulse.Scale(a.InvMass()))
		b.Vel = b.Vel.Add(impulse.Scale(b.InvMass()))

		// Small random perturbation for variety.
		if !a.Static {
			a.Vel = a.Vel.Add(V(w.rng.Range(-1, 1), w.rng.Range(-1, 1)).Scale(collisionPerturb))
		}
		if !b.Static {
			b.Vel = b.Vel.Add(V(w.rng.Range(-1, 1), w.rng.Range(-1, 1)).Scale(collisionPerturb))
		}
	}

	w.chainKnockback(a, b)
}

// chainKnockback shoves a third entity standing close behind the slower body
// of a fast collision, simulating a push-through.
func (w *World) chainKnockback(a, b *Entity) {
	fast, slow := a, b
	if b.Vel.LenSq() > a.Vel.LenSq() {
		fast, slow = b, a
	}
	speed := fast.Vel.Len()
	if speed < chainKnockMinSpeed {
		return
	}
	third := w.NearestMatch(slow.Pos, chainKnockRadius, func(e *Entity) bool {
		if e.ID == a.ID || e.ID == b.ID || e.Static {
			return false
		}
		return e.Kind == KindPlayer || e.Kind == KindHazard
	})
	if third == nil {
		return
	}
	dir := third.Pos.Sub(slow.Pos).Normalize()
	if dir.IsZero() {
		dir = fast.Vel.Normalize()
	}
	third.Vel = third.Vel.Add(dir.Scale(speed * chainKnockFactor))
}

// applyFriction implements the constant-motion feel: player speed is pulled
// toward a fixed target, everything else decays by its friction coefficient.
func (w *World) applyFriction(e *Entity) {
	if e.Static || e.Kind == KindProjectile || e.Kind == KindAura {
		return
	}
	if w.AirFriction != 1.0 {
		e.Vel = e.Vel.Scale(w.AirFriction)
	}
	speed := e.Vel.Len()
	if e.Kind == KindPlayer {
		if speed == 0 || e.Immobilized(w.now) {
			return
		}
		target := PlayerTargetSpeed * e.SlowFactor(w.now)
		next := speed + (target-speed)*speedRenormRate
		e.Vel = e.Vel.Scale(next / speed)
		return
	}
	e.Vel = e.Vel.Scale(e.Friction)
	if e.Vel.Len() < stopThreshold {
		e.Vel = Vec2{}
	}
}
