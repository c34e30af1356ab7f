package main

// Projectile behavior keys. An archetype binds a subset of these to hook
// implementations; the projectile resolves its hooks once at creation.
const (
	BehaviorPierce = "pierce"
	BehaviorHoming = "homing"
	BehaviorChain  = "chain"
	BehaviorVortex = "vortex"
	BehaviorMine   = "mine"
	BehaviorWave   = "wave"
	BehaviorStatus = "status" // plain bolt that applies a status on hit
)

// ProjectileBehavior is the optional hook set the engine invokes for a
// projectile after the physics pass. OnCollision returns true to keep the
// projectile alive (piercing, transforming); false destroys it.
type ProjectileBehavior struct {
	OnCreation  func(w *World, p, owner *Entity)
	OnUpdate    func(w *World, p *Entity, dt float64)
	OnCollision func(w *World, p, target *Entity) bool
}

// ---------- piercing ----------

type pierceState struct {
	remaining int
	hit       map[string]bool
}

// PiercingBehavior passes through pierce additional targets after the first
// hit. Already-hit targets are ignored while still overlapping.
func PiercingBehavior(pierce int) *ProjectileBehavior {
	return &ProjectileBehavior{
		OnCreation: func(w *World, p, owner *Entity) {
			p.State = &pierceState{remaining: pierce, hit: make(map[string]bool)}
		},
		OnCollision: func(w *World, p, target *Entity) bool {
			st, ok := p.State.(*pierceState)
			if !ok {
				return false
			}
			if st.hit[target.ID] {
				return true
			}
			st.hit[target.ID] = true
			if st.remaining > 0 {
				st.remaining--
				return true
			}
			return false
		},
	}
}

// ---------- homing ----------

type homingState struct {
	targetID string
}

// HomingBehavior blends velocity toward the acquired target each step while
// preserving speed magnitude. Acquisition happens once a target comes within
// acquireRadius; a dead target is dropped and re-acquired.
func HomingBehavior(acquireRadius, turnStrength float64) *ProjectileBehavior {
	return &ProjectileBehavior{
		OnCreation: func(w *World, p, owner *Entity) {
			p.State = &homingState{}
		},
		OnUpdate: func(w *World, p *Entity, dt float64) {
			st, ok := p.State.(*homingState)
			if !ok {
				return
			}
			var target *Entity
			if st.targetID != "" {
				target = w.Get(st.targetID)
				if target == nil || !target.Alive() {
					st.targetID = ""
					target = nil
				}
			}
			if target == nil {
				target = w.NearestEnemy(p.OwnerID, p.Pos, acquireRadius)
				if target == nil {
					return
				}
				st.targetID = target.ID
			}
			speed := p.Vel.Len()
			if speed == 0 {
				return
			}
			desired := target.Pos.Sub(p.Pos).Normalize()
			dir := p.Vel.Normalize().Lerp(desired, Clamp(turnStrength*dt, 0, 1)).Normalize()
			if dir.IsZero() {
				dir = desired
			}
			p.Vel = dir.Scale(speed)
		},
	}
}

// ---------- chain lightning ----------

// ChainConfig tunes the recursive jump behavior.
type ChainConfig struct {
	Radius       float64
	MaxChains    int
	DamageFactor float64 // damage multiplier per link
	StunMs       float64
	LinkDelayMs  float64
}

// ChainBehavior jumps to nearby targets on hit, each link a scheduled
// deferred effect that no-ops if its target left the world in the meantime.
func ChainBehavior(cfg ChainConfig) *ProjectileBehavior {
	return &ProjectileBehavior{
		OnCollision: func(w *World, p, target *Entity) bool {
			chained := map[string]bool{target.ID: true}
			w.chainJump(p.OwnerID, target.Pos, p.Damage*cfg.DamageFactor, chained, 1, cfg)
			return false
		},
	}
}

func (w *World) chainJump(ownerID string, from Vec2, dmg float64, chained map[string]bool, depth int, cfg ChainConfig) {
	if depth > cfg.MaxChains || dmg < 1 {
		return
	}
	next := w.NearestMatch(from, cfg.Radius, func(e *Entity) bool {
		return e.Kind == KindPlayer && e.ID != ownerID && !chained[e.ID]
	})
	if next == nil {
		return
	}
	chained[next.ID] = true
	id := next.ID
	w.ScheduleAfter(cfg.LinkDelayMs, id, func(w *World) {
		e := w.Get(id)
		if e == nil {
			return
		}
		w.DamageEntity(e, dmg, ownerID)
		w.ApplyStatus(e, StatusEffect{Kind: StatusStun, DurationMs: cfg.StunMs, SourceID: ownerID})
		w.chainJump(ownerID, e.Pos, dmg*cfg.DamageFactor, chained, depth+1, cfg)
	})
}

// ---------- area-transforming vortex ----------

// VortexConfig tunes the travel-then-anchor behavior.
type VortexConfig struct {
	TravelMs    float64
	GrownRadius float64
	PullRadius  float64
	PullAccel   float64
	TickMs      float64
	TickDamage  float64
	TouchedMs   float64 // remaining life while an enemy is inside
	UntouchedMs float64 // remaining life while empty
}

type vortexState struct {
	anchored      bool
	touchedLeft   float64
	untouchedLeft float64
	lastTickAt    float64
}

// VortexBehavior travels a fixed time (or until its first hit), then anchors
// as a stationary aura that pulls enemies in and deals periodic tick damage.
// Two separate life pools drain depending on whether an enemy is inside.
func VortexBehavior(cfg VortexConfig) *ProjectileBehavior {
	return &ProjectileBehavior{
		OnCreation: func(w *World, p, owner *Entity) {
			p.State = &vortexState{touchedLeft: cfg.TouchedMs, untouchedLeft: cfg.UntouchedMs}
		},
		OnUpdate: func(w *World, p *Entity, dt float64) {
			st, ok := p.State.(*vortexState)
			if !ok {
				return
			}
			if !st.anchored {
				if w.now-p.SpawnedAt >= cfg.TravelMs {
					anchorVortex(p, st, cfg)
				}
				return
			}

			touched := false
			for _, e := range w.QueryCircle(p.Pos, cfg.PullRadius) {
				if e.Kind != KindPlayer || e.ID == p.OwnerID {
					continue
				}
				pull := p.Pos.Sub(e.Pos).Normalize().Scale(cfg.PullAccel * dt)
				e.Vel = e.Vel.Add(pull)
				if e.Pos.Distance(p.Pos) < p.Radius+e.Radius {
					touched = true
				}
			}

			if w.now-st.lastTickAt >= cfg.TickMs {
				st.lastTickAt = w.now
				for _, e := range w.QueryCircle(p.Pos, p.Radius) {
					if e.Kind == KindPlayer && e.ID != p.OwnerID {
						w.DamageEntity(e, cfg.TickDamage, p.OwnerID)
					}
				}
			}

			if touched {
				st.touchedLeft -= FixedStepMs
			} else {
				st.untouchedLeft -= FixedStepMs
			}
			if st.touchedLeft <= 0 || st.untouchedLeft <= 0 {
				w.Remove(p.ID)
			}
		},
		OnCollision: func(w *World, p, target *Entity) bool {
			st, ok := p.State.(*vortexState)
			if ok && !st.anchored {
				anchorVortex(p, st, cfg)
			}
			return true
		},
	}
}

func anchorVortex(p *Entity, st *vortexState, cfg VortexConfig) {
	st.anchored = true
	p.Kind = KindAura
	p.Static = true
	p.Vel = Vec2{}
	p.Damage = 0
	p.Radius = cfg.GrownRadius
	p.Lifetime = 0 // life is governed by the touched/untouched pools
}

// ---------- timed-arm mine ----------

// MineConfig tunes arming, detection and the explosion.
type MineConfig struct {
	ArmingMs      float64
	DetectRadius  float64
	ExplodeRadius float64
	Damage        float64
	Knockback     float64
	ChainDelayMs  float64 // delay before a caught mine sympathetically detonates
}

type mineState struct {
	armed bool
	cfg   MineConfig
}

// MineBehavior spawns moving and inert, arms after a delay, then detonates
// on proximity or contact. The blast falls off with distance and
// chain-detonates other armed mines caught in it.
func MineBehavior(cfg MineConfig) *ProjectileBehavior {
	return &ProjectileBehavior{
		OnCreation: func(w *World, p, owner *Entity) {
			p.State = &mineState{cfg: cfg}
			p.Damage = 0 // harmless until armed
			id := p.ID
			w.ScheduleAfter(cfg.ArmingMs, id, func(w *World) {
				m := w.Get(id)
				if m == nil {
					return
				}
				if st, ok := m.State.(*mineState); ok {
					st.armed = true
				}
				m.Static = true
				m.Vel = Vec2{}
			})
		},
		OnUpdate: func(w *World, p *Entity, dt float64) {
			st, ok := p.State.(*mineState)
			if !ok {
				return
			}
			if !st.armed {
				// Tossed mines skid to a stop while inert.
				p.Vel = p.Vel.Scale(0.95)
				return
			}
			trigger := w.NearestMatch(p.Pos, cfg.DetectRadius, func(e *Entity) bool {
				return (e.Kind == KindPlayer || e.Kind == KindHazard) && e.ID != p.OwnerID
			})
			if trigger != nil {
				w.detonateMine(p)
			}
		},
		OnCollision: func(w *World, p, target *Entity) bool {
			st, ok := p.State.(*mineState)
			if ok && st.armed {
				w.detonateMine(p)
				return false
			}
			return true // bumped while inert: stays put
		},
	}
}

// detonateMine damages everything in the blast radius with distance falloff
// and schedules sympathetic detonations of other armed mines.
func (w *World) detonateMine(p *Entity) {
	st, ok := p.State.(*mineState)
	if !ok || w.Get(p.ID) == nil {
		return
	}
	cfg := st.cfg
	for _, e := range w.QueryCircle(p.Pos, cfg.ExplodeRadius) {
		if e.ID == p.ID {
			continue
		}
		if e.Kind == KindProjectile {
			if other, ok := e.State.(*mineState); ok && other.armed {
				id := e.ID
				w.ScheduleAfter(cfg.ChainDelayMs, id, func(w *World) {
					if m := w.Get(id); m != nil {
						w.detonateMine(m)
					}
				})
			}
			continue
		}
		if e.Kind != KindPlayer && e.Kind != KindHazard {
			continue
		}
		if e.ID == p.OwnerID {
			continue
		}
		dist := e.Pos.Distance(p.Pos)
		falloff := 1.0 - 0.7*Clamp(dist/cfg.ExplodeRadius, 0, 1)
		w.DamageEntity(e, cfg.Damage*falloff, p.OwnerID)
		away := e.Pos.Sub(p.Pos).Normalize()
		e.Vel = e.Vel.Add(away.Scale(cfg.Knockback * falloff))
	}
	w.Remove(p.ID)
}

// ---------- growing energy wave ----------

type waveState struct {
	growPerSec float64
	maxRadius  float64
	hit        map[string]bool
}

// WaveBehavior grows as it travels and passes through everything it damages.
func WaveBehavior(growPerSec, maxRadius float64) *ProjectileBehavior {
	return &ProjectileBehavior{
		OnCreation: func(w *World, p, owner *Entity) {
			p.State = &waveState{growPerSec: growPerSec, maxRadius: maxRadius, hit: make(map[string]bool)}
		},
		OnUpdate: func(w *World, p *Entity, dt float64) {
			st, ok := p.State.(*waveState)
			if !ok {
				return
			}
			if p.Radius < st.maxRadius {
				p.Radius += st.growPerSec * dt
			}
		},
		OnCollision: func(w *World, p, target *Entity) bool {
			st, ok := p.State.(*waveState)
			if !ok {
				return false
			}
			st.hit[target.ID] = true
			return true
		},
	}
}

// ---------- status-on-hit bolt ----------

// StatusBoltBehavior destroys the projectile on hit after attaching a status
// effect to the target.
func StatusBoltBehavior(eff StatusEffect) *ProjectileBehavior {
	return &ProjectileBehavior{
		OnCollision: func(w *World, p, target *Entity) bool {
			if target.Kind == KindPlayer {
				applied := eff
				applied.SourceID = p.OwnerID
				w.ApplyStatus(target, applied)
			}
			return false
		},
	}
}
