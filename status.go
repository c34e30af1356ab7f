package main

// Status effect kinds. The bag on each entity is open-ended; these are the
// kinds the built-in archetypes apply.
const (
	StatusFreeze = "freeze"
	StatusSlow   = "slow"
	StatusBurn   = "burn"
	StatusStun   = "stun"
	StatusDOT    = "dot"
	StatusShield = "shield"
)

const (
	// Fraction of the saved pre-effect velocity restored when a movement
	// impairing effect expires. A blend, not a snap, so entities don't
	// visually teleport back to full speed.
	statusRestoreBlend = 0.6
)

// StatusEffect is a timed modifier attached to an entity.
type StatusEffect struct {
	Kind           string
	StartedAt      float64 // sim ms
	DurationMs     float64
	Magnitude      float64 // absorb pool (shield), damage per tick (burn/dot), speed factor (slow)
	TickIntervalMs float64
	LastTickAt     float64
	SavedVel       Vec2 // pre-effect velocity for movement impairers
	SourceID       string
}

func (s *StatusEffect) expired(now float64) bool {
	return now-s.StartedAt >= s.DurationMs
}

func impairsMovement(kind string) bool {
	return kind == StatusStun || kind == StatusFreeze
}

// ApplyStatus attaches (or refreshes) an effect on an entity. Re-applying an
// effect of the same kind restarts its clock and keeps the stronger magnitude.
func (w *World) ApplyStatus(e *Entity, eff StatusEffect) {
	if e == nil || e.Statuses == nil {
		return
	}
	eff.StartedAt = w.now
	eff.LastTickAt = w.now
	if prev, ok := e.Statuses[eff.Kind]; ok {
		if prev.Magnitude > eff.Magnitude {
			eff.Magnitude = prev.Magnitude
		}
		eff.SavedVel = prev.SavedVel
	} else if impairsMovement(eff.Kind) {
		eff.SavedVel = e.Vel
	}
	e.Statuses[eff.Kind] = &eff
}

// HasStatus reports whether a non-expired effect of the kind is present.
func (e *Entity) HasStatus(kind string, now float64) bool {
	s, ok := e.Statuses[kind]
	return ok && !s.expired(now)
}

// Immobilized reports whether a stun or freeze is active.
func (e *Entity) Immobilized(now float64) bool {
	return e.HasStatus(StatusStun, now) || e.HasStatus(StatusFreeze, now)
}

// SlowFactor returns the combined speed multiplier from active slow effects.
func (e *Entity) SlowFactor(now float64) float64 {
	s, ok := e.Statuses[StatusSlow]
	if !ok || s.expired(now) {
		return 1.0
	}
	return Clamp(s.Magnitude, 0.05, 1.0)
}

// absorbShield routes damage through an active shield pool first and returns
// what remains.
func (e *Entity) absorbShield(dmg, now float64) float64 {
	s, ok := e.Statuses[StatusShield]
	if !ok || s.expired(now) || s.Magnitude <= 0 {
		return dmg
	}
	if dmg <= s.Magnitude {
		s.Magnitude -= dmg
		return 0
	}
	dmg -= s.Magnitude
	s.Magnitude = 0
	delete(e.Statuses, StatusShield)
	return dmg
}

// statusOrder fixes the per-step processing order; ranging over the map
// would make tick/invulnerability interactions run-dependent.
var statusOrder = []string{StatusStun, StatusFreeze, StatusSlow, StatusBurn, StatusDOT, StatusShield}

// updateStatuses runs once per fixed step for every entity: expires elapsed
// effects (blending saved velocity back for movement impairers) and applies
// ticking damage whose interval has elapsed.
func (w *World) updateStatuses(e *Entity) {
	for _, kind := range statusOrder {
		s, ok := e.Statuses[kind]
		if !ok {
			continue
		}
		if s.expired(w.now) {
			if impairsMovement(kind) {
				e.Vel = e.Vel.Lerp(s.SavedVel, statusRestoreBlend)
			}
			delete(e.Statuses, kind)
			continue
		}

		switch kind {
		case StatusStun, StatusFreeze:
			e.Vel = Vec2{}
			e.Acc = Vec2{}
		case StatusBurn, StatusDOT:
			if s.TickIntervalMs > 0 && w.now-s.LastTickAt >= s.TickIntervalMs {
				s.LastTickAt = w.now
				w.DamageEntity(e, s.Magnitude, s.SourceID)
			}
		}
	}
}
