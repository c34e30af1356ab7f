package main

// EntityKind discriminates the one simulated object type
type EntityKind int

const (
	KindPlayer EntityKind = iota
	KindProjectile
	KindPickup
	KindHazard
	KindAura
)

const (
	InvulnWindowMs = 250.0 // damage suppression window after a hit

	DefaultRestitution = 0.9
	DefaultFriction    = 0.96
	massPerArea        = 0.05 // mass derived from radius² unless overridden
)

// Entity is the sole simulated object kind: players, projectiles, pickups,
// hazards and auras are all circles discriminated by Kind.
type Entity struct {
	ID   string
	Kind EntityKind
	Name string
	Gen  uint64 // assigned on add, checked by deferred timers

	Pos    Vec2
	Vel    Vec2
	Acc    Vec2
	Facing Vec2 // last move/aim direction

	Radius      float64
	Mass        float64
	Restitution float64
	Friction    float64

	HP     float64
	MaxHP  float64
	Damage float64 // base contact/projectile damage
	Static bool    // excluded from integration and boundary bounce

	OwnerID     string  // spawner id on projectiles/hazards/auras
	SpawnedAt   float64 // sim ms
	Lifetime    float64 // ms; 0 = no expiry
	InvulnUntil float64 // sim ms

	Archetype string
	Arch      *Archetype // resolved once at spawn
	Primary   *Ability
	Special   *Ability
	Bot       bool

	Behavior string
	Hooks    *ProjectileBehavior // resolved once at creation
	State    any                 // behavior/archetype private state

	Statuses map[string]*StatusEffect

	LastHitBy string
	dead      bool // kill already reported this step
}

// NewEntity builds an entity with derived mass and sane defaults. Callers
// override fields before adding it to a world.
func NewEntity(kind EntityKind, pos Vec2, radius float64) *Entity {
	return &Entity{
		ID:          GenerateID(4),
		Kind:        kind,
		Pos:         pos,
		Facing:      V(1, 0),
		Radius:      radius,
		Mass:        radius * radius * massPerArea,
		Restitution: DefaultRestitution,
		Friction:    DefaultFriction,
		HP:          1,
		MaxHP:       1,
		Statuses:    make(map[string]*StatusEffect),
	}
}

// InvMass returns the inverse mass; static bodies absorb no correction.
func (e *Entity) InvMass() float64 {
	if e.Static || e.Mass <= 0 {
		return 0
	}
	return 1.0 / e.Mass
}

// Alive reports whether the entity still has health.
func (e *Entity) Alive() bool {
	return e.HP > 0 && !e.dead
}

// Expired reports whether the entity's lifetime has elapsed.
func (e *Entity) Expired(now float64) bool {
	return e.Lifetime > 0 && now-e.SpawnedAt > e.Lifetime
}

// Invulnerable reports whether damage is currently suppressed.
func (e *Entity) Invulnerable(now float64) bool {
	return now < e.InvulnUntil
}

// Heal restores health, clamped to MaxHP.
func (e *Entity) Heal(amount float64) {
	e.HP = Clamp(e.HP+amount, 0, e.MaxHP)
}

// Competitor reports whether the entity counts toward the win condition.
func (e *Entity) Competitor() bool {
	return e.Kind == KindPlayer
}

// DamageEntity applies damage honoring the invulnerability window and any
// shield pool. Returns true if the entity died from this hit. Dead or
// invulnerable targets are no-ops; nothing here ever panics mid-step.
func (w *World) DamageEntity(e *Entity, dmg float64, attackerID string) bool {
	if e == nil || dmg <= 0 || !e.Alive() {
		return false
	}
	if e.ID == attackerID || e.Invulnerable(w.now) {
		return false
	}

	dmg = e.absorbShield(dmg, w.now)
	e.InvulnUntil = w.now + InvulnWindowMs
	if dmg <= 0 {
		return false
	}

	e.HP = Clamp(e.HP-dmg, 0, e.MaxHP)
	e.LastHitBy = attackerID

	if e.Arch != nil && e.Arch.OnDamaged != nil {
		e.Arch.OnDamaged(w, e, attackerID, dmg)
	}

	if e.HP <= 0 {
		e.dead = true
		w.reportKill(attackerID, e)
		return true
	}
	return false
}
