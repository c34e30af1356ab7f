package main

import "math"

// AbilityEffect performs an ability's work. dir is always unit length.
type AbilityEffect func(w *World, owner *Entity, dir Vec2)

// Ability is a cooldown-gated action. Execute is a no-op while on cooldown,
// which lets the AI controller treat "can I act now" generically across
// arbitrarily complex effects.
type Ability struct {
	CooldownMs float64
	LastUsedAt float64
	Effect     AbilityEffect
}

func NewAbility(cooldownMs float64, effect AbilityEffect) *Ability {
	return &Ability{
		CooldownMs: cooldownMs,
		LastUsedAt: math.Inf(-1),
		Effect:     effect,
	}
}

// OnCooldown reports whether the ability is still recharging.
func (a *Ability) OnCooldown(now float64) bool {
	return now-a.LastUsedAt < a.CooldownMs
}

// Execute runs the effect and stamps the cooldown. Returns false when gated
// by cooldown, a stun, or a nil ability.
func (a *Ability) Execute(w *World, owner *Entity, dir Vec2) bool {
	if a == nil || a.Effect == nil || owner == nil || !owner.Alive() {
		return false
	}
	if a.OnCooldown(w.now) || owner.Immobilized(w.now) {
		return false
	}
	dir = dir.Normalize()
	if dir.IsZero() {
		dir = owner.Facing
	}
	if dir.IsZero() {
		dir = V(1, 0)
	}
	owner.Facing = dir
	a.LastUsedAt = w.now
	a.Effect(w, owner, dir)
	return true
}

// AITuning shapes how the shared bot controller plays an archetype.
type AITuning struct {
	OptimalRange  float64 // preferred combat distance
	EngageRange   float64 // fire when within
	ProjSpeed     float64 // projectile speed assumed for lead prediction
	AimJitter     float64 // max random aim error, radians
	StrafeWeight  float64 // 0 = pure approach/retreat, 1 = full circle strafe
	Finisher      bool    // score targets by missing health instead of pure distance
	SpecialChance float64 // per-step chance to use the special when ready and in range
	Dodges        bool    // sidestep incoming projectiles
}

// Archetype binds a character's stats, abilities, projectile behaviors,
// lifecycle hooks and AI tuning. Resolved from the registry once at spawn;
// after that all dispatch is through the bound values.
type Archetype struct {
	Name   string
	MaxHP  float64
	Radius float64
	Damage float64 // contact damage

	NewPrimary func() *Ability
	NewSpecial func() *Ability // nil = no special

	Behaviors map[string]*ProjectileBehavior

	OnUpdate  func(w *World, e *Entity)
	OnDamaged func(w *World, e *Entity, attackerID string, dmg float64)
	OnKill    func(w *World, e *Entity, victimID string)

	AI AITuning
}

var archetypes = make(map[string]*Archetype)

// RegisterArchetype adds an archetype to the registry.
func RegisterArchetype(a *Archetype) {
	archetypes[a.Name] = a
}

// ArchetypeByKey resolves a key, falling back to the default archetype for
// unknown keys rather than failing the spawn.
func ArchetypeByKey(key string) *Archetype {
	if a, ok := archetypes[key]; ok {
		return a
	}
	return archetypes[DefaultArchetype]
}

// ArchetypeKeys returns the registered keys in deterministic order.
func ArchetypeKeys() []string {
	keys := make([]string, 0, len(archetypes))
	for _, name := range archetypeOrder {
		if _, ok := archetypes[name]; ok {
			keys = append(keys, name)
		}
	}
	return keys
}

// SpawnPlayer creates a player entity bound to an archetype and adds it to
// the world.
func (w *World) SpawnPlayer(name, key string, pos Vec2, bot bool) *Entity {
	arch := ArchetypeByKey(key)
	e := NewEntity(KindPlayer, pos, arch.Radius)
	e.Name = name
	e.Archetype = arch.Name
	e.Arch = arch
	e.MaxHP = arch.MaxHP
	e.HP = arch.MaxHP
	e.Damage = arch.Damage
	e.Bot = bot
	e.Primary = arch.NewPrimary()
	if arch.NewSpecial != nil {
		e.Special = arch.NewSpecial()
	}
	w.Add(e)
	if bot {
		w.AttachBot(e.ID)
	}
	return e
}

// ProjectileSpec parameterizes SpawnProjectile.
type ProjectileSpec struct {
	Speed      float64
	Radius     float64
	Damage     float64
	LifetimeMs float64
	Behavior   string
	State      any
	Inherit    float64 // fraction of owner velocity inherited
}

// SpawnProjectile creates a projectile just outside the owner's circle,
// resolves its behavior hooks from the owner's archetype, and fires the
// creation hook.
func (w *World) SpawnProjectile(owner *Entity, dir Vec2, spec ProjectileSpec) *Entity {
	dir = dir.Normalize()
	if dir.IsZero() {
		dir = owner.Facing
	}
	if dir.IsZero() {
		dir = V(1, 0)
	}
	p := NewEntity(KindProjectile, owner.Pos.Add(dir.Scale(owner.Radius+spec.Radius+4)), spec.Radius)
	p.Vel = dir.Scale(spec.Speed).Add(owner.Vel.Scale(spec.Inherit))
	p.Facing = dir
	p.OwnerID = owner.ID
	p.Damage = spec.Damage
	p.Lifetime = spec.LifetimeMs
	p.Behavior = spec.Behavior
	p.State = spec.State
	if owner.Arch != nil {
		p.Hooks = owner.Arch.Behaviors[spec.Behavior]
	}
	w.Add(p)
	if p.Hooks != nil && p.Hooks.OnCreation != nil {
		p.Hooks.OnCreation(w, p, owner)
	}
	return p
}
