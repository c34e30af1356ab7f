package main

// DefaultArchetype is used for unknown archetype keys.
const DefaultArchetype = "striker"

// archetypeOrder fixes registry iteration order for deterministic bot
// assignment and the key listing sent to clients.
var archetypeOrder = []string{"striker", "flame", "guardian", "frost", "storm", "sapper", "vanguard"}

// Striker: balanced all-rounder. Fast bolts plus a homing missile barrage.
const (
	StrikerMaxHP      = 100.0
	StrikerRadius     = 20.0
	StrikerContactDmg = 6.0

	StrikerBoltCooldown = 250.0
	StrikerBoltSpeed    = 800.0
	StrikerBoltDamage   = 12.0
	StrikerBoltLife     = 1500.0
	StrikerBoltRadius   = 4.0

	BarrageCooldown  = 9000.0
	BarrageCount     = 5
	BarrageSpread    = 0.5 // radians across the whole fan
	BarrageSpeed     = 500.0
	BarrageDamage    = 8.0
	BarrageLife      = 3000.0
	BarrageAcquire   = 400.0
	BarrageTurn      = 6.0
)

// Flame: kiter that stacks burn damage-over-time with a cone of bolts and an
// igniting nova around itself.
const (
	FlameMaxHP      = 90.0
	FlameRadius     = 19.0
	FlameContactDmg = 5.0

	FlameBoltCooldown = 450.0
	FlameBoltSpeed    = 720.0
	FlameBoltDamage   = 7.0
	FlameBoltLife     = 1300.0
	FlameBoltCount    = 3
	FlameBoltSpread   = 0.35

	FlameBurnDuration = 3000.0
	FlameBurnTick     = 500.0
	FlameBurnDamage   = 3.0

	FlameNovaCooldown = 10000.0
	FlameNovaRadius   = 180.0
	FlameNovaDamage   = 10.0
)

// Guardian: tanky brawler with a piercing lance and an absorb shield.
const (
	GuardianMaxHP      = 180.0
	GuardianRadius     = 26.0
	GuardianContactDmg = 8.0

	LanceCooldown = 700.0
	LanceSpeed    = 700.0
	LanceDamage   = 14.0
	LanceLife     = 1600.0
	LanceRadius   = 6.0
	LancePierce   = 2

	ShieldCooldown = 12000.0
	ShieldDuration = 3000.0
	ShieldAbsorb   = 50.0

	GuardianKillHeal = 15.0
)

// Frost: sniper that slows on hit and anchors a pulling vortex.
const (
	FrostMaxHP      = 100.0
	FrostRadius     = 20.0
	FrostContactDmg = 5.0

	ShardCooldown     = 350.0
	ShardSpeed        = 820.0
	ShardDamage       = 9.0
	ShardLife         = 1500.0
	ShardSlowFactor   = 0.55
	ShardSlowDuration = 2500.0

	FrostVortexCooldown = 11000.0
	FrostVortexSpeed    = 350.0
	FrostVortexDamage   = 10.0
	FrostVortexRadius   = 14.0
)

var frostVortexConfig = VortexConfig{
	TravelMs:    600,
	GrownRadius: 90,
	PullRadius:  220,
	PullAccel:   900,
	TickMs:      400,
	TickDamage:  4,
	TouchedMs:   2500,
	UntouchedMs: 6000,
}

// Storm: finisher that arcs lightning between targets.
const (
	StormMaxHP      = 85.0
	StormRadius     = 18.0
	StormContactDmg = 5.0

	ArcCooldown = 600.0
	ArcSpeed    = 850.0
	ArcDamage   = 11.0
	ArcLife     = 1400.0

	OverloadCooldown = 10000.0
	OverloadRadius   = 160.0
	OverloadDamage   = 14.0
	OverloadStunMs   = 700.0
)

var stormChainConfig = ChainConfig{
	Radius:       240,
	MaxChains:    3,
	DamageFactor: 0.7,
	StunMs:       400,
	LinkDelayMs:  120,
}

// Sapper: area denial with timed-arm mines.
const (
	SapperMaxHP      = 110.0
	SapperRadius     = 21.0
	SapperContactDmg = 6.0

	MineCooldown  = 800.0
	MineTossSpeed = 300.0
	MineRadius    = 9.0
	MaxLiveMines  = 6

	CarpetCooldown = 9000.0
	CarpetCount    = 3
	CarpetSpread   = 0.9
)

var sapperMineConfig = MineConfig{
	ArmingMs:      900,
	DetectRadius:  70,
	ExplodeRadius: 140,
	Damage:        26,
	Knockback:     260,
	ChainDelayMs:  120,
}

// Vanguard: contact brawler whose special charges up an energy wave. While
// charging the owner is rooted and briefly invulnerable; releasing below the
// desperation threshold grants bonus speed and growth.
const (
	VanguardMaxHP      = 140.0
	VanguardRadius     = 23.0
	VanguardContactDmg = 12.0

	JabCooldown = 500.0
	JabSpeed    = 520.0
	JabDamage   = 10.0
	JabLife     = 350.0
	JabRadius   = 10.0
	JabGrowth   = 60.0
	JabMaxR     = 40.0

	WaveCooldown   = 12000.0
	WaveChargeMs   = 900.0
	WaveSpeed      = 650.0
	WaveDamage     = 22.0
	WaveLife       = 1800.0
	WaveRadius    = 16.0
	WaveGrowth    = 80.0
	WaveMaxR      = 120.0
	WaveDashSpeed = 500.0

	DesperateHPFrac = 0.35
	DesperateSpeed  = 250.0 // added to wave speed
	DesperateRadius = 10.0  // added to the wave's starting radius
	DesperateDamage = 8.0
	DesperateSurge  = 1.3 // one-shot velocity multiplier when dropping low
)

// behaviorJab is a vanguard-local binding of the wave hooks with short-jab
// growth parameters.
const behaviorJab = "jab"

type vanguardState struct {
	surged bool
}

func init() {
	RegisterArchetype(strikerArchetype())
	RegisterArchetype(flameArchetype())
	RegisterArchetype(guardianArchetype())
	RegisterArchetype(frostArchetype())
	RegisterArchetype(stormArchetype())
	RegisterArchetype(sapperArchetype())
	RegisterArchetype(vanguardArchetype())
}

func strikerArchetype() *Archetype {
	return &Archetype{
		Name:   "striker",
		MaxHP:  StrikerMaxHP,
		Radius: StrikerRadius,
		Damage: StrikerContactDmg,
		Behaviors: map[string]*ProjectileBehavior{
			BehaviorPierce: PiercingBehavior(0),
			BehaviorHoming: HomingBehavior(BarrageAcquire, BarrageTurn),
		},
		NewPrimary: func() *Ability {
			return NewAbility(StrikerBoltCooldown, func(w *World, owner *Entity, dir Vec2) {
				w.SpawnProjectile(owner, dir, ProjectileSpec{
					Speed: StrikerBoltSpeed, Radius: StrikerBoltRadius,
					Damage: StrikerBoltDamage, LifetimeMs: StrikerBoltLife,
					Behavior: BehaviorPierce, Inherit: 0.3,
				})
			})
		},
		NewSpecial: func() *Ability {
			return NewAbility(BarrageCooldown, func(w *World, owner *Entity, dir Vec2) {
				for i := 0; i < BarrageCount; i++ {
					offset := BarrageSpread * (float64(i)/float64(BarrageCount-1) - 0.5)
					w.SpawnProjectile(owner, dir.Rotate(offset), ProjectileSpec{
						Speed: BarrageSpeed, Radius: 5,
						Damage: BarrageDamage, LifetimeMs: BarrageLife,
						Behavior: BehaviorHoming,
					})
				}
			})
		},
		AI: AITuning{
			OptimalRange: 350, EngageRange: 700, ProjSpeed: StrikerBoltSpeed,
			AimJitter: 0.06, StrafeWeight: 0.6, SpecialChance: 0.01, Dodges: true,
		},
	}
}

func flameArchetype() *Archetype {
	burn := StatusEffect{
		Kind: StatusBurn, DurationMs: FlameBurnDuration,
		Magnitude: FlameBurnDamage, TickIntervalMs: FlameBurnTick,
	}
	return &Archetype{
		Name:   "flame",
		MaxHP:  FlameMaxHP,
		Radius: FlameRadius,
		Damage: FlameContactDmg,
		Behaviors: map[string]*ProjectileBehavior{
			BehaviorStatus: StatusBoltBehavior(burn),
		},
		NewPrimary: func() *Ability {
			return NewAbility(FlameBoltCooldown, func(w *World, owner *Entity, dir Vec2) {
				for i := 0; i < FlameBoltCount; i++ {
					offset := FlameBoltSpread * (float64(i)/float64(FlameBoltCount-1) - 0.5)
					w.SpawnProjectile(owner, dir.Rotate(offset), ProjectileSpec{
						Speed: FlameBoltSpeed, Radius: 5,
						Damage: FlameBoltDamage, LifetimeMs: FlameBoltLife,
						Behavior: BehaviorStatus,
					})
				}
			})
		},
		NewSpecial: func() *Ability {
			return NewAbility(FlameNovaCooldown, func(w *World, owner *Entity, dir Vec2) {
				for _, e := range w.QueryCircle(owner.Pos, FlameNovaRadius) {
					if e.Kind != KindPlayer || e.ID == owner.ID {
						continue
					}
					w.DamageEntity(e, FlameNovaDamage, owner.ID)
					nova := burn
					nova.SourceID = owner.ID
					w.ApplyStatus(e, nova)
				}
			})
		},
		AI: AITuning{
			OptimalRange: 300, EngageRange: 550, ProjSpeed: FlameBoltSpeed,
			AimJitter: 0.08, StrafeWeight: 0.8, SpecialChance: 0.008, Dodges: true,
		},
	}
}

func guardianArchetype() *Archetype {
	return &Archetype{
		Name:   "guardian",
		MaxHP:  GuardianMaxHP,
		Radius: GuardianRadius,
		Damage: GuardianContactDmg,
		Behaviors: map[string]*ProjectileBehavior{
			BehaviorPierce: PiercingBehavior(LancePierce),
		},
		NewPrimary: func() *Ability {
			return NewAbility(LanceCooldown, func(w *World, owner *Entity, dir Vec2) {
				w.SpawnProjectile(owner, dir, ProjectileSpec{
					Speed: LanceSpeed, Radius: LanceRadius,
					Damage: LanceDamage, LifetimeMs: LanceLife,
					Behavior: BehaviorPierce,
				})
			})
		},
		NewSpecial: func() *Ability {
			return NewAbility(ShieldCooldown, func(w *World, owner *Entity, dir Vec2) {
				w.ApplyStatus(owner, StatusEffect{
					Kind: StatusShield, DurationMs: ShieldDuration,
					Magnitude: ShieldAbsorb, SourceID: owner.ID,
				})
			})
		},
		OnKill: func(w *World, e *Entity, victimID string) {
			e.Heal(GuardianKillHeal)
		},
		AI: AITuning{
			OptimalRange: 150, EngageRange: 500, ProjSpeed: LanceSpeed,
			AimJitter: 0.05, StrafeWeight: 0.3, SpecialChance: 0.012,
		},
	}
}

func frostArchetype() *Archetype {
	slow := StatusEffect{
		Kind: StatusSlow, DurationMs: ShardSlowDuration, Magnitude: ShardSlowFactor,
	}
	return &Archetype{
		Name:   "frost",
		MaxHP:  FrostMaxHP,
		Radius: FrostRadius,
		Damage: FrostContactDmg,
		Behaviors: map[string]*ProjectileBehavior{
			BehaviorStatus: StatusBoltBehavior(slow),
			BehaviorVortex: VortexBehavior(frostVortexConfig),
		},
		NewPrimary: func() *Ability {
			return NewAbility(ShardCooldown, func(w *World, owner *Entity, dir Vec2) {
				w.SpawnProjectile(owner, dir, ProjectileSpec{
					Speed: ShardSpeed, Radius: 4,
					Damage: ShardDamage, LifetimeMs: ShardLife,
					Behavior: BehaviorStatus,
				})
			})
		},
		NewSpecial: func() *Ability {
			return NewAbility(FrostVortexCooldown, func(w *World, owner *Entity, dir Vec2) {
				w.SpawnProjectile(owner, dir, ProjectileSpec{
					Speed: FrostVortexSpeed, Radius: FrostVortexRadius,
					Damage: FrostVortexDamage, LifetimeMs: 15000,
					Behavior: BehaviorVortex,
				})
			})
		},
		AI: AITuning{
			OptimalRange: 450, EngageRange: 800, ProjSpeed: ShardSpeed,
			AimJitter: 0.04, StrafeWeight: 0.4, SpecialChance: 0.009, Dodges: true,
		},
	}
}

func stormArchetype() *Archetype {
	return &Archetype{
		Name:   "storm",
		MaxHP:  StormMaxHP,
		Radius: StormRadius,
		Damage: StormContactDmg,
		Behaviors: map[string]*ProjectileBehavior{
			BehaviorChain: ChainBehavior(stormChainConfig),
		},
		NewPrimary: func() *Ability {
			return NewAbility(ArcCooldown, func(w *World, owner *Entity, dir Vec2) {
				w.SpawnProjectile(owner, dir, ProjectileSpec{
					Speed: ArcSpeed, Radius: 4,
					Damage: ArcDamage, LifetimeMs: ArcLife,
					Behavior: BehaviorChain,
				})
			})
		},
		NewSpecial: func() *Ability {
			return NewAbility(OverloadCooldown, func(w *World, owner *Entity, dir Vec2) {
				for _, e := range w.QueryCircle(owner.Pos, OverloadRadius) {
					if e.Kind != KindPlayer || e.ID == owner.ID {
						continue
					}
					w.DamageEntity(e, OverloadDamage, owner.ID)
					w.ApplyStatus(e, StatusEffect{
						Kind: StatusStun, DurationMs: OverloadStunMs, SourceID: owner.ID,
					})
				}
			})
		},
		AI: AITuning{
			OptimalRange: 380, EngageRange: 700, ProjSpeed: ArcSpeed,
			AimJitter: 0.06, StrafeWeight: 0.6, Finisher: true, SpecialChance: 0.01,
		},
	}
}

func sapperArchetype() *Archetype {
	dropMine := func(w *World, owner *Entity, dir Vec2) {
		w.SpawnProjectile(owner, dir, ProjectileSpec{
			Speed: MineTossSpeed, Radius: MineRadius,
			LifetimeMs: 30000, Behavior: BehaviorMine,
		})
	}
	liveMines := func(w *World, ownerID string) int {
		n := 0
		for _, e := range w.Entities() {
			if e.Kind == KindProjectile && e.OwnerID == ownerID && e.Behavior == BehaviorMine {
				n++
			}
		}
		return n
	}
	return &Archetype{
		Name:   "sapper",
		MaxHP:  SapperMaxHP,
		Radius: SapperRadius,
		Damage: SapperContactDmg,
		Behaviors: map[string]*ProjectileBehavior{
			BehaviorMine: MineBehavior(sapperMineConfig),
		},
		NewPrimary: func() *Ability {
			return NewAbility(MineCooldown, func(w *World, owner *Entity, dir Vec2) {
				if liveMines(w, owner.ID) >= MaxLiveMines {
					return
				}
				dropMine(w, owner, dir)
			})
		},
		NewSpecial: func() *Ability {
			return NewAbility(CarpetCooldown, func(w *World, owner *Entity, dir Vec2) {
				for i := 0; i < CarpetCount; i++ {
					offset := CarpetSpread * (float64(i)/float64(CarpetCount-1) - 0.5)
					dropMine(w, owner, dir.Rotate(offset))
				}
			})
		},
		AI: AITuning{
			OptimalRange: 380, EngageRange: 450, ProjSpeed: MineTossSpeed,
			AimJitter: 0.1, StrafeWeight: 0.7, SpecialChance: 0.006, Dodges: true,
		},
	}
}

func vanguardArchetype() *Archetype {
	return &Archetype{
		Name:   "vanguard",
		MaxHP:  VanguardMaxHP,
		Radius: VanguardRadius,
		Damage: VanguardContactDmg,
		Behaviors: map[string]*ProjectileBehavior{
			BehaviorWave: WaveBehavior(WaveGrowth, WaveMaxR),
			behaviorJab:  WaveBehavior(JabGrowth, JabMaxR),
		},
		NewPrimary: func() *Ability {
			return NewAbility(JabCooldown, func(w *World, owner *Entity, dir Vec2) {
				w.SpawnProjectile(owner, dir, ProjectileSpec{
					Speed: JabSpeed, Radius: JabRadius,
					Damage: JabDamage, LifetimeMs: JabLife,
					Behavior: behaviorJab,
				})
			})
		},
		NewSpecial: func() *Ability {
			return NewAbility(WaveCooldown, func(w *World, owner *Entity, dir Vec2) {
				// Root the owner and make it untargetable while the wave
				// charges, then release it with desperation bonuses.
				owner.Static = true
				owner.Vel = Vec2{}
				owner.InvulnUntil = w.now + WaveChargeMs
				id := owner.ID
				release := dir
				w.ScheduleAfter(WaveChargeMs, id, func(w *World) {
					o := w.Get(id)
					if o == nil {
						return
					}
					o.Static = false
					desperate := o.HP/o.MaxHP < DesperateHPFrac
					speed := WaveSpeed
					dmg := WaveDamage
					rad := WaveRadius
					if desperate {
						speed += DesperateSpeed
						dmg += DesperateDamage
						rad += DesperateRadius
					}
					w.SpawnProjectile(o, release, ProjectileSpec{
						Speed: speed, Radius: rad,
						Damage: dmg, LifetimeMs: WaveLife,
						Behavior: BehaviorWave,
					})
					o.Vel = release.Scale(WaveDashSpeed)
				})
			})
		},
		OnDamaged: func(w *World, e *Entity, attackerID string, dmg float64) {
			st, ok := e.State.(*vanguardState)
			if !ok {
				st = &vanguardState{}
				e.State = st
			}
			if !st.surged && e.HP/e.MaxHP < DesperateHPFrac {
				st.surged = true
				e.Vel = e.Vel.Scale(DesperateSurge)
			}
		},
		AI: AITuning{
			OptimalRange: 120, EngageRange: 350, ProjSpeed: JabSpeed,
			AimJitter: 0.07, StrafeWeight: 0.2, SpecialChance: 0.015,
		},
	}
}
