package main

import "math"

const (
	BotAccel          = 480.0
	BotWanderDrift    = 1.0 // max radians/s the wander heading changes
	BotDodgeRange     = 300.0
	BotDodgeImpulse   = 140.0
	BotDodgeCooldown  = 300.0 // ms between dodge reactions
	BotStrafeFlipMin  = 1500.0
	BotStrafeFlipMax  = 3500.0
	BotPhraseChance   = 0.15
	BotLowHPThreshold = 0.25
)

// Bot phrase pools keyed by situation.
var botPhrases = map[string][]string{
	"notice": {
		"Target acquired!",
		"I see you!",
		"You're mine!",
		"Engaging!",
		"Found one!",
	},
	"low_hp": {
		"I'm hit bad...",
		"Not like this...",
		"Running on fumes!",
		"Need a med orb!",
	},
	"lost": {
		"Where'd they go?",
		"Lost visual...",
		"Come back here!",
		"Coward!",
	},
	"fire": {
		"Eat this!",
		"Take that!",
		"Die already!",
		"FIRE!",
	},
	"kill": {
		"Got 'em!",
		"Too easy!",
		"Another one down!",
		"Who's next?",
	},
}

// BotController drives one bot-flagged player entity. All randomness comes
// from the world generator so replays with the same seed match.
type BotController struct {
	strafeDir   float64
	strafeTimer float64 // ms until strafe flip
	dodgeCD     float64 // ms
	wanderAngle float64

	wasTracking bool
	saidLowHP   bool

	// PendingPhrase is set at most once per step and consumed by the owning
	// game loop for chat flavor.
	PendingPhrase string
}

// AttachBot registers a controller for the given entity id.
func (w *World) AttachBot(id string) *BotController {
	bc := &BotController{
		strafeDir:   1,
		strafeTimer: BotStrafeFlipMin + w.rng.Float64()*(BotStrafeFlipMax-BotStrafeFlipMin),
		wanderAngle: w.rng.Float64() * 2 * math.Pi,
	}
	if w.rng.Float64() < 0.5 {
		bc.strafeDir = -1
	}
	w.bots[id] = bc
	return bc
}

// DetachBot removes the controller without touching the entity.
func (w *World) DetachBot(id string) {
	delete(w.bots, id)
}

// Bot returns the controller for an entity id, or nil.
func (w *World) Bot(id string) *BotController {
	return w.bots[id]
}

func (w *World) pickPhrase(pool string, chance float64) string {
	if w.rng.Float64() > chance {
		return ""
	}
	phrases := botPhrases[pool]
	if len(phrases) == 0 {
		return ""
	}
	return phrases[w.rng.Intn(len(phrases))]
}

// runBots steers every bot entity for one fixed step. Iterates in insertion
// order so bot decisions are deterministic.
func (w *World) runBots() {
	for _, id := range append([]string(nil), w.order...) {
		e := w.entities[id]
		if e == nil || !e.Bot || !e.Alive() {
			continue
		}
		bc := w.bots[id]
		if bc == nil {
			continue
		}
		bc.step(w, e)
	}
}

func (bc *BotController) step(w *World, e *Entity) {
	bc.PendingPhrase = ""
	if bc.dodgeCD > 0 {
		bc.dodgeCD -= FixedStepMs
	}

	// Low HP phrase, once per life.
	if !bc.saidLowHP && e.HP/e.MaxHP < BotLowHPThreshold {
		bc.saidLowHP = true
		bc.PendingPhrase = w.pickPhrase("low_hp", 1)
	}

	tune := AITuning{OptimalRange: 300, EngageRange: 600, ProjSpeed: 600}
	if e.Arch != nil {
		tune = e.Arch.AI
	}

	target := bc.acquireTarget(w, e, tune)
	if target != nil {
		if !bc.wasTracking {
			bc.addPhrase(w.pickPhrase("notice", BotPhraseChance))
		}
		bc.wasTracking = true
		bc.engage(w, e, target, tune)
	} else {
		if bc.wasTracking {
			bc.addPhrase(w.pickPhrase("lost", BotPhraseChance))
		}
		bc.wasTracking = false
		bc.wander(w, e)
	}

	if tune.Dodges {
		bc.dodgeProjectiles(w, e)
	}
}

func (bc *BotController) addPhrase(p string) {
	if bc.PendingPhrase == "" {
		bc.PendingPhrase = p
	}
}

// acquireTarget picks the nearest enemy, or for finisher archetypes the enemy
// with the best mix of proximity and low health.
func (bc *BotController) acquireTarget(w *World, e *Entity, tune AITuning) *Entity {
	if !tune.Finisher {
		return w.NearestEnemy(e.ID, e.Pos, tune.EngageRange)
	}
	best := math.MaxFloat64
	var found *Entity
	for _, other := range w.Entities() {
		if other.Kind != KindPlayer || other.ID == e.ID || !other.Alive() {
			continue
		}
		dist := other.Pos.Distance(e.Pos)
		if dist > tune.EngageRange {
			continue
		}
		hpFrac := other.HP / other.MaxHP
		score := dist * (0.3 + 0.7*hpFrac)
		if score < best {
			best = score
			found = other
		}
	}
	return found
}

func (bc *BotController) engage(w *World, e *Entity, target *Entity, tune AITuning) {
	toTarget := target.Pos.Sub(e.Pos)
	dist := toTarget.Len()

	// Lead targeting: aim where the target will be when the shot arrives.
	aimAt := target.Pos
	if tune.ProjSpeed > 0 {
		aimAt = target.Pos.Add(target.Vel.Scale(dist / tune.ProjSpeed))
	}
	aim := aimAt.Sub(e.Pos).Normalize()
	if tune.AimJitter > 0 {
		aim = aim.Rotate((w.rng.Float64()*2 - 1) * tune.AimJitter)
	}
	e.Facing = aim

	// Hold optimal range while circle strafing. radial > 0 approaches,
	// radial < 0 retreats.
	radial := Clamp((dist-tune.OptimalRange)/(tune.OptimalRange*0.5), -1, 1)
	tangential := bc.strafeDir * tune.StrafeWeight * (1.0 - math.Abs(radial)*0.7)
	toward := toTarget.Normalize()
	move := toward.Scale(radial).Add(toward.Perp().Scale(tangential))
	if !move.IsZero() {
		e.Acc = e.Acc.Add(move.Normalize().Scale(BotAccel))
	}

	bc.strafeTimer -= FixedStepMs
	if bc.strafeTimer <= 0 {
		bc.strafeDir = -bc.strafeDir
		bc.strafeTimer = BotStrafeFlipMin + w.rng.Float64()*(BotStrafeFlipMax-BotStrafeFlipMin)
	}

	// Fire primary whenever it is off cooldown and the target is in range.
	if dist <= tune.EngageRange && e.Primary != nil && !e.Primary.OnCooldown(w.now) {
		bc.addPhrase(w.pickPhrase("fire", BotPhraseChance))
		e.Primary.Execute(w, e, aim)
	}
	if e.Special != nil && !e.Special.OnCooldown(w.now) && w.rng.Float64() < tune.SpecialChance {
		e.Special.Execute(w, e, aim)
	}
}

func (bc *BotController) wander(w *World, e *Entity) {
	bc.wanderAngle += (w.rng.Float64()*2 - 1) * BotWanderDrift * FixedStep

	// Steer back toward the arena middle when drifting near an edge.
	center := w.Bounds.Scale(0.5)
	if e.Pos.Distance(center) > math.Min(w.Bounds.X, w.Bounds.Y)*0.4 {
		bc.wanderAngle = LerpAngle(bc.wanderAngle, center.Sub(e.Pos).Angle(), 0.1)
	}

	e.Facing = FromAngle(bc.wanderAngle)
	e.Acc = e.Acc.Add(e.Facing.Scale(BotAccel * 0.6))
}

// dodgeProjectiles sidesteps hostile projectiles that are on a collision
// course. Mirrors the closest-approach test players use by eye.
func (bc *BotController) dodgeProjectiles(w *World, e *Entity) {
	if bc.dodgeCD > 0 {
		return
	}
	for _, p := range w.QueryCircle(e.Pos, BotDodgeRange) {
		if p.Kind != KindProjectile || p.OwnerID == e.ID {
			continue
		}
		rel := e.Pos.Sub(p.Pos)
		// Heading toward us?
		if rel.Dot(p.Vel) <= 0 {
			continue
		}
		speed2 := p.Vel.LenSq()
		if speed2 < 1 {
			continue
		}
		t := rel.Dot(p.Vel) / speed2
		closest := p.Pos.Add(p.Vel.Scale(t)).Sub(e.Pos)
		hitZone := e.Radius + p.Radius + 30
		if closest.LenSq() >= hitZone*hitZone {
			continue
		}
		perp := p.Vel.Perp().Normalize()
		// Dodge away from the projectile path.
		if rel.Cross(p.Vel) > 0 {
			perp = perp.Scale(-1)
		}
		e.Vel = e.Vel.Add(perp.Scale(BotDodgeImpulse))
		bc.dodgeCD = BotDodgeCooldown
		break
	}
}
