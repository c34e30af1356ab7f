package main

const (
	HazardMinRadius = 28.0
	HazardMaxRadius = 55.0
	HazardMinSpeed  = 60.0
	HazardMaxSpeed  = 150.0
	HazardContactDmg = 10.0
	HazardIntervalMs = 12000.0
	MaxHazards       = 4
)

// SpawnHazard launches a drifting rock from a random wall aimed at the
// opposite half of the arena. Hazards rebound off walls and grind down
// anything they plow into.
func (w *World) SpawnHazard() *Entity {
	radius := HazardMinRadius + w.rng.Float64()*(HazardMaxRadius-HazardMinRadius)
	speed := HazardMinSpeed + w.rng.Float64()*(HazardMaxSpeed-HazardMinSpeed)

	var pos, target Vec2
	switch w.rng.Intn(4) {
	case 0: // left
		pos = V(radius, w.rng.Float64()*w.Bounds.Y)
		target = V(w.Bounds.X/2+w.rng.Float64()*w.Bounds.X/2, w.rng.Float64()*w.Bounds.Y)
	case 1: // right
		pos = V(w.Bounds.X-radius, w.rng.Float64()*w.Bounds.Y)
		target = V(w.rng.Float64()*w.Bounds.X/2, w.rng.Float64()*w.Bounds.Y)
	case 2: // top
		pos = V(w.rng.Float64()*w.Bounds.X, radius)
		target = V(w.rng.Float64()*w.Bounds.X, w.Bounds.Y/2+w.rng.Float64()*w.Bounds.Y/2)
	default: // bottom
		pos = V(w.rng.Float64()*w.Bounds.X, w.Bounds.Y-radius)
		target = V(w.rng.Float64()*w.Bounds.X, w.rng.Float64()*w.Bounds.Y/2)
	}

	e := NewEntity(KindHazard, pos, radius)
	e.Vel = target.Sub(pos).Normalize().Scale(speed)
	e.Damage = HazardContactDmg
	e.HP = radius * 2
	e.MaxHP = e.HP
	e.Restitution = 1.0
	e.Friction = 1.0
	return w.Add(e)
}
