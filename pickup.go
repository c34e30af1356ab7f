package main

const (
	PickupRadius    = 12.0
	PickupHeal      = 20.0
	PickupTimeoutMs = 30000.0
	PickupIntervalMs = 8000.0
	MaxPickups      = 6
)

// SpawnPickup places a health orb at a random position away from the walls.
// The heal amount rides in the Damage field; contact resolution applies it.
func (w *World) SpawnPickup() *Entity {
	pos := V(
		50+w.rng.Float64()*(w.Bounds.X-100),
		50+w.rng.Float64()*(w.Bounds.Y-100),
	)
	e := NewEntity(KindPickup, pos, PickupRadius)
	e.Static = true
	e.Damage = PickupHeal
	e.Lifetime = PickupTimeoutMs
	e.HP = 1
	e.MaxHP = 1
	return w.Add(e)
}
