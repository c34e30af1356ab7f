package main

import "testing"

func TestStunZeroesVelocity(t *testing.T) {
	w := newTestWorld(1)
	e := addTestPlayer(w, V(500, 500))
	e.Vel = V(200, 0)

	w.ApplyStatus(e, StatusEffect{Kind: StatusStun, DurationMs: 500})
	w.Step()

	if !e.Vel.IsZero() {
		t.Errorf("stunned entity should not move, vel %v", e.Vel)
	}
	if !e.Immobilized(w.Now()) {
		t.Error("stun should immobilize")
	}
}

func TestStunExpiryRestoresVelocityBlend(t *testing.T) {
	w := newTestWorld(2)
	e := addTestPlayer(w, V(500, 500))
	e.Vel = V(200, 0)

	w.ApplyStatus(e, StatusEffect{Kind: StatusStun, DurationMs: 100})
	for i := 0; i < 10; i++ {
		w.Step()
	}

	if e.Immobilized(w.Now()) {
		t.Fatal("stun should have expired")
	}
	if e.Vel.X <= 0 {
		t.Errorf("expiry should restore part of the saved velocity, vel.X %f", e.Vel.X)
	}
	if e.Vel.X > 200 {
		t.Errorf("restored velocity should be a blend, not a snap, vel.X %f", e.Vel.X)
	}
}

func TestStatusRefreshKeepsStrongerMagnitude(t *testing.T) {
	w := newTestWorld(3)
	e := addTestPlayer(w, V(500, 500))

	w.ApplyStatus(e, StatusEffect{Kind: StatusShield, DurationMs: 1000, Magnitude: 50})
	w.ApplyStatus(e, StatusEffect{Kind: StatusShield, DurationMs: 1000, Magnitude: 20})

	if e.Statuses[StatusShield].Magnitude != 50 {
		t.Errorf("refresh should keep the stronger magnitude, got %f",
			e.Statuses[StatusShield].Magnitude)
	}
}

func TestBurnTicksDamage(t *testing.T) {
	w := newTestWorld(4)
	e := addTestPlayer(w, V(500, 500))

	w.ApplyStatus(e, StatusEffect{
		Kind: StatusBurn, DurationMs: 2000, Magnitude: 3,
		TickIntervalMs: 300, SourceID: "attacker",
	})

	for i := 0; i < 70; i++ { // ~1.16s
		w.Step()
	}
	// Ticks every 300ms clear the 250ms invulnerability window, so each
	// one lands: 3 ticks in the elapsed span.
	if e.HP >= 100 {
		t.Error("burn should deal periodic damage")
	}
	if e.HP < 100-4*3 {
		t.Errorf("burn ticked too often, HP %f", e.HP)
	}
}

func TestSlowFactorClamped(t *testing.T) {
	w := newTestWorld(5)
	e := addTestPlayer(w, V(500, 500))

	w.ApplyStatus(e, StatusEffect{Kind: StatusSlow, DurationMs: 1000, Magnitude: 0.0})
	if f := e.SlowFactor(w.Now()); f != 0.05 {
		t.Errorf("slow factor should clamp at 0.05, got %f", f)
	}

	w.ApplyStatus(e, StatusEffect{Kind: StatusSlow, DurationMs: 1000, Magnitude: 3.0})
	if f := e.SlowFactor(w.Now()); f != 1.0 {
		t.Errorf("slow factor should clamp at 1.0, got %f", f)
	}
}

func TestShieldBreaksAfterAbsorb(t *testing.T) {
	w := newTestWorld(6)
	e := addTestPlayer(w, V(500, 500))

	w.ApplyStatus(e, StatusEffect{Kind: StatusShield, DurationMs: 5000, Magnitude: 25})

	w.DamageEntity(e, 40, "x")
	if e.HP != 85 {
		t.Errorf("overflow past the shield should land, HP %f", e.HP)
	}
	if e.HasStatus(StatusShield, w.Now()) {
		t.Error("drained shield should be removed")
	}
}

func TestStatusExpiresCleanly(t *testing.T) {
	w := newTestWorld(7)
	e := addTestPlayer(w, V(500, 500))

	w.ApplyStatus(e, StatusEffect{Kind: StatusSlow, DurationMs: 100, Magnitude: 0.5})
	for i := 0; i < 10; i++ {
		w.Step()
	}
	if e.HasStatus(StatusSlow, w.Now()) {
		t.Error("slow should expire")
	}
	if _, ok := e.Statuses[StatusSlow]; ok {
		t.Error("expired status should be deleted from the bag")
	}
}
