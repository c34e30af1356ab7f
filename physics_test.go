package main

import "testing"

func newTestWorld(seed uint64) *World {
	return NewWorld(1000, 1000, seed)
}

func addTestPlayer(w *World, pos Vec2) *Entity {
	e := NewEntity(KindPlayer, pos, 20)
	e.HP = 100
	e.MaxHP = 100
	return w.Add(e)
}

func TestAdvanceAccumulator(t *testing.T) {
	w := newTestWorld(1)
	if steps := w.Advance(2.5 * FixedStep); steps != 2 {
		t.Errorf("expected 2 steps, got %d", steps)
	}
	// The banked half step plus another half step completes one.
	if steps := w.Advance(0.5 * FixedStep); steps != 1 {
		t.Errorf("expected 1 step from banked remainder, got %d", steps)
	}
}

func TestAdvanceStepCap(t *testing.T) {
	w := newTestWorld(1)
	if steps := w.Advance(1.0); steps != maxStepsPerAdvance {
		t.Errorf("expected %d capped steps, got %d", maxStepsPerAdvance, steps)
	}
	// The backlog beyond the cap is dropped, not fast-forwarded later.
	if steps := w.Advance(0); steps != 0 {
		t.Errorf("expected dropped backlog, got %d extra steps", steps)
	}
}

func TestSimClockAdvances(t *testing.T) {
	w := newTestWorld(1)
	for i := 0; i < TickRate; i++ {
		w.Step()
	}
	if w.Now() < 999 || w.Now() > 1001 {
		t.Errorf("expected ~1000ms after %d steps, got %f", TickRate, w.Now())
	}
}

func TestHeadOnCollision(t *testing.T) {
	w := newTestWorld(2)
	a := addTestPlayer(w, V(400, 500))
	b := addTestPlayer(w, V(460, 500))
	a.Vel = V(300, 0)
	b.Vel = V(-300, 0)

	for i := 0; i < 12; i++ {
		w.Step()
	}

	if a.Vel.X >= 0 {
		t.Errorf("left body should rebound left, vel.X = %f", a.Vel.X)
	}
	if b.Vel.X <= 0 {
		t.Errorf("right body should rebound right, vel.X = %f", b.Vel.X)
	}
	if dist := a.Pos.Distance(b.Pos); dist < a.Radius+b.Radius-1 {
		t.Errorf("bodies still interpenetrate after rebound: dist %f", dist)
	}
	// Closing at 600 px/s is well over the momentum damage threshold.
	if a.HP >= 100 || b.HP >= 100 {
		t.Errorf("fast collision should deal momentum damage: %f / %f", a.HP, b.HP)
	}
}

func TestBoundaryBounce(t *testing.T) {
	w := newTestWorld(3)
	e := addTestPlayer(w, V(25, 500))
	e.Vel = V(-300, 0)

	for i := 0; i < 10; i++ {
		w.Step()
	}

	if e.Pos.X < e.Radius {
		t.Errorf("entity pushed outside arena: x = %f", e.Pos.X)
	}
	if e.Vel.X <= 0 {
		t.Errorf("expected reflected velocity, vel.X = %f", e.Vel.X)
	}
}

func TestProjectileHitDamagesAndDespawns(t *testing.T) {
	w := newTestWorld(4)
	attacker := w.SpawnPlayer("A", "striker", V(100, 500), false)
	victim := w.SpawnPlayer("V", "striker", V(300, 500), false)
	victim.Vel = Vec2{}

	p := w.SpawnProjectile(attacker, V(1, 0), ProjectileSpec{
		Speed: 600, Radius: 6, Damage: 10, LifetimeMs: 3000,
	})

	for i := 0; i < 60; i++ {
		w.Step()
		if w.Get(p.ID) == nil {
			break
		}
	}

	if victim.HP >= victim.MaxHP {
		t.Errorf("victim should have taken damage, HP %f", victim.HP)
	}
	if w.Get(p.ID) != nil {
		t.Error("projectile without pierce should despawn on hit")
	}
}

func TestProjectileOwnerImmune(t *testing.T) {
	w := newTestWorld(5)
	owner := w.SpawnPlayer("O", "striker", V(500, 500), false)
	p := w.SpawnProjectile(owner, V(1, 0), ProjectileSpec{
		Speed: 0, Radius: 6, Damage: 50, LifetimeMs: 3000,
	})
	// Park the projectile on top of its owner.
	p.Pos = owner.Pos
	p.Vel = Vec2{}

	w.Step()

	if owner.HP < owner.MaxHP {
		t.Errorf("owner damaged by own projectile: HP %f", owner.HP)
	}
	if w.Get(p.ID) == nil {
		t.Error("projectile should pass through its owner")
	}
}

func TestProjectileLeavesArena(t *testing.T) {
	w := newTestWorld(6)
	owner := w.SpawnPlayer("O", "striker", V(950, 500), false)
	p := w.SpawnProjectile(owner, V(1, 0), ProjectileSpec{
		Speed: 800, Radius: 6, Damage: 10, LifetimeMs: 10000,
	})

	for i := 0; i < 30; i++ {
		w.Step()
	}
	if w.Get(p.ID) != nil {
		t.Error("projectile should be removed outside the arena")
	}
}

func TestInvulnerabilityWindow(t *testing.T) {
	w := newTestWorld(7)
	e := addTestPlayer(w, V(500, 500))

	w.DamageEntity(e, 10, "attacker")
	if e.HP != 90 {
		t.Fatalf("first hit should land, HP %f", e.HP)
	}
	w.DamageEntity(e, 10, "attacker")
	if e.HP != 90 {
		t.Errorf("second hit inside invuln window should be suppressed, HP %f", e.HP)
	}

	// Window elapsed: damage lands again.
	w.now += InvulnWindowMs + 1
	w.DamageEntity(e, 10, "attacker")
	if e.HP != 80 {
		t.Errorf("hit after window should land, HP %f", e.HP)
	}
}

func TestSelfDamageIgnored(t *testing.T) {
	w := newTestWorld(8)
	e := addTestPlayer(w, V(500, 500))
	if w.DamageEntity(e, 10, e.ID) {
		t.Error("self damage should be a no-op")
	}
	if e.HP != 100 {
		t.Errorf("HP changed by self damage: %f", e.HP)
	}
}

func TestHealClampsToMax(t *testing.T) {
	e := NewEntity(KindPlayer, V(0, 0), 20)
	e.MaxHP = 100
	e.HP = 90
	e.Heal(50)
	if e.HP != 100 {
		t.Errorf("heal should clamp to MaxHP, got %f", e.HP)
	}
}

func TestKillReportedOnce(t *testing.T) {
	w := newTestWorld(9)
	kills := 0
	w.OnKill = func(killerID string, victim *Entity) {
		kills++
	}
	e := addTestPlayer(w, V(500, 500))
	e.HP = 5

	w.DamageEntity(e, 10, "attacker")
	w.now += InvulnWindowMs + 1
	w.DamageEntity(e, 10, "attacker") // already dead, must not re-report

	if kills != 1 {
		t.Errorf("expected exactly one kill report, got %d", kills)
	}
	w.Step()
	if w.Get(e.ID) != nil {
		t.Error("dead entity should be swept on the next step")
	}
}

func TestPickupHealsAndDespawns(t *testing.T) {
	w := newTestWorld(10)
	player := addTestPlayer(w, V(500, 500))
	player.HP = 50

	pickup := w.SpawnPickup()
	pickup.Pos = player.Pos.Add(V(player.Radius, 0))

	w.Step()

	if player.HP <= 50 {
		t.Errorf("pickup contact should heal, HP %f", player.HP)
	}
	if w.Get(pickup.ID) != nil {
		t.Error("consumed pickup should despawn")
	}
}

func TestHazardSpawnsAimedInward(t *testing.T) {
	w := newTestWorld(11)
	for i := 0; i < 20; i++ {
		h := w.SpawnHazard()
		if h.Vel.IsZero() {
			t.Fatal("hazard should spawn moving")
		}
		if h.Radius < HazardMinRadius || h.Radius > HazardMaxRadius {
			t.Fatalf("hazard radius out of range: %f", h.Radius)
		}
		if h.HP != h.Radius*2 {
			t.Fatalf("hazard HP should scale with radius")
		}
	}
	if w.Count(KindHazard) != 20 {
		t.Errorf("expected 20 hazards, got %d", w.Count(KindHazard))
	}
}

func TestDeterministicTrajectories(t *testing.T) {
	build := func() *World {
		w := NewWorld(800, 600, 12345)
		for i := 0; i < 4; i++ {
			e := addTestPlayer(w, V(float64(150+i*120), 300))
			e.Vel = V(float64(100-i*60), float64(i*40-60))
		}
		return w
	}
	w1 := build()
	w2 := build()

	for i := 0; i < 600; i++ {
		w1.Step()
		w2.Step()
	}

	e1 := w1.Entities()
	e2 := w2.Entities()
	if len(e1) != len(e2) {
		t.Fatalf("entity counts diverged: %d vs %d", len(e1), len(e2))
	}
	for i := range e1 {
		if e1[i].Pos != e2[i].Pos || e1[i].Vel != e2[i].Vel {
			t.Errorf("entity %d diverged: %v/%v vs %v/%v",
				i, e1[i].Pos, e1[i].Vel, e2[i].Pos, e2[i].Vel)
		}
	}
}

func TestPlayerSpeedRenormalizes(t *testing.T) {
	w := newTestWorld(13)
	e := addTestPlayer(w, V(500, 500))
	e.Vel = V(1200, 0)

	for i := 0; i < 300; i++ {
		w.Step()
	}
	speed := e.Vel.Len()
	if speed > PlayerTargetSpeed*1.2 {
		t.Errorf("player speed should decay toward target, got %f", speed)
	}
}
