package main

import "testing"

func TestAttachDetachBot(t *testing.T) {
	w := newTestWorld(1)
	e := w.SpawnPlayer("B", "striker", V(500, 500), true)

	if w.Bot(e.ID) == nil {
		t.Fatal("bot spawn should attach a controller")
	}
	w.DetachBot(e.ID)
	if w.Bot(e.ID) != nil {
		t.Error("DetachBot should remove the controller")
	}
}

func TestRemoveDropsBotController(t *testing.T) {
	w := newTestWorld(2)
	e := w.SpawnPlayer("B", "striker", V(500, 500), true)
	w.Remove(e.ID)
	if w.Bot(e.ID) != nil {
		t.Error("removing the entity should drop its controller")
	}
}

func TestBotFiresAtEnemy(t *testing.T) {
	w := newTestWorld(3)
	w.SpawnPlayer("Bot", "striker", V(400, 500), true)
	w.SpawnPlayer("E", "striker", V(600, 500), false)

	for i := 0; i < 30; i++ {
		w.Step()
		if w.Count(KindProjectile) > 0 {
			return
		}
	}
	t.Error("bot should fire at an enemy in engage range")
}

func TestBotWandersWithoutTarget(t *testing.T) {
	w := newTestWorld(4)
	e := w.SpawnPlayer("Bot", "striker", V(500, 500), true)

	for i := 0; i < 20; i++ {
		w.Step()
	}
	if e.Vel.IsZero() {
		t.Error("idle bot should wander")
	}
	if w.Count(KindProjectile) != 0 {
		t.Error("bot with no target should hold fire")
	}
}

func TestFinisherTargeting(t *testing.T) {
	w := newTestWorld(5)
	self := w.SpawnPlayer("S", "storm", V(500, 500), true)
	near := w.SpawnPlayer("N", "striker", V(700, 500), false)
	far := w.SpawnPlayer("F", "striker", V(800, 500), false)
	far.HP = far.MaxHP * 0.1

	bc := w.Bot(self.ID)
	got := bc.acquireTarget(w, self, self.Arch.AI)
	if got == nil || got.ID != far.ID {
		t.Errorf("finisher should prefer the wounded target, got %v", got)
	}
	_ = near
}

func TestBotDodgesIncomingProjectile(t *testing.T) {
	w := newTestWorld(6)
	bot := w.SpawnPlayer("Bot", "striker", V(400, 500), true)
	bc := w.Bot(bot.ID)

	p := NewEntity(KindProjectile, V(650, 500), 6)
	p.OwnerID = "hostile"
	p.Vel = V(-600, 0)
	p.Damage = 10
	p.Lifetime = 5000
	w.Add(p)

	for i := 0; i < 6; i++ {
		w.Step()
		if bc.dodgeCD > 0 {
			return
		}
	}
	t.Error("bot should react to a projectile on a collision course")
}

func TestBotLowHPPhraseOnce(t *testing.T) {
	w := newTestWorld(7)
	bot := w.SpawnPlayer("Bot", "striker", V(500, 500), true)
	bot.HP = bot.MaxHP * 0.1
	bc := w.Bot(bot.ID)

	w.Step()
	if bc.PendingPhrase == "" {
		t.Fatal("dropping low should always produce a phrase")
	}
	first := bc.PendingPhrase

	w.Step()
	if bc.PendingPhrase == first && bc.PendingPhrase != "" {
		t.Error("low HP phrase should not repeat every step")
	}
	if !bc.saidLowHP {
		t.Error("low HP phrase should be marked as said")
	}
}

func TestBotDeterminism(t *testing.T) {
	build := func() *World {
		w := NewWorld(800, 600, 99)
		w.SpawnPlayer("A", "striker", V(200, 300), true)
		w.SpawnPlayer("B", "guardian", V(600, 300), true)
		return w
	}
	w1 := build()
	w2 := build()

	for i := 0; i < 300; i++ {
		w1.Step()
		w2.Step()
	}

	e1 := w1.Entities()
	e2 := w2.Entities()
	if len(e1) != len(e2) {
		t.Fatalf("worlds diverged in entity count: %d vs %d", len(e1), len(e2))
	}
	for i := range e1 {
		if e1[i].Pos != e2[i].Pos {
			t.Errorf("entity %d position diverged: %v vs %v", i, e1[i].Pos, e2[i].Pos)
		}
	}
}
