package main

import (
	"log"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	BroadcastRate  = 30 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

const (
	maxProjectilesPerSession = 500
	InputAccel               = 900.0
	RespawnDelayMs           = 3000.0
)

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

type pendingRespawn struct {
	at        float64 // sim ms
	name      string
	archetype string
	id        string
	bot       bool
}

// Game holds the state for one game session. It serializes all access to its
// World behind the mutex; the World itself is single threaded.
type Game struct {
	mu      sync.RWMutex
	world   *World
	config  MatchConfig
	clients map[string]Broadcaster // entityID -> client
	inputs  map[string]ClientInput
	scores  map[string]int

	tick     uint64
	running  bool
	paused   bool
	stop     chan struct{}
	phase    MatchPhase
	entrants int
	result   *MatchResult

	nextPickupAt float64
	nextHazardAt float64
	respawns     []pendingRespawn

	// OnMatchEnd fires once, outside the lock, when an arena match resolves.
	OnMatchEnd func(MatchResult)
	// OnPlayerKill fires per kill for stat recording.
	OnPlayerKill func(killerID, victimID string, victimBot bool)
}

// NewGame creates a game for the given config. A zero seed draws one from
// the OS so every session plays out differently.
func NewGame(config MatchConfig) *Game {
	seed := config.Seed
	if seed == 0 {
		seed = RandomSeed()
	}
	g := &Game{
		world:   NewWorld(config.ArenaWidth, config.ArenaHeight, seed),
		config:  config,
		clients: make(map[string]Broadcaster),
		inputs:  make(map[string]ClientInput),
		scores:  make(map[string]int),
		stop:    make(chan struct{}),
		phase:   PhaseLobby,
	}
	g.world.OnKill = g.handleKill
	return g
}

// World exposes the underlying world for tests and intent methods. Callers
// must hold the game lock.
func (g *Game) World() *World {
	return g.world
}

// Run starts the game loop
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.phase = PhasePlaying
	for i := 0; i < g.config.BotCount; i++ {
		g.spawnBotLocked()
	}
	g.mu.Unlock()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop and clears all pending deferred effects so a
// stopped match cannot act on anything.
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		g.running = false
		close(g.stop)
		g.world.Clear()
	}
}

// Pause freezes the simulation. The loop keeps ticking but ticks are ignored
// until Resume, so cooldowns and statuses hold their remaining time.
func (g *Game) Pause() {
	g.mu.Lock()
	g.paused = true
	g.mu.Unlock()
}

// Resume unfreezes a paused simulation.
func (g *Game) Resume() {
	g.mu.Lock()
	g.paused = false
	g.mu.Unlock()
}

// IsRunning reports whether the loop is live.
func (g *Game) IsRunning() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.running
}

// AddPlayer spawns a player with the given archetype. Unknown keys fall back
// to the default archetype. Returns nil when the session is full or already
// decided.
func (g *Game) AddPlayer(name, archetypeKey string) *Entity {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseResult {
		return nil
	}
	if g.world.Count(KindPlayer) >= g.config.MaxPlayers {
		return nil
	}
	e := g.world.SpawnPlayer(name, archetypeKey, spawnPosition(g.world), false)
	g.entrants++
	g.scores[e.ID] = 0
	return e
}

// RemovePlayer removes a player from the game
func (g *Game) RemovePlayer(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.world.Remove(id)
	delete(g.clients, id)
	delete(g.inputs, id)
}

// SetClient associates a broadcaster with a player
func (g *Game) SetClient(entityID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[entityID] = client
}

// HandleInput stores the latest input for a player; it is applied on the
// next fixed step.
func (g *Game) HandleInput(entityID string, input ClientInput) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.world.Get(entityID) == nil {
		return
	}
	g.inputs[entityID] = input
}

// MovePlayer applies a movement direction directly, bypassing the input map.
// A non-positive force falls back to the standard input acceleration.
func (g *Game) MovePlayer(id string, dir Vec2, force float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e := g.world.Get(id)
	if e == nil || !e.Alive() {
		return
	}
	if force <= 0 {
		force = InputAccel
	}
	if !dir.IsZero() {
		e.Acc = e.Acc.Add(dir.Normalize().Scale(force))
	}
}

// FireProjectile triggers the player's primary toward aim (world coords).
// A non-nil override spawns that projectile in place of the archetype's
// primary, still subject to the session projectile cap.
func (g *Game) FireProjectile(id string, aim Vec2, override *ProjectileSpec) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if override == nil {
		g.fireLocked(id, aim, false)
		return
	}
	e := g.world.Get(id)
	if e == nil || !e.Alive() {
		return
	}
	if g.world.Count(KindProjectile) >= maxProjectilesPerSession {
		return
	}
	g.world.SpawnProjectile(e, aim.Sub(e.Pos), *override)
}

// FireSpecial triggers the player's special toward aim (world coords).
func (g *Game) FireSpecial(id string, aim Vec2) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fireLocked(id, aim, true)
}

func (g *Game) fireLocked(id string, aim Vec2, special bool) {
	e := g.world.Get(id)
	if e == nil {
		return
	}
	if !special && g.world.Count(KindProjectile) >= maxProjectilesPerSession {
		return
	}
	ab := e.Primary
	if special {
		ab = e.Special
	}
	if ab == nil {
		return
	}
	ab.Execute(g.world, e, aim.Sub(e.Pos))
}

// Teleport places an entity at a position, clamped to the arena.
func (g *Game) Teleport(id string, pos Vec2) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e := g.world.Get(id)
	if e == nil {
		return
	}
	e.Pos = V(
		Clamp(pos.X, e.Radius, g.world.Bounds.X-e.Radius),
		Clamp(pos.Y, e.Radius, g.world.Bounds.Y-e.Radius),
	)
	e.Vel = Vec2{}
}

// PlayerCount returns the number of player entities
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.world.Count(KindPlayer)
}

// HumanCount returns the number of non-bot players, used for session cleanup.
func (g *Game) HumanCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, e := range g.world.Entities() {
		if e.Kind == KindPlayer && !e.Bot {
			n++
		}
	}
	return n
}

// GetEntities returns the live entities in insertion order.
func (g *Game) GetEntities() []*Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.world.Entities()
}

// GetEntity returns a copy of an entity's snapshot, or nil.
func (g *Game) GetEntity(id string) *Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.world.Get(id)
}

// GetScore returns a player's kill count.
func (g *Game) GetScore(id string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.scores[id]
}

// Result returns the match result once the arena has been decided, else nil.
func (g *Game) Result() *MatchResult {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.result
}

func (g *Game) spawnBotLocked() *Entity {
	key := archetypeOrder[g.world.Rand().Intn(len(archetypeOrder))]
	name := botNames[g.world.Rand().Intn(len(botNames))]
	e := g.world.SpawnPlayer(name, key, spawnPosition(g.world), true)
	g.scores[e.ID] = 0
	g.entrants++
	return e
}

var botNames = []string{"Torque", "Vex", "Mango", "Quark", "Drift", "Pip", "Socket", "Nimbus"}

// update runs one game tick
func (g *Game) update() {
	g.mu.Lock()
	if g.paused {
		g.mu.Unlock()
		return
	}

	g.tick++
	g.applyInputs()
	g.world.Advance(TickDuration.Seconds())
	g.spawnAmbient()
	g.processRespawns()
	g.emitPhrases()

	var ended *MatchResult
	if g.config.Mode == ModeArena && g.phase == PhasePlaying {
		ended = g.checkMatchOver()
	}

	if g.tick%BroadcastEvery == 0 {
		g.broadcastState()
	}
	cb := g.OnMatchEnd
	g.mu.Unlock()

	if ended != nil && cb != nil {
		cb(*ended)
	}
}

func (g *Game) applyInputs() {
	for id, in := range g.inputs {
		e := g.world.Get(id)
		if e == nil || !e.Alive() {
			continue
		}
		move := V(Clamp(in.MX, -1, 1), Clamp(in.MY, -1, 1))
		if !move.IsZero() {
			e.Acc = e.Acc.Add(move.Normalize().Scale(InputAccel))
		}
		aim := V(in.AX, in.AY).Sub(e.Pos)
		if !aim.IsZero() {
			e.Facing = aim.Normalize()
		}
		if in.Fire {
			g.fireLocked(id, V(in.AX, in.AY), false)
		}
		if in.Special {
			g.fireLocked(id, V(in.AX, in.AY), true)
		}
	}
}

// spawnAmbient drips pickups and hazards into the arena on their intervals.
func (g *Game) spawnAmbient() {
	now := g.world.Now()
	if g.config.Pickups && now >= g.nextPickupAt {
		g.nextPickupAt = now + PickupIntervalMs
		if g.world.Count(KindPickup) < MaxPickups {
			g.world.SpawnPickup()
		}
	}
	if g.config.Hazards && now >= g.nextHazardAt {
		g.nextHazardAt = now + HazardIntervalMs
		if g.world.Count(KindHazard) < MaxHazards {
			g.world.SpawnHazard()
		}
	}
}

func (g *Game) processRespawns() {
	if len(g.respawns) == 0 {
		return
	}
	now := g.world.Now()
	kept := g.respawns[:0]
	for _, r := range g.respawns {
		if now < r.at {
			kept = append(kept, r)
			continue
		}
		e := g.world.SpawnPlayer(r.name, r.archetype, spawnPosition(g.world), r.bot)
		if !r.bot {
			// Rebind the client to the fresh entity id.
			if client, ok := g.clients[r.id]; ok {
				delete(g.clients, r.id)
				g.clients[e.ID] = client
				client.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{
					ID: e.ID, Archetype: e.Archetype, Roster: ArchetypeKeys(),
				}})
			}
			g.scores[e.ID] = g.scores[r.id]
			delete(g.scores, r.id)
		}
	}
	g.respawns = kept
}

func (g *Game) emitPhrases() {
	for _, e := range g.world.Entities() {
		if !e.Bot {
			continue
		}
		bc := g.world.Bot(e.ID)
		if bc == nil || bc.PendingPhrase == "" {
			continue
		}
		g.broadcastMsg(Envelope{T: MsgPhrase, Data: PhraseMsg{
			ID: e.ID, Name: e.Name, Text: bc.PendingPhrase,
		}})
	}
}

// handleKill runs inside the world step, under the game lock.
func (g *Game) handleKill(killerID string, victim *Entity) {
	if !victim.Competitor() {
		return
	}
	var killerName string
	if killer := g.world.Get(killerID); killer != nil {
		killerName = killer.Name
		if killer.Competitor() {
			g.scores[killerID]++
		}
	}
	g.broadcastMsg(Envelope{T: MsgKill, Data: KillMsg{
		KillerID: killerID, KillerName: killerName,
		VictimID: victim.ID, VictimName: victim.Name,
	}})
	if client, ok := g.clients[victim.ID]; ok {
		client.SendJSON(Envelope{T: MsgDeath, Data: DeathMsg{
			KillerID: killerID, KillerName: killerName,
		}})
	}
	if g.OnPlayerKill != nil {
		g.OnPlayerKill(killerID, victim.ID, victim.Bot)
	}
	if g.config.Mode == ModePractice {
		g.respawns = append(g.respawns, pendingRespawn{
			at:        g.world.Now() + RespawnDelayMs,
			name:      victim.Name,
			archetype: victim.Archetype,
			id:        victim.ID,
			bot:       victim.Bot,
		})
	}
}

// checkMatchOver declares a winner once at most one competitor remains, or
// when the time limit lapses. Requires at least two entrants so a lone
// player warming up does not end the match instantly.
func (g *Game) checkMatchOver() *MatchResult {
	if g.entrants < 2 {
		return nil
	}
	timeUp := g.config.TimeLimitMs > 0 && g.world.Now() >= g.config.TimeLimitMs
	if g.world.LiveCompetitors() > 1 && !timeUp {
		return nil
	}

	res := MatchResult{
		Scores:     make(map[string]int, len(g.scores)),
		DurationMs: g.world.Now(),
	}
	for id, s := range g.scores {
		res.Scores[id] = s
	}
	// Last orb standing wins; on time-up the highest score does.
	var winner *Entity
	for _, e := range g.world.Entities() {
		if !e.Competitor() || !e.Alive() {
			continue
		}
		if winner == nil || g.scores[e.ID] > g.scores[winner.ID] {
			winner = e
		}
	}
	if winner != nil {
		res.WinnerID = winner.ID
		res.WinnerName = winner.Name
	}

	g.phase = PhaseResult
	g.result = &res
	g.broadcastMsg(Envelope{T: MsgMatchOver, Data: MatchOverMsg{
		WinnerID: res.WinnerID, WinnerName: res.WinnerName,
		Scores: res.Scores, DurationMs: res.DurationMs,
	}})
	return &res
}

// broadcastState packs the current state with msgpack and ships it to every
// client as one binary frame.
func (g *Game) broadcastState() {
	state := GameState{Tick: g.tick}
	now := g.world.Now()

	for _, e := range g.world.Entities() {
		switch e.Kind {
		case KindPlayer:
			ps := PlayerState{
				ID: e.ID, Name: e.Name,
				X: round1(e.Pos.X), Y: round1(e.Pos.Y),
				VX: round1(e.Vel.X), VY: round1(e.Vel.Y),
				Facing: round1(e.Facing.Angle()), Radius: e.Radius,
				HP: round1(e.HP), MaxHP: e.MaxHP,
				Archetype: e.Archetype, Score: g.scores[e.ID],
				Alive: e.Alive(), Bot: e.Bot,
			}
			for _, kind := range statusOrder {
				if e.HasStatus(kind, now) {
					ps.Statuses = append(ps.Statuses, kind)
				}
			}
			if e.Primary != nil {
				ps.PrimaryCD = cooldownLeft(e.Primary, now)
			}
			if e.Special != nil {
				ps.SpecialCD = cooldownLeft(e.Special, now)
			}
			state.Players = append(state.Players, ps)
		case KindProjectile, KindAura:
			state.Projectiles = append(state.Projectiles, ProjectileState{
				ID: e.ID,
				X:  round1(e.Pos.X), Y: round1(e.Pos.Y),
				VX: round1(e.Vel.X), VY: round1(e.Vel.Y),
				Radius: round1(e.Radius), Owner: e.OwnerID,
				Behavior: e.Behavior, Aura: e.Kind == KindAura,
			})
		case KindHazard:
			state.Hazards = append(state.Hazards, HazardState{
				ID: e.ID,
				X:  round1(e.Pos.X), Y: round1(e.Pos.Y),
				Radius: round1(e.Radius), HP: round1(e.HP),
			})
		case KindPickup:
			state.Pickups = append(state.Pickups, PickupState{
				ID: e.ID, X: round1(e.Pos.X), Y: round1(e.Pos.Y),
			})
		}
	}

	data, err := msgpack.Marshal(state)
	if err != nil {
		log.Printf("state marshal: %v", err)
		return
	}
	for _, client := range g.clients {
		client.SendBinary(data)
	}
}

func cooldownLeft(a *Ability, now float64) float64 {
	left := a.LastUsedAt + a.CooldownMs - now
	if left < 0 {
		return 0
	}
	return round1(left)
}

// broadcastMsg sends a message to all clients in the session
func (g *Game) broadcastMsg(msg Envelope) {
	for _, client := range g.clients {
		client.SendJSON(msg)
	}
}
