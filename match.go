package main

// MatchPhase represents the lifecycle of a match
type MatchPhase int

const (
	PhaseLobby   MatchPhase = 0
	PhasePlaying MatchPhase = 1
	PhaseResult  MatchPhase = 2
)

// GameMode defines the type of match
type GameMode int

const (
	// ModeArena is last orb standing: no respawns, the match ends when at
	// most one competitor remains.
	ModeArena GameMode = 0
	// ModePractice respawns fallen players after a short delay and never
	// declares a winner.
	ModePractice GameMode = 1
)

// MatchConfig holds settings for a match
type MatchConfig struct {
	Mode        GameMode
	ArenaWidth  float64
	ArenaHeight float64
	MaxPlayers  int
	BotCount    int
	Hazards     bool
	Pickups     bool
	TimeLimitMs float64 // 0 = no limit
	Seed        uint64  // 0 = random
}

// DefaultConfig returns default config for the given mode
func DefaultConfig(mode GameMode) MatchConfig {
	switch mode {
	case ModePractice:
		return MatchConfig{
			Mode:        ModePractice,
			ArenaWidth:  2400,
			ArenaHeight: 1600,
			MaxPlayers:  12,
			BotCount:    3,
			Hazards:     false,
			Pickups:     true,
		}
	default:
		return MatchConfig{
			Mode:        ModeArena,
			ArenaWidth:  2400,
			ArenaHeight: 1600,
			MaxPlayers:  12,
			BotCount:    0,
			Hazards:     true,
			Pickups:     true,
			TimeLimitMs: 5 * 60 * 1000,
		}
	}
}

// MatchResult is produced once when an arena match ends.
type MatchResult struct {
	WinnerID   string
	WinnerName string
	Scores     map[string]int
	DurationMs float64
}

// spawnPosition picks a spot away from the walls using the world generator.
func spawnPosition(w *World) Vec2 {
	return V(
		w.Bounds.X/4+w.rng.Float64()*w.Bounds.X/2,
		w.Bounds.Y/4+w.rng.Float64()*w.Bounds.Y/2,
	)
}
