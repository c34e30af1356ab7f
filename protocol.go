package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin   = "join"
	MsgLeave  = "leave"
	MsgInput  = "input"
	MsgCreate = "create" // create session
	MsgList   = "list"   // list sessions
	MsgCheck  = "check"  // check if session exists

	MsgRegister = "register"
	MsgLogin    = "login"
	MsgAuth     = "auth" // token re-auth
	MsgProfile  = "profile"
)

// Server -> Client message types
const (
	MsgState     = "state"
	MsgWelcome   = "welcome"
	MsgDeath     = "death"
	MsgKill      = "kill"
	MsgSessions  = "sessions"
	MsgJoined    = "joined"
	MsgCreated   = "created" // session created, client should navigate
	MsgError     = "error"
	MsgChecked   = "checked" // session check response
	MsgPhrase    = "phrase"  // bot chat flavor
	MsgMatchOver = "match_over"

	MsgAuthOK      = "auth_ok"
	MsgProfileData = "profile_data"
	MsgAchievement = "achievement"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages. json.RawMessage avoids
// double-unmarshal.
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// ClientInput is sent by the client at 20Hz
type ClientInput struct {
	AX      float64 `json:"ax"` // aim X (world coords)
	AY      float64 `json:"ay"` // aim Y (world coords)
	MX      float64 `json:"mx"` // move X, -1..1
	MY      float64 `json:"my"` // move Y, -1..1
	Fire    bool    `json:"fire"`
	Special bool    `json:"sp"`
}

// JoinMsg is sent when a player wants to join a session
type JoinMsg struct {
	Name      string `json:"name"`
	SessionID string `json:"sid"`
	Archetype string `json:"arch"`
}

// CreateMsg is sent when a player wants to create a session
type CreateMsg struct {
	Name        string `json:"name"`
	SessionName string `json:"sname"`
	Practice    bool   `json:"practice,omitempty"`
}

// PlayerState is broadcast per player. The msgpack tags feed the binary
// state path, json covers everything else.
type PlayerState struct {
	ID        string   `json:"id" msgpack:"id"`
	Name      string   `json:"n" msgpack:"n"`
	X         float64  `json:"x" msgpack:"x"`
	Y         float64  `json:"y" msgpack:"y"`
	VX        float64  `json:"vx" msgpack:"vx"`
	VY        float64  `json:"vy" msgpack:"vy"`
	Facing    float64  `json:"r" msgpack:"r"`
	Radius    float64  `json:"rad" msgpack:"rad"`
	HP        float64  `json:"hp" msgpack:"hp"`
	MaxHP     float64  `json:"mhp" msgpack:"mhp"`
	Archetype string   `json:"arch" msgpack:"arch"`
	Score     int      `json:"sc" msgpack:"sc"`
	Alive     bool     `json:"a" msgpack:"a"`
	Bot       bool     `json:"bot,omitempty" msgpack:"bot"`
	Statuses  []string `json:"st,omitempty" msgpack:"st"`
	PrimaryCD float64  `json:"pcd" msgpack:"pcd"` // ms until ready, 0 when ready
	SpecialCD float64  `json:"scd" msgpack:"scd"`
}

// ProjectileState is broadcast per projectile and aura
type ProjectileState struct {
	ID       string  `json:"id" msgpack:"id"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	VX       float64 `json:"vx" msgpack:"vx"`
	VY       float64 `json:"vy" msgpack:"vy"`
	Radius   float64 `json:"rad" msgpack:"rad"`
	Owner    string  `json:"o" msgpack:"o"`
	Behavior string  `json:"b,omitempty" msgpack:"b"`
	Aura     bool    `json:"au,omitempty" msgpack:"au"`
}

// HazardState is broadcast per hazard
type HazardState struct {
	ID     string  `json:"id" msgpack:"id"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Radius float64 `json:"rad" msgpack:"rad"`
	HP     float64 `json:"hp" msgpack:"hp"`
}

// PickupState is broadcast per pickup
type PickupState struct {
	ID string  `json:"id" msgpack:"id"`
	X  float64 `json:"x" msgpack:"x"`
	Y  float64 `json:"y" msgpack:"y"`
}

// GameState is the full state broadcast
type GameState struct {
	Players     []PlayerState     `json:"p" msgpack:"p"`
	Projectiles []ProjectileState `json:"pr" msgpack:"pr"`
	Hazards     []HazardState     `json:"hz" msgpack:"hz"`
	Pickups     []PickupState     `json:"pk" msgpack:"pk"`
	Tick        uint64            `json:"tick" msgpack:"tick"`
}

// WelcomeMsg is sent to a player when they join
type WelcomeMsg struct {
	ID        string   `json:"id"`
	Archetype string   `json:"arch"`
	Roster    []string `json:"roster"` // selectable archetype keys
}

// DeathMsg notifies a player they died
type DeathMsg struct {
	KillerID   string `json:"kid"`
	KillerName string `json:"kn"`
}

// KillMsg is broadcast to all players in session
type KillMsg struct {
	KillerID   string `json:"kid"`
	KillerName string `json:"kn"`
	VictimID   string `json:"vid"`
	VictimName string `json:"vn"`
}

// PhraseMsg carries bot chat flavor
type PhraseMsg struct {
	ID   string `json:"id"`
	Name string `json:"n"`
	Text string `json:"txt"`
}

// MatchOverMsg is broadcast once when an arena match ends
type MatchOverMsg struct {
	WinnerID   string         `json:"wid"`
	WinnerName string         `json:"wn"`
	Scores     map[string]int `json:"scores"`
	DurationMs float64        `json:"dur"`
}

// SessionInfo is used in the session list
type SessionInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Players  int    `json:"players"`
	Practice bool   `json:"practice,omitempty"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// CheckMsg is sent by a client to check if a session exists
type CheckMsg struct {
	SID string `json:"sid"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"u"`
	Password string `json:"p"`
}

// LoginMsg authenticates with credentials
type LoginMsg struct {
	Username string `json:"u"`
	Password string `json:"p"`
}

// AuthMsg re-authenticates with a saved token
type AuthMsg struct {
	Token string `json:"tok"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"tok"`
	Username string `json:"u"`
	PlayerID int64  `json:"pid"`
}

// ProfileDataMsg returns persistent stats for the logged-in account
type ProfileDataMsg struct {
	Username string `json:"u"`
	Level    int    `json:"lvl"`
	XP       int    `json:"xp"`
	Kills    int    `json:"k"`
	Deaths   int    `json:"d"`
	Wins     int    `json:"w"`
	Losses   int    `json:"l"`
	Playtime int    `json:"pt"` // seconds
}

// AchievementMsg notifies a client of a newly unlocked achievement
type AchievementMsg struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// CheckedMsg is the response to a session check
type CheckedMsg struct {
	SID     string `json:"sid"`
	Exists  bool   `json:"exists"`
	Name    string `json:"name,omitempty"`
	Players int    `json:"players,omitempty"`
}
