package main

import (
	"encoding/json"
	"fmt"
	"sync"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

const (
	xpPerKill = 25
	xpPerWin  = 100
)

// Hub manages all connected clients and routes them to sessions
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	sessions   *SessionManager
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
	// Auth, DB, analytics
	db        *DB
	auth      *Auth
	analytics *Analytics
	// Account links per session: sessionID -> entityID -> link.
	// Bots and guests never appear here.
	linkMu sync.Mutex
	links  map[string]map[string]accountLink
	deaths map[string]map[string]int
	// Online auth users: authPlayerID -> *Client
	onlineMu    sync.RWMutex
	onlineUsers map[int64]*Client
}

// NewHub creates a new Hub with database
func NewHub(db *DB) *Hub {
	h := &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client, 64),
		unregister:  make(chan *Client, 64),
		sessions:    NewSessionManager(),
		ipConns:     make(map[string]int),
		db:          db,
		links:       make(map[string]map[string]accountLink),
		deaths:      make(map[string]map[string]int),
		onlineUsers: make(map[int64]*Client),
	}
	if db != nil {
		h.auth = NewAuth(db)
		h.analytics = NewAnalytics(db)
	}
	return h
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			if client.sessionID != "" {
				h.sessions.RemovePlayer(client.sessionID, client.entityID)
			}
			if client.authPlayerID != 0 {
				h.SetOffline(client.authPlayerID)
			}
		}
	}
}

type accountLink struct {
	playerID  int64
	archetype string
}

// linkAccount records which account controls an in-game entity so match
// results can be credited.
func (h *Hub) linkAccount(sessionID, entityID string, authPlayerID int64, archetype string) {
	if authPlayerID == 0 {
		return
	}
	if h.analytics != nil {
		h.analytics.Track(EvtSessionStart, authPlayerID, sessionID, "")
	}
	h.TrackArchetypePick(authPlayerID, sessionID, archetype)
	h.linkMu.Lock()
	defer h.linkMu.Unlock()
	if h.links[sessionID] == nil {
		h.links[sessionID] = make(map[string]accountLink)
	}
	h.links[sessionID][entityID] = accountLink{playerID: authPlayerID, archetype: archetype}
}

// attachPersistence wires a freshly created session's game callbacks to the
// database and the analytics pipeline.
func (h *Hub) attachPersistence(sess *Session) {
	if h.analytics != nil {
		h.analytics.Track(EvtMatchStart, 0, sess.ID, fmt.Sprintf(`{"mode":%d}`, boolToMode(sess.Practice)))
	}
	game := sess.Game
	sid := sess.ID

	game.OnPlayerKill = func(killerID, victimID string, victimBot bool) {
		h.linkMu.Lock()
		if h.deaths[sid] == nil {
			h.deaths[sid] = make(map[string]int)
		}
		h.deaths[sid][victimID]++
		killerAcct := h.links[sid][killerID].playerID
		victimAcct := h.links[sid][victimID].playerID
		h.linkMu.Unlock()

		if h.analytics == nil {
			return
		}
		if killerAcct != 0 {
			h.analytics.Track(EvtPlayerKill, killerAcct, sid, "")
		}
		if victimAcct != 0 {
			h.analytics.Track(EvtPlayerDeath, victimAcct, sid, "")
		}
	}

	game.OnMatchEnd = func(res MatchResult) {
		h.recordMatch(sess, res)
	}
}

func boolToMode(practice bool) int {
	if practice {
		return int(ModePractice)
	}
	return int(ModeArena)
}

// recordMatch persists a finished match and updates every linked account.
func (h *Hub) recordMatch(sess *Session, res MatchResult) {
	if h.analytics != nil {
		h.analytics.Track(EvtMatchEnd, 0, sess.ID,
			fmt.Sprintf(`{"duration":%.0f}`, res.DurationMs/1000))
	}
	if h.db == nil {
		return
	}

	h.linkMu.Lock()
	links := h.links[sess.ID]
	deaths := h.deaths[sess.ID]
	delete(h.links, sess.ID)
	delete(h.deaths, sess.ID)
	h.linkMu.Unlock()

	if len(links) == 0 {
		return
	}

	matchID, err := h.db.RecordMatch(boolToMode(sess.Practice), res.DurationMs/1000, res.WinnerName)
	if err != nil {
		return
	}

	durationSec := int(res.DurationMs / 1000)
	for entityID, link := range links {
		kills := res.Scores[entityID]
		died := deaths[entityID]
		won := entityID == res.WinnerID
		xp := kills * xpPerKill
		if won {
			xp += xpPerWin
		}

		h.db.RecordMatchPlayer(matchID, link.playerID, link.archetype, kills, died, won, xp)
		prevLevel := 0
		if s, err := h.db.GetStats(link.playerID); err == nil && s != nil {
			prevLevel = s.Level
		}
		_, newLevel, err := h.db.UpdateStatsAfterMatch(link.playerID, kills, died, won, durationSec, xp)
		if err != nil {
			continue
		}
		if h.analytics != nil && newLevel > prevLevel {
			h.analytics.Track(EvtLevelUp, link.playerID, sess.ID, fmt.Sprintf(`{"level":%d}`, newLevel))
		}

		unlocked := CheckAchievements(h.db, link.playerID, kills, died, won)
		for _, def := range unlocked {
			if h.analytics != nil {
				h.analytics.Track(EvtAchievement, link.playerID, sess.ID,
					fmt.Sprintf(`{"id":%q}`, def.ID))
			}
			if client := h.GetOnlineClient(link.playerID); client != nil {
				client.SendJSON(Envelope{T: MsgAchievement, Data: AchievementMsg{
					Key: def.ID, Name: def.Name, Desc: def.Description,
				}})
			}
		}
	}
}

// TrackArchetypePick records which archetype an account chose.
func (h *Hub) TrackArchetypePick(authPlayerID int64, sessionID, archetype string) {
	if h.analytics == nil || authPlayerID == 0 {
		return
	}
	data, _ := json.Marshal(map[string]string{"archetype": archetype})
	h.analytics.Track(EvtArchetypePick, authPlayerID, sessionID, string(data))
}

// SetOnline marks an authenticated user as online
func (h *Hub) SetOnline(playerID int64, client *Client) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	h.onlineUsers[playerID] = client
}

// SetOffline removes an authenticated user from online tracking
func (h *Hub) SetOffline(playerID int64) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	delete(h.onlineUsers, playerID)
}

// IsOnline checks if a player is online
func (h *Hub) IsOnline(playerID int64) bool {
	h.onlineMu.RLock()
	defer h.onlineMu.RUnlock()
	_, ok := h.onlineUsers[playerID]
	return ok
}

// GetOnlineClient returns the client for an online player
func (h *Hub) GetOnlineClient(playerID int64) *Client {
	h.onlineMu.RLock()
	defer h.onlineMu.RUnlock()
	return h.onlineUsers[playerID]
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
