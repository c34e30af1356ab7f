package main

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// ---------- helpers ----------

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// startTestServer spins up an httptest.Server with a Hub (no database) and
// returns the server, its WebSocket URL, and a cleanup func.
func startTestServer(t *testing.T) (*httptest.Server, string, func()) {
	t.Helper()

	// Create a temp client dir with a minimal index.html
	tmpDir := t.TempDir()
	jsDir := filepath.Join(tmpDir, "js")
	os.MkdirAll(jsDir, 0o755)
	os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte("<html>test</html>"), 0o644)
	os.WriteFile(filepath.Join(jsDir, "main.js"), []byte("// test"), 0o644)

	hub := NewHub(nil)
	go hub.Run()

	mux := SetupRoutes(hub, tmpDir)
	srv := httptest.NewServer(mux)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	return srv, wsURL, func() {
		srv.Close()
	}
}

// dialWS opens a WebSocket connection to the test server.
func dialWS(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial WS: %v", err)
	}
	return conn
}

// readEnvelope reads one message from the WebSocket. Binary frames are
// msgpack-encoded GameState and come back as a state envelope.
func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read WS: %v", err)
	}
	if msgType == websocket.BinaryMessage {
		var gs GameState
		if err := msgpack.Unmarshal(raw, &gs); err != nil {
			t.Fatalf("msgpack unmarshal: %v", err)
		}
		return Envelope{T: MsgState, Data: gs}
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return env
}

// readUntil reads envelopes until one of the wanted type arrives, skipping
// interleaved state broadcasts.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) Envelope {
	t.Helper()
	for i := 0; i < 50; i++ {
		env := readEnvelope(t, conn)
		if env.T == msgType {
			return env
		}
	}
	t.Fatalf("no %s message within 50 reads", msgType)
	return Envelope{}
}

// sendMsg sends a typed message over the WebSocket.
func sendMsg(t *testing.T, conn *websocket.Conn, msgType string, data interface{}) {
	t.Helper()
	env := Envelope{T: msgType, Data: data}
	raw, _ := json.Marshal(env)
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("write WS: %v", err)
	}
}

// dataMap extracts the Data field as map[string]interface{}.
func dataMap(t *testing.T, env Envelope) map[string]interface{} {
	t.Helper()
	raw, _ := json.Marshal(env.Data)
	var m map[string]interface{}
	json.Unmarshal(raw, &m)
	return m
}

// createAndJoin creates a session then joins it. Returns the session ID and
// the joined player's entity ID.
func createAndJoin(t *testing.T, conn *websocket.Conn, name, sname string) (string, string) {
	t.Helper()
	sendMsg(t, conn, MsgCreate, map[string]string{"sname": sname})
	created := readUntil(t, conn, MsgCreated)
	sid := dataMap(t, created)["sid"].(string)

	sendMsg(t, conn, MsgJoin, map[string]string{"name": name, "sid": sid})
	readUntil(t, conn, MsgJoined)
	welcome := readUntil(t, conn, MsgWelcome)
	pid := dataMap(t, welcome)["id"].(string)
	return sid, pid
}

// ---------- UUID generation ----------

func TestGenerateUUIDFormat(t *testing.T) {
	for i := 0; i < 20; i++ {
		id := GenerateUUID()
		if !uuidRegex.MatchString(id) {
			t.Errorf("GenerateUUID() = %q, does not match UUID v4 format", id)
		}
	}
}

func TestGenerateUUIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateUUID()
		if seen[id] {
			t.Fatalf("duplicate UUID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestSessionIDIsUUID(t *testing.T) {
	sm := NewSessionManager()
	sess := sm.CreateSession("TestArena", false)
	defer sess.Game.Stop()
	if !uuidRegex.MatchString(sess.ID) {
		t.Errorf("session ID %q is not a valid UUID v4", sess.ID)
	}
}

// ---------- SPA routing ----------

func TestSPARoutingRoot(t *testing.T) {
	srv, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("root: expected 200, got %d", resp.StatusCode)
	}
}

func TestSPARoutingUUIDPath(t *testing.T) {
	srv, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/" + GenerateUUID())
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("uuid path should serve the SPA, got %d", resp.StatusCode)
	}
}

func TestSPARoutingStaticFiles(t *testing.T) {
	srv, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/js/main.js")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("static file: expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected no-cache header, got %q", cc)
	}
}

func TestSPARoutingNonUUIDPath(t *testing.T) {
	srv, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/not-a-session")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("non-uuid path: expected 404, got %d", resp.StatusCode)
	}
}

// ---------- session lifecycle over WS ----------

func TestCreateAndJoinSession(t *testing.T) {
	_, wsURL, cleanup := startTestServer(t)
	defer cleanup()

	conn := dialWS(t, wsURL)
	defer conn.Close()

	sid, pid := createAndJoin(t, conn, "Pilot", "My Arena")
	if !uuidRegex.MatchString(sid) {
		t.Errorf("session id %q not a UUID", sid)
	}
	if pid == "" {
		t.Error("welcome should carry the player's entity id")
	}
}

func TestWelcomeCarriesRoster(t *testing.T) {
	_, wsURL, cleanup := startTestServer(t)
	defer cleanup()

	conn := dialWS(t, wsURL)
	defer conn.Close()

	sendMsg(t, conn, MsgCreate, map[string]string{"sname": "Roster"})
	sid := dataMap(t, readUntil(t, conn, MsgCreated))["sid"].(string)
	sendMsg(t, conn, MsgJoin, map[string]interface{}{"name": "P", "sid": sid, "arch": "frost"})
	readUntil(t, conn, MsgJoined)
	welcome := dataMap(t, readUntil(t, conn, MsgWelcome))

	if welcome["arch"] != "frost" {
		t.Errorf("expected frost archetype, got %v", welcome["arch"])
	}
	roster, ok := welcome["roster"].([]interface{})
	if !ok || len(roster) != len(archetypeOrder) {
		t.Errorf("roster should list every archetype, got %v", welcome["roster"])
	}
}

func TestJoinNonExistentSession(t *testing.T) {
	_, wsURL, cleanup := startTestServer(t)
	defer cleanup()

	conn := dialWS(t, wsURL)
	defer conn.Close()

	sendMsg(t, conn, MsgJoin, map[string]string{"name": "P", "sid": GenerateUUID()})
	env := readUntil(t, conn, MsgError)
	if env.T != MsgError {
		t.Errorf("expected error, got %s", env.T)
	}
}

func TestCheckSession(t *testing.T) {
	_, wsURL, cleanup := startTestServer(t)
	defer cleanup()

	conn := dialWS(t, wsURL)
	defer conn.Close()

	sid, _ := createAndJoin(t, conn, "P", "CheckMe")

	sendMsg(t, conn, MsgCheck, map[string]string{"sid": sid})
	checked := dataMap(t, readUntil(t, conn, MsgChecked))
	if checked["exists"] != true {
		t.Error("existing session should check true")
	}
	if checked["name"] != "CheckMe" {
		t.Errorf("check should report the session name, got %v", checked["name"])
	}

	sendMsg(t, conn, MsgCheck, map[string]string{"sid": GenerateUUID()})
	checked = dataMap(t, readUntil(t, conn, MsgChecked))
	if checked["exists"] != false {
		t.Error("unknown session should check false")
	}
}

func TestListSessions(t *testing.T) {
	_, wsURL, cleanup := startTestServer(t)
	defer cleanup()

	conn := dialWS(t, wsURL)
	defer conn.Close()

	createAndJoin(t, conn, "P", "Listed")

	sendMsg(t, conn, MsgList, nil)
	env := readUntil(t, conn, MsgSessions)
	raw, _ := json.Marshal(env.Data)
	var infos []SessionInfo
	json.Unmarshal(raw, &infos)
	if len(infos) != 1 {
		t.Fatalf("expected 1 session, got %d", len(infos))
	}
	if infos[0].Name != "Listed" || infos[0].Players != 1 {
		t.Errorf("unexpected session info: %+v", infos[0])
	}
}

func TestDefaultPlayerName(t *testing.T) {
	_, wsURL, cleanup := startTestServer(t)
	defer cleanup()

	conn := dialWS(t, wsURL)
	defer conn.Close()

	_, pid := createAndJoin(t, conn, "", "Anon")

	state := readUntil(t, conn, MsgState).Data.(GameState)
	for _, p := range state.Players {
		if p.ID == pid && p.Name != "Orb" {
			t.Errorf("empty name should default to Orb, got %q", p.Name)
		}
	}
}

// ---------- gameplay over WS ----------

func TestGameStateBroadcasts(t *testing.T) {
	_, wsURL, cleanup := startTestServer(t)
	defer cleanup()

	conn := dialWS(t, wsURL)
	defer conn.Close()

	_, pid := createAndJoin(t, conn, "Pilot", "Arena")

	state := readUntil(t, conn, MsgState).Data.(GameState)
	found := false
	for _, p := range state.Players {
		if p.ID == pid {
			found = true
			if p.HP <= 0 || p.MaxHP <= 0 {
				t.Error("player state should carry health")
			}
			if p.Archetype == "" {
				t.Error("player state should carry the archetype")
			}
		}
	}
	if !found {
		t.Error("broadcast should include the joined player")
	}
	if state.Tick == 0 {
		t.Error("broadcast should carry the tick counter")
	}
}

func TestBinaryInputMovesPlayer(t *testing.T) {
	_, wsURL, cleanup := startTestServer(t)
	defer cleanup()

	conn := dialWS(t, wsURL)
	defer conn.Close()

	_, pid := createAndJoin(t, conn, "Mover", "Arena")

	playerX := func() float64 {
		state := readUntil(t, conn, MsgState).Data.(GameState)
		for _, p := range state.Players {
			if p.ID == pid {
				return p.X
			}
		}
		t.Fatal("player missing from state")
		return 0
	}

	startX := playerX()
	// 8-byte frame: move full-right, no fire.
	frame := []byte{0x01, 0, 0, 0, 0, 127, 0, 0}
	deadline := time.Now().Add(2 * time.Second)
	moved := false
	for time.Now().Before(deadline) {
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			t.Fatalf("write input: %v", err)
		}
		if playerX() > startX+10 {
			moved = true
			break
		}
	}
	if !moved {
		t.Errorf("player should drift right under held input, x stayed near %f", startX)
	}
}

func TestJSONInputFires(t *testing.T) {
	_, wsURL, cleanup := startTestServer(t)
	defer cleanup()

	conn := dialWS(t, wsURL)
	defer conn.Close()

	createAndJoin(t, conn, "Shooter", "Arena")

	sendMsg(t, conn, MsgInput, ClientInput{AX: 9999, AY: 9999, Fire: true})
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		state := readUntil(t, conn, MsgState).Data.(GameState)
		if len(state.Projectiles) > 0 {
			return
		}
	}
	t.Error("fire input should spawn a projectile")
}

func TestSessionCleanupOnLeave(t *testing.T) {
	_, wsURL, cleanup := startTestServer(t)
	defer cleanup()

	conn := dialWS(t, wsURL)
	defer conn.Close()

	sid, _ := createAndJoin(t, conn, "P", "Transient")
	sendMsg(t, conn, MsgLeave, nil)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sendMsg(t, conn, MsgCheck, map[string]string{"sid": sid})
		checked := dataMap(t, readUntil(t, conn, MsgChecked))
		if checked["exists"] == false {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("session with no humans left should be torn down")
}

// ---------- HTTP APIs ----------

func TestQREndpoint(t *testing.T) {
	srv, wsURL, cleanup := startTestServer(t)
	defer cleanup()

	conn := dialWS(t, wsURL)
	defer conn.Close()

	sid, _ := createAndJoin(t, conn, "P", "QR")

	resp, err := http.Get(srv.URL + "/qr?sid=" + sid)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("qr: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("qr: expected image/png, got %q", ct)
	}
}

func TestQREndpointUnknownSession(t *testing.T) {
	srv, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/qr?sid=" + GenerateUUID())
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("qr for unknown session: expected 404, got %d", resp.StatusCode)
	}
}

func TestLeaderboardWithoutDB(t *testing.T) {
	srv, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/api/leaderboard")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("leaderboard without db: expected 503, got %d", resp.StatusCode)
	}
}

func TestMetricsWithoutDB(t *testing.T) {
	srv, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/api/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("metrics without db: expected 503, got %d", resp.StatusCode)
	}
}

// ---------- hub / session manager ----------

func TestHubClientCount(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- c

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 1 registered client, got %d", hub.ClientCount())
		}
		time.Sleep(time.Millisecond)
	}

	hub.unregister <- c
	deadline = time.Now().Add(time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 0 clients after unregister, got %d", hub.ClientCount())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestAuthWithoutDBKeepsGuest(t *testing.T) {
	_, wsURL, cleanup := startTestServer(t)
	defer cleanup()

	conn := dialWS(t, wsURL)
	defer conn.Close()

	// Without a database the register message is ignored; the socket keeps
	// working as a guest.
	sendMsg(t, conn, MsgRegister, map[string]string{"u": "name", "p": "secret"})
	sendMsg(t, conn, MsgList, nil)
	env := readUntil(t, conn, MsgSessions)
	if env.T != MsgSessions {
		t.Errorf("guest socket should stay usable, got %s", env.T)
	}
}

func TestSessionManagerCreateAndGet(t *testing.T) {
	sm := NewSessionManager()
	sess := sm.CreateSession("Arena", false)
	defer sess.Game.Stop()

	if got := sm.GetSession(sess.ID); got != sess {
		t.Error("GetSession should return the created session")
	}
	if sm.GetSession(GenerateUUID()) != nil {
		t.Error("unknown id should return nil")
	}
}

func TestSessionManagerPracticeFlag(t *testing.T) {
	sm := NewSessionManager()
	sess := sm.CreateSession("Gym", true)
	defer sess.Game.Stop()

	if !sess.Practice {
		t.Error("practice flag should stick")
	}
	list := sm.ListSessions()
	if len(list) != 1 || !list[0].Practice {
		t.Error("session list should expose the practice flag")
	}
}

func TestSessionManagerRemoveLastHuman(t *testing.T) {
	sm := NewSessionManager()
	sess := sm.CreateSession("Doomed", false)
	for !sess.Game.IsRunning() {
		time.Sleep(time.Millisecond)
	}
	p := sess.Game.AddPlayer("Only", "striker")

	sm.RemovePlayer(sess.ID, p.ID)
	if sm.GetSession(sess.ID) != nil {
		t.Error("session should be removed with its last human")
	}
	if sess.Game.IsRunning() {
		t.Error("cleanup should stop the game loop")
	}
}

// ---------- small utilities ----------

func TestGenerateIDLength(t *testing.T) {
	if got := len(GenerateID(4)); got != 8 {
		t.Errorf("GenerateID(4): expected 8 hex chars, got %d", got)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 10) != 5 {
		t.Error("in-range value should pass through")
	}
	if Clamp(-1, 0, 10) != 0 {
		t.Error("below range should clamp to min")
	}
	if Clamp(11, 0, 10) != 10 {
		t.Error("above range should clamp to max")
	}
}

func TestNormalizeAngle(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{3.5 * math.Pi, -0.5 * math.Pi},
		{-2.5 * math.Pi, -0.5 * math.Pi},
	}
	for _, c := range cases {
		if got := NormalizeAngle(c.in); !almostEqual(got, c.want) {
			t.Errorf("NormalizeAngle(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}

func TestLerpAngleShortPath(t *testing.T) {
	// Crossing the wrap: from just below PI to just above -PI is a short hop.
	got := LerpAngle(3.0, -3.0, 0.5)
	if got < 3.0 && got > -3.0 {
		t.Errorf("LerpAngle should take the short path across the wrap, got %f", got)
	}
}
