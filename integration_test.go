package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

func newTestServer(t *testing.T, db *DB) (*httptest.Server, *Hub) {
	t.Helper()
	hub := NewHub(db, nil)
	go hub.Run()
	srv := httptest.NewServer(SetupRoutes(hub, ""))
	t.Cleanup(srv.Close)
	return srv, hub
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, typ string, data interface{}) {
	t.Helper()
	if err := conn.WriteJSON(Envelope{T: typ, Data: data}); err != nil {
		t.Fatalf("send %s: %v", typ, err)
	}
}

// waitForMsg reads until a text envelope of the wanted type arrives,
// skipping binary frames and unrelated broadcasts.
func waitForMsg(t *testing.T, conn *websocket.Conn, want string) json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		mt, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		if mt != websocket.TextMessage {
			continue
		}
		var env InEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("bad envelope %q: %v", raw, err)
		}
		if env.T == want {
			return env.D
		}
	}
}

// waitForState reads until a binary snapshot frame arrives and decodes it
func waitForState(t *testing.T, conn *websocket.Conn) *GameState {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		mt, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for snapshot: %v", err)
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		var state GameState
		if err := msgpack.Unmarshal(raw, &state); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		return &state
	}
}

func TestCreateJoinStartFlow(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	host := dialWS(t, srv)
	sendMsg(t, host, MsgCreateRoom, CreateRoomMsg{Name: "host", PotatoSpeed: 1.0, MaxPlayers: 4})

	var joined RoomJoinedMsg
	if err := json.Unmarshal(waitForMsg(t, host, MsgRoomJoined), &joined); err != nil {
		t.Fatalf("decode room_joined: %v", err)
	}
	if !joined.IsHost {
		t.Error("creator should be host")
	}
	if len(joined.RoomID) != 6 {
		t.Errorf("room code should be 6 characters, got %q", joined.RoomID)
	}
	if joined.MaxPlayers != 4 {
		t.Errorf("expected maxPlayers 4, got %d", joined.MaxPlayers)
	}

	guest := dialWS(t, srv)
	sendMsg(t, guest, MsgJoinRoom, JoinRoomMsg{RoomID: joined.RoomID, Name: "guest"})

	var guestJoined RoomJoinedMsg
	if err := json.Unmarshal(waitForMsg(t, guest, MsgRoomJoined), &guestJoined); err != nil {
		t.Fatalf("decode guest room_joined: %v", err)
	}
	if guestJoined.IsHost {
		t.Error("joiner should not be host")
	}
	if guestJoined.RoomID != joined.RoomID {
		t.Error("joiner landed in a different room")
	}

	// Host sees the two-player roster
	for {
		var roster RoomUpdateMsg
		if err := json.Unmarshal(waitForMsg(t, host, MsgRoomUpdate), &roster); err != nil {
			t.Fatalf("decode room_update: %v", err)
		}
		if len(roster.Players) == 2 {
			if roster.HostID != joined.PlayerID {
				t.Errorf("roster host expected %q, got %q", joined.PlayerID, roster.HostID)
			}
			break
		}
	}

	sendMsg(t, host, MsgStartGame, nil)
	waitForMsg(t, host, MsgGameStarted)
	waitForMsg(t, guest, MsgGameStarted)

	state := waitForState(t, guest)
	if len(state.Players) != 2 {
		t.Errorf("snapshot should carry 2 players, got %d", len(state.Players))
	}
	if len(state.Potatoes) != 1 {
		t.Errorf("snapshot should carry 1 potato, got %d", len(state.Potatoes))
	}
	if len(state.Obstacles) == 0 {
		t.Error("snapshot should carry the obstacle layout")
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	conn := dialWS(t, srv)

	sendMsg(t, conn, MsgJoinRoom, JoinRoomMsg{RoomID: "ZZZZZZ", Name: "x"})
	var errMsg ErrorMsg
	if err := json.Unmarshal(waitForMsg(t, conn, MsgError), &errMsg); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errMsg.Msg != "Room not found or game already in progress" {
		t.Errorf("unexpected error text %q", errMsg.Msg)
	}
}

func TestJoinFullRoom(t *testing.T) {
	srv, hub := newTestServer(t, nil)

	room := hub.rooms.CreateRoom("h", 1.0, 1, false)
	defer room.Stop()
	if room.AddPlayer("h", "host", "#fff") == nil {
		t.Fatal("seeding the room failed")
	}

	conn := dialWS(t, srv)
	sendMsg(t, conn, MsgJoinRoom, JoinRoomMsg{RoomID: room.ID, Name: "x"})
	var errMsg ErrorMsg
	if err := json.Unmarshal(waitForMsg(t, conn, MsgError), &errMsg); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errMsg.Msg != "Room is full!" {
		t.Errorf("unexpected error text %q", errMsg.Msg)
	}
}

func TestPingCheckEcho(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	conn := dialWS(t, srv)

	sendMsg(t, conn, MsgPingCheck, PingCheckMsg{Timestamp: 12345})
	var pong PingCheckMsg
	if err := json.Unmarshal(waitForMsg(t, conn, MsgPongCheck), &pong); err != nil {
		t.Fatalf("decode pong: %v", err)
	}
	if pong.Timestamp != 12345 {
		t.Errorf("pong should echo the timestamp, got %d", pong.Timestamp)
	}
}

func TestListLobbies(t *testing.T) {
	srv, hub := newTestServer(t, nil)
	room := hub.rooms.CreateRoom("h", 1.0, 12, false)
	defer room.Stop()

	conn := dialWS(t, srv)
	sendMsg(t, conn, MsgList, nil)
	var lobbies []LobbyInfo
	if err := json.Unmarshal(waitForMsg(t, conn, MsgLobbiesUpdate), &lobbies); err != nil {
		t.Fatalf("decode lobbies: %v", err)
	}
	if len(lobbies) != 1 || lobbies[0].ID != room.ID {
		t.Errorf("unexpected lobby listing %+v", lobbies)
	}
}

func TestAuthAndProfileOverWebsocket(t *testing.T) {
	srv, _ := newTestServer(t, testDB(t))
	conn := dialWS(t, srv)

	sendMsg(t, conn, MsgRegister, RegisterMsg{Username: "alice", Password: "hunter2"})
	var ok AuthOKMsg
	if err := json.Unmarshal(waitForMsg(t, conn, MsgAuthOK), &ok); err != nil {
		t.Fatalf("decode auth_ok: %v", err)
	}
	if ok.Token == "" || ok.Username != "alice" || ok.PlayerID == 0 {
		t.Fatalf("unexpected auth_ok %+v", ok)
	}

	sendMsg(t, conn, MsgProfile, nil)
	var profile ProfileDataMsg
	if err := json.Unmarshal(waitForMsg(t, conn, MsgProfileData), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Username != "alice" || profile.Games != 0 {
		t.Errorf("unexpected profile %+v", profile)
	}

	// Token resumes the session on a new connection
	conn2 := dialWS(t, srv)
	sendMsg(t, conn2, MsgAuth, AuthMsg{Token: ok.Token})
	var resumed AuthOKMsg
	if err := json.Unmarshal(waitForMsg(t, conn2, MsgAuthOK), &resumed); err != nil {
		t.Fatalf("decode resumed auth_ok: %v", err)
	}
	if resumed.PlayerID != ok.PlayerID {
		t.Error("token auth should resolve to the same account")
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "ok") {
		t.Errorf("unexpected body %q", body)
	}
	for _, field := range []string{"conns", "clients", "authed", "rooms"} {
		if !strings.Contains(string(body), field) {
			t.Errorf("health line missing %q: %q", field, body)
		}
	}
}

func TestQRInvite(t *testing.T) {
	srv, hub := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/qr?room=NOPE")
	if err != nil {
		t.Fatalf("GET /qr: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown room should 404, got %d", resp.StatusCode)
	}

	room := hub.rooms.CreateRoom("h", 1.0, 12, false)
	defer room.Stop()

	resp, err = http.Get(srv.URL + "/qr?room=" + room.ID)
	if err != nil {
		t.Fatalf("GET /qr: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	png, _ := io.ReadAll(resp.Body)
	if len(png) < 8 || png[1] != 'P' || png[2] != 'N' || png[3] != 'G' {
		t.Error("response is not a PNG")
	}
}
