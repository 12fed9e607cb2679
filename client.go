package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 120 // input arrives every client frame
	maxNameLen        = 16
)

var defaultColors = []string{
	"#ef4444", "#f97316", "#f59e0b", "#84cc16", "#10b981",
	"#06b6d4", "#3b82f6", "#8b5cf6", "#d946ef", "#f43f5e",
}

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	playerID   string
	roomID     string
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
	// Auth state
	authPlayerID int64  // 0 = unauthenticated/guest
	authUsername string // "" = unauthenticated
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF marker distinguishes binary frames from JSON text
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// Prefixes with 0xFF so WritePump can distinguish from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgCreateRoom:
		c.handleCreateRoom(env.D)
	case MsgJoinRoom:
		c.handleJoinRoom(env.D)
	case MsgStartGame:
		c.handleStartGame()
	case MsgInput:
		c.handleInput(env.D)
	case MsgPingCheck:
		c.handlePingCheck(env.D)
	case MsgUpdatePing:
		c.handleUpdatePing(env.D)
	case MsgLeave:
		c.handleLeave()
	case MsgList:
		c.handleList()
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgProfile:
		c.handleProfile()
	case MsgLeaderboard:
		c.handleLeaderboard(env.D)
	}
}

func cleanName(name string) string {
	if name == "" {
		return "Player"
	}
	// Truncate on rune boundaries so a multi-byte name stays valid UTF-8
	runes := []rune(name)
	if len(runes) > maxNameLen {
		runes = runes[:maxNameLen]
	}
	return string(runes)
}

func cleanColor(color string) string {
	if color == "" {
		return defaultColors[int(randFloat()*float64(len(defaultColors)))%len(defaultColors)]
	}
	if len(color) > 16 {
		color = color[:16]
	}
	return color
}

func (c *Client) handleCreateRoom(data json.RawMessage) {
	var msg CreateRoomMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if c.roomID != "" {
		c.handleLeave()
	}

	playerID := uuid.NewString()
	room := c.hub.rooms.CreateRoom(playerID, msg.PotatoSpeed, msg.MaxPlayers, msg.IsPrivate)
	if room == nil {
		c.sendError("too many active rooms")
		return
	}

	player := room.AddPlayer(playerID, cleanName(msg.Name), cleanColor(msg.Color))
	if player == nil {
		// A freshly created room is never full; defensive only
		c.sendError("Room is full!")
		return
	}
	player.AuthPlayerID = c.authPlayerID

	c.playerID = playerID
	c.roomID = room.ID
	room.SetClient(playerID, c)

	c.SendJSON(Envelope{T: MsgRoomJoined, Data: RoomJoinedMsg{
		RoomID:        room.ID,
		IsHost:        true,
		PlayerID:      playerID,
		SpeedModifier: room.InitialPotatoSpeed,
		MaxPlayers:    room.MaxPlayers,
		IsPrivate:     room.IsPrivate,
	}})
	room.BroadcastJSON(Envelope{T: MsgRoomUpdate, Data: room.Roster()})
	c.hub.BroadcastLobbies()
}

func (c *Client) handleJoinRoom(data json.RawMessage) {
	var msg JoinRoomMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if c.roomID != "" {
		c.handleLeave()
	}

	room := c.hub.rooms.GetRoom(msg.RoomID)
	if room == nil || room.State != RoomStateWaiting {
		c.sendError("Room not found or game already in progress")
		return
	}

	playerID := uuid.NewString()
	player := room.AddPlayer(playerID, cleanName(msg.Name), cleanColor(msg.Color))
	if player == nil {
		c.sendError("Room is full!")
		return
	}
	player.AuthPlayerID = c.authPlayerID

	c.playerID = playerID
	c.roomID = room.ID
	room.SetClient(playerID, c)

	c.SendJSON(Envelope{T: MsgRoomJoined, Data: RoomJoinedMsg{
		RoomID:        room.ID,
		IsHost:        false,
		PlayerID:      playerID,
		SpeedModifier: room.InitialPotatoSpeed,
		MaxPlayers:    room.MaxPlayers,
		IsPrivate:     room.IsPrivate,
	}})
	room.BroadcastJSON(Envelope{T: MsgRoomUpdate, Data: room.Roster()})
	c.hub.BroadcastLobbies()
}

func (c *Client) handleStartGame() {
	if c.roomID == "" || c.playerID == "" {
		return
	}
	room := c.hub.rooms.GetRoom(c.roomID)
	if room == nil {
		return
	}
	if !room.StartGame(c.playerID) {
		return
	}
	room.BroadcastJSON(Envelope{T: MsgGameStarted})
	c.hub.BroadcastLobbies()
	if c.hub.analytics != nil {
		c.hub.analytics.Track(EvtGameStarted, c.authPlayerID, room.ID, "")
	}
}

func (c *Client) handleInput(data json.RawMessage) {
	if c.roomID == "" || c.playerID == "" {
		return
	}
	var input InputMsg
	if err := json.Unmarshal(data, &input); err != nil {
		return
	}
	room := c.hub.rooms.GetRoom(c.roomID)
	if room == nil {
		return
	}
	room.HandleInput(c.playerID, input)
}

func (c *Client) handlePingCheck(data json.RawMessage) {
	var msg PingCheckMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.SendJSON(Envelope{T: MsgPongCheck, Data: PingCheckMsg{Timestamp: msg.Timestamp}})
}

func (c *Client) handleUpdatePing(data json.RawMessage) {
	if c.roomID == "" || c.playerID == "" {
		return
	}
	var msg UpdatePingMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	room := c.hub.rooms.GetRoom(c.roomID)
	if room == nil {
		return
	}
	room.UpdatePing(c.playerID, msg.Ping)
	// Lobby screens show live pings; in-game the snapshot carries them
	if room.State == RoomStateWaiting {
		room.BroadcastJSON(Envelope{T: MsgRoomUpdate, Data: room.Roster()})
	}
}

func (c *Client) handleLeave() {
	if c.roomID == "" {
		return
	}
	c.hub.leaveRoom(c)
}

func (c *Client) handleList() {
	c.SendJSON(Envelope{T: MsgLobbiesUpdate, Data: c.hub.rooms.ListLobbies()})
}

func (c *Client) handleRegister(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.authPlayerID = id
	c.authUsername = msg.Username
	c.hub.SetOnline(id, c)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: msg.Username,
		PlayerID: id,
	}})
}

func (c *Client) handleLogin(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.authPlayerID = id
	c.authUsername = msg.Username
	c.hub.SetOnline(id, c)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: msg.Username,
		PlayerID: id,
	}})
}

func (c *Client) handleAuth(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendError("invalid token")
		return
	}
	c.authPlayerID = id
	c.authUsername = username
	c.hub.SetOnline(id, c)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    msg.Token,
		Username: username,
		PlayerID: id,
	}})
}

func (c *Client) handleProfile() {
	if c.hub.db == nil || c.authPlayerID == 0 {
		c.sendError("not authenticated")
		return
	}
	stats, err := c.hub.db.GetStats(c.authPlayerID)
	if err != nil || stats == nil {
		c.sendError("profile not found")
		return
	}
	c.SendJSON(Envelope{T: MsgProfileData, Data: ProfileDataMsg{
		Username:     c.authUsername,
		Games:        stats.Games,
		Wins:         stats.Wins,
		Deaths:       stats.Deaths,
		Powerups:     stats.Powerups,
		BestScore:    stats.BestScore,
		SurvivalSecs: stats.SurvivalSecs,
	}})
}

func (c *Client) handleLeaderboard(data json.RawMessage) {
	if c.hub.db == nil {
		return
	}
	var msg LeaderboardMsg
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
	}
	limit := msg.Limit
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	entries, err := c.hub.db.GetLeaderboard(msg.OrderBy, limit)
	if err != nil {
		c.sendError("leaderboard unavailable")
		return
	}
	c.SendJSON(Envelope{T: MsgLeaderboardData, Data: entries})
}
