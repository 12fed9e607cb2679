package main

import "encoding/json"

// Client -> Server message types
const (
	MsgCreateRoom  = "create_room"
	MsgJoinRoom    = "join_room"
	MsgStartGame   = "start_game"
	MsgInput       = "input"
	MsgPingCheck   = "ping_check"
	MsgUpdatePing  = "update_ping"
	MsgLeave       = "leave"
	MsgList        = "list"
	MsgRegister    = "register"
	MsgLogin       = "login"
	MsgAuth        = "auth"
	MsgProfile     = "profile"
	MsgLeaderboard = "leaderboard"
)

// Server -> Client message types
const (
	MsgRoomJoined      = "room_joined"
	MsgRoomUpdate      = "room_update"
	MsgLobbiesUpdate   = "lobbies_update"
	MsgGameStarted     = "game_started"
	MsgGameState       = "game_state" // sent as a binary msgpack frame
	MsgPongCheck       = "pong_check"
	MsgError           = "error"
	MsgAuthOK          = "auth_ok"
	MsgProfileData     = "profile_data"
	MsgLeaderboardData = "leaderboard_data"
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages — json.RawMessage avoids
// double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// CreateRoomMsg is sent to create and host a new room
type CreateRoomMsg struct {
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	PotatoSpeed float64 `json:"potatoSpeed"`
	MaxPlayers  int     `json:"maxPlayers"`
	IsPrivate   bool    `json:"isPrivate"`
}

// JoinRoomMsg is sent to join an existing room by code
type JoinRoomMsg struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

// InputMsg carries the desired world position and an optional ability key
type InputMsg struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Key string  `json:"key,omitempty"`
}

// PingCheckMsg echoes a client timestamp for RTT measurement
type PingCheckMsg struct {
	Timestamp int64 `json:"timestamp"`
}

// UpdatePingMsg reports the client-measured round-trip in ms
type UpdatePingMsg struct {
	Ping int `json:"ping"`
}

// RoomJoinedMsg confirms room entry to the joining client
type RoomJoinedMsg struct {
	RoomID        string  `json:"roomId"`
	IsHost        bool    `json:"isHost"`
	PlayerID      string  `json:"playerId"`
	SpeedModifier float64 `json:"speedModifier"`
	MaxPlayers    int     `json:"maxPlayers"`
	IsPrivate     bool    `json:"isPrivate"`
}

// RoomUpdateMsg is the lobby roster broadcast on membership change
type RoomUpdateMsg struct {
	Players []PlayerState `json:"players"`
	HostID  string        `json:"hostId"`
}

// LobbyInfo is one public room in the lobby listing
type LobbyInfo struct {
	ID         string `json:"id"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	State      string `json:"state"`
}

// ErrorMsg sends a single human-readable error to the requester
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// PlayerState is the wire shape of a player
type PlayerState struct {
	ID         string  `json:"id" msgpack:"id"`
	Name       string  `json:"name" msgpack:"n"`
	Color      string  `json:"color" msgpack:"c"`
	IsBot      bool    `json:"isBot" msgpack:"b"`
	X          float64 `json:"x" msgpack:"x"`
	Y          float64 `json:"y" msgpack:"y"`
	Radius     float64 `json:"radius" msgpack:"r"`
	Speed      float64 `json:"speed" msgpack:"sp"`
	IsDead     bool    `json:"isDead" msgpack:"d"`
	Score      float64 `json:"score" msgpack:"sc"`
	Lives      int     `json:"lives" msgpack:"l"`
	Ping       int     `json:"ping" msgpack:"pg"`
	DashCD     float64 `json:"dashCooldown" msgpack:"dc"`
	ShieldCD   float64 `json:"shieldCooldown" msgpack:"shc"`
	SmokeCD    float64 `json:"smokeCooldown" msgpack:"smc"`
	SlimeCD    float64 `json:"slimeCooldown" msgpack:"slc"`
	IsShielded bool    `json:"isShielded" msgpack:"sh"`
	IsHidden   bool    `json:"isHidden" msgpack:"h"`
	IsGhost    bool    `json:"isGhost" msgpack:"g"`
	IsSilenced bool    `json:"isSilenced" msgpack:"si"`
	IsSlowed   bool    `json:"isSlowed" msgpack:"sl"`
}

// PotatoState is the wire shape of a potato
type PotatoState struct {
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Radius   float64 `json:"radius" msgpack:"r"`
	Speed    float64 `json:"speed" msgpack:"sp"`
	TargetID string  `json:"targetId,omitempty" msgpack:"t"`
	IsFrozen bool    `json:"isFrozen" msgpack:"f"`
}

// PowerupState is the wire shape of a powerup
type PowerupState struct {
	ID     string  `json:"id" msgpack:"id"`
	Type   string  `json:"type" msgpack:"t"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Radius float64 `json:"radius" msgpack:"r"`
}

// SlimeAreaState is the wire shape of a slime puddle
type SlimeAreaState struct {
	ID        string  `json:"id" msgpack:"id"`
	OwnerID   string  `json:"ownerId" msgpack:"o"`
	X         float64 `json:"x" msgpack:"x"`
	Y         float64 `json:"y" msgpack:"y"`
	Radius    float64 `json:"radius" msgpack:"r"`
	SpawnTime int64   `json:"spawnTime" msgpack:"st"`
	Duration  int64   `json:"duration" msgpack:"d"`
}

// GameState is the authoritative per-tick snapshot, broadcast to every
// room member as a msgpack binary frame
type GameState struct {
	Players    []PlayerState    `json:"players" msgpack:"p"`
	Potatoes   []PotatoState    `json:"potatoes" msgpack:"pt"`
	Obstacles  []*Obstacle      `json:"obstacles" msgpack:"o"`
	Powerups   []PowerupState   `json:"powerups" msgpack:"pu"`
	SlimeAreas []SlimeAreaState `json:"slimeAreas" msgpack:"s"`
	Tick       uint64           `json:"tick" msgpack:"tk"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMsg authenticates with credentials
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg authenticates with a previously issued token
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"playerId"`
}

// ProfileDataMsg returns the stored arena stats for the account
type ProfileDataMsg struct {
	Username     string  `json:"username"`
	Games        int     `json:"games"`
	Wins         int     `json:"wins"`
	Deaths       int     `json:"deaths"`
	Powerups     int     `json:"powerups"`
	BestScore    float64 `json:"bestScore"`
	SurvivalSecs float64 `json:"survivalSecs"`
}

// LeaderboardMsg requests the top players
type LeaderboardMsg struct {
	OrderBy string `json:"orderBy"`
	Limit   int    `json:"limit"`
}
