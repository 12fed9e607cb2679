package main

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate     = 60 // simulation ticks per second
	TickDuration = time.Second / TickRate

	DefaultMaxPlayers = 12
	MaxRoomPlayers    = 20

	RoomStateWaiting = "WAITING"
	RoomStatePlaying = "PLAYING"
)

// Broadcaster is the transport-facing contract for one room member
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Room is one independent simulation instance. It owns every contained
// entity; nothing inside outlives the room. All mutable state is guarded
// by mu, and the tick loop plus input application are the only writers.
type Room struct {
	mu sync.Mutex

	ID                 string
	HostID             string
	InitialPotatoSpeed float64
	MaxPlayers         int
	IsPrivate          bool
	State              string

	players   map[string]*Player
	order     []string // join order; map iteration is not stable enough for targeting ties
	potatoes  []*Potato
	powerups  []*Powerup
	obstacles []*Obstacle
	slime     []*SlimeArea
	clients   map[string]Broadcaster

	potatoSpeedMultiplier float64
	lastUpdate            int64 // ms
	startedAt             int64 // ms
	tick                  uint64

	running bool
	stop    chan struct{}

	db        *DB
	analytics *Analytics
}

// NewRoom creates a room in WAITING state with a fresh obstacle field and
// a single potato. Out-of-range configuration is clamped, not rejected.
func NewRoom(id, hostID string, potatoSpeed float64, maxPlayers int, isPrivate bool, db *DB, analytics *Analytics) *Room {
	if potatoSpeed <= 0 {
		potatoSpeed = 1.0
	}
	potatoSpeed = Clamp(potatoSpeed, 0.25, 4.0)
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	if maxPlayers > MaxRoomPlayers {
		maxPlayers = MaxRoomPlayers
	}

	r := &Room{
		ID:                    id,
		HostID:                hostID,
		InitialPotatoSpeed:    potatoSpeed,
		MaxPlayers:            maxPlayers,
		IsPrivate:             isPrivate,
		State:                 RoomStateWaiting,
		players:               make(map[string]*Player),
		clients:               make(map[string]Broadcaster),
		obstacles:             GenerateObstacles(),
		potatoSpeedMultiplier: 1.0,
		lastUpdate:            nowMs(),
		stop:                  make(chan struct{}),
		db:                    db,
		analytics:             analytics,
	}
	r.potatoes = []*Potato{NewPotato(100, 100, PotatoSpeed*potatoSpeed)}
	return r
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}

// Run drives the room at the fixed tick rate until Stop
func (r *Room) Run() {
	r.mu.Lock()
	r.running = true
	r.mu.Unlock()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Update()
		case <-r.stop:
			return
		}
	}
}

// Stop terminates the room's tick loop
func (r *Room) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		r.running = false
		close(r.stop)
	}
}

// AddPlayer joins a player at a safe spawn. Returns nil when the room is
// at capacity.
func (r *Room) AddPlayer(id, name, color string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) >= r.MaxPlayers {
		return nil
	}
	x, y := FindSafeSpawn(r.obstacles)
	p := NewPlayer(id, name, color, x, y)
	r.players[id] = p
	r.order = append(r.order, id)
	return p
}

// RemovePlayer drops a player. Returns whether the room is now empty and
// the new host id if the host changed.
func (r *Room) RemovePlayer(id string) (empty bool, newHost string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[id]; !ok && len(r.players) == 0 {
		return true, ""
	}
	delete(r.players, id)
	delete(r.clients, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if len(r.players) == 0 {
		return true, ""
	}
	if id == r.HostID {
		r.HostID = r.order[0]
		return false, r.HostID
	}
	return false, ""
}

// SetClient associates a broadcaster with a player
func (r *Room) SetClient(playerID string, client Broadcaster) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[playerID] = client
}

// PlayerCount returns the number of players
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// StartGame transitions WAITING -> PLAYING. Host only. Positions, lives,
// scores, slime cooldowns, and slime areas reset; obstacle layout, potato
// count, and the speed multiplier carry over from room construction.
func (r *Room) StartGame(byID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if byID != r.HostID {
		return false
	}
	r.State = RoomStatePlaying
	now := nowMs()
	r.lastUpdate = now
	r.startedAt = now
	for _, id := range r.order {
		p := r.players[id]
		x, y := FindSafeSpawn(r.obstacles)
		p.ResetForStart(x, y)
	}
	r.slime = nil
	return true
}

// HandleInput buffers a player's pointer position and handles an ability
// keypress. Coordinates are clamped into the world; a silenced player's
// key is swallowed entirely.
func (r *Room) HandleInput(playerID string, input InputMsg) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return
	}
	p.InputX = Clamp(input.X, 0, WorldWidth)
	p.InputY = Clamp(input.Y, 0, WorldHeight)

	if input.Key == "" || p.IsSilenced {
		return
	}
	if p.UseAbility(input.Key, nowMs()) {
		r.slime = append(r.slime, NewSlimeArea(p.ID, p.X, p.Y, nowMs()))
	}
}

// UpdatePing stores the latest round-trip estimate for a player
func (r *Room) UpdatePing(playerID string, ping int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[playerID]; ok {
		p.Ping = ping
	}
}

// Update advances the simulation by wall-clock elapsed time and broadcasts
// the resulting snapshot. No-op outside PLAYING.
func (r *Room) Update() {
	r.mu.Lock()
	if r.State != RoomStatePlaying {
		r.mu.Unlock()
		return
	}
	now := nowMs()
	r.step(now)
	data := r.snapshotLocked()
	clients := make([]Broadcaster, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	if data == nil {
		return
	}
	for _, c := range clients {
		c.SendBinary(data)
	}
}

// step runs one tick against an explicit clock. Caller holds mu.
func (r *Room) step(now int64) {
	dt := float64(now-r.lastUpdate) / 1000.0
	if dt < 0 {
		dt = 0
	}
	r.lastUpdate = now
	r.tick++

	// Expire slime puddles first so this tick sees only live areas
	live := r.slime[:0]
	for _, s := range r.slime {
		if !s.Expired(now) {
			live = append(live, s)
		}
	}
	r.slime = live

	for _, id := range r.order {
		p := r.players[id]
		if p.IsDead {
			continue
		}
		r.stepPlayer(p, dt, now)
	}

	players := r.playersInOrder()
	for _, pt := range r.potatoes {
		pt.Update(dt, now, r.potatoSpeedMultiplier, players)
	}

	if randFloat() < PowerupSpawnChance && len(r.powerups) < MaxPowerups {
		if pu := SpawnPowerup(now, r.obstacles); pu != nil {
			r.powerups = append(r.powerups, pu)
		}
	}

	r.resolveCollisions(now)
}

// stepPlayer runs the cooldown/status/slime/score/movement pipeline for
// one living player
func (r *Room) stepPlayer(p *Player, dt float64, now int64) {
	p.TickCooldowns(dt * 1000)
	p.DeriveStatuses(now)

	moveSpeed := p.Speed
	if now > p.SpeedBoostEnd {
		moveSpeed = BaseSpeed
	}

	p.IsSilenced = false
	p.IsSlowed = false
	for _, s := range r.slime {
		if !s.Covers(p) {
			continue
		}
		// Slow stacks multiplicatively across overlapping puddles; the
		// booleans are just overwritten
		moveSpeed *= SlimeSlowFactor
		p.IsSlowed = true
		p.IsSilenced = true

		// Strip active buffs and hold shield/smoke down briefly so the
		// derived window cannot re-trigger on the next tick
		p.SpeedBoostEnd = 0
		p.IsShielded = false
		p.ShieldCooldown = math.Max(p.ShieldCooldown, slimeStripCooldownMs)
		p.IsHidden = false
		p.SmokeCooldown = math.Max(p.SmokeCooldown, slimeStripCooldownMs)
		p.IsGhost = false
		p.GhostEnd = 0
	}
	p.Speed = moveSpeed

	p.Score += dt * ScorePerSecond

	// The first player across each score threshold grows the potato pack
	expected := 1 + int(p.Score/PotatoScoreStep)
	if len(r.potatoes) < expected && len(r.potatoes) < MaxPotatoes {
		r.potatoes = append(r.potatoes, NewPotato(50, 50, PotatoSpeed*ExtraPotatoSpeedMult))
	}

	p.Move(dt, r.obstacles)
}

// resolveCollisions settles potato contacts and powerup pickups once per
// tick, after movement
func (r *Room) resolveCollisions(now int64) {
	for _, pt := range r.potatoes {
		for _, id := range r.order {
			p := r.players[id]
			if p.IsDead {
				continue
			}
			if !CheckCollision(p.X, p.Y, p.Radius, pt.X, pt.Y, pt.Radius) {
				continue
			}
			if p.IsShielded {
				pt.Freeze(now, ShieldFreezeMs)
			} else if !pt.IsFrozen && !p.IsGhost {
				r.hitPlayer(p, now)
			}
		}
	}

	kept := r.powerups[:0]
	for _, pu := range r.powerups {
		collected := false
		for _, id := range r.order {
			p := r.players[id]
			if p.IsDead {
				continue
			}
			if CheckCollision(p.X, p.Y, p.Radius, pu.X, pu.Y, pu.Radius) {
				collected = true
				p.Score += PickupScore
				r.applyPowerup(p, pu.Type, now)
				r.trackPlayer(EvtPowerupPickup, p, pu.Type.String())
				r.recordPowerup(p)
				break // removal is immediate, first player in order wins
			}
		}
		if !collected {
			kept = append(kept, pu)
		}
	}
	r.powerups = kept
}

// hitPlayer takes a life from an unprotected player
func (r *Room) hitPlayer(p *Player, now int64) {
	p.Lives--
	if p.Lives <= 0 {
		p.Lives = 0
		p.IsDead = true
		r.potatoSpeedMultiplier += DeathSpeedRamp
		r.trackPlayer(EvtPlayerDeath, p, fmt.Sprintf(`{"score":%.0f}`, p.Score))
		r.recordDeath(p, now)
		r.maybeRecordWin(now)
	} else {
		x, y := FindSafeSpawn(r.obstacles)
		p.X = x
		p.Y = y
		// Full shield cooldown doubles as respawn grace via the derived
		// shield window
		p.ShieldCooldown = ShieldCooldownMs
	}
}

// applyPowerup dispatches a pickup effect. MAGNET and DOUBLE_POINTS are
// valid types with no effect beyond the pickup bonus.
func (r *Room) applyPowerup(p *Player, t PowerupType, now int64) {
	switch t {
	case PowerupSpeed:
		p.SpeedBoostEnd = now + SpeedBoostMs
		p.Speed = BaseSpeed * SpeedBoostMult
	case PowerupCooldownReset:
		p.DashCooldown = 0
		p.ShieldCooldown = 0
		p.SmokeCooldown = 0
		p.SlimeCooldown = 0
	case PowerupFreeze:
		for _, pt := range r.potatoes {
			pt.ForceFreeze(now, FreezeAllMs)
		}
	case PowerupGhost:
		p.GhostEnd = now + GhostDurationMs
		p.IsGhost = true
	case PowerupMagnet, PowerupDoublePoints:
	}
}

// playersInOrder returns players in join order. Caller holds mu.
func (r *Room) playersInOrder() []*Player {
	out := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.players[id])
	}
	return out
}

// snapshotLocked encodes the authoritative state as a msgpack frame.
// Caller holds mu.
func (r *Room) snapshotLocked() []byte {
	state := GameState{
		Players:    make([]PlayerState, 0, len(r.players)),
		Potatoes:   make([]PotatoState, 0, len(r.potatoes)),
		Obstacles:  r.obstacles,
		Powerups:   make([]PowerupState, 0, len(r.powerups)),
		SlimeAreas: make([]SlimeAreaState, 0, len(r.slime)),
		Tick:       r.tick,
	}
	for _, id := range r.order {
		state.Players = append(state.Players, r.players[id].ToState())
	}
	for _, pt := range r.potatoes {
		state.Potatoes = append(state.Potatoes, pt.ToState())
	}
	for _, pu := range r.powerups {
		state.Powerups = append(state.Powerups, pu.ToState())
	}
	for _, s := range r.slime {
		state.SlimeAreas = append(state.SlimeAreas, s.ToState())
	}

	data, err := msgpack.Marshal(&state)
	if err != nil {
		return nil
	}
	return data
}

// Roster returns the lobby roster message for this room
func (r *Room) Roster() RoomUpdateMsg {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := RoomUpdateMsg{HostID: r.HostID}
	for _, id := range r.order {
		msg.Players = append(msg.Players, r.players[id].ToState())
	}
	return msg
}

// BroadcastJSON sends a JSON envelope to every client in the room
func (r *Room) BroadcastJSON(msg Envelope) {
	r.mu.Lock()
	clients := make([]Broadcaster, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.Unlock()
	for _, c := range clients {
		c.SendJSON(msg)
	}
}

func (r *Room) trackPlayer(evt string, p *Player, data string) {
	if r.analytics != nil {
		r.analytics.Track(evt, p.AuthPlayerID, r.ID, data)
	}
}

// recordPowerup bumps the pickup counter for an authenticated player
func (r *Room) recordPowerup(p *Player) {
	if r.db == nil || p.AuthPlayerID == 0 {
		return
	}
	authID := p.AuthPlayerID
	go func() {
		if err := r.db.RecordPowerup(authID); err != nil {
			log.Printf("stats: record powerup: %v", err)
		}
	}()
}

// recordDeath persists round stats for an authenticated player. Runs off
// the tick goroutine so SQLite latency never stalls the room.
func (r *Room) recordDeath(p *Player, now int64) {
	if r.db == nil || p.AuthPlayerID == 0 {
		return
	}
	survival := float64(now-r.startedAt) / 1000.0
	authID := p.AuthPlayerID
	score := p.Score
	go func() {
		if err := r.db.RecordRound(authID, score, survival, false); err != nil {
			log.Printf("stats: record round: %v", err)
		}
	}()
}

// maybeRecordWin awards a win when a death leaves exactly one player
// standing. Caller holds mu.
func (r *Room) maybeRecordWin(now int64) {
	if r.db == nil {
		return
	}
	var last *Player
	alive := 0
	for _, p := range r.players {
		if !p.IsDead {
			alive++
			last = p
		}
	}
	if alive != 1 || last.AuthPlayerID == 0 {
		return
	}
	survival := float64(now-r.startedAt) / 1000.0
	authID := last.AuthPlayerID
	score := last.Score
	go func() {
		if err := r.db.RecordRound(authID, score, survival, true); err != nil {
			log.Printf("stats: record win: %v", err)
		}
	}()
}
