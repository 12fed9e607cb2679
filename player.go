package main

import "math"

const (
	WorldWidth   = 2000.0
	WorldHeight  = 2000.0
	PlayerRadius = 25.0
	BaseSpeed    = 250.0 // pixels/s
	StartingLives = 3

	MoveDeadzone   = 5.0 // ignore stale input closer than this
	ScorePerSecond = 10.0

	// Ability cooldowns (ms)
	DashCooldownMs   = 8000.0
	ShieldCooldownMs = 20000.0
	SmokeCooldownMs  = 12000.0
	SlimeCooldownMs  = 15000.0

	// Active windows (ms). Shield and smoke are "active" during the tail of
	// their cooldown right after activation; there is no separate timer.
	DashDurationMs   = 300.0
	ShieldDurationMs = 3000.0
	SmokeDurationMs  = 5000.0

	DashSpeedMult  = 2.5
	SpeedBoostMult = 1.5
	SpeedBoostMs   = 8000
	GhostDurationMs = 5000
)

// Player represents one participant in a room. All mutation happens under
// the owning room's lock.
type Player struct {
	ID     string
	Name   string
	Color  string
	IsBot  bool
	X, Y   float64
	VX, VY float64 // unused for integration, kept for telemetry
	Radius float64
	Speed  float64
	IsDead bool
	Score  float64
	Lives  int
	Ping   int

	// Countdown timers, ms remaining, floored at 0
	DashCooldown   float64
	ShieldCooldown float64
	SmokeCooldown  float64
	SlimeCooldown  float64

	// Derived each tick, never independent truth
	IsShielded bool
	IsHidden   bool
	IsGhost    bool
	IsSilenced bool
	IsSlowed   bool

	SpeedBoostEnd int64 // absolute ms timestamp
	GhostEnd      int64 // absolute ms timestamp

	// Last received desired world position
	InputX, InputY float64

	AuthPlayerID int64 // 0 = guest
}

// NewPlayer creates a player at the given spawn point
func NewPlayer(id, name, color string, x, y float64) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Color:  color,
		X:      x,
		Y:      y,
		Radius: PlayerRadius,
		Speed:  BaseSpeed,
		Lives:  StartingLives,
		InputX: x,
		InputY: y,
	}
}

// TickCooldowns decrements all four ability timers by elapsed ms
func (p *Player) TickCooldowns(dtMs float64) {
	p.DashCooldown = math.Max(0, p.DashCooldown-dtMs)
	p.ShieldCooldown = math.Max(0, p.ShieldCooldown-dtMs)
	p.SmokeCooldown = math.Max(0, p.SmokeCooldown-dtMs)
	p.SlimeCooldown = math.Max(0, p.SlimeCooldown-dtMs)
}

// DeriveStatuses recomputes the cooldown-derived status flags
func (p *Player) DeriveStatuses(nowMs int64) {
	p.IsShielded = p.ShieldCooldown > ShieldCooldownMs-ShieldDurationMs
	p.IsHidden = p.SmokeCooldown > SmokeCooldownMs-SmokeDurationMs
	p.IsGhost = nowMs < p.GhostEnd
}

// UseAbility handles an ability keypress. Returns true if a slime area
// should be spawned at the player's position. No-op while the matching
// cooldown is still running; silence is checked by the caller because the
// flag lives on last tick's derivation.
func (p *Player) UseAbility(key string, nowMs int64) bool {
	switch key {
	case "q":
		if p.DashCooldown <= 0 {
			p.DashCooldown = DashCooldownMs
			p.SpeedBoostEnd = nowMs + DashDurationMs
			p.Speed = BaseSpeed * DashSpeedMult
		}
	case "w":
		if p.ShieldCooldown <= 0 {
			p.ShieldCooldown = ShieldCooldownMs
		}
	case "e":
		if p.SmokeCooldown <= 0 {
			p.SmokeCooldown = SmokeCooldownMs
		}
	case "r":
		if p.SlimeCooldown <= 0 {
			p.SlimeCooldown = SlimeCooldownMs
			return true
		}
	}
	return false
}

// Move reconciles the player's position toward the buffered input.
// Movement below the deadzone is dropped, a step past the target snaps to
// it, and a non-ghost candidate position overlapping any obstacle rejects
// the whole move for this tick.
func (p *Player) Move(dt float64, obstacles []*Obstacle) {
	dx := p.InputX - p.X
	dy := p.InputY - p.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	step := p.Speed * dt

	nextX := p.X
	nextY := p.Y

	if dist < MoveDeadzone {
		// stay put
	} else if dist < step {
		nextX += dx
		nextY += dy
	} else {
		angle := math.Atan2(dy, dx)
		nextX += math.Cos(angle) * step
		nextY += math.Sin(angle) * step
	}

	nextX = Clamp(nextX, p.Radius, WorldWidth-p.Radius)
	nextY = Clamp(nextY, p.Radius, WorldHeight-p.Radius)

	if !p.IsGhost {
		for _, obs := range obstacles {
			if CircleRectOverlap(nextX, nextY, p.Radius, obs) {
				return
			}
		}
	}

	p.X = nextX
	p.Y = nextY
}

// ResetForStart puts the player back into round-start shape. Only the
// fields the round owns are touched; dash/shield/smoke cooldowns carry
// over from the lobby.
func (p *Player) ResetForStart(x, y float64) {
	p.X = x
	p.Y = y
	p.InputX = x
	p.InputY = y
	p.Lives = StartingLives
	p.IsDead = false
	p.Score = 0
	p.SlimeCooldown = 0
	p.IsSilenced = false
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:         p.ID,
		Name:       p.Name,
		Color:      p.Color,
		IsBot:      p.IsBot,
		X:          p.X,
		Y:          p.Y,
		Radius:     p.Radius,
		Speed:      p.Speed,
		IsDead:     p.IsDead,
		Score:      p.Score,
		Lives:      p.Lives,
		Ping:       p.Ping,
		DashCD:     p.DashCooldown,
		ShieldCD:   p.ShieldCooldown,
		SmokeCD:    p.SmokeCooldown,
		SlimeCD:    p.SlimeCooldown,
		IsShielded: p.IsShielded,
		IsHidden:   p.IsHidden,
		IsGhost:    p.IsGhost,
		IsSilenced: p.IsSilenced,
		IsSlowed:   p.IsSlowed,
	}
}
