package main

import "github.com/google/uuid"

const (
	SlimeRadius     = 80.0
	SlimeDurationMs = 3000
	SlimeSlowFactor = 0.75

	// Minimum cooldown forced onto shield/smoke when slime strips them,
	// so the derived-status window cannot re-trigger immediately
	slimeStripCooldownMs = 1000.0
)

// SlimeArea is a transient puddle that slows, silences, and strips buffs
// from every non-owner player standing in it
type SlimeArea struct {
	ID        string
	OwnerID   string // owner is exempt from the effect
	X, Y      float64
	Radius    float64
	SpawnTime int64 // absolute ms timestamp
	Duration  int64 // ms
}

// NewSlimeArea creates a puddle centered on the owning player
func NewSlimeArea(ownerID string, x, y float64, nowMs int64) *SlimeArea {
	return &SlimeArea{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		X:         x,
		Y:         y,
		Radius:    SlimeRadius,
		SpawnTime: nowMs,
		Duration:  SlimeDurationMs,
	}
}

// Expired reports whether the puddle's lifetime has run out
func (s *SlimeArea) Expired(nowMs int64) bool {
	return nowMs >= s.SpawnTime+s.Duration
}

// Covers reports whether the given player stands inside the puddle and is
// subject to its effect
func (s *SlimeArea) Covers(p *Player) bool {
	return p.ID != s.OwnerID && Distance(p.X, p.Y, s.X, s.Y) < s.Radius
}

// ToState converts to protocol state
func (s *SlimeArea) ToState() SlimeAreaState {
	return SlimeAreaState{
		ID:        s.ID,
		OwnerID:   s.OwnerID,
		X:         s.X,
		Y:         s.Y,
		Radius:    s.Radius,
		SpawnTime: s.SpawnTime,
		Duration:  s.Duration,
	}
}
