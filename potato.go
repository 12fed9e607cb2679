package main

import "math"

const (
	PotatoRadius = 20.0
	PotatoSpeed  = 230.0 // slightly slower than players
	MaxPotatoes  = 10

	ExtraPotatoSpeedMult = 1.1
	PotatoScoreStep      = 500.0
	ShieldFreezeMs       = 1000
	DeathSpeedRamp       = 0.1

	// Seek stops inside this distance to avoid jitter at the target
	potatoArriveDist = 1.0
)

// Potato is the AI-controlled hazard that chases the nearest visible player
type Potato struct {
	X, Y      float64
	VX, VY    float64 // unused for movement, kept for the wire shape
	Radius    float64
	Speed     float64
	TargetID  string // re-resolved every tick, empty when no eligible target
	IsFrozen  bool
	FreezeEnd int64 // absolute ms timestamp
}

// NewPotato creates a potato at the given position with the given speed
func NewPotato(x, y, speed float64) *Potato {
	return &Potato{
		X:      x,
		Y:      y,
		Radius: PotatoRadius,
		Speed:  speed,
	}
}

// Freeze stops the potato until nowMs+durMs. Already-frozen potatoes keep
// their existing window.
func (pt *Potato) Freeze(nowMs, durMs int64) {
	if pt.IsFrozen {
		return
	}
	pt.IsFrozen = true
	pt.FreezeEnd = nowMs + durMs
}

// ForceFreeze refreshes the freeze window unconditionally (FREEZE powerup)
func (pt *Potato) ForceFreeze(nowMs, durMs int64) {
	pt.IsFrozen = true
	pt.FreezeEnd = nowMs + durMs
}

// Update unfreezes an expired potato, picks the nearest eligible player as
// target, and seeks toward it. Dead, hidden, and ghost players are
// invisible to the potato. Ties go to the first player seen.
func (pt *Potato) Update(dt float64, nowMs int64, speedMult float64, players []*Player) {
	if pt.IsFrozen && nowMs > pt.FreezeEnd {
		pt.IsFrozen = false
	}
	if pt.IsFrozen {
		return
	}

	minDist := math.Inf(1)
	var target *Player
	for _, p := range players {
		if p.IsDead || p.IsHidden || p.IsGhost {
			continue
		}
		d := Distance(p.X, p.Y, pt.X, pt.Y)
		if d < minDist {
			minDist = d
			target = p
		}
	}

	if target == nil {
		pt.TargetID = ""
		return
	}
	pt.TargetID = target.ID

	dx := target.X - pt.X
	dy := target.Y - pt.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist > potatoArriveDist {
		speed := pt.Speed * speedMult
		pt.X += (dx / dist) * speed * dt
		pt.Y += (dy / dist) * speed * dt
	}
}

// ToState converts to protocol state
func (pt *Potato) ToState() PotatoState {
	return PotatoState{
		X:        pt.X,
		Y:        pt.Y,
		Radius:   pt.Radius,
		Speed:    pt.Speed,
		TargetID: pt.TargetID,
		IsFrozen: pt.IsFrozen,
	}
}
