package main

import "github.com/google/uuid"

const (
	PowerupRadius      = 20.0
	MaxPowerups        = 5
	PowerupSpawnChance = 0.005 // per tick roll
	PowerupPlaceTries  = 20
	PickupScore        = 50.0
	FreezeAllMs        = 3000
)

// PowerupType identifies the powerup effect
type PowerupType int

const (
	PowerupSpeed PowerupType = iota
	PowerupCooldownReset
	PowerupFreeze
	PowerupGhost
	PowerupMagnet       // reserved: pickup bonus only
	PowerupDoublePoints // reserved: pickup bonus only
)

var powerupNames = [...]string{
	PowerupSpeed:         "SPEED",
	PowerupCooldownReset: "COOLDOWN_RESET",
	PowerupFreeze:        "FREEZE",
	PowerupGhost:         "GHOST",
	PowerupMagnet:        "MAGNET",
	PowerupDoublePoints:  "DOUBLE_POINTS",
}

func (t PowerupType) String() string {
	if t < 0 || int(t) >= len(powerupNames) {
		return "SPEED"
	}
	return powerupNames[t]
}

// rollPowerupType picks a type with the tuned weight table
func rollPowerupType() PowerupType {
	r := randFloat()
	switch {
	case r < 0.05:
		return PowerupFreeze
	case r < 0.20:
		return PowerupDoublePoints
	case r < 0.40:
		return PowerupSpeed
	case r < 0.60:
		return PowerupCooldownReset
	case r < 0.80:
		return PowerupGhost
	default:
		return PowerupMagnet
	}
}

// Powerup is a collectible that alters player or potato state on pickup
type Powerup struct {
	ID        string
	Type      PowerupType
	X, Y      float64
	Radius    float64
	SpawnTime int64 // absolute ms timestamp
}

// SpawnPowerup tries to place a new powerup outside all obstacles.
// Returns nil when placement attempts run out; the roll is simply lost.
func SpawnPowerup(nowMs int64, obstacles []*Obstacle) *Powerup {
	var px, py float64
	safe := false
	for i := 0; i < PowerupPlaceTries && !safe; i++ {
		px = randFloat()*(WorldWidth-2*SafeSpawnMargin) + SafeSpawnMargin
		py = randFloat()*(WorldHeight-2*SafeSpawnMargin) + SafeSpawnMargin
		safe = true
		for _, obs := range obstacles {
			if PointInRect(px, py, obs) {
				safe = false
			}
		}
	}
	if !safe {
		return nil
	}
	return &Powerup{
		ID:        uuid.NewString(),
		Type:      rollPowerupType(),
		X:         px,
		Y:         py,
		Radius:    PowerupRadius,
		SpawnTime: nowMs,
	}
}

// ToState converts to protocol state
func (pu *Powerup) ToState() PowerupState {
	return PowerupState{
		ID:     pu.ID,
		Type:   pu.Type.String(),
		X:      pu.X,
		Y:      pu.Y,
		Radius: pu.Radius,
	}
}
