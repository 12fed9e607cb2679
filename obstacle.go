package main

const (
	NumObstacles        = 15
	ObstacleMinSize     = 100.0
	ObstacleSizeRange   = 200.0
	MinObstacleGap      = 80.0
	CenterExclusion     = 300.0 // keep the middle of the field clear
	ObstaclePlaceTries  = 1000
	SafeSpawnTries      = 50
	SafeSpawnMargin     = 100.0
	FallbackSpawnX      = 500.0
	FallbackSpawnY      = 500.0
)

// Obstacle is a static axis-aligned rectangle, fixed at room creation
type Obstacle struct {
	ID     string  `json:"id" msgpack:"id"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Width  float64 `json:"width" msgpack:"w"`
	Height float64 `json:"height" msgpack:"h"`
}

// GenerateObstacles scatters up to NumObstacles non-overlapping rectangles
// across the field, leaving the center region clear. Running out of
// placement attempts with fewer placed is tolerated.
func GenerateObstacles() []*Obstacle {
	obstacles := make([]*Obstacle, 0, NumObstacles)
	attempts := 0

	for len(obstacles) < NumObstacles && attempts < ObstaclePlaceTries {
		attempts++
		w := randFloat()*ObstacleSizeRange + ObstacleMinSize
		h := randFloat()*ObstacleSizeRange + ObstacleMinSize
		ox := randFloat() * (WorldWidth - w)
		oy := randFloat() * (WorldHeight - h)

		if abs(ox-WorldWidth/2) < CenterExclusion && abs(oy-WorldHeight/2) < CenterExclusion {
			continue
		}

		tooClose := false
		for _, obs := range obstacles {
			if RectsOverlapWithGap(ox, oy, w, h, obs.X, obs.Y, obs.Width, obs.Height, MinObstacleGap) {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		obstacles = append(obstacles, &Obstacle{
			ID:     GenerateID(3),
			X:      ox,
			Y:      oy,
			Width:  w,
			Height: h,
		})
	}
	return obstacles
}

// FindSafeSpawn rejection-samples a point not inside any obstacle, falling
// back to (500,500) when the attempts run out.
func FindSafeSpawn(obstacles []*Obstacle) (float64, float64) {
	for i := 0; i < SafeSpawnTries; i++ {
		px := randFloat()*(WorldWidth-2*SafeSpawnMargin) + SafeSpawnMargin
		py := randFloat()*(WorldHeight-2*SafeSpawnMargin) + SafeSpawnMargin
		safe := true
		for _, obs := range obstacles {
			if PointInRect(px, py, obs) {
				safe = false
				break
			}
		}
		if safe {
			return px, py
		}
	}
	return FallbackSpawnX, FallbackSpawnY
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
