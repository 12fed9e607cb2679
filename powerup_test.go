package main

import "testing"

func TestPowerupTypeString(t *testing.T) {
	cases := map[PowerupType]string{
		PowerupSpeed:         "SPEED",
		PowerupCooldownReset: "COOLDOWN_RESET",
		PowerupFreeze:        "FREEZE",
		PowerupGhost:         "GHOST",
		PowerupMagnet:        "MAGNET",
		PowerupDoublePoints:  "DOUBLE_POINTS",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("type %d: expected %q, got %q", typ, want, got)
		}
	}
	if PowerupType(99).String() != "SPEED" {
		t.Error("out-of-range type should fall back to SPEED")
	}
}

func TestRollPowerupTypeStaysInRange(t *testing.T) {
	seen := make(map[PowerupType]bool)
	for i := 0; i < 5000; i++ {
		typ := rollPowerupType()
		if typ < PowerupSpeed || typ > PowerupDoublePoints {
			t.Fatalf("rolled unknown type %d", typ)
		}
		seen[typ] = true
	}
	// With 5000 rolls even the 5% bucket shows up
	if len(seen) != 6 {
		t.Errorf("expected all 6 types to appear, got %d", len(seen))
	}
}

func TestSpawnPowerupAvoidsObstacles(t *testing.T) {
	obstacles := GenerateObstacles()
	for i := 0; i < 50; i++ {
		pu := SpawnPowerup(1000, obstacles)
		if pu == nil {
			continue // placement attempts ran out, allowed
		}
		if pu.ID == "" {
			t.Fatal("powerup should carry an id")
		}
		if pu.Radius != PowerupRadius || pu.SpawnTime != 1000 {
			t.Fatalf("unexpected powerup %+v", pu)
		}
		for _, o := range obstacles {
			if PointInRect(pu.X, pu.Y, o) {
				t.Fatalf("powerup at (%f,%f) inside an obstacle", pu.X, pu.Y)
			}
		}
	}
}
