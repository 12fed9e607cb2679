package main

// CheckCollision checks if two circles overlap.
// Touching at exact radius sum does not count.
func CheckCollision(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	dist2 := dx*dx + dy*dy
	radSum := r1 + r2
	return dist2 < radSum*radSum
}

// CircleRectOverlap checks if a circle overlaps an axis-aligned rectangle.
// Clamps the circle center into the rect to find the nearest point, then
// compares squared distance against the radius.
func CircleRectOverlap(cx, cy, cr float64, rect *Obstacle) bool {
	testX := Clamp(cx, rect.X, rect.X+rect.Width)
	testY := Clamp(cy, rect.Y, rect.Y+rect.Height)
	dx := cx - testX
	dy := cy - testY
	return dx*dx+dy*dy <= cr*cr
}

// PointInRect checks if a point lies strictly inside a rectangle.
// Points on the boundary are outside, matching the spawn-safety rule.
func PointInRect(px, py float64, rect *Obstacle) bool {
	return px > rect.X && px < rect.X+rect.Width &&
		py > rect.Y && py < rect.Y+rect.Height
}

// RectsOverlapWithGap checks if two rectangles overlap when the first is
// inflated by gap on every side
func RectsOverlapWithGap(ax, ay, aw, ah, bx, by, bw, bh, gap float64) bool {
	overlapX := ax < bx+bw+gap && ax+aw > bx-gap
	overlapY := ay < by+bh+gap && ay+ah > by-gap
	return overlapX && overlapY
}
