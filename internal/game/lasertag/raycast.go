package lasertag

import (
	"math"

	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/vecmath"
)

const maxBounces = 3

// hitResult is the outcome of a single fired shot.
type hitResult struct {
	Victim domain.PlayerID
	Hit    bool
}

// fire casts a ray from origin along aimAngle, bouncing off reflective
// walls up to maxBounces times, and returns the first eligible player it
// strikes, §4.C.3.
func fire(origin vecmath.Vec2, aimAngle float64, shooter domain.PlayerID, arena Arena, candidates map[domain.PlayerID]vecmath.Vec2, excluded map[domain.PlayerID]bool, maxRange, playerRadius float64) hitResult {
	dir := vecmath.Vec2{X: math.Cos(aimAngle), Y: math.Sin(aimAngle)}
	remaining := maxRange
	bounces := maxBounces

	for remaining > 0 {
		bestWallT := math.Inf(1)
		bestWallIdx := -1
		for i, wall := range arena.Walls {
			if t, _, ok := vecmath.RaySegmentIntersection(origin, dir, wall.Segment, remaining); ok && t < bestWallT {
				bestWallT = t
				bestWallIdx = i
			}
		}

		bestPlayerT := math.Inf(1)
		var bestPlayer domain.PlayerID
		foundPlayer := false
		for id, pos := range candidates {
			if id == shooter || excluded[id] {
				continue
			}
			if t, ok := vecmath.RayCircleIntersection(origin, dir, pos, playerRadius, remaining); ok && t < bestPlayerT {
				bestPlayerT = t
				bestPlayer = id
				foundPlayer = true
			}
		}

		if foundPlayer && bestPlayerT <= bestWallT {
			return hitResult{Victim: bestPlayer, Hit: true}
		}
		if bestWallIdx < 0 {
			return hitResult{}
		}

		wall := arena.Walls[bestWallIdx]
		if wall.Kind == WallSolid || bounces <= 0 {
			return hitResult{}
		}

		hitPoint := origin.Add(dir.Scale(bestWallT))
		normal := wallNormal(wall.Segment)
		dir = reflectDir(dir, normal)
		origin = hitPoint.Add(dir.Scale(1e-3))
		remaining -= bestWallT
		bounces--
	}
	return hitResult{}
}

func wallNormal(seg vecmath.Segment) vecmath.Vec2 {
	along := seg.B.Sub(seg.A).Normalized()
	return vecmath.Vec2{X: -along.Y, Y: along.X}
}

func reflectDir(dir, normal vecmath.Vec2) vecmath.Vec2 {
	d := dir.Dot(normal)
	return dir.Sub(normal.Scale(2 * d)).Normalized()
}
