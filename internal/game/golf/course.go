// Package golf implements the mini-golf engine, §4.C.1.
package golf

import "github.com/lguibr/breakpoint/internal/vecmath"

// Bumper is a circular obstacle that imparts a fixed bounce speed along
// its outward normal on contact.
type Bumper struct {
	Center vecmath.Vec2
	Radius float64
}

// Course is a declarative hole definition: geometry, par, and obstacles.
type Course struct {
	Name    string
	Width   float64
	Depth   float64
	Par     int
	Spawn   vecmath.Vec2
	Hole    vecmath.Vec2
	Walls   []vecmath.Segment
	Bumpers []Bumper
}

// Catalogue is the built-in nine-hole rotation, in play order. hole_index
// in Init's config selects into this slice via CourseForHoleIndex (never
// panics).
var Catalogue = []Course{
	{
		Name: "Gentle Straight", Width: 12, Depth: 24, Par: 2,
		Spawn: vecmath.Vec2{X: 6, Y: 3}, Hole: vecmath.Vec2{X: 6, Y: 21},
		Walls: boundaryWalls(12, 24),
	},
	{
		Name: "Corner Pocket", Width: 14, Depth: 20, Par: 3,
		Spawn: vecmath.Vec2{X: 2, Y: 2}, Hole: vecmath.Vec2{X: 12, Y: 18},
		Walls: append(boundaryWalls(14, 20), vecmath.Segment{
			A: vecmath.Vec2{X: 7, Y: 0}, B: vecmath.Vec2{X: 7, Y: 12},
		}),
	},
	{
		Name: "Bumper Alley", Width: 10, Depth: 26, Par: 3,
		Spawn: vecmath.Vec2{X: 5, Y: 2}, Hole: vecmath.Vec2{X: 5, Y: 24},
		Walls:   boundaryWalls(10, 26),
		Bumpers: []Bumper{{Center: vecmath.Vec2{X: 5, Y: 13}, Radius: 1.5}},
	},
	{
		Name: "Dogleg Left", Width: 18, Depth: 18, Par: 4,
		Spawn: vecmath.Vec2{X: 2, Y: 2}, Hole: vecmath.Vec2{X: 2, Y: 16},
		Walls: append(boundaryWalls(18, 18), vecmath.Segment{
			A: vecmath.Vec2{X: 5, Y: 6}, B: vecmath.Vec2{X: 16, Y: 6},
		}),
	},
	{
		Name: "Windmill", Width: 14, Depth: 14, Par: 4,
		Spawn: vecmath.Vec2{X: 2, Y: 7}, Hole: vecmath.Vec2{X: 12, Y: 7},
		Walls:   boundaryWalls(14, 14),
		Bumpers: []Bumper{{Center: vecmath.Vec2{X: 7, Y: 7}, Radius: 2}},
	},
	{
		Name: "Long Shot", Width: 8, Depth: 32, Par: 3,
		Spawn: vecmath.Vec2{X: 4, Y: 2}, Hole: vecmath.Vec2{X: 4, Y: 30},
		Walls: boundaryWalls(8, 32),
	},
	{
		Name: "Zig Zag", Width: 16, Depth: 22, Par: 4,
		Spawn: vecmath.Vec2{X: 2, Y: 2}, Hole: vecmath.Vec2{X: 14, Y: 20},
		Walls: append(boundaryWalls(16, 22),
			vecmath.Segment{A: vecmath.Vec2{X: 6, Y: 0}, B: vecmath.Vec2{X: 6, Y: 14}},
			vecmath.Segment{A: vecmath.Vec2{X: 10, Y: 8}, B: vecmath.Vec2{X: 10, Y: 22}},
		),
	},
	{
		Name: "Double Bumper", Width: 14, Depth: 20, Par: 3,
		Spawn: vecmath.Vec2{X: 7, Y: 2}, Hole: vecmath.Vec2{X: 7, Y: 18},
		Walls: boundaryWalls(14, 20),
		Bumpers: []Bumper{
			{Center: vecmath.Vec2{X: 4, Y: 10}, Radius: 1.5},
			{Center: vecmath.Vec2{X: 10, Y: 10}, Radius: 1.5},
		},
	},
	{
		Name: "Island Green", Width: 20, Depth: 20, Par: 5,
		Spawn: vecmath.Vec2{X: 2, Y: 2}, Hole: vecmath.Vec2{X: 18, Y: 18},
		Walls: boundaryWalls(20, 20),
	},
}

func boundaryWalls(width, depth float64) []vecmath.Segment {
	return []vecmath.Segment{
		{A: vecmath.Vec2{X: 0, Y: 0}, B: vecmath.Vec2{X: width, Y: 0}},
		{A: vecmath.Vec2{X: width, Y: 0}, B: vecmath.Vec2{X: width, Y: depth}},
		{A: vecmath.Vec2{X: width, Y: depth}, B: vecmath.Vec2{X: 0, Y: depth}},
		{A: vecmath.Vec2{X: 0, Y: depth}, B: vecmath.Vec2{X: 0, Y: 0}},
	}
}

// CourseForHoleIndex maps an out-of-range index onto the catalogue instead
// of panicking: negative indices select hole 0, and indices past the end
// wrap around modulo len(Catalogue).
func CourseForHoleIndex(idx int) Course {
	if idx < 0 {
		idx = 0
	}
	if idx >= len(Catalogue) {
		idx = idx % len(Catalogue)
	}
	return Catalogue[idx]
}
