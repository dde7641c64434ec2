// Package lasertag implements the laser-tag arena engine, §4.C.3.
package lasertag

import "github.com/lguibr/breakpoint/internal/vecmath"

// WallKind controls how a raycast interacts with a wall.
type WallKind int

const (
	WallSolid WallKind = iota
	WallReflective
)

// Wall is a single arena obstacle segment.
type Wall struct {
	Segment vecmath.Segment
	Kind    WallKind
}

// Arena is the static geometry a match is played in.
type Arena struct {
	Width  float64
	Depth  float64
	Walls  []Wall
}

// DefaultArena is the built-in arena layout: a bordered square with a
// central reflective pillar and two solid cover walls.
func DefaultArena() Arena {
	w, d := 40.0, 40.0
	border := []Wall{
		{Segment: vecmath.Segment{A: vecmath.Vec2{X: 0, Y: 0}, B: vecmath.Vec2{X: w, Y: 0}}, Kind: WallSolid},
		{Segment: vecmath.Segment{A: vecmath.Vec2{X: w, Y: 0}, B: vecmath.Vec2{X: w, Y: d}}, Kind: WallSolid},
		{Segment: vecmath.Segment{A: vecmath.Vec2{X: w, Y: d}, B: vecmath.Vec2{X: 0, Y: d}}, Kind: WallSolid},
		{Segment: vecmath.Segment{A: vecmath.Vec2{X: 0, Y: d}, B: vecmath.Vec2{X: 0, Y: 0}}, Kind: WallSolid},
	}
	interior := []Wall{
		{Segment: vecmath.Segment{A: vecmath.Vec2{X: 18, Y: 18}, B: vecmath.Vec2{X: 22, Y: 18}}, Kind: WallReflective},
		{Segment: vecmath.Segment{A: vecmath.Vec2{X: 8, Y: 12}, B: vecmath.Vec2{X: 8, Y: 22}}, Kind: WallSolid},
		{Segment: vecmath.Segment{A: vecmath.Vec2{X: 32, Y: 12}, B: vecmath.Vec2{X: 32, Y: 22}}, Kind: WallSolid},
	}
	return Arena{Width: w, Depth: d, Walls: append(border, interior...)}
}
