package platformer

import (
	"math"
	"time"

	"github.com/lguibr/breakpoint/internal/vecmath"
)

const (
	tickRate     = 15 // Hz, §4.C.2
	substeps     = 4
	moveSpeed    = 6.0
	jumpVelocity = 9.0
	gravity      = -24.0
	fallFloor    = -5.0
	speedBoostMult = 1.5
	hazardRiseRate = 0.5 // units/s, survival mode
	playerHalfW    = 0.4
	playerHalfH    = 0.5
	platformTolerance = 0.15
)

// Checkpoint is a forward-only respawn anchor.
type Checkpoint struct {
	X, Y float64
}

// PlayerState is one player's physical state in the arena.
type PlayerState struct {
	Position       vecmath.Vec2
	Velocity       vecmath.Vec2
	Grounded       bool
	JumpsRemaining int
	HasDoubleJump  bool
	HasShield      bool
	SpeedBoostTTL  float64
	Checkpoint     Checkpoint
	Finished       bool
	Eliminated     bool
	FinishTime     time.Duration
}

func newPlayerState(course *Course) *PlayerState {
	return &PlayerState{
		Position:       vecmath.Vec2{X: float64(course.SpawnCol) * tileSize, Y: float64(course.Rows-course.SpawnRow) * tileSize},
		JumpsRemaining: 1,
		Checkpoint:     Checkpoint{X: float64(course.SpawnCol) * tileSize, Y: float64(course.Rows-course.SpawnRow) * tileSize},
	}
}

func worldToTile(worldY float64, rows int) int {
	return rows - int(math.Floor(worldY/tileSize)) - 1
}

// respawn resets the player to their last checkpoint, clearing double-jump
// per the Hazard tile effect, §4.C.2.
func (p *PlayerState) respawn() {
	p.Position = vecmath.Vec2{X: p.Checkpoint.X, Y: p.Checkpoint.Y + 1}
	p.Velocity = vecmath.Vec2{}
	p.HasDoubleJump = false
	p.JumpsRemaining = 1
}

func (p *PlayerState) maxJumps() int {
	if p.HasDoubleJump {
		return 2
	}
	return 1
}

// substep advances one physics substep: gravity, horizontal input, tile
// collision resolution, and tile-effect application.
func substep(p *PlayerState, course *Course, moveDir float64, jumpRequested bool, dtSub float64) {
	if p.Finished || p.Eliminated {
		return
	}

	boost := 1.0
	if p.SpeedBoostTTL > 0 {
		boost = speedBoostMult
	}
	moveDir = vecmath.SanitizeFloat(moveDir)
	moveDir = vecmath.Clamp(moveDir, -1, 1)
	p.Velocity.X = moveDir * moveSpeed * boost

	if jumpRequested && p.JumpsRemaining > 0 {
		p.Velocity.Y = jumpVelocity
		p.JumpsRemaining--
	}
	p.Velocity.Y += gravity * dtSub

	p.Position.X += p.Velocity.X * dtSub
	resolveAxisCollision(p, course, true)

	wasDescending := p.Velocity.Y < 0
	prevBottom := p.Position.Y - playerHalfH
	p.Position.Y += p.Velocity.Y * dtSub
	resolveVerticalCollision(p, course, wasDescending, prevBottom)

	applyTileEffects(p, course)

	if p.Position.Y < fallFloor {
		p.respawn()
	}

	p.Position = p.Position.Sanitize()
	p.Velocity = p.Velocity.Sanitize()
}

func resolveAxisCollision(p *PlayerState, course *Course, horizontal bool) {
	if !horizontal {
		return
	}
	col := int(math.Floor((p.Position.X + sign(p.Velocity.X)*playerHalfW) / tileSize))
	row := worldToTile(p.Position.Y, course.Rows)
	if course.at(col, row) == TileSolid {
		tileLeft := float64(col) * tileSize
		if p.Velocity.X > 0 {
			p.Position.X = tileLeft - playerHalfW
		} else if p.Velocity.X < 0 {
			p.Position.X = tileLeft + tileSize + playerHalfW
		}
		p.Velocity.X = 0
	}
}

func resolveVerticalCollision(p *PlayerState, course *Course, wasDescending bool, prevBottom float64) {
	col := int(math.Floor(p.Position.X / tileSize))
	feetRow := worldToTile(p.Position.Y-playerHalfH, course.Rows)
	headRow := worldToTile(p.Position.Y+playerHalfH, course.Rows)

	grounded := false
	if kind := course.at(col, feetRow); kind == TileSolid && p.Velocity.Y <= 0 {
		tileTop := tileTopWorldY(feetRow, course.Rows)
		p.Position.Y = tileTop + playerHalfH
		p.Velocity.Y = 0
		grounded = true
	} else if kind == TilePlatform && wasDescending {
		tileTop := tileTopWorldY(feetRow, course.Rows)
		if prevBottom >= tileTop-platformTolerance {
			p.Position.Y = tileTop + playerHalfH
			p.Velocity.Y = 0
			grounded = true
		}
	}
	if course.at(col, headRow) == TileSolid && p.Velocity.Y > 0 {
		tileBottom := tileTopWorldY(headRow, course.Rows) - tileSize
		p.Position.Y = tileBottom - playerHalfH
		p.Velocity.Y = 0
	}

	p.Grounded = grounded
	if grounded {
		p.JumpsRemaining = p.maxJumps()
	}
}

func tileTopWorldY(row, rows int) float64 {
	return float64(rows-row) * tileSize
}

func applyTileEffects(p *PlayerState, course *Course) {
	col := int(math.Floor(p.Position.X / tileSize))
	row := worldToTile(p.Position.Y, course.Rows)
	switch course.at(col, row) {
	case TileHazard:
		p.respawn()
	case TileCheckpoint:
		if p.Position.X > p.Checkpoint.X {
			p.Checkpoint = Checkpoint{X: p.Position.X, Y: p.Position.Y}
		}
	case TileFinish:
		p.Finished = true
		p.Velocity = vecmath.Vec2{}
	}
}

func sign(f float64) float64 {
	if f > 0 {
		return 1
	}
	if f < 0 {
		return -1
	}
	return 0
}
