// Package platformer implements the platformer arena engine, §4.C.2.
package platformer

import "math/rand/v2"

// TileKind is the per-cell terrain type of the generated course.
type TileKind uint8

const (
	TileEmpty TileKind = iota
	TileSolid
	TilePlatform
	TileHazard
	TileCheckpoint
	TileFinish
)

const (
	tileSize   = 1.0
	courseCols = 40
	courseRows = 8
)

// PowerUpKind names a collectible in the arena.
type PowerUpKind int

const (
	PowerUpSpeedBoost PowerUpKind = iota
	PowerUpDoubleJump
	PowerUpShield
)

// PowerUpSpawn is a fixed collection point; RespawnsAt (if > 0) marks when a
// collected spawn becomes available again.
type PowerUpSpawn struct {
	Index      int
	Kind       PowerUpKind
	Col        int
	Row        int
	Collected  bool
	RespawnsAt float64
}

// Course is a generated tile grid plus its power-up spawns. Same seed
// always yields a byte-identical course, §4.C.2.
type Course struct {
	Cols      int
	Rows      int
	Tiles     []TileKind // row-major, len == Cols*Rows
	SpawnCol  int
	SpawnRow  int
	PowerUps  []PowerUpSpawn
	HazardRow int // ground row index; the engine does not read it (the survival hazard starts at y = -10)
}

func (c *Course) at(col, row int) TileKind {
	if col < 0 || col >= c.Cols || row < 0 || row >= c.Rows {
		return TileSolid
	}
	return c.Tiles[row*c.Cols+col]
}

func (c *Course) set(col, row int, kind TileKind) {
	if col < 0 || col >= c.Cols || row < 0 || row >= c.Rows {
		return
	}
	c.Tiles[row*c.Cols+col] = kind
}

// GenerateCourse produces a deterministic course for seed using a PCG
// generator so replays and tests are reproducible, §4.C.2/§9.
func GenerateCourse(seed uint64) Course {
	rng := rand.New(rand.NewPCG(seed, seed))

	course := Course{
		Cols:      courseCols,
		Rows:      courseRows,
		Tiles:     make([]TileKind, courseCols*courseRows),
		HazardRow: courseRows - 1,
	}
	groundRow := courseRows - 1

	for col := 0; col < courseCols; col++ {
		course.set(col, groundRow, TileSolid)
	}
	course.SpawnCol = 0
	course.SpawnRow = groundRow - 1

	col := 3
	for col < courseCols-4 {
		gapLen := 1 + rng.IntN(3)
		for g := 0; g < gapLen && col < courseCols-4; g++ {
			course.set(col, groundRow, TileEmpty)
			col++
		}
		col += 1 + rng.IntN(3)

		if rng.IntN(3) == 0 && col < courseCols-6 {
			platformRow := groundRow - 2 - rng.IntN(2)
			platformLen := 2 + rng.IntN(3)
			for p := 0; p < platformLen && col+p < courseCols-4; p++ {
				course.set(col+p, platformRow, TilePlatform)
			}
		}
		if rng.IntN(4) == 0 && col < courseCols-4 {
			course.set(col, groundRow-1, TileHazard)
		}
		if rng.IntN(5) == 0 {
			course.set(col, groundRow, TileCheckpoint)
		}
	}

	for c := courseCols - 3; c < courseCols; c++ {
		course.set(c, groundRow, TileSolid)
	}
	course.set(courseCols-2, groundRow-1, TileFinish)

	powerUpKinds := []PowerUpKind{PowerUpSpeedBoost, PowerUpDoubleJump, PowerUpShield}
	spawnCount := 3 + rng.IntN(4)
	for i := 0; i < spawnCount; i++ {
		spawnCol := 4 + rng.IntN(courseCols-8)
		kind := powerUpKinds[rng.IntN(len(powerUpKinds))]
		course.PowerUps = append(course.PowerUps, PowerUpSpawn{
			Index: i, Kind: kind, Col: spawnCol, Row: groundRow - 1,
		})
	}

	return course
}
