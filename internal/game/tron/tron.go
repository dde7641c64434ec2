// Package tron implements the light-cycle arena engine, §4.C.4.
package tron

import (
	"time"

	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
	"github.com/lguibr/breakpoint/internal/vecmath"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	tickRate       = 20 // Hz, §4.C.4
	cycleSpeed     = 8.0
	turnCooldown   = 0.2
	arenaSize      = 60.0
	winZoneGrace   = 15 * time.Second
	winZoneSize    = 4.0
	scoreSurvive   = 10
	scoreKill      = 3
	scoreSuicide   = -2
	scoreDeath     = -1
)

// Direction is one of the four axis-aligned headings.
type Direction int

const (
	DirNorth Direction = iota
	DirSouth
	DirEast
	DirWest
)

func (d Direction) vector() vecmath.Vec2 {
	switch d {
	case DirNorth:
		return vecmath.Vec2{X: 0, Y: 1}
	case DirSouth:
		return vecmath.Vec2{X: 0, Y: -1}
	case DirEast:
		return vecmath.Vec2{X: 1, Y: 0}
	case DirWest:
		return vecmath.Vec2{X: -1, Y: 0}
	}
	return vecmath.Vec2{}
}

func (d Direction) turnLeft() Direction {
	switch d {
	case DirNorth:
		return DirWest
	case DirWest:
		return DirSouth
	case DirSouth:
		return DirEast
	default:
		return DirNorth
	}
}

func (d Direction) turnRight() Direction {
	switch d {
	case DirNorth:
		return DirEast
	case DirEast:
		return DirSouth
	case DirSouth:
		return DirWest
	default:
		return DirNorth
	}
}

// WallSegment is one trail segment left behind a cycle.
type WallSegment struct {
	Seg      vecmath.Segment
	Owner    domain.PlayerID
	IsActive bool
}

// Cycle is a single player's light-cycle state.
type Cycle struct {
	Position      vecmath.Vec2
	Direction     Direction
	Alive         bool
	Died          bool
	IsSuicide     bool
	Kills         int
	TurnCooldown  float64
	ActiveWallIdx int
}

type turnRequest int

const (
	turnNone turnRequest = iota
	turnLeftReq
	turnRightReq
)

type inputPayload struct {
	Turn  string `msgpack:"turn"`
	Brake bool   `msgpack:"brake"`
}

type pendingInput struct {
	turn  turnRequest // transient OR-merge (latest non-none wins until consumed)
	brake bool
}

// Tron is the light-cycle arena engine.
type Tron struct {
	cycles     map[domain.PlayerID]*Cycle
	walls      []WallSegment
	pending    map[domain.PlayerID]*pendingInput
	order      []domain.PlayerID
	deathOrder []domain.PlayerID
	winZone    *vecmath.Segment // represented as an axis-aligned box via two corners in Seg.A/B
	winZoneSpawned bool
	roundTimer time.Duration
	roundLen   time.Duration
	sinceLastDeath time.Duration
	complete   bool
	paused     bool
	winnerID   domain.PlayerID
	hasWinner  bool
}

// New constructs a zero-value engine ready for Init.
func New() game.Game { return &Tron{} }

func (tr *Tron) Init(participants []game.Participant, cfg game.Config) error {
	tr.cycles = make(map[domain.PlayerID]*Cycle, len(participants))
	tr.pending = make(map[domain.PlayerID]*pendingInput, len(participants))
	tr.walls = nil
	tr.order = tr.order[:0]
	tr.deathOrder = nil
	tr.winZone = nil
	tr.winZoneSpawned = false
	tr.roundLen = cfg.RoundDuration
	tr.roundTimer = 0
	tr.sinceLastDeath = 0
	tr.complete = false
	tr.paused = false
	tr.hasWinner = false

	spawnDirs := []Direction{DirEast, DirWest, DirNorth, DirSouth}
	spawnPoints := []vecmath.Vec2{
		{X: 10, Y: arenaSize / 2}, {X: arenaSize - 10, Y: arenaSize / 2},
		{X: arenaSize / 2, Y: 10}, {X: arenaSize / 2, Y: arenaSize - 10},
	}
	for i, participant := range participants {
		pos := spawnPoints[i%len(spawnPoints)]
		dir := spawnDirs[i%len(spawnDirs)]
		tr.cycles[participant.ID] = &Cycle{Position: pos, Direction: dir, Alive: true}
		tr.pending[participant.ID] = &pendingInput{}
		tr.order = append(tr.order, participant.ID)
		wallIdx := len(tr.walls)
		tr.walls = append(tr.walls, WallSegment{Seg: vecmath.Segment{A: pos, B: pos}, Owner: participant.ID, IsActive: true})
		tr.cycles[participant.ID].ActiveWallIdx = wallIdx
	}
	return nil
}

func (tr *Tron) ApplyInput(player domain.PlayerID, payload []byte) {
	pend, ok := tr.pending[player]
	if !ok {
		return
	}
	var in inputPayload
	if err := msgpack.Unmarshal(payload, &in); err != nil {
		return
	}
	switch in.Turn {
	case "left":
		pend.turn = turnLeftReq
	case "right":
		pend.turn = turnRightReq
	}
	if in.Brake {
		pend.brake = true
	}
}

func (tr *Tron) Update(dt time.Duration, inputs map[domain.PlayerID][]byte) []game.Event {
	if tr.paused || tr.complete {
		return nil
	}
	for player, payload := range inputs {
		tr.ApplyInput(player, payload)
	}

	dtSeconds := dt.Seconds()
	var events []game.Event
	deathsBefore := len(tr.deathOrder)

	for _, id := range tr.order {
		cycle := tr.cycles[id]
		pend := tr.pending[id]
		if cycle == nil || pend == nil || !cycle.Alive {
			continue
		}
		if cycle.TurnCooldown > 0 {
			cycle.TurnCooldown -= dtSeconds
		}

		turned := false
		if pend.turn != turnNone && cycle.TurnCooldown <= 0 {
			turnPoint := cycle.Position
			if pend.turn == turnLeftReq {
				cycle.Direction = cycle.Direction.turnLeft()
			} else {
				cycle.Direction = cycle.Direction.turnRight()
			}
			cycle.TurnCooldown = turnCooldown
			turned = true
			tr.closeActiveWall(cycle, turnPoint)
			tr.openNewWall(id, cycle, turnPoint)
		}
		pend.turn = turnNone

		speed := cycleSpeed
		if pend.brake {
			speed *= 0.5
		}
		cycle.Position = cycle.Position.Add(cycle.Direction.vector().Scale(speed * dtSeconds))
		if !turned {
			tr.extendActiveWall(cycle)
		}

		if tr.checkDeath(id, cycle) {
			cycle.Alive = false
			cycle.Died = true
			tr.deathOrder = append(tr.deathOrder, id)
		}

		if tr.winZone != nil && cycle.Alive && pointInBox(cycle.Position, *tr.winZone) {
			tr.hasWinner = true
			tr.winnerID = id
		}
	}

	if !tr.hasWinner {
		if len(tr.deathOrder) > deathsBefore {
			tr.sinceLastDeath = 0
		} else {
			tr.sinceLastDeath += dt
		}
		if !tr.winZoneSpawned && tr.sinceLastDeath >= winZoneGrace {
			tr.spawnWinZone()
		}
	}

	tr.roundTimer += dt
	aliveCount := tr.aliveCount()
	if tr.hasWinner || aliveCount <= 1 || tr.roundTimer >= tr.roundLen {
		if !tr.complete {
			tr.complete = true
			events = append(events, game.Event{Kind: game.EventRoundComplete})
		}
	}
	return events
}

func (tr *Tron) closeActiveWall(cycle *Cycle, turnPoint vecmath.Vec2) {
	if cycle.ActiveWallIdx >= 0 && cycle.ActiveWallIdx < len(tr.walls) {
		tr.walls[cycle.ActiveWallIdx].Seg.B = turnPoint
		tr.walls[cycle.ActiveWallIdx].IsActive = false
	}
}

func (tr *Tron) openNewWall(id domain.PlayerID, cycle *Cycle, turnPoint vecmath.Vec2) {
	idx := len(tr.walls)
	tr.walls = append(tr.walls, WallSegment{Seg: vecmath.Segment{A: turnPoint, B: cycle.Position}, Owner: id, IsActive: true})
	cycle.ActiveWallIdx = idx
}

func (tr *Tron) extendActiveWall(cycle *Cycle) {
	if cycle.ActiveWallIdx >= 0 && cycle.ActiveWallIdx < len(tr.walls) {
		tr.walls[cycle.ActiveWallIdx].Seg.B = cycle.Position
	}
}

const wallGraceDistance = 0.15

func (tr *Tron) checkDeath(id domain.PlayerID, cycle *Cycle) bool {
	if cycle.Position.X < 0 || cycle.Position.X > arenaSize || cycle.Position.Y < 0 || cycle.Position.Y > arenaSize {
		cycle.IsSuicide = true
		return true
	}
	for i, wall := range tr.walls {
		if i == cycle.ActiveWallIdx && wall.IsActive {
			continue // the few millimeters behind the head never self-intersect
		}
		dist := wall.Seg.ClosestPoint(cycle.Position).Distance(cycle.Position)
		if dist > wallGraceDistance {
			continue
		}
		if wall.Owner == id {
			cycle.IsSuicide = true
		} else if killer := tr.cycles[wall.Owner]; killer != nil && killer.Alive {
			killer.Kills++
		}
		return true
	}
	return false
}

func (tr *Tron) aliveCount() int {
	count := 0
	for _, c := range tr.cycles {
		if c.Alive {
			count++
		}
	}
	return count
}

func (tr *Tron) spawnWinZone() {
	tr.winZoneSpawned = true
	cx, cy := arenaSize/2, arenaSize/2
	zone := vecmath.Segment{
		A: vecmath.Vec2{X: cx - winZoneSize/2, Y: cy - winZoneSize/2},
		B: vecmath.Vec2{X: cx + winZoneSize/2, Y: cy + winZoneSize/2},
	}
	tr.winZone = &zone
}

func pointInBox(p vecmath.Vec2, box vecmath.Segment) bool {
	return p.X >= box.A.X && p.X <= box.B.X && p.Y >= box.A.Y && p.Y <= box.B.Y
}

func (tr *Tron) IsRoundComplete() bool { return tr.complete }

// Score is the pure scoring function named by §4.C.4, re-exercisable from
// any snapshot.
func Score(kills int, survived bool, suicide bool, died bool) int32 {
	score := int32(0)
	if survived {
		score += scoreSurvive
	}
	score += int32(kills) * scoreKill
	if suicide {
		score += scoreSuicide
	} else if died {
		score += scoreDeath
	}
	return score
}

func (tr *Tron) RoundResults() []game.PlayerResult {
	survivorID := domain.PlayerID(0)
	survivorCount := 0
	for _, id := range tr.order {
		if c := tr.cycles[id]; c != nil && c.Alive {
			survivorID = id
			survivorCount++
		}
	}
	results := make([]game.PlayerResult, 0, len(tr.order))
	for _, id := range tr.order {
		c := tr.cycles[id]
		if c == nil {
			continue
		}
		survived := (tr.hasWinner && tr.winnerID == id) || (survivorCount == 1 && survivorID == id)
		results = append(results, game.PlayerResult{Player: id, Score: Score(c.Kills, survived, c.IsSuicide, c.Died)})
	}
	return results
}

func (tr *Tron) Pause()  { tr.paused = true }
func (tr *Tron) Resume() { tr.paused = false }

func (tr *Tron) PlayerJoined(id domain.PlayerID) {
	if _, ok := tr.cycles[id]; ok {
		return
	}
	pos := vecmath.Vec2{X: arenaSize / 2, Y: arenaSize / 2}
	tr.cycles[id] = &Cycle{Position: pos, Direction: DirEast, Alive: true, ActiveWallIdx: len(tr.walls)}
	tr.walls = append(tr.walls, WallSegment{Seg: vecmath.Segment{A: pos, B: pos}, Owner: id, IsActive: true})
	tr.pending[id] = &pendingInput{}
	tr.order = append(tr.order, id)
}

func (tr *Tron) PlayerLeft(id domain.PlayerID) {
	delete(tr.cycles, id)
	delete(tr.pending, id)
	for i, pid := range tr.order {
		if pid == id {
			tr.order = append(tr.order[:i], tr.order[i+1:]...)
			break
		}
	}
}

func (tr *Tron) TickRate() time.Duration { return time.Second / tickRate }
func (tr *Tron) RoundCountHint() int     { return 1 }
func (tr *Tron) Metadata() game.Metadata {
	return game.Metadata{Name: "tron-arena", SupportsBot: true}
}

type snapshot struct {
	Cycles     map[domain.PlayerID]*Cycle `msgpack:"cycles"`
	Walls      []WallSegment              `msgpack:"walls"`
	WinZone    *vecmath.Segment           `msgpack:"win_zone"`
	Timer      time.Duration              `msgpack:"timer"`
	DeathOrder []domain.PlayerID          `msgpack:"death_order"`
	Complete   bool                       `msgpack:"complete"`
	HasWinner  bool                       `msgpack:"has_winner"`
	WinnerID   domain.PlayerID            `msgpack:"winner_id"`
}

func (tr *Tron) toSnapshot() snapshot {
	return snapshot{
		Cycles:     tr.cycles,
		Walls:      tr.walls,
		WinZone:    tr.winZone,
		Timer:      tr.roundTimer,
		DeathOrder: tr.deathOrder,
		Complete:   tr.complete,
		HasWinner:  tr.hasWinner,
		WinnerID:   tr.winnerID,
	}
}

func (tr *Tron) SerializeSnapshot() ([]byte, error) {
	return msgpack.Marshal(tr.toSnapshot())
}

func (tr *Tron) SerializeInto(buf []byte) ([]byte, error) {
	body, err := msgpack.Marshal(tr.toSnapshot())
	if err != nil {
		return nil, err
	}
	if cap(buf) >= len(body) {
		buf = buf[:len(body)]
		copy(buf, body)
		return buf, nil
	}
	return body, nil
}

func (tr *Tron) ApplySnapshot(data []byte) error {
	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil
	}
	tr.cycles = snap.Cycles
	tr.walls = snap.Walls
	tr.winZone = snap.WinZone
	tr.roundTimer = snap.Timer
	tr.deathOrder = snap.DeathOrder
	tr.complete = snap.Complete
	tr.hasWinner = snap.HasWinner
	tr.winnerID = snap.WinnerID
	if tr.pending == nil {
		tr.pending = make(map[domain.PlayerID]*pendingInput)
	}
	tr.order = tr.order[:0]
	for id := range tr.cycles {
		tr.order = append(tr.order, id)
		if _, ok := tr.pending[id]; !ok {
			tr.pending[id] = &pendingInput{}
		}
	}
	return nil
}
