package golf

import (
	"math"
	"time"

	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
	"github.com/lguibr/breakpoint/internal/vecmath"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	tickRate     = 10 // Hz, §4.C.1
	substeps     = 4
	ballRadius   = 0.3
	maxPower     = 12.0
	minVelocity  = 0.05
	holeRadius   = 0.5
	friction     = 0.95
	restitution  = 0.9
	bounceSpeed  = 6.0
	sinkSpeedCap = 0.5 * maxPower
)

// Ball is a single player's ball state, §3.
type Ball struct {
	Position vecmath.Vec2 `msgpack:"pos"`
	Velocity vecmath.Vec2 `msgpack:"vel"`
	IsSunk   bool         `msgpack:"sunk"`
}

func (b *Ball) isStopped() bool { return b.Velocity.LengthSq() < minVelocity*minVelocity }

// strokeInput is the msgpack shape of a golf PlayerInput payload.
type strokeInput struct {
	AimAngle float64 `msgpack:"aim_angle"`
	Power    float64 `msgpack:"power"`
	Stroke   bool    `msgpack:"stroke"`
}

type pendingInput struct {
	aimAngle float64
	power    float64
	stroke   bool // OR-merged transient flag
}

// Golf is the mini-golf engine.
type Golf struct {
	course      Course
	holeIndex   int
	balls       map[domain.PlayerID]*Ball
	strokes     map[domain.PlayerID]int
	sunkOrder   []domain.PlayerID
	sunkSet     map[domain.PlayerID]bool
	pending     map[domain.PlayerID]*pendingInput
	order       []domain.PlayerID // participant order, for deterministic iteration
	roundTimer  time.Duration
	roundLength time.Duration
	complete    bool
	paused      bool
}

// New constructs a zero-value engine ready for Init.
func New() game.Game { return &Golf{} }

func (g *Golf) Init(players []game.Participant, cfg game.Config) error {
	g.holeIndex = cfg.IntExtra("hole_index", 0)
	g.course = CourseForHoleIndex(g.holeIndex)
	g.balls = make(map[domain.PlayerID]*Ball, len(players))
	g.strokes = make(map[domain.PlayerID]int, len(players))
	g.pending = make(map[domain.PlayerID]*pendingInput, len(players))
	g.sunkOrder = nil
	g.sunkSet = make(map[domain.PlayerID]bool)
	g.order = g.order[:0]
	g.roundLength = cfg.RoundDuration
	g.roundTimer = 0
	g.complete = false
	g.paused = false

	for _, p := range players {
		g.balls[p.ID] = &Ball{Position: g.course.Spawn}
		g.strokes[p.ID] = 0
		g.pending[p.ID] = &pendingInput{}
		g.order = append(g.order, p.ID)
	}
	return nil
}

func (g *Golf) ApplyInput(player domain.PlayerID, payload []byte) {
	pend, ok := g.pending[player]
	if !ok {
		return
	}
	var in strokeInput
	if err := msgpack.Unmarshal(payload, &in); err != nil {
		return // malformed bytes are silently dropped, §4.B
	}
	pend.aimAngle = in.AimAngle
	pend.power = in.Power
	if in.Stroke {
		pend.stroke = true // OR-merge, never cleared by a false
	}
}

func (g *Golf) Update(dt time.Duration, inputs map[domain.PlayerID][]byte) []game.Event {
	if g.paused || g.complete {
		return nil
	}
	for player, payload := range inputs {
		g.ApplyInput(player, payload)
	}

	var events []game.Event
	dtSeconds := dt.Seconds()

	for _, id := range g.order {
		ball := g.balls[id]
		pend := g.pending[id]
		if ball == nil || pend == nil {
			continue
		}

		if pend.stroke && ball.isStopped() && !ball.IsSunk {
			g.applyStroke(ball, id, pend)
		}
		pend.stroke = false // consumed this tick

		if ball.IsSunk {
			continue
		}
		g.simulateBall(ball, dtSeconds)

		if g.checkSink(ball) {
			wasFirst := len(g.sunkOrder) == 0
			if !g.sunkSet[id] {
				g.sunkOrder = append(g.sunkOrder, id)
				g.sunkSet[id] = true
			}
			score := Score(g.strokes[id], g.course.Par, wasFirst, true)
			events = append(events, game.Event{Kind: game.EventScoreUpdate, Player: id, Score: score})
		}
	}

	g.roundTimer += dt
	if g.allSunk() || g.roundTimer >= g.roundLength {
		if !g.complete {
			g.complete = true
			events = append(events, game.Event{Kind: game.EventRoundComplete})
		}
	}
	return events
}

func (g *Golf) applyStroke(ball *Ball, id domain.PlayerID, pend *pendingInput) {
	if math.IsNaN(pend.aimAngle) || math.IsNaN(pend.power) {
		return // reject NaN angle or power entirely
	}
	power := pend.power
	if math.IsInf(power, 1) {
		power = maxPower
	} else if math.IsInf(power, -1) {
		power = 0
	}
	power = vecmath.Clamp(power, 0, maxPower)

	ball.Velocity = vecmath.Vec2{
		X: math.Cos(pend.aimAngle) * power,
		Y: math.Sin(pend.aimAngle) * power,
	}
	g.strokes[id]++
}

func (g *Golf) simulateBall(ball *Ball, dtSeconds float64) {
	dtSub := dtSeconds / substeps
	for s := 0; s < substeps; s++ {
		ball.Position = ball.Position.Add(ball.Velocity.Scale(dtSub))

		for _, wall := range g.course.Walls {
			if hit, normal, _ := vecmath.CircleSegmentCollision(ball.Position, ballRadius, wall); hit {
				ball.Velocity = vecmath.ReflectVelocity(ball.Velocity, normal, restitution)
				ball.Position = ball.Position.Add(normal.Scale(ballRadius - ball.Position.Sub(wall.ClosestPoint(ball.Position)).Length() + 1e-6))
			}
		}
		for _, bumper := range g.course.Bumpers {
			if hit, normal, _ := vecmath.CircleCircleCollision(ball.Position, ballRadius, bumper.Center, bumper.Radius); hit {
				ball.Velocity = normal.Scale(bounceSpeed)
				ball.Position = bumper.Center.Add(normal.Scale(bumper.Radius + ballRadius))
			}
		}

		// Safety-net boundary clamp.
		ball.Position.X = vecmath.Clamp(ball.Position.X, 0, g.course.Width)
		ball.Position.Y = vecmath.Clamp(ball.Position.Y, 0, g.course.Depth)
		ball.Velocity = ball.Velocity.Sanitize()
		ball.Position = ball.Position.Sanitize()
	}

	ball.Velocity = ball.Velocity.Scale(friction)
	if ball.Velocity.LengthSq() < minVelocity*minVelocity {
		ball.Velocity = vecmath.Vec2{}
	}
}

func (g *Golf) checkSink(ball *Ball) bool {
	if ball.IsSunk {
		return true
	}
	dist := ball.Position.Distance(g.course.Hole)
	speed := ball.Velocity.Length()
	if dist < holeRadius && speed < sinkSpeedCap {
		ball.Position = g.course.Hole
		ball.Velocity = vecmath.Vec2{}
		ball.IsSunk = true
		return true
	}
	return false
}

func (g *Golf) allSunk() bool {
	if len(g.balls) == 0 {
		return false
	}
	for _, ball := range g.balls {
		if !ball.IsSunk {
			return false
		}
	}
	return true
}

func (g *Golf) IsRoundComplete() bool { return g.complete }

func (g *Golf) RoundResults() []game.PlayerResult {
	results := make([]game.PlayerResult, 0, len(g.order))
	for _, id := range g.order {
		ball := g.balls[id]
		wasFirst := len(g.sunkOrder) > 0 && g.sunkOrder[0] == id
		score := Score(g.strokes[id], g.course.Par, wasFirst, ball != nil && ball.IsSunk)
		results = append(results, game.PlayerResult{Player: id, Score: score})
	}
	return results
}

func (g *Golf) Pause()  { g.paused = true }
func (g *Golf) Resume() { g.paused = false }

func (g *Golf) PlayerJoined(id domain.PlayerID) {
	if _, ok := g.balls[id]; ok {
		return
	}
	g.balls[id] = &Ball{Position: g.course.Spawn}
	g.strokes[id] = 0
	g.pending[id] = &pendingInput{}
	g.order = append(g.order, id)
}

func (g *Golf) PlayerLeft(id domain.PlayerID) {
	delete(g.balls, id)
	delete(g.strokes, id)
	delete(g.pending, id)
	for i, pid := range g.order {
		if pid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

func (g *Golf) TickRate() time.Duration    { return time.Second / tickRate }
func (g *Golf) RoundCountHint() int        { return 1 }
func (g *Golf) Metadata() game.Metadata    { return game.Metadata{Name: "mini-golf", SupportsBot: true} }

// snapshot is the wire shape of the engine's serialized state.
type snapshot struct {
	HoleIndex int                        `msgpack:"hole_index"`
	Balls     map[domain.PlayerID]*Ball  `msgpack:"balls"`
	Strokes   map[domain.PlayerID]int    `msgpack:"strokes"`
	SunkOrder []domain.PlayerID          `msgpack:"sunk_order"`
	Timer     time.Duration              `msgpack:"timer"`
	Complete  bool                       `msgpack:"complete"`
}

func (g *Golf) toSnapshot() snapshot {
	return snapshot{
		HoleIndex: g.holeIndex,
		Balls:     g.balls,
		Strokes:   g.strokes,
		SunkOrder: g.sunkOrder,
		Timer:     g.roundTimer,
		Complete:  g.complete,
	}
}

func (g *Golf) SerializeSnapshot() ([]byte, error) {
	return msgpack.Marshal(g.toSnapshot())
}

// SerializeInto copies the encoded snapshot into buf's backing array when
// it has enough capacity, §4.B/§9; the msgpack encoding itself still
// allocates on every call.
func (g *Golf) SerializeInto(buf []byte) ([]byte, error) {
	body, err := msgpack.Marshal(g.toSnapshot())
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

func (g *Golf) ApplySnapshot(data []byte) error {
	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil // truncated/garbage input leaves state unchanged, §7
	}
	g.holeIndex = snap.HoleIndex
	g.course = CourseForHoleIndex(snap.HoleIndex)
	g.balls = snap.Balls
	g.strokes = snap.Strokes
	g.sunkOrder = snap.SunkOrder
	g.sunkSet = make(map[domain.PlayerID]bool, len(snap.SunkOrder))
	for _, id := range snap.SunkOrder {
		g.sunkSet[id] = true
	}
	g.roundTimer = snap.Timer
	g.complete = snap.Complete
	if g.pending == nil {
		g.pending = make(map[domain.PlayerID]*pendingInput)
	}
	g.order = g.order[:0]
	for id := range g.balls {
		g.order = append(g.order, id)
		if _, ok := g.pending[id]; !ok {
			g.pending[id] = &pendingInput{}
		}
	}
	return nil
}
