package golf

import (
	"math"
	"testing"
	"time"

	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
	"github.com/lguibr/breakpoint/internal/vecmath"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func newEngine(t *testing.T, roundLen time.Duration, ids ...domain.PlayerID) *Golf {
	t.Helper()
	g := &Golf{}
	participants := make([]game.Participant, 0, len(ids))
	for _, id := range ids {
		participants = append(participants, game.Participant{ID: id})
	}
	err := g.Init(participants, game.Config{RoundDuration: roundLen, Extra: map[string]interface{}{"hole_index": 0}})
	require.NoError(t, err)
	return g
}

func strokePayload(t *testing.T, aim, power float64, stroke bool) []byte {
	t.Helper()
	body, err := msgpack.Marshal(strokeInput{AimAngle: aim, Power: power, Stroke: stroke})
	require.NoError(t, err)
	return body
}

func TestStrokeReducesDistanceToHole(t *testing.T) {
	g := newEngine(t, time.Minute, 1)
	ball := g.balls[1]
	before := ball.Position.Distance(g.course.Hole)

	aim := math.Atan2(g.course.Hole.Y-ball.Position.Y, g.course.Hole.X-ball.Position.X)
	inputs := map[domain.PlayerID][]byte{1: strokePayload(t, aim, 8, true)}
	for i := 0; i < 20; i++ {
		g.Update(g.TickRate(), inputs)
		inputs = nil
	}

	after := g.balls[1].Position.Distance(g.course.Hole)
	require.Less(t, after, before)
}

func TestFrictionEventuallyStopsBall(t *testing.T) {
	g := newEngine(t, time.Minute, 1)
	inputs := map[domain.PlayerID][]byte{1: strokePayload(t, 0, maxPower, true)}
	g.Update(g.TickRate(), inputs)

	for i := 0; i < 500 && !g.balls[1].isStopped(); i++ {
		g.Update(g.TickRate(), nil)
	}
	require.True(t, g.balls[1].isStopped())
}

func TestBallPositionStaysWithinCourseBounds(t *testing.T) {
	g := newEngine(t, time.Minute, 1)
	inputs := map[domain.PlayerID][]byte{1: strokePayload(t, 0.3, maxPower, true)}
	for i := 0; i < 50; i++ {
		g.Update(g.TickRate(), inputs)
		inputs = nil
		pos := g.balls[1].Position
		require.GreaterOrEqual(t, pos.X, -1e-6)
		require.LessOrEqual(t, pos.X, g.course.Width+1e-6)
		require.GreaterOrEqual(t, pos.Y, -1e-6)
		require.LessOrEqual(t, pos.Y, g.course.Depth+1e-6)
	}
}

func TestRoundCompletesWhenAllSunk(t *testing.T) {
	g := newEngine(t, time.Minute, 1)
	g.balls[1].Position = g.course.Hole
	g.balls[1].Velocity = vecmath.Vec2{}
	events := g.Update(g.TickRate(), nil)

	require.True(t, g.IsRoundComplete())
	found := false
	for _, ev := range events {
		if ev.Kind == game.EventRoundComplete {
			found = true
		}
	}
	require.True(t, found)
}

func TestRoundCompletesOnTimeout(t *testing.T) {
	g := newEngine(t, 10*time.Millisecond, 1)
	events := g.Update(20*time.Millisecond, nil)
	require.True(t, g.IsRoundComplete())
	require.NotEmpty(t, events)
}

func TestSnapshotRoundTripPreservesState(t *testing.T) {
	g := newEngine(t, time.Minute, 1, 2)
	g.Update(g.TickRate(), map[domain.PlayerID][]byte{1: strokePayload(t, 0.5, 5, true)})

	data, err := g.SerializeSnapshot()
	require.NoError(t, err)

	restored := &Golf{}
	require.NoError(t, restored.ApplySnapshot(data))
	require.Equal(t, g.balls[1].Position, restored.balls[1].Position)
	require.Equal(t, g.strokes[1], restored.strokes[1])
	require.Equal(t, g.holeIndex, restored.holeIndex)
}

func TestApplyInputIgnoresGarbageBytes(t *testing.T) {
	g := newEngine(t, time.Minute, 1)
	before := *g.balls[1]
	g.ApplyInput(1, []byte{0xFF, 0x00, 0x01, 0x02})
	require.Equal(t, before, *g.balls[1])
}

func TestApplyStrokeRejectsNaNAndInfinity(t *testing.T) {
	g := newEngine(t, time.Minute, 1)
	ball := g.balls[1]
	pend := g.pending[1]

	pend.stroke = true
	pend.aimAngle = math.NaN()
	pend.power = 5
	g.applyStroke(ball, 1, pend)
	require.Equal(t, 0, g.strokes[1])

	pend.aimAngle = 0
	pend.power = math.Inf(1)
	g.applyStroke(ball, 1, pend)
	require.Equal(t, 1, g.strokes[1])
	require.InDelta(t, maxPower, ball.Velocity.Length(), 1e-9)
}

func TestTransientStrokeFlagOnlyConsumedOnce(t *testing.T) {
	g := newEngine(t, time.Minute, 1)
	aim := math.Atan2(g.course.Hole.Y-g.balls[1].Position.Y, g.course.Hole.X-g.balls[1].Position.X)
	g.ApplyInput(1, strokePayload(t, aim, 6, true))
	require.True(t, g.pending[1].stroke)

	g.Update(g.TickRate(), nil)
	require.False(t, g.pending[1].stroke)
	require.Equal(t, 1, g.strokes[1])

	g.Update(g.TickRate(), nil)
	require.Equal(t, 1, g.strokes[1])
}
