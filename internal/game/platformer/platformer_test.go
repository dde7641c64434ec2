package platformer

import (
	"testing"
	"time"

	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
	"github.com/lguibr/breakpoint/internal/vecmath"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func newEngine(t *testing.T, roundLen time.Duration, seed int, ids ...domain.PlayerID) *Platformer {
	t.Helper()
	p := &Platformer{}
	participants := make([]game.Participant, 0, len(ids))
	for _, id := range ids {
		participants = append(participants, game.Participant{ID: id})
	}
	err := p.Init(participants, game.Config{RoundDuration: roundLen, Extra: map[string]interface{}{"seed": seed}})
	require.NoError(t, err)
	return p
}

func inputPayloadBytes(t *testing.T, moveDir float64, jump bool) []byte {
	t.Helper()
	body, err := msgpack.Marshal(inputPayload{MoveDir: moveDir, Jump: jump})
	require.NoError(t, err)
	return body
}

func TestGeneratedCourseAlwaysHasFinishTile(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		course := GenerateCourse(seed)
		found := false
		for _, tile := range course.Tiles {
			if tile == TileFinish {
				found = true
				break
			}
		}
		require.True(t, found, "seed %d produced no Finish tile", seed)
	}
}

func TestGenerateCourseIsDeterministic(t *testing.T) {
	a := GenerateCourse(42)
	b := GenerateCourse(42)
	require.Equal(t, a, b)
}

func TestJustLandedPlayerHasOneJump(t *testing.T) {
	p := newEngine(t, time.Minute, 1, 1)
	ps := p.players[1]
	ps.Position.Y = tileTopWorldY(p.course.Rows-2, p.course.Rows) + playerHalfH + 2
	ps.Velocity = vecmath.Vec2{}

	for i := 0; i < 60; i++ {
		p.Update(p.TickRate(), nil)
		if ps.Grounded {
			break
		}
	}
	require.Equal(t, 1, ps.JumpsRemaining)
}

func TestDoubleJumpGrantsTwoJumpsOnLanding(t *testing.T) {
	p := newEngine(t, time.Minute, 1, 1)
	ps := p.players[1]
	ps.HasDoubleJump = true
	ps.Grounded = false
	ps.Velocity.Y = 1

	p.Update(p.TickRate(), nil)
	for i := 0; i < 60 && !ps.Grounded; i++ {
		p.Update(p.TickRate(), nil)
	}
	require.Equal(t, 2, ps.JumpsRemaining)
}

func TestSurvivalEliminationAddsPlayerExactlyOnce(t *testing.T) {
	p := newEngine(t, time.Minute, 1, 1, 2)
	p.mode = ModeSurvival
	p.hazardY = p.players[1].Position.Y + 1

	p.Update(p.TickRate(), nil)
	p.Update(p.TickRate(), nil)

	count := 0
	for _, id := range p.elimOrder {
		if id == 1 {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestShieldPreventsEliminationAndIsConsumed(t *testing.T) {
	p := newEngine(t, time.Minute, 1, 1)
	p.mode = ModeSurvival
	ps := p.players[1]
	ps.HasShield = true
	p.hazardY = ps.Position.Y + 1

	p.Update(p.TickRate(), nil)

	require.False(t, ps.HasShield)
	require.False(t, ps.Eliminated)
}

func TestApplyInputRejectsGarbageBytes(t *testing.T) {
	p := newEngine(t, time.Minute, 1, 1)
	before := *p.pending[1]
	p.ApplyInput(1, []byte{0xFF, 0xAB, 0x00})
	require.Equal(t, before, *p.pending[1])
}

func TestTransientJumpFlagSurvivesFollowupFalse(t *testing.T) {
	p := newEngine(t, time.Minute, 1, 1)
	p.ApplyInput(1, inputPayloadBytes(t, 0, true))
	require.True(t, p.pending[1].jump)
	p.ApplyInput(1, inputPayloadBytes(t, 0, false))
	require.True(t, p.pending[1].jump)
}

func TestSnapshotRoundTrip(t *testing.T) {
	p := newEngine(t, time.Minute, 7, 1, 2)
	p.Update(p.TickRate(), map[domain.PlayerID][]byte{1: inputPayloadBytes(t, 1, true)})

	data, err := p.SerializeSnapshot()
	require.NoError(t, err)

	restored := &Platformer{}
	require.NoError(t, restored.ApplySnapshot(data))
	require.Equal(t, p.players[1].Position, restored.players[1].Position)
	require.Equal(t, p.mode, restored.mode)
}
