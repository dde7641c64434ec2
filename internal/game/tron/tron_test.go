package tron

import (
	"testing"
	"time"

	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func newEngine(t *testing.T, roundLen time.Duration, ids ...domain.PlayerID) *Tron {
	t.Helper()
	tr := &Tron{}
	participants := make([]game.Participant, 0, len(ids))
	for _, id := range ids {
		participants = append(participants, game.Participant{ID: id})
	}
	err := tr.Init(participants, game.Config{RoundDuration: roundLen})
	require.NoError(t, err)
	return tr
}

func turnPayload(t *testing.T, dir string) []byte {
	t.Helper()
	body, err := msgpack.Marshal(inputPayload{Turn: dir})
	require.NoError(t, err)
	return body
}

func TestEachAliveCycleHasExactlyOneActiveSegment(t *testing.T) {
	tr := newEngine(t, time.Minute, 1, 2)
	for i := 0; i < 10; i++ {
		tr.Update(tr.TickRate(), nil)
		for id, cycle := range tr.cycles {
			if !cycle.Alive {
				continue
			}
			activeCount := 0
			for _, w := range tr.walls {
				if w.Owner == id && w.IsActive {
					activeCount++
				}
			}
			require.Equal(t, 1, activeCount)
			require.Equal(t, cycle.Position, tr.walls[cycle.ActiveWallIdx].Seg.B)
		}
	}
}

func TestDirectionChangeAnchorsNewSegmentAtTurnPoint(t *testing.T) {
	tr := newEngine(t, time.Minute, 1)
	cycle := tr.cycles[1]
	preTurnPos := cycle.Position

	tr.Update(tr.TickRate(), map[domain.PlayerID][]byte{1: turnPayload(t, "left")})

	newWall := tr.walls[cycle.ActiveWallIdx]
	require.Equal(t, preTurnPos, newWall.Seg.A)
}

func TestCycleDiesOnLeavingArena(t *testing.T) {
	tr := newEngine(t, time.Minute, 1)
	tr.cycles[1].Position.X = -1
	tr.Update(tr.TickRate(), nil)
	require.True(t, tr.cycles[1].Died)
	require.True(t, tr.cycles[1].IsSuicide)
}

func TestRoundEndsWhenOneSurvivorRemains(t *testing.T) {
	tr := newEngine(t, time.Minute, 1, 2)
	tr.cycles[2].Alive = false
	tr.cycles[2].Died = true
	events := tr.Update(tr.TickRate(), nil)
	require.True(t, tr.IsRoundComplete())
	found := false
	for _, e := range events {
		if e.Kind == game.EventRoundComplete {
			found = true
		}
	}
	require.True(t, found)
}

func TestScoringIsPureFunction(t *testing.T) {
	require.Equal(t, int32(scoreSurvive), Score(0, true, false, false))
	require.Equal(t, int32(scoreKill*2), Score(2, false, false, false))
	require.Equal(t, int32(scoreSuicide), Score(0, false, true, false))
	require.Equal(t, int32(scoreDeath), Score(0, false, false, true))
}

func TestSnapshotRoundTrip(t *testing.T) {
	tr := newEngine(t, time.Minute, 1, 2)
	tr.Update(tr.TickRate(), map[domain.PlayerID][]byte{1: turnPayload(t, "right")})

	data, err := tr.SerializeSnapshot()
	require.NoError(t, err)

	restored := &Tron{}
	require.NoError(t, restored.ApplySnapshot(data))
	require.Equal(t, tr.cycles[1].Position, restored.cycles[1].Position)
	require.Equal(t, tr.cycles[1].Direction, restored.cycles[1].Direction)
}

func TestApplyInputIgnoresGarbageBytes(t *testing.T) {
	tr := newEngine(t, time.Minute, 1)
	before := *tr.pending[1]
	tr.ApplyInput(1, []byte{0x00, 0xFF, 0x10})
	require.Equal(t, before, *tr.pending[1])
}
