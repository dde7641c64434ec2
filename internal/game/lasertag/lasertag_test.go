package lasertag

import (
	"testing"
	"time"

	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
	"github.com/lguibr/breakpoint/internal/vecmath"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func newEngine(t *testing.T, roundLen time.Duration, teamMode string, ids ...domain.PlayerID) *LaserTag {
	t.Helper()
	l := &LaserTag{}
	participants := make([]game.Participant, 0, len(ids))
	for _, id := range ids {
		participants = append(participants, game.Participant{ID: id})
	}
	err := l.Init(participants, game.Config{RoundDuration: roundLen, Extra: map[string]interface{}{"team_mode": teamMode}})
	require.NoError(t, err)
	return l
}

func fireInput(t *testing.T, aim float64) []byte {
	t.Helper()
	body, err := msgpack.Marshal(inputPayload{AimAngle: aim, Fire: true})
	require.NoError(t, err)
	return body
}

func TestFriendlyFireNeverStunsTeammate(t *testing.T) {
	l := newEngine(t, time.Minute, "teams_2", 1, 3)
	l.teams[1] = 0
	l.teams[3] = 0
	l.players[1].Position = vecmath.Vec2{X: 5, Y: 10}
	l.players[3].Position = vecmath.Vec2{X: 10, Y: 10}

	l.Update(l.TickRate(), map[domain.PlayerID][]byte{1: fireInput(t, 0)})

	require.Zero(t, l.players[3].StunRemaining)
	require.Zero(t, l.players[1].Tags)
}

func TestEnemyShotStunsAndScores(t *testing.T) {
	l := newEngine(t, time.Minute, "ffa", 1, 2)
	l.players[1].Position = vecmath.Vec2{X: 5, Y: 10}
	l.players[2].Position = vecmath.Vec2{X: 10, Y: 10}

	l.Update(l.TickRate(), map[domain.PlayerID][]byte{1: fireInput(t, 0)})

	require.Greater(t, l.players[2].StunRemaining, 0.0)
	require.Equal(t, 1, l.players[1].Tags)
}

func TestShieldAbsorbsHitWithoutStun(t *testing.T) {
	l := newEngine(t, time.Minute, "ffa", 1, 2)
	l.players[1].Position = vecmath.Vec2{X: 5, Y: 10}
	l.players[2].Position = vecmath.Vec2{X: 10, Y: 10}
	l.players[2].Active = append(l.players[2].Active, activePowerUp{Kind: PowerUpShield, Remaining: 10})

	l.Update(l.TickRate(), map[domain.PlayerID][]byte{1: fireInput(t, 0)})

	require.Zero(t, l.players[2].StunRemaining)
	require.False(t, l.players[2].hasActive(PowerUpShield))
}

func TestApplyInputSanitizesNonFiniteMovement(t *testing.T) {
	l := newEngine(t, time.Minute, "ffa", 1)
	body, err := msgpack.Marshal(map[string]interface{}{"move_x": "NaN", "move_z": 0})
	require.NoError(t, err)
	require.NotPanics(t, func() { l.ApplyInput(1, body) })
}

func TestSnapshotRoundTrip(t *testing.T) {
	l := newEngine(t, time.Minute, "ffa", 1, 2)
	l.Update(l.TickRate(), map[domain.PlayerID][]byte{1: fireInput(t, 0.2)})

	data, err := l.SerializeSnapshot()
	require.NoError(t, err)

	restored := &LaserTag{}
	require.NoError(t, restored.ApplySnapshot(data))
	require.Equal(t, l.players[1].Position, restored.players[1].Position)
	require.Equal(t, l.players[1].Tags, restored.players[1].Tags)
}

func TestRoundCompletesOnTimeout(t *testing.T) {
	l := newEngine(t, 10*time.Millisecond, "ffa", 1)
	events := l.Update(20*time.Millisecond, nil)
	require.True(t, l.IsRoundComplete())
	require.NotEmpty(t, events)
}
