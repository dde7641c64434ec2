package roommgr

import (
	"testing"
	"time"

	"github.com/lguibr/breakpoint/internal/actorkit"
	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
	"github.com/stretchr/testify/require"
)

// fakeGame is the minimal game.Game implementation needed to exercise
// StartGameRequest without pulling in a real engine.
type fakeGame struct {
	initErr error
	players []game.Participant
}

func (f *fakeGame) Init(players []game.Participant, cfg game.Config) error {
	f.players = players
	return f.initErr
}
func (f *fakeGame) Update(dt time.Duration, inputs map[domain.PlayerID][]byte) []game.Event { return nil }
func (f *fakeGame) ApplyInput(player domain.PlayerID, payload []byte)                        {}
func (f *fakeGame) SerializeSnapshot() ([]byte, error)                                       { return []byte{}, nil }
func (f *fakeGame) SerializeInto(buf []byte) ([]byte, error)                                 { return buf[:0], nil }
func (f *fakeGame) ApplySnapshot(data []byte) error                                          { return nil }
func (f *fakeGame) TickRate() time.Duration                                                  { return 100 * time.Millisecond }
func (f *fakeGame) RoundCountHint() int                                                      { return 1 }
func (f *fakeGame) IsRoundComplete() bool                                                    { return true }
func (f *fakeGame) RoundResults() []game.PlayerResult                                        { return nil }
func (f *fakeGame) Pause()                                                                   {}
func (f *fakeGame) Resume()                                                                  {}
func (f *fakeGame) PlayerJoined(domain.PlayerID)                                             {}
func (f *fakeGame) PlayerLeft(domain.PlayerID)                                                {}
func (f *fakeGame) Metadata() game.Metadata                                                  { return game.Metadata{Name: "fake"} }

func spawnManager(t *testing.T) (*actorkit.Engine, *actorkit.PID) {
	t.Helper()
	registry := game.NewRegistry()
	registry.Register("fake", func() game.Game { return &fakeGame{} })

	engine := actorkit.NewEngine()
	cfg := Config{
		RoomConfig:    domain.RoomConfig{MaxPlayers: 2, RoundDuration: time.Second, BetweenRoundDuration: time.Second},
		RoundCount:    1,
		IdleThreshold: time.Hour,
		SweepInterval: time.Hour,
		Registry:      registry,
	}
	pid := engine.Spawn(actorkit.NewProps(NewProducer(cfg)))
	return engine, pid
}

func spawnManagerWithRounds(t *testing.T, roundCount int, betweenRound time.Duration) (*actorkit.Engine, *actorkit.PID) {
	t.Helper()
	registry := game.NewRegistry()
	registry.Register("fake", func() game.Game { return &fakeGame{} })

	engine := actorkit.NewEngine()
	cfg := Config{
		RoomConfig:    domain.RoomConfig{MaxPlayers: 2, RoundDuration: time.Second, BetweenRoundDuration: betweenRound},
		RoundCount:    roundCount,
		IdleThreshold: time.Hour,
		SweepInterval: time.Hour,
		Registry:      registry,
	}
	pid := engine.Spawn(actorkit.NewProps(NewProducer(cfg)))
	return engine, pid
}

const askTimeout = time.Second

func TestCreateRoomReturnsWellFormedCode(t *testing.T) {
	engine, pid := spawnManager(t)
	reply, err := engine.Ask(pid, CreateRoomRequest{PlayerName: "Ada"}, askTimeout)
	require.NoError(t, err)
	result := reply.(CreateRoomResult)
	require.NoError(t, domain.ValidateRoomCode(result.Code))
	require.Equal(t, domain.PlayerID(1), result.PlayerID)
}

func TestJoinRoomRejectsUnknownCode(t *testing.T) {
	engine, pid := spawnManager(t)
	reply, err := engine.Ask(pid, JoinRoomRequest{Code: "ZZZZ-ZZZZ", PlayerName: "Bob"}, askTimeout)
	require.NoError(t, err)
	result := reply.(JoinRoomResult)
	require.ErrorIs(t, result.Err, ErrRoomNotFound)
}

func TestJoinRoomFillsCapacityThenRefuses(t *testing.T) {
	engine, pid := spawnManager(t)
	created, _ := engine.Ask(pid, CreateRoomRequest{PlayerName: "Ada"}, askTimeout)
	code := created.(CreateRoomResult).Code

	reply, _ := engine.Ask(pid, JoinRoomRequest{Code: code, PlayerName: "Bob"}, askTimeout)
	joined := reply.(JoinRoomResult)
	require.NoError(t, joined.Err)
	require.False(t, joined.IsSpectator)

	reply, _ = engine.Ask(pid, JoinRoomRequest{Code: code, PlayerName: "Cleo"}, askTimeout)
	full := reply.(JoinRoomResult)
	require.ErrorIs(t, full.Err, ErrRoomFull)
}

func TestLeaveRoomMigratesLeadership(t *testing.T) {
	engine, pid := spawnManager(t)
	created, _ := engine.Ask(pid, CreateRoomRequest{PlayerName: "Ada"}, askTimeout)
	result := created.(CreateRoomResult)
	code := result.Code
	leaderID := result.PlayerID

	joined, _ := engine.Ask(pid, JoinRoomRequest{Code: code, PlayerName: "Bob"}, askTimeout)
	second := joined.(JoinRoomResult).PlayerID

	engine.Send(pid, LeaveRoomRequest{Code: code, PlayerID: leaderID}, nil)

	reply, err := engine.Ask(pid, LeaderIDRequest{Code: code}, askTimeout)
	require.NoError(t, err)
	require.Equal(t, second, reply.(domain.PlayerID))
}

func TestLeaveRoomDestroysEmptyRoom(t *testing.T) {
	engine, pid := spawnManager(t)
	created, _ := engine.Ask(pid, CreateRoomRequest{PlayerName: "Ada"}, askTimeout)
	result := created.(CreateRoomResult)

	engine.Send(pid, LeaveRoomRequest{Code: result.Code, PlayerID: result.PlayerID}, nil)

	reply, err := engine.Ask(pid, JoinRoomRequest{Code: result.Code, PlayerName: "Bob"}, askTimeout)
	require.NoError(t, err)
	require.ErrorIs(t, reply.(JoinRoomResult).Err, ErrRoomNotFound)
}

func TestStartGameRejectsNonLeader(t *testing.T) {
	engine, pid := spawnManager(t)
	created, _ := engine.Ask(pid, CreateRoomRequest{PlayerName: "Ada"}, askTimeout)
	result := created.(CreateRoomResult)
	joined, _ := engine.Ask(pid, JoinRoomRequest{Code: result.Code, PlayerName: "Bob"}, askTimeout)
	nonLeader := joined.(JoinRoomResult).PlayerID

	reply, err := engine.Ask(pid, StartGameRequest{Code: result.Code, PlayerID: nonLeader, GameName: "fake"}, askTimeout)
	require.NoError(t, err)
	require.ErrorIs(t, reply.(StartGameResult).Err, ErrNotLeader)
}

func TestStartGameRejectsUnknownGame(t *testing.T) {
	engine, pid := spawnManager(t)
	created, _ := engine.Ask(pid, CreateRoomRequest{PlayerName: "Ada"}, askTimeout)
	result := created.(CreateRoomResult)

	reply, err := engine.Ask(pid, StartGameRequest{Code: result.Code, PlayerID: result.PlayerID, GameName: "no-such-game"}, askTimeout)
	require.NoError(t, err)
	require.ErrorIs(t, reply.(StartGameResult).Err, ErrUnknownGameName)
}

func TestStartGameSpawnsSessionAndBroadcastsLifecycle(t *testing.T) {
	engine, pid := spawnManager(t)
	created, _ := engine.Ask(pid, CreateRoomRequest{PlayerName: "Ada"}, askTimeout)
	result := created.(CreateRoomResult)

	reply, err := engine.Ask(pid, StartGameRequest{Code: result.Code, PlayerID: result.PlayerID, GameName: "fake"}, askTimeout)
	require.NoError(t, err)
	require.NoError(t, reply.(StartGameResult).Err)

	// the fake game completes its round immediately, so the session
	// should finish and hand the room back to Lobby before long.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case frame := <-result.Conn.Outbound:
			if len(frame) > 0 {
				return
			}
		case <-time.After(50 * time.Millisecond):
		}
	}
	t.Fatal("expected at least one broadcast frame after starting the game")
}

func TestRoomStateReturnsToInGameAfterRoundReinit(t *testing.T) {
	engine, pid := spawnManagerWithRounds(t, 2, 50*time.Millisecond)
	created, _ := engine.Ask(pid, CreateRoomRequest{PlayerName: "Ada"}, askTimeout)
	result := created.(CreateRoomResult)

	reply, err := engine.Ask(pid, StartGameRequest{Code: result.Code, PlayerID: result.PlayerID, GameName: "fake"}, askTimeout)
	require.NoError(t, err)
	require.NoError(t, reply.(StartGameResult).Err)

	// Round 1 completes immediately (fakeGame.IsRoundComplete is always
	// true), which parks the room in RoomBetweenRounds until the
	// between-round timer fires and onRoundReinit starts round 2 — that
	// reinit must move the room back to RoomInGame, not leave it stuck.
	sawBetweenRounds := false
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rooms, err := engine.Ask(pid, ListRoomsRequest{}, askTimeout)
		require.NoError(t, err)
		summaries := rooms.([]RoomSummary)
		require.Len(t, summaries, 1)
		switch summaries[0].State {
		case domain.RoomBetweenRounds:
			sawBetweenRounds = true
		case domain.RoomInGame:
			if sawBetweenRounds {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("room never returned to RoomInGame after the round-2 reinit")
}

func TestCleanupIdleRoomsRemovesStaleLobbyRoom(t *testing.T) {
	engine, pid := spawnManager(t)
	_, err := engine.Ask(pid, CreateRoomRequest{PlayerName: "Ada"}, askTimeout)
	require.NoError(t, err)

	reply, err := engine.Ask(pid, CleanupIdleRoomsRequest{MaxIdleSeconds: 0}, askTimeout)
	require.NoError(t, err)
	require.Equal(t, 1, reply.(int))
}
