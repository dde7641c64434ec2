package roommgr

import (
	"time"

	"github.com/lguibr/breakpoint/internal/actorkit"
	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
)

const managerAskTimeout = 3 * time.Second

// managerRoster implements session.Roster by asking the manager actor for
// membership facts; the session and manager run on separate goroutines,
// so every read or mutation is a synchronous round trip through the
// manager's own mailbox, §4.D/§4.E.
type managerRoster struct {
	engine *actorkit.Engine
	self   *actorkit.PID
	code   string
}

func (r *managerRoster) ActiveParticipants() []domain.PlayerID {
	reply, err := r.engine.Ask(r.self, ActiveParticipantsRequest{Code: r.code}, managerAskTimeout)
	if err != nil {
		return nil
	}
	ids, _ := reply.([]domain.PlayerID)
	return ids
}

func (r *managerRoster) PromoteSpectators() []domain.PlayerID {
	reply, err := r.engine.Ask(r.self, PromoteSpectatorsRequest{Code: r.code}, managerAskTimeout)
	if err != nil {
		return nil
	}
	ids, _ := reply.([]domain.PlayerID)
	return ids
}

func (r *managerRoster) LeaderID() domain.PlayerID {
	reply, err := r.engine.Ask(r.self, LeaderIDRequest{Code: r.code}, managerAskTimeout)
	if err != nil {
		return 0
	}
	id, _ := reply.(domain.PlayerID)
	return id
}

// managerBroadcaster implements session.Broadcaster by forwarding every
// call as a fire-and-forget Send to the manager, which owns wire encoding
// and fanout.
type managerBroadcaster struct {
	engine *actorkit.Engine
	self   *actorkit.PID
	code   string
}

func (b *managerBroadcaster) GameStart(gameName string, leaderID domain.PlayerID, players []domain.PlayerID) {
	b.engine.Send(b.self, sessionGameStart{Code: b.code, GameName: gameName, LeaderID: leaderID, Players: players}, nil)
}

func (b *managerBroadcaster) GameState(tick uint32, data []byte) {
	b.engine.Send(b.self, sessionGameState{Code: b.code, Tick: tick, Data: data}, nil)
}

func (b *managerBroadcaster) RoundEnd(round uint8, scores []game.PlayerResult, betweenRoundSecs uint16) {
	b.engine.Send(b.self, sessionRoundEnd{Code: b.code, Round: round, Scores: scores, BetweenRoundSecs: betweenRoundSecs}, nil)
}

func (b *managerBroadcaster) GameEnd(finalScores []game.PlayerResult) {
	b.engine.Send(b.self, sessionGameEnd{Code: b.code, FinalScores: finalScores}, nil)
}

func (b *managerBroadcaster) GameEnded() {
	b.engine.Send(b.self, sessionGameEnded{Code: b.code}, nil)
}
