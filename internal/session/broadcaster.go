package session

import (
	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
)

// Broadcaster is the session's one-way outlet to the room manager's
// fanout machinery (§4.D/§4.E); the session never touches player
// connections directly.
type Broadcaster interface {
	GameStart(gameName string, leaderID domain.PlayerID, players []domain.PlayerID)
	GameState(tick uint32, data []byte)
	RoundEnd(round uint8, scores []game.PlayerResult, betweenRoundSecs uint16)
	GameEnd(finalScores []game.PlayerResult)
	// GameEnded is the terminal signal; the room manager returns the room
	// to Lobby on receiving it. Emitted once when the session ends its own
	// run (last round done, last player left, Stop, or a failed Init),
	// §4.D.
	GameEnded()
}

// Roster lets the session read and mutate the room's player membership
// without owning it: ActiveParticipants lists current non-spectator
// players in join order, and PromoteSpectators moves every spectator into
// the active set ahead of the next round, returning the updated list.
type Roster interface {
	ActiveParticipants() []domain.PlayerID
	PromoteSpectators() []domain.PlayerID
	LeaderID() domain.PlayerID
}
