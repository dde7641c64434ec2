package session

import "github.com/lguibr/breakpoint/internal/domain"

// PlayerInput is routed from the connection handler's read loop into the
// session's command mailbox, §4.D.
type PlayerInput struct {
	Player domain.PlayerID
	Tick   uint32
	Bytes  []byte
}

// PlayerJoined notifies the session that a player joined the room while
// its game is running (the room manager admits such a player as a
// spectator); the session passes it to the engine's PlayerJoined.
type PlayerJoined struct {
	Player domain.PlayerID
}

// PlayerLeft notifies the session a participant disconnected or left the
// room. The session exits its loop once the last player leaves.
type PlayerLeft struct {
	Player domain.PlayerID
}

// Stop asks the session to terminate immediately, emitting a terminal
// GameEnded on its way out.
type Stop struct{}

// tick is the session's self-scheduled timer message; it is never sent by
// anything outside the session itself.
type tick struct{}

// betweenRoundElapsed fires once the between-round pause configured on the
// session has passed, triggering the next round's init.
type betweenRoundElapsed struct{}
