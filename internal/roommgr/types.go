// Package roommgr implements the room registry and membership state
// machine (§4.E): one actor owns every room, so its mailbox ordering is
// the "single reader-writer lock" the spec describes at the process
// level — no other synchronization is needed around room state.
package roommgr

import (
	"time"

	"github.com/lguibr/breakpoint/internal/actorkit"
	"github.com/lguibr/breakpoint/internal/domain"
)

// DefaultOutboundCapacity is the bounded per-connection fanout queue
// depth, §4.E.
const DefaultOutboundCapacity = 256

// Connection is a room member's outbound link back to its socket. Fanout
// is always a non-blocking send; a full channel means a slow client and
// the message is dropped for that client only, §5.
type Connection struct {
	PlayerID domain.PlayerID
	Outbound chan []byte
}

func newConnection(id domain.PlayerID, capacity int) *Connection {
	return &Connection{PlayerID: id, Outbound: make(chan []byte, capacity)}
}

// roomEntry is the manager's private bookkeeping for one live room.
type roomEntry struct {
	code         string
	players      []*domain.Player // join order; leader is always a member
	conns        map[domain.PlayerID]*Connection
	state        domain.RoomState
	config       domain.RoomConfig
	lastActivity time.Time

	gameName   string
	sessionPID *actorkit.PID
	cumulative map[domain.PlayerID]int32
}

func (r *roomEntry) playerIndex(id domain.PlayerID) int {
	for i, p := range r.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *roomEntry) player(id domain.PlayerID) *domain.Player {
	if i := r.playerIndex(id); i >= 0 {
		return r.players[i]
	}
	return nil
}

func (r *roomEntry) activeParticipantIDs() []domain.PlayerID {
	ids := make([]domain.PlayerID, 0, len(r.players))
	for _, p := range r.players {
		if !p.IsSpectator {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (r *roomEntry) leaderID() domain.PlayerID {
	for _, p := range r.players {
		if p.IsLeader {
			return p.ID
		}
	}
	return 0
}
