package roommgr

import (
	"errors"

	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
)

// Sentinel errors for start_game/join_room dispositions, §7.
var (
	ErrNotLeader             = errors.New("roommgr: requester is not the room leader")
	ErrGameAlreadyInProgress = errors.New("roommgr: room is not in lobby")
	ErrUnknownGameName       = errors.New("roommgr: unrecognized game name")
	ErrRoomNotFound          = errors.New("roommgr: room code not found")
	ErrRoomFull              = errors.New("roommgr: room is at capacity")
)

// CreateRoomRequest asks the manager to allocate a fresh room with the
// requester as leader, §4.E create_room. Sent via Engine.Ask.
type CreateRoomRequest struct {
	PlayerName string
	Color      domain.Color
}

// CreateRoomResult is CreateRoomRequest's reply.
type CreateRoomResult struct {
	Code     string
	PlayerID domain.PlayerID
	Conn     *Connection
}

// JoinRoomRequest asks the manager to join an existing room, §4.E
// join_room. Sent via Engine.Ask.
type JoinRoomRequest struct {
	Code       string
	PlayerName string
	Color      domain.Color
}

// JoinRoomResult is JoinRoomRequest's reply.
type JoinRoomResult struct {
	PlayerID    domain.PlayerID
	RoomCode    string
	RoomState   domain.RoomState
	IsSpectator bool
	Conn        *Connection
	Err         error
}

// LeaveRoomRequest asks the manager to remove a player, §4.E leave_room.
// Sent via Engine.Send (fire-and-forget; the connection is closing
// regardless of the reply).
type LeaveRoomRequest struct {
	Code     string
	PlayerID domain.PlayerID
}

// StartGameRequest asks the manager to instantiate and launch a game
// session, §4.E start_game. Sent via Engine.Ask.
type StartGameRequest struct {
	Code     string
	PlayerID domain.PlayerID
	GameName string
}

// StartGameResult is StartGameRequest's reply.
type StartGameResult struct {
	Err error
}

// RoutePlayerInputRequest forwards a decoded input frame to the room's
// active session, §4.E route_player_input. Sent via Engine.Send.
type RoutePlayerInputRequest struct {
	Code     string
	PlayerID domain.PlayerID
	Tick     uint32
	Bytes    []byte
}

// BroadcastOpaqueRequest fans an already-encoded frame out to a room
// (AlertEvent, AlertClaimed, AlertDismissed, PlayerList, RoomConfig,
// OverlayConfig, ChatMessage), §4.F. Sent via Engine.Send.
type BroadcastOpaqueRequest struct {
	Code    string
	Exclude domain.PlayerID // 0 means "exclude nobody"
	Frame   []byte
}

// TouchActivityRequest marks a room as recently active, §4.E
// touch_activity. Sent via Engine.Send.
type TouchActivityRequest struct {
	Code string
}

// CleanupIdleRoomsRequest sweeps rooms idle past maxIdle, §4.E
// cleanup_idle_rooms. Sent via Engine.Ask; the reply is the removed count.
type CleanupIdleRoomsRequest struct {
	MaxIdleSeconds float64
}

// RoomSummary is one room's public listing, used by the /rooms HTTP
// endpoint.
type RoomSummary struct {
	Code        string
	State       domain.RoomState
	GameName    string
	PlayerCount int
}

// ListRoomsRequest asks the manager for every live room's summary. Sent
// via Engine.Ask; the reply is []RoomSummary.
type ListRoomsRequest struct{}

// BroadcastGlobalRequest fans an already-encoded frame out to every live
// room; used by the webhook ingress, which has no single room to target.
// Sent via Engine.Send.
type BroadcastGlobalRequest struct {
	Frame []byte
}

// --- Session -> manager callbacks (session.Roster / session.Broadcaster) ---

// ActiveParticipantsRequest backs session.Roster.ActiveParticipants. Sent
// via Engine.Ask; the reply is []domain.PlayerID.
type ActiveParticipantsRequest struct{ Code string }

// PromoteSpectatorsRequest backs session.Roster.PromoteSpectators. Sent
// via Engine.Ask; the reply is []domain.PlayerID.
type PromoteSpectatorsRequest struct{ Code string }

// LeaderIDRequest backs session.Roster.LeaderID. Sent via Engine.Ask; the
// reply is domain.PlayerID.
type LeaderIDRequest struct{ Code string }

// sessionGameStart/sessionGameState/sessionRoundEnd/sessionGameEnd/
// sessionGameEnded are the manager-side mirrors of session.Broadcaster,
// sent via Engine.Send from the session actor's own goroutine. The
// manager owns wire encoding, so the session never touches the codec.
type sessionGameStart struct {
	Code     string
	GameName string
	LeaderID domain.PlayerID
	Players  []domain.PlayerID
}

type sessionGameState struct {
	Code string
	Tick uint32
	Data []byte
}

type sessionRoundEnd struct {
	Code             string
	Round            uint8
	Scores           []game.PlayerResult
	BetweenRoundSecs uint16
}

type sessionGameEnd struct {
	Code        string
	FinalScores []game.PlayerResult
}

type sessionGameEnded struct {
	Code string
}
