package wire

// Opaque carries a payload this layer never interprets — alert/overlay
// fanout bodies are produced and consumed entirely outside the core, §1.
type Opaque map[string]interface{}

// Color mirrors domain.Color on the wire without internal/domain taking
// a dependency on the wire package.
type Color struct {
	R uint8 `msgpack:"r"`
	G uint8 `msgpack:"g"`
	B uint8 `msgpack:"b"`
}

// PlayerInfo is the wire shape of a room member, used in PlayerList and
// GameStart.
type PlayerInfo struct {
	ID          uint64 `msgpack:"id"`
	Name        string `msgpack:"name"`
	Color       Color  `msgpack:"color"`
	IsLeader    bool   `msgpack:"is_leader"`
	IsSpectator bool   `msgpack:"is_spectator"`
	IsBot       bool   `msgpack:"is_bot"`
}

// ScoreEntry pairs a player with a score, used in RoundEnd/GameEnd.
type ScoreEntry struct {
	Player uint64 `msgpack:"player"`
	Score  int32  `msgpack:"score"`
}

// --- Client -> server ---

type PlayerInput struct {
	PlayerID  uint64    `msgpack:"player_id"`
	Tick      uint32    `msgpack:"tick"`
	InputData FlexBytes `msgpack:"input_data"`
}

type JoinRoom struct {
	RoomCode        string `msgpack:"room_code"`
	PlayerName      string `msgpack:"player_name"`
	PlayerColor     Color  `msgpack:"player_color"`
	ProtocolVersion uint8  `msgpack:"protocol_version"`
}

type LeaveRoom struct {
	PlayerID uint64 `msgpack:"player_id"`
}

type ClaimAlert struct {
	PlayerID uint64 `msgpack:"player_id"`
	EventID  string `msgpack:"event_id"`
}

type ChatMessage struct {
	PlayerID uint64 `msgpack:"player_id"`
	Content  string `msgpack:"content"`
}

type OverlayConfig struct {
	RoomConfig Opaque `msgpack:"room_config"`
}

type RequestGameStart struct {
	GameName string `msgpack:"game_name"`
}

// --- Server -> client ---

type JoinRoomResponse struct {
	Success   bool    `msgpack:"success"`
	PlayerID  uint64  `msgpack:"player_id,omitempty"`
	RoomCode  string  `msgpack:"room_code,omitempty"`
	RoomState string  `msgpack:"room_state,omitempty"`
	Error     string  `msgpack:"error,omitempty"`
}

type GameState struct {
	Tick      uint32    `msgpack:"tick"`
	StateData FlexBytes `msgpack:"state_data"`
}

type PlayerList struct {
	Players  []PlayerInfo `msgpack:"players"`
	LeaderID uint64       `msgpack:"leader_id"`
}

type RoomConfig struct {
	Config Opaque `msgpack:"config"`
}

type GameStart struct {
	GameName string       `msgpack:"game_name"`
	Players  []PlayerInfo `msgpack:"players"`
	LeaderID uint64       `msgpack:"leader_id"`
}

type RoundEnd struct {
	Round            uint8        `msgpack:"round"`
	Scores           []ScoreEntry `msgpack:"scores"`
	BetweenRoundSecs uint16       `msgpack:"between_round_secs"`
}

type GameEnd struct {
	FinalScores []ScoreEntry `msgpack:"final_scores"`
}

type AlertEvent struct {
	Event Opaque `msgpack:"event"`
}

type AlertClaimed struct {
	EventID   string `msgpack:"event_id"`
	ClaimedBy uint64 `msgpack:"claimed_by"`
}

type AlertDismissed struct {
	EventID string `msgpack:"event_id"`
}
