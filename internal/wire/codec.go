package wire

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Sentinel errors for the codec's error disposition, §4.A/§7.
var (
	ErrEmptyMessage     = errors.New("wire: empty message")
	ErrUnknownTag       = errors.New("wire: unknown message tag")
	ErrUnknownDirection = errors.New("wire: tag is not valid for this direction")
	ErrPayloadTooLarge  = errors.New("wire: payload exceeds maximum message size")
	ErrSerialize        = errors.New("wire: failed to serialize payload")
	ErrDeserialize      = errors.New("wire: failed to deserialize payload")
)

// ClientMessage is the tagged union produced by DecodeClient: exactly one
// of the typed fields is non-nil, matching Tag.
type ClientMessage struct {
	Tag              Tag
	PlayerInput      *PlayerInput
	JoinRoom         *JoinRoom
	LeaveRoom        *LeaveRoom
	ClaimAlert       *ClaimAlert
	ChatMessage      *ChatMessage
	OverlayConfig    *OverlayConfig
	RequestGameStart *RequestGameStart
}

// ServerMessage is the tagged union produced by DecodeServer.
type ServerMessage struct {
	Tag              Tag
	JoinRoomResponse *JoinRoomResponse
	GameState        *GameState
	PlayerList       *PlayerList
	RoomConfig       *RoomConfig
	GameStart        *GameStart
	RoundEnd         *RoundEnd
	GameEnd          *GameEnd
	AlertEvent       *AlertEvent
	AlertClaimed     *AlertClaimed
	AlertDismissed   *AlertDismissed
	OverlayConfig    *OverlayConfig
}

// Encode frames tag and payload as [tag byte][msgpack(payload)]. It fails
// with ErrPayloadTooLarge if the framed result exceeds MaxMessageSize, or
// ErrSerialize if the encoder itself fails.
func Encode(tag Tag, payload interface{}) ([]byte, error) {
	body, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	if len(body)+1 > maxMessageSizeBytes {
		return nil, ErrPayloadTooLarge
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, byte(tag))
	out = append(out, body...)
	return out, nil
}

const maxMessageSizeBytes = 65536

// DecodeTag extracts the leading tag byte, failing on an empty frame or a
// byte outside the known tag table.
func DecodeTag(frame []byte) (Tag, error) {
	if len(frame) == 0 {
		return 0, ErrEmptyMessage
	}
	tag := Tag(frame[0])
	if !IsKnownTag(tag) {
		return 0, ErrUnknownTag
	}
	return tag, nil
}

// DecodeClient decodes a client->server frame into a ClientMessage. It
// fails with ErrUnknownDirection if the tag is a server-only tag.
func DecodeClient(frame []byte) (*ClientMessage, error) {
	tag, err := DecodeTag(frame)
	if err != nil {
		return nil, err
	}
	if !IsClientTag(tag) {
		return nil, ErrUnknownDirection
	}
	body := frame[1:]

	msg := &ClientMessage{Tag: tag}
	var target interface{}
	switch tag {
	case TagPlayerInput:
		msg.PlayerInput = &PlayerInput{}
		target = msg.PlayerInput
	case TagJoinRoom:
		msg.JoinRoom = &JoinRoom{}
		target = msg.JoinRoom
	case TagLeaveRoom:
		msg.LeaveRoom = &LeaveRoom{}
		target = msg.LeaveRoom
	case TagClaimAlert:
		msg.ClaimAlert = &ClaimAlert{}
		target = msg.ClaimAlert
	case TagChatMessage:
		msg.ChatMessage = &ChatMessage{}
		target = msg.ChatMessage
	case TagOverlayConfig:
		msg.OverlayConfig = &OverlayConfig{}
		target = msg.OverlayConfig
	case TagRequestGameStart:
		msg.RequestGameStart = &RequestGameStart{}
		target = msg.RequestGameStart
	default:
		return nil, ErrUnknownTag
	}
	if err := msgpack.Unmarshal(body, target); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	return msg, nil
}

// DecodeServer decodes a server->client frame into a ServerMessage. It
// fails with ErrUnknownDirection if the tag is a client-only tag.
func DecodeServer(frame []byte) (*ServerMessage, error) {
	tag, err := DecodeTag(frame)
	if err != nil {
		return nil, err
	}
	if !IsServerTag(tag) {
		return nil, ErrUnknownDirection
	}
	body := frame[1:]

	msg := &ServerMessage{Tag: tag}
	var target interface{}
	switch tag {
	case TagJoinRoomResponse:
		msg.JoinRoomResponse = &JoinRoomResponse{}
		target = msg.JoinRoomResponse
	case TagGameState:
		msg.GameState = &GameState{}
		target = msg.GameState
	case TagPlayerList:
		msg.PlayerList = &PlayerList{}
		target = msg.PlayerList
	case TagRoomConfig:
		msg.RoomConfig = &RoomConfig{}
		target = msg.RoomConfig
	case TagGameStart:
		msg.GameStart = &GameStart{}
		target = msg.GameStart
	case TagRoundEnd:
		msg.RoundEnd = &RoundEnd{}
		target = msg.RoundEnd
	case TagGameEnd:
		msg.GameEnd = &GameEnd{}
		target = msg.GameEnd
	case TagAlertEvent:
		msg.AlertEvent = &AlertEvent{}
		target = msg.AlertEvent
	case TagAlertClaimed:
		msg.AlertClaimed = &AlertClaimed{}
		target = msg.AlertClaimed
	case TagAlertDismissed:
		msg.AlertDismissed = &AlertDismissed{}
		target = msg.AlertDismissed
	case TagOverlayConfig:
		msg.OverlayConfig = &OverlayConfig{}
		target = msg.OverlayConfig
	default:
		return nil, ErrUnknownTag
	}
	if err := msgpack.Unmarshal(body, target); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	return msg, nil
}

// IsServerAuthoritativeLifecycle reports whether tag is one of the
// lifecycle messages clients must never be allowed to synthesize, §4.F.
func IsServerAuthoritativeLifecycle(t Tag) bool {
	switch t {
	case TagGameState, TagGameStart, TagRoundEnd, TagGameEnd:
		return true
	default:
		return false
	}
}
