package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	join := JoinRoom{
		RoomCode:        "",
		PlayerName:      "Alice",
		PlayerColor:     Color{R: 0, G: 255, B: 0},
		ProtocolVersion: 2,
	}
	frame, err := Encode(TagJoinRoom, join)
	require.NoError(t, err)

	msg, err := DecodeClient(frame)
	require.NoError(t, err)
	require.NotNil(t, msg.JoinRoom)
	assert.Equal(t, join, *msg.JoinRoom)
}

func TestDecodeTagUnknownByte(t *testing.T) {
	_, err := DecodeTag([]byte{0xFF})
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestDecodeTagEmpty(t *testing.T) {
	_, err := DecodeTag(nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestKnownTagTable(t *testing.T) {
	known := []Tag{
		TagPlayerInput, TagJoinRoom, TagLeaveRoom, TagClaimAlert, TagChatMessage,
		TagOverlayConfig, TagRequestGameStart, TagJoinRoomResponse, TagGameState,
		TagPlayerList, TagRoomConfig, TagGameStart, TagRoundEnd, TagGameEnd,
		TagAlertEvent, TagAlertClaimed, TagAlertDismissed,
	}
	for _, tag := range known {
		assert.True(t, IsKnownTag(tag), "tag %x should be known", tag)
	}
	assert.False(t, IsKnownTag(Tag(0x99)))
}

func TestDecodeCrossDirectionFails(t *testing.T) {
	frame, err := Encode(TagGameState, GameState{Tick: 1, StateData: []byte("x")})
	require.NoError(t, err)

	_, err = DecodeClient(frame)
	assert.ErrorIs(t, err, ErrUnknownDirection)

	frame2, err := Encode(TagJoinRoom, JoinRoom{PlayerName: "Bob", ProtocolVersion: 2})
	require.NoError(t, err)
	_, err = DecodeServer(frame2)
	assert.ErrorIs(t, err, ErrUnknownDirection)
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	huge := make([]byte, maxMessageSizeBytes)
	_, err := Encode(TagGameState, GameState{Tick: 1, StateData: huge})
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

// TestPermissiveNumericDecode exercises §9's "wire numeric permissiveness"
// note: a captured frame whose integer fields (player_id, tick) are encoded
// in the smallest integer form, and whose input_data arrives as an array-of-ints instead
// of a binary string, must still decode to the intended semantics.
func TestPermissiveNumericDecode(t *testing.T) {
	var buf []byte
	enc := msgpack.NewEncoder(newAppendWriter(&buf))
	enc.EncodeMapLen(4)
	enc.EncodeString("player_id")
	enc.EncodeUint8(1) // smallest-form encoding of a u64 field
	enc.EncodeString("tick")
	enc.EncodeUint8(7)
	enc.EncodeString("input_data")
	enc.EncodeArrayLen(3) // array-of-ints instead of bin string
	enc.EncodeInt8(1)
	enc.EncodeInt8(2)
	enc.EncodeInt8(3)
	enc.EncodeString("extra_float_as_int")
	enc.EncodeInt8(0) // mirrors "0.0 -> int 0" permissiveness

	frame := append([]byte{byte(TagPlayerInput)}, buf...)
	msg, err := DecodeClient(frame)
	require.NoError(t, err)
	require.NotNil(t, msg.PlayerInput)
	assert.Equal(t, uint64(1), msg.PlayerInput.PlayerID)
	assert.Equal(t, uint32(7), msg.PlayerInput.Tick)
	assert.Equal(t, []byte{1, 2, 3}, []byte(msg.PlayerInput.InputData))
}

type appendWriter struct{ buf *[]byte }

func newAppendWriter(buf *[]byte) *appendWriter { return &appendWriter{buf: buf} }
func (w *appendWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}
