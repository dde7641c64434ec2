// Package wire implements the binary frame format shared by client and
// server: one tag byte followed by a MessagePack payload, §4.A/§6.
package wire

// Tag identifies the type of a framed message. The numbering here is
// part of the external wire contract and must never be silently
// renumbered — clients out in the world depend on these exact values.
type Tag byte

// Client -> server tags.
const (
	TagPlayerInput       Tag = 0x01
	TagJoinRoom          Tag = 0x02
	TagLeaveRoom         Tag = 0x03
	TagClaimAlert        Tag = 0x04
	TagChatMessage       Tag = 0x05
	TagOverlayConfig     Tag = 0x23 // shared with the server-side opaque fanout tag
	TagRequestGameStart  Tag = 0x30
)

// Server -> client tags.
const (
	TagJoinRoomResponse Tag = 0x06
	TagGameState        Tag = 0x10
	TagPlayerList       Tag = 0x11
	TagRoomConfig       Tag = 0x12
	TagGameStart        Tag = 0x13
	TagRoundEnd         Tag = 0x14
	TagGameEnd          Tag = 0x15
	TagAlertEvent       Tag = 0x20
	TagAlertClaimed     Tag = 0x21
	TagAlertDismissed   Tag = 0x22
	// TagOverlayConfig (0x23) is shared between directions: it is opaque
	// fanout that a client may also relay verbatim, §6.
)

// clientTags and serverTags partition the tag space so decode_client and
// decode_server can reject a frame encoded for the other direction, §4.A.
var clientTags = map[Tag]bool{
	TagPlayerInput:      true,
	TagJoinRoom:         true,
	TagLeaveRoom:        true,
	TagClaimAlert:       true,
	TagChatMessage:      true,
	TagOverlayConfig:    true,
	TagRequestGameStart: true,
}

var serverTags = map[Tag]bool{
	TagJoinRoomResponse: true,
	TagGameState:        true,
	TagPlayerList:       true,
	TagRoomConfig:       true,
	TagGameStart:        true,
	TagRoundEnd:         true,
	TagGameEnd:          true,
	TagAlertEvent:       true,
	TagAlertClaimed:     true,
	TagAlertDismissed:   true,
	TagOverlayConfig:    true,
}

// IsClientTag reports whether tag is valid on a client->server frame.
func IsClientTag(t Tag) bool { return clientTags[t] }

// IsServerTag reports whether tag is valid on a server->client frame.
func IsServerTag(t Tag) bool { return serverTags[t] }

// IsKnownTag reports whether t appears anywhere in the tag table, §8.2.
func IsKnownTag(t Tag) bool { return clientTags[t] || serverTags[t] }

// ProtocolVersion is the server's current protocol version, carried as a
// single byte in JoinRoom, §4.A.
const ProtocolVersion uint8 = 2
