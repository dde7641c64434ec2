package domain

import (
	"crypto/rand"
	"errors"
	"regexp"
)

// unambiguousAlphabet drops characters that are easy to mis-key or
// mis-read over voice/chat when relaying a room code: 0/O and 1/I/L.
const unambiguousAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// RoomCodePattern is the wire-level format every room code must satisfy.
var RoomCodePattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// ErrInvalidRoomCode is returned by ValidateRoomCode for malformed codes.
var ErrInvalidRoomCode = errors.New("invalid room code format")

// GenerateRoomCode produces a random AAAA-DDDD-shaped code drawn from the
// unambiguous alphabet. Collision handling against live rooms is the
// caller's responsibility (the room manager regenerates on collision).
func GenerateRoomCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, 9)
	n := len(unambiguousAlphabet)
	for i := 0; i < 4; i++ {
		out[i] = unambiguousAlphabet[int(buf[i])%n]
	}
	out[4] = '-'
	for i := 0; i < 4; i++ {
		out[5+i] = unambiguousAlphabet[int(buf[4+i])%n]
	}
	return string(out), nil
}

// ValidateRoomCode checks the wire-level shape. It intentionally accepts
// any letter/digit in that shape (not just the unambiguous alphabet) so
// that codes typed by hand still round-trip; GenerateRoomCode is the only
// thing constrained to the unambiguous subset.
func ValidateRoomCode(code string) error {
	if !RoomCodePattern.MatchString(code) {
		return ErrInvalidRoomCode
	}
	return nil
}
