package domain

import "time"

// DefaultMaxPlayers is the default room capacity, §3.
const DefaultMaxPlayers = 8

// RoomConfig carries the knobs a room is created with.
type RoomConfig struct {
	MaxPlayers           int
	RoundDuration        time.Duration
	BetweenRoundDuration time.Duration
}

// DefaultRoomConfig returns the documented defaults.
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		MaxPlayers:           DefaultMaxPlayers,
		RoundDuration:        120 * time.Second,
		BetweenRoundDuration: 8 * time.Second,
	}
}
