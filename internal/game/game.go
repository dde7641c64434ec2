// Package game defines the contract every deterministic game engine
// implements (§4.B) and the pluggable registry that instantiates them
// by name (§2, §4.E start_game).
package game

import (
	"time"

	"github.com/lguibr/breakpoint/internal/domain"
)

// Config is the free-form initialization bundle passed to Init. Extra
// carries per-game keys the spec names explicitly: hole_index (golf),
// mode (platformer/laser-tag), seed (platformer), team_mode (laser-tag).
type Config struct {
	RoundCount    int
	RoundDuration time.Duration
	Extra         map[string]interface{}
}

// IntExtra reads an integer out of Extra, defaulting to def if absent or
// of the wrong type — engines must never panic on a malformed config.
func (c Config) IntExtra(key string, def int) int {
	v, ok := c.Extra[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// StringExtra reads a string out of Extra, defaulting to def.
func (c Config) StringExtra(key, def string) string {
	v, ok := c.Extra[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// BoolExtra reads a bool out of Extra, defaulting to def.
func (c Config) BoolExtra(key string, def bool) bool {
	v, ok := c.Extra[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// Participant is a player handed to Init; spectators are filtered out by
// the caller before Init ever sees the list, §4.B.
type Participant struct {
	ID    domain.PlayerID
	IsBot bool
}

// EventKind tags the variant of an Event.
type EventKind int

const (
	EventScoreUpdate EventKind = iota
	EventRoundComplete
)

// Event is emitted by Update; ScoreUpdate carries Player/Score, and
// RoundComplete carries neither (the session asks RoundResults for the
// final tally).
type Event struct {
	Kind   EventKind
	Player domain.PlayerID
	Score  int32
}

// PlayerResult is one player's outcome at round end.
type PlayerResult struct {
	Player domain.PlayerID
	Score  int32
}

// Metadata describes static facts about a game kind, used by the session
// loop and room manager (bot support, display name).
type Metadata struct {
	Name        string
	SupportsBot bool
}

// Game is the contract every engine in §4.C implements. Go's interface
// dispatch stands in for the source's dynamic-dispatch trait object, per
// §9's design note that either is an acceptable reading of the contract.
type Game interface {
	Init(players []Participant, cfg Config) error
	Update(dt time.Duration, inputs map[domain.PlayerID][]byte) []Event
	ApplyInput(player domain.PlayerID, payload []byte)
	SerializeSnapshot() ([]byte, error)
	SerializeInto(buf []byte) ([]byte, error)
	ApplySnapshot(data []byte) error
	TickRate() time.Duration
	RoundCountHint() int
	IsRoundComplete() bool
	RoundResults() []PlayerResult
	Pause()
	Resume()
	PlayerJoined(domain.PlayerID)
	PlayerLeft(domain.PlayerID)
	Metadata() Metadata
}
