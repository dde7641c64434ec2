package game

import "fmt"

// Constructor builds a fresh, zero-value engine instance ready for Init.
type Constructor func() Game

// Registry maps a game_name (§6 RequestGameStart.game_name) to the
// constructor that builds it. The room manager consults a Registry when
// a leader starts a game, §2/§4.E.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds (or replaces) the constructor for name.
func (r *Registry) Register(name string, ctor Constructor) {
	r.constructors[name] = ctor
}

// ErrUnknownGame is returned by Create for an unregistered name.
var ErrUnknownGame = fmt.Errorf("game: unknown game name")

// Create instantiates a fresh engine for name, or ErrUnknownGame.
func (r *Registry) Create(name string) (Game, error) {
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, ErrUnknownGame
	}
	return ctor(), nil
}

// Names returns every registered game name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		out = append(out, name)
	}
	return out
}
