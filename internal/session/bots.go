package session

import (
	"math"
	"math/rand/v2"

	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/vmihailenco/msgpack/v5"
)

// botInputFor produces a plausible input payload for a bot participant so
// engines that declare SupportsBot keep advancing even with no human
// input, §4.D step 1. The payload shape must match what each engine's
// ApplyInput expects; unsupported game names fall back to an empty input
// the engine will harmlessly ignore.
func botInputFor(gameName string, tick uint32, seed uint64, player domain.PlayerID) []byte {
	rng := rand.New(rand.NewPCG(seed, uint64(player)^uint64(tick)))

	var body []byte
	var err error
	switch gameName {
	case "mini-golf":
		body, err = msgpack.Marshal(map[string]interface{}{
			"aim_angle": rng.Float64() * 2 * math.Pi,
			"power":     4 + rng.Float64()*6,
			"stroke":    tick%40 == 0,
		})
	case "platformer":
		body, err = msgpack.Marshal(map[string]interface{}{
			"move_dir": rng.Float64()*2 - 1,
			"jump":     tick%25 == 0,
		})
	case "laser-tag":
		body, err = msgpack.Marshal(map[string]interface{}{
			"move_x":    rng.Float64()*2 - 1,
			"move_z":    rng.Float64()*2 - 1,
			"aim_angle": rng.Float64() * 2 * math.Pi,
			"fire":      tick%10 == 0,
		})
	case "tron":
		turn := "none"
		switch tick % 30 {
		case 0:
			turn = "left"
		case 15:
			turn = "right"
		}
		body, err = msgpack.Marshal(map[string]interface{}{"turn": turn})
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return body
}
