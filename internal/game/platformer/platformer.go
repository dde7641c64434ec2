package platformer

import (
	"time"

	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
	"github.com/vmihailenco/msgpack/v5"
)

// Mode selects the round's win condition, §4.C.2.
type Mode int

const (
	ModeRace Mode = iota
	ModeSurvival
)

type inputPayload struct {
	MoveDir float64 `msgpack:"move_dir"`
	Jump    bool    `msgpack:"jump"`
	UsePowerup bool `msgpack:"use_powerup"`
}

type pendingInput struct {
	moveDir    float64
	jump       bool // transient OR-merge
	usePowerup bool // transient OR-merge
}

// Platformer is the arena-race/survival engine.
type Platformer struct {
	course        Course
	seed          uint64
	mode          Mode
	players       map[domain.PlayerID]*PlayerState
	pending       map[domain.PlayerID]*pendingInput
	order         []domain.PlayerID
	finishOrder   []domain.PlayerID
	elimOrder     []domain.PlayerID
	hazardY       float64
	roundTimer    time.Duration
	roundLength   time.Duration
	complete      bool
	paused        bool
}

// New constructs a zero-value engine ready for Init.
func New() game.Game { return &Platformer{} }

func (p *Platformer) Init(participants []game.Participant, cfg game.Config) error {
	seed := uint64(cfg.IntExtra("seed", 1))
	p.seed = seed
	p.course = GenerateCourse(seed)
	modeStr := cfg.StringExtra("mode", "race")
	p.mode = ModeRace
	if modeStr == "survival" {
		p.mode = ModeSurvival
	}

	p.players = make(map[domain.PlayerID]*PlayerState, len(participants))
	p.pending = make(map[domain.PlayerID]*pendingInput, len(participants))
	p.order = p.order[:0]
	p.finishOrder = nil
	p.elimOrder = nil
	p.hazardY = -10
	p.roundLength = cfg.RoundDuration
	p.roundTimer = 0
	p.complete = false
	p.paused = false

	for _, participant := range participants {
		p.players[participant.ID] = newPlayerState(&p.course)
		p.pending[participant.ID] = &pendingInput{}
		p.order = append(p.order, participant.ID)
	}
	return nil
}

func (p *Platformer) ApplyInput(player domain.PlayerID, payload []byte) {
	pend, ok := p.pending[player]
	if !ok {
		return
	}
	var in inputPayload
	if err := msgpack.Unmarshal(payload, &in); err != nil {
		return
	}
	pend.moveDir = in.MoveDir
	if in.Jump {
		pend.jump = true
	}
	if in.UsePowerup {
		pend.usePowerup = true
	}
}

func (p *Platformer) Update(dt time.Duration, inputs map[domain.PlayerID][]byte) []game.Event {
	if p.paused || p.complete {
		return nil
	}
	for player, payload := range inputs {
		p.ApplyInput(player, payload)
	}

	dtSeconds := dt.Seconds()
	dtSub := dtSeconds / substeps

	var events []game.Event
	for _, id := range p.order {
		ps := p.players[id]
		pend := p.pending[id]
		if ps == nil || pend == nil || ps.Eliminated || ps.Finished {
			continue
		}
		if pend.usePowerup {
			// use_powerup has no effect: this engine never collects the
			// course's power-up spawns, so there is nothing to activate.
		}
		for s := 0; s < substeps; s++ {
			substep(ps, &p.course, pend.moveDir, pend.jump, dtSub)
			pend.jump = false
		}
		pend.usePowerup = false
		if ps.SpeedBoostTTL > 0 {
			ps.SpeedBoostTTL -= dtSeconds
		}
		if ps.Finished {
			p.finishOrder = append(p.finishOrder, id)
			p.finishOrder = dedupe(p.finishOrder)
		}
	}

	if p.mode == ModeSurvival {
		p.hazardY += hazardRiseRate * dtSeconds
		for _, id := range p.order {
			ps := p.players[id]
			if ps == nil || ps.Eliminated || ps.Finished {
				continue
			}
			if ps.Position.Y < p.hazardY {
				if ps.HasShield {
					ps.HasShield = false
					ps.respawn()
					continue
				}
				ps.Eliminated = true
				p.elimOrder = append(p.elimOrder, id)
			}
		}
	}

	p.roundTimer += dt
	if p.roundComplete() {
		if !p.complete {
			p.complete = true
			events = append(events, game.Event{Kind: game.EventRoundComplete})
		}
	}
	return events
}

func (p *Platformer) roundComplete() bool {
	if p.roundTimer >= p.roundLength {
		return true
	}
	switch p.mode {
	case ModeRace:
		for _, id := range p.order {
			ps := p.players[id]
			if ps != nil && !ps.Finished {
				return false
			}
		}
		return len(p.order) > 0
	case ModeSurvival:
		active := 0
		for _, id := range p.order {
			ps := p.players[id]
			if ps != nil && !ps.Eliminated {
				active++
			}
		}
		return active <= 1
	}
	return false
}

func (p *Platformer) IsRoundComplete() bool { return p.complete }

func (p *Platformer) RoundResults() []game.PlayerResult {
	results := make([]game.PlayerResult, 0, len(p.order))
	for _, id := range p.order {
		score := int32(0)
		for i, finisherID := range p.finishOrder {
			if finisherID == id {
				score = int32(len(p.order) - i)
				break
			}
		}
		results = append(results, game.PlayerResult{Player: id, Score: score})
	}
	return results
}

func dedupe(ids []domain.PlayerID) []domain.PlayerID {
	seen := make(map[domain.PlayerID]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (p *Platformer) Pause()  { p.paused = true }
func (p *Platformer) Resume() { p.paused = false }

func (p *Platformer) PlayerJoined(id domain.PlayerID) {
	if _, ok := p.players[id]; ok {
		return
	}
	p.players[id] = newPlayerState(&p.course)
	p.pending[id] = &pendingInput{}
	p.order = append(p.order, id)
}

func (p *Platformer) PlayerLeft(id domain.PlayerID) {
	delete(p.players, id)
	delete(p.pending, id)
	for i, pid := range p.order {
		if pid == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

func (p *Platformer) TickRate() time.Duration { return time.Second / tickRate }
func (p *Platformer) RoundCountHint() int     { return 1 }
func (p *Platformer) Metadata() game.Metadata {
	return game.Metadata{Name: "platformer-arena", SupportsBot: true}
}

type snapshot struct {
	Seed        uint64                             `msgpack:"seed"`
	Mode        Mode                               `msgpack:"mode"`
	Players     map[domain.PlayerID]*PlayerState    `msgpack:"players"`
	FinishOrder []domain.PlayerID                   `msgpack:"finish_order"`
	ElimOrder   []domain.PlayerID                   `msgpack:"elim_order"`
	HazardY     float64                             `msgpack:"hazard_y"`
	Timer       time.Duration                       `msgpack:"timer"`
	Complete    bool                                `msgpack:"complete"`
}

func (p *Platformer) toSnapshot() snapshot {
	return snapshot{
		Seed:        p.seed,
		Mode:        p.mode,
		Players:     p.players,
		FinishOrder: p.finishOrder,
		ElimOrder:   p.elimOrder,
		HazardY:     p.hazardY,
		Timer:       p.roundTimer,
		Complete:    p.complete,
	}
}

func (p *Platformer) SerializeSnapshot() ([]byte, error) {
	return msgpack.Marshal(p.toSnapshot())
}

func (p *Platformer) SerializeInto(buf []byte) ([]byte, error) {
	body, err := msgpack.Marshal(p.toSnapshot())
	if err != nil {
		return nil, err
	}
	if cap(buf) >= len(body) {
		buf = buf[:len(body)]
		copy(buf, body)
		return buf, nil
	}
	return body, nil
}

func (p *Platformer) ApplySnapshot(data []byte) error {
	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil
	}
	p.seed = snap.Seed
	p.course = GenerateCourse(snap.Seed)
	p.mode = snap.Mode
	p.players = snap.Players
	p.finishOrder = snap.FinishOrder
	p.elimOrder = snap.ElimOrder
	p.hazardY = snap.HazardY
	p.roundTimer = snap.Timer
	p.complete = snap.Complete
	if p.pending == nil {
		p.pending = make(map[domain.PlayerID]*pendingInput)
	}
	p.order = p.order[:0]
	for id := range p.players {
		p.order = append(p.order, id)
		if _, ok := p.pending[id]; !ok {
			p.pending[id] = &pendingInput{}
		}
	}
	return nil
}
