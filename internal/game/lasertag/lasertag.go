package lasertag

import (
	"time"

	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
	"github.com/lguibr/breakpoint/internal/vecmath"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	tickRate        = 20 // Hz, §4.C.3
	baseSpeed       = 5.0
	speedBoostMult  = 1.5
	playerRadius    = 0.5
	fireCooldown    = 0.5
	rapidFireMult   = 0.4
	stunDuration    = 1.5
	powerUpRespawn  = 12.0
	maxFireRange    = 30.0
)

// TeamMode selects friendly-fire exclusion, §4.C.3.
type TeamMode int

const (
	TeamModeFFA TeamMode = iota
	TeamModeTeams2
	TeamModeTeams3
	TeamModeTeams4
)

// PowerUpKind names a collectible effect.
type PowerUpKind int

const (
	PowerUpSpeedBoost PowerUpKind = iota
	PowerUpRapidFire
	PowerUpShield
)

const powerUpDuration = 10.0

type activePowerUp struct {
	Kind      PowerUpKind
	Remaining float64
}

// PlayerState is one player's combat state.
type PlayerState struct {
	Position      vecmath.Vec2
	AimAngle      float64
	StunRemaining float64
	FireCooldown  float64
	Tags          int
	Active        []activePowerUp
}

func (p *PlayerState) hasActive(kind PowerUpKind) bool {
	for _, a := range p.Active {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

func (p *PlayerState) consume(kind PowerUpKind) bool {
	for i, a := range p.Active {
		if a.Kind == kind {
			p.Active = append(p.Active[:i], p.Active[i+1:]...)
			return true
		}
	}
	return false
}

type powerUpSpawn struct {
	Kind       PowerUpKind
	Position   vecmath.Vec2
	Collected  bool
	RespawnIn  float64
}

type inputPayload struct {
	MoveX    float64 `msgpack:"move_x"`
	MoveZ    float64 `msgpack:"move_z"`
	AimAngle float64 `msgpack:"aim_angle"`
	Fire     bool    `msgpack:"fire"`
}

type pendingInput struct {
	moveX, moveZ, aimAngle float64
	fire                   bool // transient OR-merge
}

// LaserTag is the arena combat engine.
type LaserTag struct {
	arena      Arena
	teamMode   TeamMode
	teams      map[domain.PlayerID]int
	players    map[domain.PlayerID]*PlayerState
	pending    map[domain.PlayerID]*pendingInput
	spawns     []powerUpSpawn
	order      []domain.PlayerID
	roundTimer time.Duration
	roundLen   time.Duration
	complete   bool
	paused     bool
}

// New constructs a zero-value engine ready for Init.
func New() game.Game { return &LaserTag{} }

func (l *LaserTag) Init(participants []game.Participant, cfg game.Config) error {
	l.arena = DefaultArena()
	l.teamMode = teamModeFromString(cfg.StringExtra("team_mode", "ffa"))
	l.players = make(map[domain.PlayerID]*PlayerState, len(participants))
	l.pending = make(map[domain.PlayerID]*pendingInput, len(participants))
	l.teams = make(map[domain.PlayerID]int, len(participants))
	l.order = l.order[:0]
	l.roundLen = cfg.RoundDuration
	l.roundTimer = 0
	l.complete = false
	l.paused = false

	teamCount := teamCountFor(l.teamMode)
	for i, participant := range participants {
		l.players[participant.ID] = &PlayerState{
			Position: vecmath.Vec2{X: 4 + float64(i%6)*6, Y: 4 + float64(i/6)*6},
		}
		l.pending[participant.ID] = &pendingInput{}
		l.order = append(l.order, participant.ID)
		if teamCount > 0 {
			l.teams[participant.ID] = i % teamCount
		}
	}

	l.spawns = []powerUpSpawn{
		{Kind: PowerUpSpeedBoost, Position: vecmath.Vec2{X: 10, Y: 10}},
		{Kind: PowerUpRapidFire, Position: vecmath.Vec2{X: 30, Y: 30}},
		{Kind: PowerUpShield, Position: vecmath.Vec2{X: 10, Y: 30}},
	}
	return nil
}

func teamModeFromString(s string) TeamMode {
	switch s {
	case "teams_2":
		return TeamModeTeams2
	case "teams_3":
		return TeamModeTeams3
	case "teams_4":
		return TeamModeTeams4
	default:
		return TeamModeFFA
	}
}

func teamCountFor(mode TeamMode) int {
	switch mode {
	case TeamModeTeams2:
		return 2
	case TeamModeTeams3:
		return 3
	case TeamModeTeams4:
		return 4
	default:
		return 0
	}
}

func (l *LaserTag) ApplyInput(player domain.PlayerID, payload []byte) {
	pend, ok := l.pending[player]
	if !ok {
		return
	}
	var in inputPayload
	if err := msgpack.Unmarshal(payload, &in); err != nil {
		return
	}
	pend.moveX = vecmath.SanitizeFloat(in.MoveX)
	pend.moveZ = vecmath.SanitizeFloat(in.MoveZ)
	pend.aimAngle = in.AimAngle
	if in.Fire {
		pend.fire = true
	}
}

func (l *LaserTag) Update(dt time.Duration, inputs map[domain.PlayerID][]byte) []game.Event {
	if l.paused || l.complete {
		return nil
	}
	for player, payload := range inputs {
		l.ApplyInput(player, payload)
	}

	dtSeconds := dt.Seconds()
	var events []game.Event

	positions := make(map[domain.PlayerID]vecmath.Vec2, len(l.players))
	for id, ps := range l.players {
		positions[id] = ps.Position
	}

	stunnedThisTick := make(map[domain.PlayerID]bool)

	for _, id := range l.order {
		ps := l.players[id]
		pend := l.pending[id]
		if ps == nil || pend == nil {
			continue
		}

		for i := len(ps.Active) - 1; i >= 0; i-- {
			ps.Active[i].Remaining -= dtSeconds
			if ps.Active[i].Remaining <= 0 {
				ps.Active = append(ps.Active[:i], ps.Active[i+1:]...)
			}
		}
		if ps.FireCooldown > 0 {
			ps.FireCooldown -= dtSeconds
		}
		if ps.StunRemaining > 0 {
			ps.StunRemaining -= dtSeconds
			pend.fire = false
			continue
		}

		speed := baseSpeed
		if ps.hasActive(PowerUpSpeedBoost) {
			speed *= speedBoostMult
		}
		move := vecmath.Vec2{X: pend.moveX, Y: pend.moveZ}
		if move.LengthSq() > 1 {
			move = move.Normalized()
		}
		ps.Position = ps.Position.Add(move.Scale(speed * dtSeconds))
		ps.Position.X = vecmath.Clamp(ps.Position.X, playerRadius, l.arena.Width-playerRadius)
		ps.Position.Y = vecmath.Clamp(ps.Position.Y, playerRadius, l.arena.Depth-playerRadius)
		ps.AimAngle = pend.aimAngle
		positions[id] = ps.Position

		for i := range l.spawns {
			spawn := &l.spawns[i]
			if spawn.Collected {
				continue
			}
			if ps.Position.Distance(spawn.Position) < playerRadius+0.5 {
				spawn.Collected = true
				spawn.RespawnIn = powerUpRespawn
				ps.Active = append(ps.Active, activePowerUp{Kind: spawn.Kind, Remaining: powerUpDuration})
			}
		}

		if pend.fire && ps.FireCooldown <= 0 {
			excluded := make(map[domain.PlayerID]bool)
			for other := range l.players {
				if l.sameTeam(id, other) {
					excluded[other] = true
				}
				if stunnedThisTick[other] || l.players[other].StunRemaining > 0 {
					excluded[other] = true
				}
			}
			result := fire(ps.Position, ps.AimAngle, id, l.arena, positions, excluded, maxFireRange, playerRadius)
			if result.Hit {
				victim := l.players[result.Victim]
				if victim.consume(PowerUpShield) {
					// shield absorbs the hit, no stun
				} else {
					victim.StunRemaining = stunDuration
					stunnedThisTick[result.Victim] = true
					ps.Tags++
					events = append(events, game.Event{Kind: game.EventScoreUpdate, Player: id, Score: int32(ps.Tags)})
				}
			}
			cooldown := fireCooldown
			if ps.hasActive(PowerUpRapidFire) {
				cooldown *= rapidFireMult
			}
			ps.FireCooldown = cooldown
		}
		pend.fire = false
	}

	for i := range l.spawns {
		spawn := &l.spawns[i]
		if spawn.Collected {
			spawn.RespawnIn -= dtSeconds
			if spawn.RespawnIn <= 0 {
				spawn.Collected = false
			}
		}
	}

	l.roundTimer += dt
	if l.roundTimer >= l.roundLen {
		if !l.complete {
			l.complete = true
			events = append(events, game.Event{Kind: game.EventRoundComplete})
		}
	}
	return events
}

func (l *LaserTag) sameTeam(a, b domain.PlayerID) bool {
	if a == b {
		return true
	}
	if teamCountFor(l.teamMode) == 0 {
		return false
	}
	return l.teams[a] == l.teams[b]
}

func (l *LaserTag) IsRoundComplete() bool { return l.complete }

func (l *LaserTag) RoundResults() []game.PlayerResult {
	teamScores := make(map[int]int32)
	results := make([]game.PlayerResult, 0, len(l.order))
	for _, id := range l.order {
		ps := l.players[id]
		if ps == nil {
			continue
		}
		if teamCountFor(l.teamMode) > 0 {
			teamScores[l.teams[id]] += int32(ps.Tags)
		}
	}
	for _, id := range l.order {
		ps := l.players[id]
		if ps == nil {
			continue
		}
		score := int32(ps.Tags)
		if teamCountFor(l.teamMode) > 0 {
			score = teamScores[l.teams[id]]
		}
		results = append(results, game.PlayerResult{Player: id, Score: score})
	}
	return results
}

func (l *LaserTag) Pause()  { l.paused = true }
func (l *LaserTag) Resume() { l.paused = false }

func (l *LaserTag) PlayerJoined(id domain.PlayerID) {
	if _, ok := l.players[id]; ok {
		return
	}
	l.players[id] = &PlayerState{Position: vecmath.Vec2{X: 4, Y: 4}}
	l.pending[id] = &pendingInput{}
	l.order = append(l.order, id)
}

func (l *LaserTag) PlayerLeft(id domain.PlayerID) {
	delete(l.players, id)
	delete(l.pending, id)
	delete(l.teams, id)
	for i, pid := range l.order {
		if pid == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

func (l *LaserTag) TickRate() time.Duration { return time.Second / tickRate }
func (l *LaserTag) RoundCountHint() int     { return 1 }
func (l *LaserTag) Metadata() game.Metadata {
	return game.Metadata{Name: "laser-tag", SupportsBot: true}
}

type snapshot struct {
	TeamMode TeamMode                         `msgpack:"team_mode"`
	Teams    map[domain.PlayerID]int          `msgpack:"teams"`
	Players  map[domain.PlayerID]*PlayerState `msgpack:"players"`
	Spawns   []powerUpSpawn                   `msgpack:"spawns"`
	Timer    time.Duration                    `msgpack:"timer"`
	Complete bool                             `msgpack:"complete"`
}

func (l *LaserTag) toSnapshot() snapshot {
	return snapshot{
		TeamMode: l.teamMode,
		Teams:    l.teams,
		Players:  l.players,
		Spawns:   l.spawns,
		Timer:    l.roundTimer,
		Complete: l.complete,
	}
}

func (l *LaserTag) SerializeSnapshot() ([]byte, error) {
	return msgpack.Marshal(l.toSnapshot())
}

func (l *LaserTag) SerializeInto(buf []byte) ([]byte, error) {
	body, err := msgpack.Marshal(l.toSnapshot())
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

func (l *LaserTag) ApplySnapshot(data []byte) error {
	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil
	}
	l.arena = DefaultArena()
	l.teamMode = snap.TeamMode
	l.teams = snap.Teams
	l.players = snap.Players
	l.spawns = snap.Spawns
	l.roundTimer = snap.Timer
	l.complete = snap.Complete
	if l.pending == nil {
		l.pending = make(map[domain.PlayerID]*pendingInput)
	}
	l.order = l.order[:0]
	for id := range l.players {
		l.order = append(l.order, id)
		if _, ok := l.pending[id]; !ok {
			l.pending[id] = &pendingInput{}
		}
	}
	return nil
}
