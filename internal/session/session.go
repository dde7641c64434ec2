// Package session implements the per-room game tick loop, §4.D: one actor
// per active room owning a game engine, advancing it at the engine's
// declared tick rate, buffering input between ticks, and broadcasting
// serialized snapshots until the game ends.
package session

import (
	"time"

	"github.com/lguibr/breakpoint/internal/actorkit"
	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
	"go.uber.org/zap"
)

// Config bundles everything a session needs at construction time.
type Config struct {
	GameName             string
	RoundCount           int
	RoundDuration        time.Duration
	BetweenRoundDuration time.Duration
	Engine               game.Game
	Broadcaster          Broadcaster
	Roster               Roster
	Bots                 map[domain.PlayerID]bool
	Logger               *zap.Logger
}

type phase int

const (
	phaseActive phase = iota
	phaseBetweenRounds
	phaseStopped
)

// Actor is the session's actorkit.Actor implementation.
type Actor struct {
	cfg          Config
	log          *zap.Logger
	phase        phase
	players      []domain.PlayerID
	pending      map[domain.PlayerID][]byte
	tickNum      uint32
	currentRound uint8
	cumulative   map[domain.PlayerID]int32
	timer        *time.Timer
	seed         uint64
}

// NewProducer returns an actorkit.Producer that builds a fresh session
// actor for cfg; the room manager spawns one per RequestGameStart, §4.E.
func NewProducer(cfg Config) actorkit.Producer {
	return func() actorkit.Actor {
		logger := cfg.Logger
		if logger == nil {
			logger = zap.NewNop()
		}
		return &Actor{
			cfg:        cfg,
			log:        logger,
			players:    append([]domain.PlayerID(nil), cfg.Roster.ActiveParticipants()...),
			pending:    make(map[domain.PlayerID][]byte),
			cumulative: make(map[domain.PlayerID]int32),
			seed:       1,
		}
	}
}

func (a *Actor) Receive(ctx actorkit.Context) {
	switch msg := ctx.Message().(type) {
	case actorkit.Started:
		a.start(ctx)
	case actorkit.Stopping, actorkit.Stopped:
		a.stopTimer()
	case tick:
		a.onTick(ctx)
	case betweenRoundElapsed:
		a.onRoundReinit(ctx)
	case PlayerInput:
		a.onPlayerInput(msg)
	case PlayerJoined:
		a.onPlayerJoined(msg)
	case PlayerLeft:
		a.onPlayerLeft(ctx, msg)
	case Stop:
		a.shutdown(ctx)
	}
}

func (a *Actor) start(ctx actorkit.Context) {
	participants := make([]game.Participant, 0, len(a.players))
	for _, id := range a.players {
		participants = append(participants, game.Participant{ID: id, IsBot: a.cfg.Bots[id]})
	}
	cfg := game.Config{
		RoundCount:    a.cfg.RoundCount,
		RoundDuration: a.cfg.RoundDuration,
		Extra:         map[string]interface{}{"hole_index": 0, "seed": int(a.seed), "mode": "race"},
	}
	if err := a.cfg.Engine.Init(participants, cfg); err != nil {
		a.log.Error("session engine init failed", zap.Error(err))
		a.cfg.Broadcaster.GameEnded()
		ctx.Engine().Stop(ctx.Self())
		return
	}
	a.currentRound = 1
	a.cfg.Broadcaster.GameStart(a.cfg.GameName, a.cfg.Roster.LeaderID(), a.players)
	a.scheduleTick(ctx)
}

func (a *Actor) scheduleTick(ctx actorkit.Context) {
	if a.phase == phaseStopped {
		return
	}
	interval := a.cfg.Engine.TickRate()
	self := ctx.Self()
	engine := ctx.Engine()
	a.timer = time.AfterFunc(interval, func() {
		engine.Send(self, tick{}, nil)
	})
}

// onTick is the "skip, never double-tick" scheduler: the next timer is
// only armed after this tick's work finishes, so a slow tick simply
// delays the next one instead of queuing a catch-up burst.
func (a *Actor) onTick(ctx actorkit.Context) {
	if a.phase != phaseActive {
		return
	}

	inputs := a.generateBotInputs()
	for player, bytes := range a.pending {
		inputs[player] = bytes
	}
	a.pending = make(map[domain.PlayerID][]byte)

	a.tickNum++
	events := a.cfg.Engine.Update(a.cfg.Engine.TickRate(), inputs)

	snapshot, err := a.cfg.Engine.SerializeSnapshot()
	if err != nil {
		a.log.Error("session snapshot serialize failed", zap.Error(err))
	} else {
		a.cfg.Broadcaster.GameState(a.tickNum, snapshot)
	}

	roundDone := a.cfg.Engine.IsRoundComplete()
	for _, ev := range events {
		if ev.Kind == game.EventRoundComplete {
			roundDone = true
		}
	}

	if roundDone {
		a.finishRound(ctx)
		return
	}
	a.scheduleTick(ctx)
}

func (a *Actor) generateBotInputs() map[domain.PlayerID][]byte {
	inputs := make(map[domain.PlayerID][]byte, len(a.cfg.Bots))
	if !a.cfg.Engine.Metadata().SupportsBot {
		return inputs
	}
	for player, isBot := range a.cfg.Bots {
		if !isBot {
			continue
		}
		if payload := botInputFor(a.cfg.GameName, a.tickNum, a.seed, player); payload != nil {
			inputs[player] = payload
		}
	}
	return inputs
}

func (a *Actor) finishRound(ctx actorkit.Context) {
	results := a.cfg.Engine.RoundResults()
	for _, r := range results {
		a.cumulative[r.Player] += r.Score
	}

	if int(a.currentRound) >= a.cfg.RoundCount {
		final := make([]game.PlayerResult, 0, len(a.cumulative))
		for _, id := range a.players {
			final = append(final, game.PlayerResult{Player: id, Score: a.cumulative[id]})
		}
		a.cfg.Broadcaster.GameEnd(final)
		a.shutdown(ctx)
		return
	}

	scores := make([]game.PlayerResult, 0, len(results))
	for _, id := range a.players {
		scores = append(scores, game.PlayerResult{Player: id, Score: a.cumulative[id]})
	}
	a.cfg.Broadcaster.RoundEnd(a.currentRound, scores, uint16(a.cfg.BetweenRoundDuration.Seconds()))

	a.phase = phaseBetweenRounds
	a.cfg.Engine.Pause()
	self := ctx.Self()
	engine := ctx.Engine()
	a.timer = time.AfterFunc(a.cfg.BetweenRoundDuration, func() {
		engine.Send(self, betweenRoundElapsed{}, nil)
	})
}

func (a *Actor) onRoundReinit(ctx actorkit.Context) {
	if a.phase != phaseBetweenRounds {
		return
	}
	a.players = a.cfg.Roster.PromoteSpectators()
	a.currentRound++

	participants := make([]game.Participant, 0, len(a.players))
	for _, id := range a.players {
		participants = append(participants, game.Participant{ID: id, IsBot: a.cfg.Bots[id]})
	}
	cfg := game.Config{
		RoundCount:    a.cfg.RoundCount,
		RoundDuration: a.cfg.RoundDuration,
		Extra:         map[string]interface{}{"hole_index": int(a.currentRound) - 1, "seed": int(a.seed) + int(a.currentRound), "mode": "race"},
	}
	if err := a.cfg.Engine.Init(participants, cfg); err != nil {
		a.log.Error("session engine reinit failed", zap.Error(err))
		a.shutdown(ctx)
		return
	}
	a.cfg.Engine.Resume()
	a.tickNum = 0
	a.phase = phaseActive
	a.cfg.Broadcaster.GameStart(a.cfg.GameName, a.cfg.Roster.LeaderID(), a.players)
	a.scheduleTick(ctx)
}

func (a *Actor) onPlayerInput(msg PlayerInput) {
	if a.phase == phaseStopped {
		return
	}
	a.cfg.Engine.ApplyInput(msg.Player, msg.Bytes)
	a.pending[msg.Player] = msg.Bytes
}

func (a *Actor) onPlayerJoined(msg PlayerJoined) {
	if a.phase == phaseStopped {
		return
	}
	a.cfg.Engine.PlayerJoined(msg.Player)
	for _, id := range a.players {
		if id == msg.Player {
			return
		}
	}
	a.players = append(a.players, msg.Player)
}

func (a *Actor) onPlayerLeft(ctx actorkit.Context, msg PlayerLeft) {
	if a.phase == phaseStopped {
		return
	}
	a.cfg.Engine.PlayerLeft(msg.Player)
	delete(a.pending, msg.Player)
	for i, id := range a.players {
		if id == msg.Player {
			a.players = append(a.players[:i], a.players[i+1:]...)
			break
		}
	}
	if len(a.players) == 0 {
		a.shutdown(ctx)
	}
}

func (a *Actor) shutdown(ctx actorkit.Context) {
	if a.phase == phaseStopped {
		return
	}
	a.phase = phaseStopped
	a.stopTimer()
	a.cfg.Broadcaster.GameEnded()
	ctx.Engine().Stop(ctx.Self())
}

func (a *Actor) stopTimer() {
	if a.timer != nil {
		a.timer.Stop()
	}
}
