package roommgr

import (
	"time"

	"github.com/lguibr/breakpoint/internal/actorkit"
	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
	"github.com/lguibr/breakpoint/internal/session"
	"github.com/lguibr/breakpoint/internal/wire"
	"go.uber.org/zap"
)

// Config bundles the manager's tunable knobs, sourced from internal/config.
type Config struct {
	OutboundCapacity int
	RoomConfig       domain.RoomConfig
	RoundCount       int
	IdleThreshold    time.Duration
	SweepInterval    time.Duration
	Registry         *game.Registry
	Logger           *zap.Logger
}

type sweepTick struct{}

// Manager is the room registry actor, §4.E: its mailbox is the sole
// writer of every roomEntry, so no other synchronization is needed.
type Manager struct {
	cfg   Config
	log   *zap.Logger
	rooms map[string]*roomEntry
	ids   domain.IDAllocator
	timer *time.Timer
}

// NewProducer returns an actorkit.Producer that builds the manager actor.
// A process runs exactly one.
func NewProducer(cfg Config) actorkit.Producer {
	if cfg.OutboundCapacity <= 0 {
		cfg.OutboundCapacity = DefaultOutboundCapacity
	}
	if cfg.RoundCount <= 0 {
		cfg.RoundCount = 1
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return func() actorkit.Actor {
		logger := cfg.Logger
		if logger == nil {
			logger = zap.NewNop()
		}
		return &Manager{cfg: cfg, log: logger, rooms: make(map[string]*roomEntry)}
	}
}

func (m *Manager) Receive(ctx actorkit.Context) {
	switch msg := ctx.Message().(type) {
	case actorkit.Started:
		m.scheduleSweep(ctx)
	case actorkit.Stopping, actorkit.Stopped:
		m.stopSweep()
	case sweepTick:
		m.runSweep(ctx)

	case CreateRoomRequest:
		ctx.Respond(m.createRoom(msg))
	case JoinRoomRequest:
		ctx.Respond(m.joinRoom(ctx, msg))
	case LeaveRoomRequest:
		m.leaveRoom(ctx, msg)
	case StartGameRequest:
		ctx.Respond(StartGameResult{Err: m.startGame(ctx, msg)})
	case RoutePlayerInputRequest:
		m.routePlayerInput(ctx, msg)
	case BroadcastOpaqueRequest:
		m.broadcastOpaqueFrame(msg)
	case BroadcastGlobalRequest:
		m.broadcastToAllRooms(msg.Frame)
	case TouchActivityRequest:
		m.touchActivity(msg.Code)
	case CleanupIdleRoomsRequest:
		ctx.Respond(m.cleanupIdleRooms(msg.MaxIdleSeconds))
	case ListRoomsRequest:
		ctx.Respond(m.listRooms())

	case ActiveParticipantsRequest:
		ctx.Respond(m.activeParticipants(msg.Code))
	case PromoteSpectatorsRequest:
		ctx.Respond(m.promoteSpectators(msg.Code))
	case LeaderIDRequest:
		ctx.Respond(m.leaderIDFor(msg.Code))

	case sessionGameStart:
		m.onSessionGameStart(msg)
	case sessionGameState:
		m.onSessionGameState(msg)
	case sessionRoundEnd:
		m.onSessionRoundEnd(msg)
	case sessionGameEnd:
		m.onSessionGameEnd(msg)
	case sessionGameEnded:
		m.onSessionGameEnded(msg)
	}
}

func (m *Manager) scheduleSweep(ctx actorkit.Context) {
	self := ctx.Self()
	engine := ctx.Engine()
	m.timer = time.AfterFunc(m.cfg.SweepInterval, func() {
		engine.Send(self, sweepTick{}, nil)
	})
}

func (m *Manager) stopSweep() {
	if m.timer != nil {
		m.timer.Stop()
	}
}

func (m *Manager) runSweep(ctx actorkit.Context) {
	removed := m.cleanupIdleRooms(m.cfg.IdleThreshold.Seconds())
	if removed > 0 {
		m.log.Info("idle room sweep removed rooms", zap.Int("count", removed))
	}
	m.scheduleSweep(ctx)
}

// --- create / join / leave ---

func (m *Manager) createRoom(req CreateRoomRequest) CreateRoomResult {
	code := m.freshRoomCode()
	playerID := m.ids.Next()
	conn := newConnection(playerID, m.cfg.OutboundCapacity)

	player := &domain.Player{ID: playerID, Name: req.PlayerName, Color: req.Color, IsLeader: true, JoinSequence: 1}
	room := &roomEntry{
		code:         code,
		players:      []*domain.Player{player},
		conns:        map[domain.PlayerID]*Connection{playerID: conn},
		state:        domain.RoomLobby,
		config:       m.cfg.RoomConfig,
		lastActivity: time.Now(),
		cumulative:   make(map[domain.PlayerID]int32),
	}
	m.rooms[code] = room
	return CreateRoomResult{Code: code, PlayerID: playerID, Conn: conn}
}

func (m *Manager) freshRoomCode() string {
	for {
		code, err := domain.GenerateRoomCode()
		if err != nil {
			continue
		}
		if _, exists := m.rooms[code]; !exists {
			return code
		}
	}
}

func (m *Manager) joinRoom(ctx actorkit.Context, req JoinRoomRequest) JoinRoomResult {
	if err := domain.ValidateRoomCode(req.Code); err != nil {
		return JoinRoomResult{Err: err}
	}
	room, ok := m.rooms[req.Code]
	if !ok {
		return JoinRoomResult{Err: ErrRoomNotFound}
	}
	isSpectator := room.state != domain.RoomLobby
	if !isSpectator && len(room.activeParticipantIDs()) >= room.config.MaxPlayers {
		return JoinRoomResult{Err: ErrRoomFull}
	}

	playerID := m.ids.Next()
	conn := newConnection(playerID, m.cfg.OutboundCapacity)
	player := &domain.Player{
		ID: playerID, Name: req.PlayerName, Color: req.Color,
		IsSpectator: isSpectator, JoinSequence: uint64(len(room.players) + 1),
	}
	room.players = append(room.players, player)
	room.conns[playerID] = conn
	room.lastActivity = time.Now()

	if isSpectator && room.sessionPID != nil {
		ctx.Engine().Send(room.sessionPID, session.PlayerJoined{Player: playerID}, nil)
	}

	m.broadcastPlayerList(room)
	return JoinRoomResult{PlayerID: playerID, RoomCode: room.code, RoomState: room.state, IsSpectator: isSpectator, Conn: conn}
}

func (m *Manager) leaveRoom(ctx actorkit.Context, req LeaveRoomRequest) {
	room, ok := m.rooms[req.Code]
	if !ok {
		return
	}
	idx := room.playerIndex(req.PlayerID)
	if idx < 0 {
		return
	}
	wasLeader := room.players[idx].IsLeader
	room.players = append(room.players[:idx], room.players[idx+1:]...)
	delete(room.conns, req.PlayerID)

	if room.sessionPID != nil {
		ctx.Engine().Send(room.sessionPID, session.PlayerLeft{Player: req.PlayerID}, nil)
	}

	if len(room.players) == 0 {
		if room.sessionPID != nil {
			ctx.Engine().Send(room.sessionPID, session.Stop{}, nil)
		}
		delete(m.rooms, req.Code)
		return
	}

	if wasLeader {
		room.players[0].IsLeader = true
	}
	room.lastActivity = time.Now()
	m.broadcastPlayerList(room)
}

// --- game lifecycle ---

func (m *Manager) startGame(ctx actorkit.Context, req StartGameRequest) error {
	room, ok := m.rooms[req.Code]
	if !ok {
		return ErrRoomNotFound
	}
	requester := room.player(req.PlayerID)
	if requester == nil || !requester.IsLeader {
		return ErrNotLeader
	}
	if room.state != domain.RoomLobby {
		return ErrGameAlreadyInProgress
	}
	engineInstance, err := m.cfg.Registry.Create(req.GameName)
	if err != nil {
		return ErrUnknownGameName
	}

	room.state = domain.RoomInGame
	room.gameName = req.GameName
	room.cumulative = make(map[domain.PlayerID]int32)

	sessionCfg := session.Config{
		GameName:             req.GameName,
		RoundCount:           m.cfg.RoundCount,
		RoundDuration:        room.config.RoundDuration,
		BetweenRoundDuration: room.config.BetweenRoundDuration,
		Engine:               engineInstance,
		Broadcaster:          &managerBroadcaster{engine: ctx.Engine(), self: ctx.Self(), code: room.code},
		Roster:               &managerRoster{engine: ctx.Engine(), self: ctx.Self(), code: room.code},
		Bots:                 make(map[domain.PlayerID]bool),
		Logger:               m.log,
	}
	room.sessionPID = ctx.Engine().Spawn(actorkit.NewProps(session.NewProducer(sessionCfg)))
	return nil
}

func (m *Manager) routePlayerInput(ctx actorkit.Context, req RoutePlayerInputRequest) {
	room, ok := m.rooms[req.Code]
	if !ok || room.sessionPID == nil {
		m.log.Debug("dropping input for unknown or inactive room", zap.String("code", req.Code))
		return
	}
	ctx.Engine().Send(room.sessionPID, session.PlayerInput{Player: req.PlayerID, Tick: req.Tick, Bytes: req.Bytes}, nil)
	room.lastActivity = time.Now()
}

// --- fanout ---

func (m *Manager) broadcastOpaqueFrame(req BroadcastOpaqueRequest) {
	room, ok := m.rooms[req.Code]
	if !ok {
		return
	}
	room.lastActivity = time.Now()
	m.fanout(room, req.Exclude, req.Frame)
}

func (m *Manager) fanout(room *roomEntry, exclude domain.PlayerID, frame []byte) {
	for id, conn := range room.conns {
		if exclude != 0 && id == exclude {
			continue
		}
		select {
		case conn.Outbound <- frame:
		default:
			m.log.Debug("dropping message for slow client", zap.String("code", room.code), zap.Uint64("player", uint64(id)))
		}
	}
}

func (m *Manager) broadcastPlayerList(room *roomEntry) {
	infos := make([]wire.PlayerInfo, 0, len(room.players))
	for _, p := range room.players {
		infos = append(infos, playerInfoFrom(p))
	}
	frame, err := wire.Encode(wire.TagPlayerList, wire.PlayerList{Players: infos, LeaderID: uint64(room.leaderID())})
	if err != nil {
		m.log.Error("failed to encode player list", zap.Error(err))
		return
	}
	m.fanout(room, 0, frame)
}

func playerInfoFrom(p *domain.Player) wire.PlayerInfo {
	return wire.PlayerInfo{
		ID: uint64(p.ID), Name: p.Name,
		Color:       wire.Color{R: p.Color.R, G: p.Color.G, B: p.Color.B},
		IsLeader:    p.IsLeader, IsSpectator: p.IsSpectator, IsBot: p.IsBot,
	}
}

func (m *Manager) touchActivity(code string) {
	if room, ok := m.rooms[code]; ok {
		room.lastActivity = time.Now()
	}
}

func (m *Manager) listRooms() []RoomSummary {
	out := make([]RoomSummary, 0, len(m.rooms))
	for _, room := range m.rooms {
		out = append(out, RoomSummary{
			Code: room.code, State: room.state, GameName: room.gameName,
			PlayerCount: len(room.players),
		})
	}
	return out
}

// broadcastToAllRooms fans frame out to every live room, used by the
// webhook ingress for alerts with no room-scoped target.
func (m *Manager) broadcastToAllRooms(frame []byte) {
	for _, room := range m.rooms {
		m.fanout(room, 0, frame)
	}
}

func (m *Manager) cleanupIdleRooms(maxIdleSeconds float64) int {
	threshold := time.Duration(maxIdleSeconds * float64(time.Second))
	now := time.Now()
	removed := 0
	for code, room := range m.rooms {
		if room.sessionPID == nil && now.Sub(room.lastActivity) > threshold {
			delete(m.rooms, code)
			removed++
		}
	}
	return removed
}

// --- session callbacks ---

func (m *Manager) activeParticipants(code string) []domain.PlayerID {
	room, ok := m.rooms[code]
	if !ok {
		return nil
	}
	return room.activeParticipantIDs()
}

func (m *Manager) promoteSpectators(code string) []domain.PlayerID {
	room, ok := m.rooms[code]
	if !ok {
		return nil
	}
	for _, p := range room.players {
		p.IsSpectator = false
	}
	return room.activeParticipantIDs()
}

func (m *Manager) leaderIDFor(code string) domain.PlayerID {
	room, ok := m.rooms[code]
	if !ok {
		return 0
	}
	return room.leaderID()
}

func (m *Manager) onSessionGameStart(msg sessionGameStart) {
	room, ok := m.rooms[msg.Code]
	if !ok {
		return
	}
	if room.state != domain.RoomInGame {
		if domain.CanTransition(room.state, domain.RoomInGame) {
			room.state = domain.RoomInGame
		} else {
			m.log.Warn("rejecting invalid room state transition",
				zap.String("code", room.code), zap.Stringer("from", room.state), zap.Stringer("to", domain.RoomInGame))
		}
	}
	infos := make([]wire.PlayerInfo, 0, len(msg.Players))
	for _, id := range msg.Players {
		if p := room.player(id); p != nil {
			infos = append(infos, playerInfoFrom(p))
		}
	}
	frame, err := wire.Encode(wire.TagGameStart, wire.GameStart{GameName: msg.GameName, Players: infos, LeaderID: uint64(msg.LeaderID)})
	if err != nil {
		m.log.Error("failed to encode game start", zap.Error(err))
		return
	}
	m.fanout(room, 0, frame)
}

func (m *Manager) onSessionGameState(msg sessionGameState) {
	room, ok := m.rooms[msg.Code]
	if !ok {
		return
	}
	frame, err := wire.Encode(wire.TagGameState, wire.GameState{Tick: msg.Tick, StateData: wire.FlexBytes(msg.Data)})
	if err != nil {
		m.log.Error("failed to encode game state", zap.Error(err))
		return
	}
	m.fanout(room, 0, frame)
}

func (m *Manager) onSessionRoundEnd(msg sessionRoundEnd) {
	room, ok := m.rooms[msg.Code]
	if !ok {
		return
	}
	entries := make([]wire.ScoreEntry, 0, len(msg.Scores))
	for _, s := range msg.Scores {
		entries = append(entries, wire.ScoreEntry{Player: uint64(s.Player), Score: s.Score})
		room.cumulative[s.Player] = s.Score
	}
	frame, err := wire.Encode(wire.TagRoundEnd, wire.RoundEnd{Round: msg.Round, Scores: entries, BetweenRoundSecs: msg.BetweenRoundSecs})
	if err != nil {
		m.log.Error("failed to encode round end", zap.Error(err))
		return
	}
	room.state = domain.RoomBetweenRounds
	m.fanout(room, 0, frame)
}

func (m *Manager) onSessionGameEnd(msg sessionGameEnd) {
	room, ok := m.rooms[msg.Code]
	if !ok {
		return
	}
	entries := make([]wire.ScoreEntry, 0, len(msg.FinalScores))
	for _, s := range msg.FinalScores {
		entries = append(entries, wire.ScoreEntry{Player: uint64(s.Player), Score: s.Score})
	}
	frame, err := wire.Encode(wire.TagGameEnd, wire.GameEnd{FinalScores: entries})
	if err != nil {
		m.log.Error("failed to encode game end", zap.Error(err))
		return
	}
	m.fanout(room, 0, frame)
}

func (m *Manager) onSessionGameEnded(msg sessionGameEnded) {
	room, ok := m.rooms[msg.Code]
	if !ok {
		return
	}
	room.state = domain.RoomLobby
	room.sessionPID = nil
	room.gameName = ""
	for _, p := range room.players {
		p.IsSpectator = false
	}
	m.broadcastPlayerList(room)
}
