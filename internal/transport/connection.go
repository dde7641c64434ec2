// Package transport implements the per-socket connection handler (§4.F):
// the join handshake, the read loop's message routing and rate limiting,
// and the writer goroutine that drains a player's outbound channel back
// onto the wire. Grounded on the teacher's ConnectionHandlerActor
// (server/connection_handler.go), generalized from JSON-over-the
// stdlib-experimental websocket package to binary MessagePack frames
// over gorilla/websocket.
package transport

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lguibr/breakpoint/internal/actorkit"
	"github.com/lguibr/breakpoint/internal/config"
	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/roommgr"
	"github.com/lguibr/breakpoint/internal/wire"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrServiceUnavailable is the error text the /subscribe handler answers
// with (HTTP 503) when the connection cap is already saturated.
var ErrServiceUnavailable = errors.New("transport: connection limit reached")

// Limiter caps total concurrent connections across the process, §4.F
// ("a global atomic counter caps total concurrent WebSocket connections").
type Limiter struct {
	max     int64
	current int64
}

// NewLimiter returns a Limiter allowing up to max concurrent connections.
func NewLimiter(max int) *Limiter {
	return &Limiter{max: int64(max)}
}

// Acquire reserves a slot, or returns false if the cap is saturated.
func (l *Limiter) Acquire() bool {
	for {
		cur := atomic.LoadInt64(&l.current)
		if cur >= l.max {
			return false
		}
		if atomic.CompareAndSwapInt64(&l.current, cur, cur+1) {
			return true
		}
	}
}

// Release frees a previously acquired slot.
func (l *Limiter) Release() {
	atomic.AddInt64(&l.current, -1)
}

const readTimeout = 90 * time.Second

// Serve runs a single WebSocket connection's full lifecycle to
// completion: join handshake, writer goroutine, and read loop. It
// blocks until the connection closes, so callers run it in its own
// goroutine per accepted socket.
func Serve(ws *websocket.Conn, engine *actorkit.Engine, managerPID *actorkit.PID, cfg config.Config, log *zap.Logger) {
	defer ws.Close()
	addr := ws.RemoteAddr().String()

	frame, err := readFrame(ws, cfg.MaxMessageBytes)
	if err != nil {
		log.Debug("connection closed before join", zap.String("addr", addr), zap.Error(err))
		return
	}
	client, err := wire.DecodeClient(frame)
	if err != nil || client.Tag != wire.TagJoinRoom {
		sendJoinFailure(ws, "expected JoinRoom as the first message")
		return
	}
	join := client.JoinRoom
	if join.ProtocolVersion != 0 && join.ProtocolVersion != cfg.ProtocolVersion {
		sendJoinFailure(ws, "unsupported protocol version")
		return
	}
	name, err := domain.ValidateName(join.PlayerName)
	if err != nil {
		sendJoinFailure(ws, "invalid player name")
		return
	}
	color := domain.Color{R: join.PlayerColor.R, G: join.PlayerColor.G, B: join.PlayerColor.B}

	playerID, roomCode, roomState, conn, err := joinOrCreateRoom(engine, managerPID, join.RoomCode, name, color)
	if err != nil {
		sendJoinFailure(ws, err.Error())
		return
	}

	respFrame, err := wire.Encode(wire.TagJoinRoomResponse, wire.JoinRoomResponse{
		Success: true, PlayerID: uint64(playerID), RoomCode: roomCode, RoomState: roomState.String(),
	})
	if err == nil {
		_ = ws.WriteMessage(websocket.BinaryMessage, respFrame)
	}

	writerDone := make(chan struct{})
	go writePump(ws, conn.Outbound, writerDone)

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst)
	readLoop(ws, engine, managerPID, roomCode, playerID, cfg, limiter, log)

	engine.Send(managerPID, roommgr.LeaveRoomRequest{Code: roomCode, PlayerID: playerID}, nil)
	close(conn.Outbound)
	<-writerDone
}

func joinOrCreateRoom(engine *actorkit.Engine, managerPID *actorkit.PID, roomCode, name string, color domain.Color) (domain.PlayerID, string, domain.RoomState, *roommgr.Connection, error) {
	const askTimeout = 3 * time.Second

	if roomCode == "" {
		reply, err := engine.Ask(managerPID, roommgr.CreateRoomRequest{PlayerName: name, Color: color}, askTimeout)
		if err != nil {
			return 0, "", 0, nil, fmt.Errorf("room manager unavailable: %w", err)
		}
		result := reply.(roommgr.CreateRoomResult)
		return result.PlayerID, result.Code, domain.RoomLobby, result.Conn, nil
	}

	if err := domain.ValidateRoomCode(roomCode); err != nil {
		return 0, "", 0, nil, err
	}
	reply, err := engine.Ask(managerPID, roommgr.JoinRoomRequest{Code: roomCode, PlayerName: name, Color: color}, askTimeout)
	if err != nil {
		return 0, "", 0, nil, fmt.Errorf("room manager unavailable: %w", err)
	}
	result := reply.(roommgr.JoinRoomResult)
	if result.Err != nil {
		return 0, "", 0, nil, result.Err
	}
	return result.PlayerID, result.RoomCode, result.RoomState, result.Conn, nil
}

func sendJoinFailure(ws *websocket.Conn, reason string) {
	frame, err := wire.Encode(wire.TagJoinRoomResponse, wire.JoinRoomResponse{Success: false, Error: reason})
	if err != nil {
		return
	}
	_ = ws.WriteMessage(websocket.BinaryMessage, frame)
}

func readFrame(ws *websocket.Conn, maxBytes int) ([]byte, error) {
	_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
	kind, data, err := ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	if kind != websocket.BinaryMessage {
		return nil, errors.New("transport: expected a binary frame")
	}
	if len(data) > maxBytes {
		return nil, wire.ErrPayloadTooLarge
	}
	return data, nil
}

func writePump(ws *websocket.Conn, outbound <-chan []byte, done chan struct{}) {
	defer close(done)
	for frame := range outbound {
		if err := ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
	}
}

func readLoop(ws *websocket.Conn, engine *actorkit.Engine, managerPID *actorkit.PID, roomCode string, playerID domain.PlayerID, cfg config.Config, limiter *rate.Limiter, log *zap.Logger) {
	for {
		frame, err := readFrame(ws, cfg.MaxMessageBytes)
		if err != nil {
			return
		}
		if len(frame) == 0 {
			continue
		}
		if !limiter.Allow() {
			log.Debug("dropping message over rate limit", zap.String("room", roomCode), zap.Uint64("player", uint64(playerID)))
			continue
		}
		dispatchFrame(engine, managerPID, roomCode, playerID, frame, log)
	}
}

func dispatchFrame(engine *actorkit.Engine, managerPID *actorkit.PID, roomCode string, playerID domain.PlayerID, frame []byte, log *zap.Logger) {
	tag, err := wire.DecodeTag(frame)
	if err != nil {
		return
	}
	if wire.IsServerAuthoritativeLifecycle(tag) {
		log.Debug("rejecting client-synthesized lifecycle frame", zap.String("room", roomCode), zap.Uint8("tag", uint8(tag)))
		return
	}

	switch tag {
	case wire.TagRequestGameStart:
		msg, err := wire.DecodeClient(frame)
		if err != nil {
			return
		}
		reply, err := engine.Ask(managerPID, roommgr.StartGameRequest{
			Code: roomCode, PlayerID: playerID, GameName: msg.RequestGameStart.GameName,
		}, 3*time.Second)
		if err != nil {
			log.Warn("start game request failed", zap.Error(err))
			return
		}
		if result := reply.(roommgr.StartGameResult); result.Err != nil {
			log.Info("start game refused", zap.String("room", roomCode), zap.Error(result.Err))
		}

	case wire.TagClaimAlert:
		msg, err := wire.DecodeClient(frame)
		if err != nil || msg.ClaimAlert.PlayerID != uint64(playerID) {
			return
		}
		claimedFrame, err := wire.Encode(wire.TagAlertClaimed, wire.AlertClaimed{
			EventID: msg.ClaimAlert.EventID, ClaimedBy: uint64(playerID),
		})
		if err != nil {
			return
		}
		engine.Send(managerPID, roommgr.BroadcastOpaqueRequest{Code: roomCode, Frame: claimedFrame}, nil)

	case wire.TagPlayerInput:
		msg, err := wire.DecodeClient(frame)
		if err != nil {
			return
		}
		engine.Send(managerPID, roommgr.RoutePlayerInputRequest{
			Code: roomCode, PlayerID: playerID, Tick: msg.PlayerInput.Tick, Bytes: []byte(msg.PlayerInput.InputData),
		}, nil)

	case wire.TagChatMessage:
		msg, err := wire.DecodeClient(frame)
		if err != nil {
			return
		}
		if err := domain.ValidateChat(msg.ChatMessage.Content); err != nil {
			return
		}
		engine.Send(managerPID, roommgr.BroadcastOpaqueRequest{Code: roomCode, Frame: frame}, nil)

	case wire.TagAlertEvent, wire.TagAlertClaimed, wire.TagAlertDismissed,
		wire.TagPlayerList, wire.TagRoomConfig, wire.TagOverlayConfig:
		// opaque relay: forwarded verbatim without interpreting the body, §4.F step 5.
		engine.Send(managerPID, roommgr.BroadcastOpaqueRequest{Code: roomCode, Frame: frame}, nil)

	default:
		// unrecognized-but-well-formed tags are ignored, §4.F step 5.
	}
}
