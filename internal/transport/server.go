// Package transport also wires the HTTP surface: the WebSocket upgrade
// endpoint, the room listing, and a health check. Grounded on the
// teacher's server.Server / HandleSubscribe / HandleGetRooms /
// HandleHealthCheck (server/server.go, server/handlers.go), routed
// through gorilla/mux instead of the teacher's bare http.HandleFunc.
package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/lguibr/breakpoint/internal/actorkit"
	"github.com/lguibr/breakpoint/internal/config"
	"github.com/lguibr/breakpoint/internal/roommgr"
	"go.uber.org/zap"
)

const roomListAskTimeout = 2 * time.Second

// Router bundles the dependencies every HTTP handler needs.
type Router struct {
	Engine     *actorkit.Engine
	ManagerPID *actorkit.PID
	Config     config.Config
	Limiter    *Limiter
	Logger     *zap.Logger
	Upgrader   websocket.Upgrader
}

// NewRouter wires a *mux.Router exposing /subscribe, /rooms, and /healthz.
func NewRouter(r *Router) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/subscribe", r.handleSubscribe)
	router.HandleFunc("/rooms", r.handleRooms).Methods(http.MethodGet)
	router.HandleFunc("/healthz", r.handleHealthz).Methods(http.MethodGet)
	return router
}

func (r *Router) handleSubscribe(w http.ResponseWriter, req *http.Request) {
	if !r.Limiter.Acquire() {
		http.Error(w, ErrServiceUnavailable.Error(), http.StatusServiceUnavailable)
		return
	}

	ws, err := r.Upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.Limiter.Release()
		r.Logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	go func() {
		defer r.Limiter.Release()
		Serve(ws, r.Engine, r.ManagerPID, r.Config, r.Logger)
	}()
}

func (r *Router) handleRooms(w http.ResponseWriter, req *http.Request) {
	reply, err := r.Engine.Ask(r.ManagerPID, roommgr.ListRoomsRequest{}, roomListAskTimeout)
	if err != nil {
		http.Error(w, "timed out querying room manager", http.StatusGatewayTimeout)
		return
	}
	rooms := reply.([]roommgr.RoomSummary)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rooms); err != nil {
		r.Logger.Error("failed to encode room list", zap.Error(err))
	}
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
