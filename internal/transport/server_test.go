package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lguibr/breakpoint/internal/actorkit"
	"github.com/lguibr/breakpoint/internal/config"
	"github.com/lguibr/breakpoint/internal/domain"
	"github.com/lguibr/breakpoint/internal/game"
	"github.com/lguibr/breakpoint/internal/roommgr"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLimiterRefusesPastCapacity(t *testing.T) {
	l := NewLimiter(2)
	require.True(t, l.Acquire())
	require.True(t, l.Acquire())
	require.False(t, l.Acquire())

	l.Release()
	require.True(t, l.Acquire())
}

func newTestRouter(t *testing.T) *Router {
	registry := game.NewRegistry()
	engine := actorkit.NewEngine()
	managerPID := engine.Spawn(actorkit.NewProps(roommgr.NewProducer(roommgr.Config{
		RoomConfig: domain.DefaultRoomConfig(),
		RoundCount: 1,
		Registry:   registry,
	})))
	require.NotNil(t, managerPID)
	return &Router{
		Engine:     engine,
		ManagerPID: managerPID,
		Config:     config.FastConfig(),
		Limiter:    NewLimiter(10),
		Logger:     zap.NewNop(),
	}
}

func TestHandleRoomsReturnsEmptyListInitially(t *testing.T) {
	r := newTestRouter(t)
	router := NewRouter(r)

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var rooms []roommgr.RoomSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	require.Empty(t, rooms)
}

func TestHandleRoomsReflectsCreatedRoom(t *testing.T) {
	r := newTestRouter(t)
	reply, err := r.Engine.Ask(r.ManagerPID, roommgr.CreateRoomRequest{PlayerName: "nova", Color: domain.Color{R: 1, G: 2, B: 3}}, time.Second)
	require.NoError(t, err)
	_ = reply.(roommgr.CreateRoomResult)

	router := NewRouter(r)
	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var rooms []roommgr.RoomSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	require.Equal(t, domain.RoomLobby, rooms[0].State)
}

func TestHandleHealthzReportsOK(t *testing.T) {
	r := newTestRouter(t)
	router := NewRouter(r)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleSubscribeRefusesWhenLimiterSaturated(t *testing.T) {
	r := newTestRouter(t)
	r.Limiter = NewLimiter(0)
	router := NewRouter(r)

	req := httptest.NewRequest(http.MethodGet, "/subscribe", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
