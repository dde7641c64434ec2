package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lguibr/breakpoint/internal/actorkit"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookRejectsMissingSignatureWhenRequired(t *testing.T) {
	h := &Handler{Secret: "s3cr3t", RequireSigned: true, Engine: actorkit.NewEngine(), ManagerPID: &actorkit.PID{ID: "nope"}, Logger: zap.NewNop()}
	req := httptest.NewRequest(http.MethodPost, "/webhooks/alerts", bytes.NewReader([]byte(`{"x":1}`)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookRejectsWrongSignature(t *testing.T) {
	h := &Handler{Secret: "s3cr3t", RequireSigned: true, Engine: actorkit.NewEngine(), ManagerPID: &actorkit.PID{ID: "nope"}, Logger: zap.NewNop()}
	body := []byte(`{"x":1}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/alerts", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, "deadbeef")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookAcceptsValidSignature(t *testing.T) {
	engine := actorkit.NewEngine()
	pid := engine.Spawn(actorkit.NewProps(func() actorkit.Actor { return &sinkActor{} }))
	h := &Handler{Secret: "s3cr3t", RequireSigned: true, Engine: engine, ManagerPID: pid, Logger: zap.NewNop()}
	body := []byte(`{"kind":"incident","severity":"high"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/alerts", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, sign("s3cr3t", body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)
}

func TestWebhookAllowsUnsignedWhenNotRequired(t *testing.T) {
	engine := actorkit.NewEngine()
	pid := engine.Spawn(actorkit.NewProps(func() actorkit.Actor { return &sinkActor{} }))
	h := &Handler{RequireSigned: false, Engine: engine, ManagerPID: pid, Logger: zap.NewNop()}
	req := httptest.NewRequest(http.MethodPost, "/webhooks/alerts", bytes.NewReader([]byte(`{"a":1}`)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)
}

type sinkActor struct{}

func (s *sinkActor) Receive(ctx actorkit.Context) {}
