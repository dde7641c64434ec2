// Package webhook implements the HTTP alert-ingestion endpoint, §6 "HTTP
// webhook (optional ingress)". HMAC verification is the one deliberate
// stdlib-only exception in this module — no ecosystem package improves
// on crypto/hmac for this — everything downstream of verification
// (opaque event framing and fanout) reuses the wire codec and the room
// manager's actor mailbox, never touching room-registry locks directly.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lguibr/breakpoint/internal/actorkit"
	"github.com/lguibr/breakpoint/internal/roommgr"
	"github.com/lguibr/breakpoint/internal/wire"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20 // generous ceiling on the raw provider payload, independent of MAX_MESSAGE_SIZE

// SignatureHeader is the header carrying the hex-encoded HMAC-SHA256 of
// the raw request body.
const SignatureHeader = "X-Breakpoint-Signature"

// Handler serves the webhook endpoint.
type Handler struct {
	Secret         string
	RequireSigned  bool
	Engine         *actorkit.Engine
	ManagerPID     *actorkit.PID
	Logger         *zap.Logger
}

// ServeHTTP verifies the signature (when configured), transforms the
// body into an opaque AlertEvent, and queues it for fanout. Transformation
// details beyond "it becomes an opaque event" are out of scope, §6.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(body) > maxBodyBytes {
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	if h.Secret != "" || h.RequireSigned {
		if !h.verifySignature(r.Header.Get(SignatureHeader), body) {
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		payload = map[string]interface{}{"raw": string(body)}
	}
	payload["received_at"] = time.Now().UTC().Format(time.RFC3339)
	payload["event_id"] = uuid.NewString()

	frame, err := wire.Encode(wire.TagAlertEvent, wire.AlertEvent{Event: wire.Opaque(payload)})
	if err != nil {
		h.Logger.Error("failed to encode webhook alert", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Engine.Send(h.ManagerPID, roommgr.BroadcastGlobalRequest{Frame: frame}, nil)
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) verifySignature(header string, body []byte) bool {
	if header == "" || h.Secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.Secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	given, err := hex.DecodeString(header)
	if err != nil {
		return false
	}
	return hmac.Equal(given, expected)
}
