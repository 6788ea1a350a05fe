// Package api serves the review queue over HTTP: reviewers list and read
// packets, post their decision, and fetch the drafted outputs.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aerodry/claimflow/internal/auth"
	"github.com/aerodry/claimflow/internal/decision"
	"github.com/aerodry/claimflow/internal/orchestrator"
	"github.com/aerodry/claimflow/internal/policy"
	"github.com/aerodry/claimflow/internal/store"
	"github.com/aerodry/claimflow/pkg/types"
)

type Handler struct {
	Auth         auth.Authenticator
	Store        *store.PacketStore
	Catalog      *policy.Catalog
	Orchestrator *orchestrator.Orchestrator
}

type DecisionRequest struct {
	Decision types.HumanDecision `json:"decision"`
	Notes    string              `json:"notes"`
}

type DecisionResponse struct {
	Packet  types.ReviewPacket `json:"packet"`
	Outputs store.Outputs      `json:"outputs"`
}

func (h *Handler) ListPackets(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"packets": h.Store.ListPackets()})
}

func (h *Handler) GetPacket(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}
	packet, ok := h.Store.GetPacket(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "packet not found"})
		return
	}
	writeJSON(w, http.StatusOK, packet)
}

func (h *Handler) GetOutputs(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}
	out, ok := h.Store.GetOutputs(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "outputs not found"})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// PostDecision records the reviewer's call and runs the post-decision
// dispatch, returning the actioned packet together with the drafted email
// and any label reference.
func (h *Handler) PostDecision(w http.ResponseWriter, r *http.Request) {
	if !h.ensureAuth(w, r) {
		return
	}
	if h.Orchestrator == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "decision dispatch not configured"})
		return
	}

	packet, ok := h.Store.GetPacket(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "packet not found"})
		return
	}

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	switch req.Decision {
	case types.DecisionApproved, types.DecisionRejected, types.DecisionMoreInfoRequested:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown decision"})
		return
	}

	doc, ok := h.Catalog.ByProductName(packet.SelectedPolicyProduct)
	if !ok {
		doc, _ = h.Catalog.Select(packet.Extracted)
	}

	outputs, err := h.Orchestrator.DraftOutputsAfterDecision(r.Context(), &packet, doc, req.Decision, req.Notes)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, decision.ErrInvalidTransition) {
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	stored := store.Outputs{
		PacketID:     packet.PacketID,
		DraftedEmail: outputs.DraftedEmail,
		LabelRef:     outputs.LabelRef,
	}
	h.Store.PutPacket(packet)
	h.Store.PutOutputs(stored)

	writeJSON(w, http.StatusOK, DecisionResponse{Packet: packet, Outputs: stored})
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ensureAuth(w http.ResponseWriter, r *http.Request) bool {
	_, err := h.Auth.Authenticate(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
