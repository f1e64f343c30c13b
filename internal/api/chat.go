package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/supportbot/internal/store"
	"github.com/MikeSquared-Agency/supportbot/internal/support"
)

type messageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type messageResponse struct {
	Success         bool   `json:"success"`
	Response        string `json:"response"`
	NeedsEscalation bool   `json:"needsEscalation"`
}

type historyResponse struct {
	Success bool         `json:"success"`
	History []store.Turn `json:"history"`
}

// errorResponse omits needsEscalation for validation failures, which never
// reached the assistant.
type errorResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	NeedsEscalation bool   `json:"needsEscalation,omitempty"`
}

const (
	maxBodyBytes = 100 << 10

	msgMissingFields = "Session ID and message are required"
	msgBodyTooLarge  = "Request body too large"
)

// postMessage handles POST /api/message
func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Message: msgBodyTooLarge})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: msgMissingFields})
		return
	}
	if req.SessionID == "" || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: msgMissingFields})
		return
	}

	reply, err := s.svc.HandleMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusBadRequest {
			writeJSON(w, status, errorResponse{Message: msgMissingFields})
			return
		}
		slog.Error("error processing message", "session_id", req.SessionID, "error", err)
		writeJSON(w, status, errorResponse{Message: err.Error(), NeedsEscalation: true})
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Success:         true,
		Response:        reply.Text,
		NeedsEscalation: reply.NeedsEscalation,
	})
}

// getConversation handles GET /api/conversation/{sessionId}
func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	history, err := s.svc.History(r.Context(), sessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: err.Error()})
		return
	}
	if history == nil {
		history = []store.Turn{}
	}

	writeJSON(w, http.StatusOK, historyResponse{Success: true, History: history})
}

func statusFor(err error) int {
	switch support.KindOf(err) {
	case support.KindValidation:
		return http.StatusBadRequest
	case support.KindProvider:
		return http.StatusBadGateway
	case support.KindProviderTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
