package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/team-sapphire/vayazh/internal/assistant"
	"github.com/team-sapphire/vayazh/internal/log"
)

// maxAskBodySize caps question payloads.
const maxAskBodySize = 64 << 10 // 64 KB

// AskHandler handles the question endpoint.
type AskHandler struct {
	assistant Assistant
	logger    log.Logger
}

func NewAskHandler(a Assistant, logger log.Logger) *AskHandler {
	return &AskHandler{assistant: a, logger: logger}
}

// RegisterRoutes registers the ask route on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ask", h.ask)
}

// AskRequest is the question payload.
type AskRequest struct {
	Message string `json:"message"`
}

// AskResponse carries the final answer.
type AskResponse struct {
	Answer string `json:"answer"`
}

func (h *AskHandler) ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxAskBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON with a message field")
		return
	}

	answer, err := h.assistant.Ask(r.Context(), req.Message)
	switch {
	case errors.Is(err, assistant.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "not_ready", "knowledge index is still building, try again shortly")
		return
	case errors.Is(err, assistant.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "empty_message", "message must not be blank")
		return
	case err != nil:
		h.logger.Error("answering question failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to answer question")
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{Answer: answer})
}
