package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/team-sapphire/vayazh/internal/farmer"
	"github.com/team-sapphire/vayazh/internal/log"
)

// historyLimit is how many recent chat turns the history endpoint returns.
const historyLimit = 20

// FarmHandler handles profile and chat history endpoints.
type FarmHandler struct {
	store  FarmStore
	logger log.Logger
}

func NewFarmHandler(store FarmStore, logger log.Logger) *FarmHandler {
	return &FarmHandler{store: store, logger: logger}
}

// RegisterRoutes registers farm routes on the given mux.
func (h *FarmHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/farmer", h.saveProfile)
	mux.HandleFunc("GET /api/history", h.history)
}

// ProfileRequest is the farm profile payload. All fields are required.
type ProfileRequest struct {
	Location         string `json:"location"`
	LandSize         string `json:"landSize"`
	SoilType         string `json:"soilType"`
	IrrigationMethod string `json:"irrigationMethod"`
	WaterSource      string `json:"waterSource"`
}

func (h *FarmHandler) saveProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	if missing := missingFields(req); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "missing_fields",
			"missing required fields: "+strings.Join(missing, ", "))
		return
	}

	id, err := h.store.SaveProfile(r.Context(), farmer.Profile{
		Location:         strings.TrimSpace(req.Location),
		LandSize:         strings.TrimSpace(req.LandSize),
		SoilType:         strings.TrimSpace(req.SoilType),
		IrrigationMethod: strings.TrimSpace(req.IrrigationMethod),
		WaterSource:      strings.TrimSpace(req.WaterSource),
	})
	if err != nil {
		h.logger.Error("saving farm profile failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to save farm details")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"message": "Farm details saved successfully.",
	})
}

// HistoryResponse carries recent chat turns, newest first.
type HistoryResponse struct {
	ChatHistory []farmer.ChatTurn `json:"chatHistory"`
}

func (h *FarmHandler) history(w http.ResponseWriter, r *http.Request) {
	turns, err := h.store.RecentHistory(r.Context(), historyLimit)
	if err != nil {
		h.logger.Error("loading chat history failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load chat history")
		return
	}
	if turns == nil {
		turns = []farmer.ChatTurn{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{ChatHistory: turns})
}

func missingFields(req ProfileRequest) []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"location", req.Location},
		{"landSize", req.LandSize},
		{"soilType", req.SoilType},
		{"irrigationMethod", req.IrrigationMethod},
		{"waterSource", req.WaterSource},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
