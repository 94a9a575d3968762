package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/team-sapphire/vayazh/internal/log"
	"github.com/team-sapphire/vayazh/internal/weather"
)

// WeatherHandler handles the weather endpoint.
type WeatherHandler struct {
	assistant Assistant
	logger    log.Logger
}

func NewWeatherHandler(a Assistant, logger log.Logger) *WeatherHandler {
	return &WeatherHandler{assistant: a, logger: logger}
}

// RegisterRoutes registers the weather route on the given mux.
func (h *WeatherHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/weather", h.weather)
}

// WeatherRequest optionally names a location; blank uses the saved
// profile's location.
type WeatherRequest struct {
	Location string `json:"location"`
}

// WeatherResponse carries the rendered report (with advice appended) and
// the structured snapshot, nil when the lookup failed.
type WeatherResponse struct {
	Answer      string            `json:"answer"`
	WeatherData *weather.Snapshot `json:"weatherData"`
}

func (h *WeatherHandler) weather(w http.ResponseWriter, r *http.Request) {
	var req WeatherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	report, advice, snapshot := h.assistant.Weather(r.Context(), req.Location)
	answer := report
	if len(advice) > 0 {
		answer += "\n\n" + strings.Join(advice, "\n")
	}

	writeJSON(w, http.StatusOK, WeatherResponse{Answer: answer, WeatherData: snapshot})
}
