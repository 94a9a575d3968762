// Package weather provides current conditions for the farmer's location
// via the OpenWeatherMap API, plus simple threshold-based farm advice.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/team-sapphire/vayazh/internal/log"
)

const requestTimeout = 10 * time.Second

// Snapshot holds the structured conditions used for personalization and
// advice thresholds.
type Snapshot struct {
	Description  string  `json:"description"`
	TemperatureC float64 `json:"temp"`
	HumidityPct  int     `json:"humidity"`
	WindSpeedMS  float64 `json:"wind_speed"`
}

// Client queries OpenWeatherMap for current conditions.
type Client struct {
	httpc   *http.Client
	apiKey  string
	baseURL string
	logger  log.Logger
}

// NewClient creates a weather client. baseURL points at the current
// weather endpoint and is overridable for tests.
func NewClient(apiKey, baseURL string, logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Client{
		httpc:   &http.Client{Timeout: requestTimeout},
		apiKey:  apiKey,
		baseURL: baseURL,
		logger:  logger,
	}
}

// owmResponse mirrors the subset of the OpenWeatherMap payload we read.
type owmResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Message string `json:"message"`
}

// Current fetches the conditions for a location. The report string is
// always usable for display; on failure it carries an error message and
// the snapshot is nil. The answering pipeline treats a nil snapshot as
// "no weather available" and continues without it.
func (c *Client) Current(ctx context.Context, location string) (string, *Snapshot) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s?q=%s&appid=%s&units=metric",
		c.baseURL, url.QueryEscape(location), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Warn("building weather request failed", "location", location, "error", err)
		return "Error fetching weather data.", nil
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warn("weather request failed", "location", location, "error", err)
		return "Error fetching weather data.", nil
	}
	defer resp.Body.Close()

	var payload owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("decoding weather response failed", "location", location, "error", err)
		return "Error fetching weather data.", nil
	}

	if resp.StatusCode != http.StatusOK {
		msg := payload.Message
		if msg == "" {
			msg = "Unable to fetch weather."
		}
		c.logger.Warn("weather API rejected request",
			"location", location, "status", resp.StatusCode, "message", msg)
		return "Error: " + msg, nil
	}

	snapshot := &Snapshot{
		TemperatureC: payload.Main.Temp,
		HumidityPct:  payload.Main.Humidity,
		WindSpeedMS:  payload.Wind.Speed,
	}
	if len(payload.Weather) > 0 {
		snapshot.Description = capitalize(payload.Weather[0].Description)
	}

	report := fmt.Sprintf(
		"Weather in %s:\n- Condition: %s\n- Temperature: %g°C\n- Humidity: %d%%\n- Wind Speed: %g m/s",
		capitalize(location), snapshot.Description,
		snapshot.TemperatureC, snapshot.HumidityPct, snapshot.WindSpeedMS)

	return report, snapshot
}

// Advice returns threshold-based farm recommendations for a snapshot.
func Advice(s *Snapshot) []string {
	if s == nil {
		return nil
	}

	var advice []string
	switch {
	case s.TemperatureC > 30:
		advice = append(advice, "Farm Advice: High temperatures detected. Consider increasing irrigation and shading crops.")
	case s.TemperatureC < 10:
		advice = append(advice, "Farm Advice: Cold temperatures detected. Protect crops from frost and reduce irrigation.")
	}

	switch {
	case s.HumidityPct > 80:
		advice = append(advice, "High humidity increases disease risk. Monitor for fungal infections and improve ventilation.")
	case s.HumidityPct < 30:
		advice = append(advice, "Low humidity may cause water stress. Consider mulching to retain soil moisture.")
	}

	return advice
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
