package assistant

import (
	"fmt"
	"strings"

	"github.com/team-sapphire/vayazh/internal/farmer"
	"github.com/team-sapphire/vayazh/internal/weather"
)

// ComposeQuery builds the personalized query sent through retrieval and
// into the prompt. Farm details and current weather are prepended as
// sentences so the model sees them as part of the question context.
// Missing profile fields degrade to "unknown" rather than dropping the
// sentence.
func ComposeQuery(profile *farmer.Profile, snapshot *weather.Snapshot, query string) string {
	var parts []string

	if profile != nil {
		parts = append(parts, fmt.Sprintf(
			"Farm Details: Location: %s, Land Size: %s acres, Soil Type: %s, Irrigation: %s, Water Source: %s.",
			orUnknown(profile.Location),
			orUnknown(profile.LandSize),
			orUnknown(profile.SoilType),
			orUnknown(profile.IrrigationMethod),
			orUnknown(profile.WaterSource)))
	}

	if snapshot != nil {
		parts = append(parts, fmt.Sprintf(
			"Current Weather: %s, Temperature: %g°C, Humidity: %d%%, Wind Speed: %g m/s.",
			snapshot.Description,
			snapshot.TemperatureC,
			snapshot.HumidityPct,
			snapshot.WindSpeedMS))
	}

	return strings.Join(parts, " ") + "\nQuery: " + query
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
