package weather

import (
	"encoding/json"
	"fmt"
)

// UnconfiguredText is shown when no OpenWeather key is set.
const UnconfiguredText = "(Weather not configured. Set OPENWEATHER_API_KEY or config.json openweather)"

const missing = "n/a"

type conditions struct {
	Main struct {
		Temp      *json.Number `json:"temp"`
		FeelsLike *json.Number `json:"feels_like"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Render formats a payload as one line of shell output.
func Render(p Payload) string {
	switch p.Status {
	case StatusUnconfigured:
		return UnconfiguredText
	case StatusOK:
	default:
		msg := p.Error
		if msg == "" {
			msg = "unknown"
		}
		return fmt.Sprintf("(Weather error: %s)", msg)
	}

	var c conditions
	if len(p.Data) > 0 {
		// Unexpected shapes render as n/a fields.
		_ = json.Unmarshal(p.Data, &c)
	}

	desc := missing
	if len(c.Weather) > 0 {
		desc = c.Weather[0].Description
	}
	return fmt.Sprintf("%s: %s, %s°, feels %s°", p.City, desc, number(c.Main.Temp), number(c.Main.FeelsLike))
}

func number(n *json.Number) string {
	if n == nil || *n == "" {
		return missing
	}
	return n.String()
}
