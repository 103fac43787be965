package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rahul/voyage/internal/trip"
)

const WeatherToolName = "weather"

type forecastEntry struct {
	key         string
	description string
}

// forecasts is matched in order against the normalized place name.
var forecasts = []forecastEntry{
	{"london", "Rainy, 10°C - Pack an umbrella!"},
	{"paris", "Sunny, 18°C - Perfect for walking."},
	{"tokyo", "Cloudy, 22°C - Humid conditions."},
	{"mumbai", "Humid, 32°C - Light cotton clothes."},
	{"delhi", "Hazy, 25°C - Check air quality."},
	{"nagpur", "Sunny, 38°C - Very hot and dry."},
	{"new york", "Windy, 15°C - Bring a jacket."},
	{"bangalore", "Pleasant, 24°C - Light jacket needed."},
	{"goa", "Sunny, 29°C - Beach wear ready."},
	{"pune", "Breezy, 26°C - Pleasant evening."},
	{"dubai", "Hot, 40°C - Stay indoors afternoon."},
}

// Forecast returns the canned forecast for a place. Any known city name
// contained in place matches, so "London, UK" resolves to London.
func Forecast(place string) string {
	key := strings.ToLower(strings.TrimSpace(place))
	for _, f := range forecasts {
		if strings.Contains(key, f.key) {
			return fmt.Sprintf("%s: %s", trip.TitleCase(f.key), f.description)
		}
	}
	return GenericForecast(place)
}

// GenericForecast is the forecast reported for places missing from the table.
func GenericForecast(place string) string {
	return fmt.Sprintf("%s: Sunny, 25°C (General Forecast)", place)
}

// WeatherTool exposes Forecast as the WeatherBot sub-agent.
type WeatherTool struct{}

func NewWeatherTool() *WeatherTool {
	return &WeatherTool{}
}

func (w *WeatherTool) Name() string {
	return WeatherToolName
}

func (w *WeatherTool) Description() string {
	return "Look up the expected weather for a city and suggest what to pack."
}

func (w *WeatherTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"place": map[string]any{
				"type":        "string",
				"description": "The city or place name, e.g. 'London, UK'",
			},
		},
		"required": []string{"place"},
	}
}

func (w *WeatherTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Place string `json:"place"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	return Forecast(args.Place), nil
}
