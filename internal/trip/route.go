package trip

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultOrigin is used when the caller leaves the origin empty.
	DefaultOrigin = "Nagpur, India"
	// UnknownDestination is reported when neither the request nor the free text names a place.
	UnknownDestination = "Unknown Destination"
)

// knownPlaces is scanned in order; the first one found in the free text wins.
var knownPlaces = []string{"mumbai", "delhi", "bangalore", "london", "paris", "tokyo", "goa", "pune", "dubai"}

// Request is a single travel request as submitted by a caller.
type Request struct {
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	FreeText    string `json:"free_text"`
}

// Route is the effective origin/destination pair of a request.
type Route struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

func (r Route) String() string {
	return r.Origin + " ➝ " + r.Destination
}

// Resolver determines routes. The zero value falls back to DefaultOrigin.
type Resolver struct {
	HomeCity string
}

// Resolve picks the origin and destination for a request.
func (r Resolver) Resolve(req Request) Route {
	home := r.HomeCity
	if home == "" {
		home = DefaultOrigin
	}

	origin := strings.TrimSpace(req.Origin)
	if origin == "" {
		origin = home
	}

	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		destination = placeFromText(req.FreeText)
	}

	return Route{Origin: origin, Destination: destination}
}

// ResolveRoute resolves a route using DefaultOrigin as the home city.
func ResolveRoute(origin, destination, freeText string) Route {
	return Resolver{}.Resolve(Request{Origin: origin, Destination: destination, FreeText: freeText})
}

func placeFromText(text string) string {
	lower := strings.ToLower(text)
	for _, place := range knownPlaces {
		if strings.Contains(lower, place) {
			return TitleCase(place)
		}
	}
	return UnknownDestination
}

// TitleCase upper-cases the first letter of every word, e.g. "new york" -> "New York".
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}
