package trip

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractParams(t *testing.T) {
	tests := []struct {
		text string
		want Params
	}{
		{"Budget 5000 Rs, Flight 2000 Rs, 3 Days", Params{Days: 3, DailyBudget: 5000, FlightCost: 2000}},
		{"Trip for 2 days. Cost 2000 total.", Params{Days: 2, DailyBudget: 2000, FlightCost: 2000}},
		{"Weather check and estimated cost?", Params{Days: 3, DailyBudget: 5000, FlightCost: 2000}},
		{"airfare around 7500 and I can spend 3000 a day for 5 days", Params{Days: 5, DailyBudget: 3000, FlightCost: 7500}},
		{"ticket: 4500", Params{Days: 3, DailyBudget: 5000, FlightCost: 4500}},
		{"0 days, money 0", Params{Days: 3, DailyBudget: 5000, FlightCost: 2000}},
		{"", Params{Days: 3, DailyBudget: 5000, FlightCost: 2000}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractParams(tt.text))
		})
	}
}

func TestExtractParams_DaysPhrase(t *testing.T) {
	for _, n := range []int{1, 4, 10, 21} {
		got := ExtractParams(fmt.Sprintf("I want %d day trip", n))
		assert.Equal(t, n, got.Days)

		got = ExtractParams(fmt.Sprintf("Planning %d Days somewhere", n))
		assert.Equal(t, n, got.Days)
	}
}

func TestExtractParams_FlightKeyword(t *testing.T) {
	for _, kw := range []string{"flight", "Ticket", "AIRFARE"} {
		got := ExtractParams(kw + " is about 6400 rupees")
		assert.Equal(t, 6400, got.FlightCost, kw)
	}
}

func TestExtractParams_SharedNumberGoesToFlight(t *testing.T) {
	// Both patterns capture 3000; the budget falls back to its default.
	got := ExtractParams("budget for the flight is 3000")
	assert.Equal(t, 3000, got.FlightCost)
	assert.Equal(t, DefaultDailyBudget, got.DailyBudget)
}

func TestExtractParams_Overflow(t *testing.T) {
	got := ExtractParams("flight 99999999999999999999999")
	assert.Equal(t, DefaultFlightCost, got.FlightCost)
}
