package trip

import (
	"regexp"
	"strconv"
	"strings"
)

// Defaults substituted for any value the free text does not mention.
const (
	DefaultDays        = 3
	DefaultDailyBudget = 5000
	DefaultFlightCost  = 2000
)

var (
	daysPattern   = regexp.MustCompile(`(\d+)\s*day`)
	flightPattern = regexp.MustCompile(`(flight|ticket|airfare).*?(\d+)`)
	budgetPattern = regexp.MustCompile(`(budget|cost|spend|money).*?(\d+)`)
)

// Params are the numbers a trip budget is computed from.
type Params struct {
	Days        int `json:"days"`
	DailyBudget int `json:"daily_budget"`
	FlightCost  int `json:"flight_cost"`
}

// ExtractParams pulls the trip length, daily budget and flight cost out of free text.
//
// A budget figure that equals the flight figure is attributed to the flight only,
// so "budget for the flight is 3000" does not count 3000 twice.
func ExtractParams(text string) Params {
	lower := strings.ToLower(text)

	days := capture(daysPattern, lower, 1)
	flight := capture(flightPattern, lower, 2)

	budget := capture(budgetPattern, lower, 2)
	if budget == flight {
		budget = 0
	}

	return Params{
		Days:        orDefault(days, DefaultDays),
		DailyBudget: orDefault(budget, DefaultDailyBudget),
		FlightCost:  orDefault(flight, DefaultFlightCost),
	}
}

// capture returns the integer in group idx of the first match, or 0.
func capture(re *regexp.Regexp, s string, idx int) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[idx])
	if err != nil {
		return 0
	}
	return n
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
