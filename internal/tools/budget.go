package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

const BudgetToolName = "budget"

// BudgetUnavailable is reported instead of a summary when the inputs hold no numbers.
const BudgetUnavailable = "Could not calculate budget (Missing numeric inputs)."

// ErrInsufficientInput is returned when a budget input has no usable integer.
var ErrInsufficientInput = errors.New("insufficient numeric input")

var firstInteger = regexp.MustCompile(`\d+`)

// BudgetSummary is the computed cost of a trip. Total is exact even when the
// product no longer fits in an int.
type BudgetSummary struct {
	Total       *big.Int `json:"total"`
	Days        int      `json:"days"`
	DailyBudget int      `json:"daily_budget"`
	FlightCost  int      `json:"flight_cost"`
}

func (b BudgetSummary) String() string {
	return fmt.Sprintf("Total: ₹%d (Days: %d, Daily: ₹%d, Flight: ₹%d)", b.Total, b.Days, b.DailyBudget, b.FlightCost)
}

// EstimateBudget computes days*dailyBudget + flightCost. Each input may be a
// number or any value whose string form embeds one, e.g. "5,000 Rs" reads as 5.
func EstimateBudget(days, dailyBudget, flightCost any) (BudgetSummary, error) {
	d, err := leadingInt(days)
	if err != nil {
		return BudgetSummary{}, fmt.Errorf("days: %w", err)
	}
	b, err := leadingInt(dailyBudget)
	if err != nil {
		return BudgetSummary{}, fmt.Errorf("daily budget: %w", err)
	}
	f, err := leadingInt(flightCost)
	if err != nil {
		return BudgetSummary{}, fmt.Errorf("flight cost: %w", err)
	}

	total := new(big.Int).Mul(big.NewInt(int64(d)), big.NewInt(int64(b)))
	total.Add(total, big.NewInt(int64(f)))

	return BudgetSummary{
		Total:       total,
		Days:        d,
		DailyBudget: b,
		FlightCost:  f,
	}, nil
}

// SummarizeBudget renders EstimateBudget, or BudgetUnavailable when it fails.
func SummarizeBudget(days, dailyBudget, flightCost any) string {
	s, err := EstimateBudget(days, dailyBudget, flightCost)
	if err != nil {
		return BudgetUnavailable
	}
	return s.String()
}

func leadingInt(v any) (int, error) {
	if v == nil {
		return 0, ErrInsufficientInput
	}
	m := firstInteger.FindString(fmt.Sprint(v))
	if m == "" {
		return 0, ErrInsufficientInput
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, ErrInsufficientInput
	}
	return n, nil
}

// BudgetTool exposes SummarizeBudget as the FinanceBot sub-agent.
type BudgetTool struct{}

func NewBudgetTool() *BudgetTool {
	return &BudgetTool{}
}

func (b *BudgetTool) Name() string {
	return BudgetToolName
}

func (b *BudgetTool) Description() string {
	return "Calculate the total trip cost from the number of days, the daily budget and the flight cost."
}

func (b *BudgetTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"days": map[string]any{
				"type":        "integer",
				"description": "Trip length in days",
			},
			"daily_budget": map[string]any{
				"type":        "integer",
				"description": "Spend per day in rupees",
			},
			"flight_cost": map[string]any{
				"type":        "integer",
				"description": "Return flight cost in rupees",
			},
		},
		"required": []string{"days", "daily_budget", "flight_cost"},
	}
}

func (b *BudgetTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Days        any `json:"days"`
		DailyBudget any `json:"daily_budget"`
		FlightCost  any `json:"flight_cost"`
	}
	// Numbers stay json.Number so large values are not rendered in exponent form.
	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	return SummarizeBudget(args.Days, args.DailyBudget, args.FlightCost), nil
}
