package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul/voyage/internal/governance"
	"github.com/rahul/voyage/internal/observability"
	"github.com/rahul/voyage/internal/tools"
	"github.com/rahul/voyage/internal/trip"
)

var scenarioA = trip.Request{
	Origin:      "Nagpur",
	Destination: "Mumbai",
	FreeText:    "Budget 5000 Rs, Flight 2000 Rs, 3 Days",
}

func newTestPipeline(gen Generator) *Pipeline {
	p := NewPipeline(gen, tools.NewDefaultRegistry(), NewPromptManager(""), governance.NewDefaultPolicyEngine(), observability.Discard())
	p.Timeout = 50 * time.Millisecond
	return p
}

func collect(t *testing.T, p *Pipeline, req trip.Request) []ProgressEvent {
	t.Helper()
	var events []ProgressEvent
	for evt := range p.Run(context.Background(), req) {
		events = append(events, evt)
	}
	require.NotEmpty(t, events)
	return events
}

func TestPipeline_Succeeded(t *testing.T) {
	model := &stubModel{text: "Here is your plan from Nagpur to Mumbai! Total ₹17000."}
	events := collect(t, newTestPipeline(NewModelGenerator(model)), scenarioA)

	stages := make([]Stage, 0, len(events))
	for _, evt := range events {
		stages = append(stages, evt.Stage)
	}
	assert.Equal(t, []Stage{
		StageRouteResolved,
		StageRouteResolved,
		StageWeatherDone,
		StageWeatherDone,
		StageBudgetDone,
		StageSynthesizing,
		StageSucceeded,
	}, stages)

	final := events[len(events)-1]
	assert.True(t, final.Final)
	assert.Equal(t, model.text, final.Result)

	// The budget and weather lines are in the log before the final result.
	before := events[len(events)-2].Log
	assert.Contains(t, before, "↳ Result: Origin: Nagpur: Sunny, 38°C - Very hot and dry. | Destination: Mumbai: Humid, 32°C - Light cotton clothes.")
	assert.Contains(t, before, "↳ Result: Total: ₹17000 (Days: 3, Daily: ₹5000, Flight: ₹2000)")
	assert.Contains(t, before, "📍 Route: Nagpur ➝ Mumbai")

	prompts := model.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "[Weather Report]: Origin: Nagpur")
	assert.Contains(t, prompts[0], "[Financial Report]: Total: ₹17000")
	assert.Contains(t, prompts[0], "Here is your plan from Nagpur to Mumbai!")
}

func TestPipeline_ProgressIsIncremental(t *testing.T) {
	events := collect(t, newTestPipeline(NewModelGenerator(&stubModel{text: "plan"})), scenarioA)

	id := events[0].RequestID
	require.NotEmpty(t, id)
	for i, evt := range events {
		assert.Equal(t, id, evt.RequestID)
		if i == len(events)-1 {
			break
		}
		assert.False(t, evt.Final)
		assert.Equal(t, Placeholder, evt.Result)
		assert.True(t, strings.HasPrefix(events[i+1].Log, evt.Log), "log must only grow")
	}
}

func TestPipeline_FallbackOnFailure(t *testing.T) {
	tests := []struct {
		name  string
		model *stubModel
	}{
		{"timeout", &stubModel{block: true}},
		{"transport error", &stubModel{err: errors.New("503 service unavailable")}},
		{"empty response", &stubModel{text: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := collect(t, newTestPipeline(NewModelGenerator(tt.model)), scenarioA)

			final := events[len(events)-1]
			assert.Equal(t, StageFallbackSynthesized, final.Stage)
			assert.True(t, final.Final)

			for _, part := range []string{
				"Generated Locally",
				"**Route:** Nagpur to Mumbai",
				"Total: ₹17000 (Days: 3, Daily: ₹5000, Flight: ₹2000)",
				"* Nagpur: Nagpur: Sunny, 38°C - Very hot and dry.",
				"* Mumbai: Mumbai: Humid, 32°C - Light cotton clothes.",
				"* **Day 1:** Depart from Nagpur. Arrive in Mumbai. Check-in.",
				"* **Day 2:** Explore local attractions in Mumbai.",
				"* **Day 3:** Shopping and return flight.",
				"The AI Agent was busy",
			} {
				assert.Contains(t, final.Result, part)
			}
			assert.NotContains(t, final.Result, "503")
		})
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	p := newTestPipeline(NewModelGenerator(&stubModel{err: errors.New("down")}))

	first := collect(t, p, scenarioA)
	second := collect(t, p, scenarioA)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Stage, second[i].Stage)
		assert.Equal(t, first[i].Log, second[i].Log)
		assert.Equal(t, first[i].Result, second[i].Result)
	}
	assert.NotEqual(t, first[0].RequestID, second[0].RequestID)
}

func TestPipeline_Rejections(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
		req  trip.Request
		want string
	}{
		{"empty text", NewModelGenerator(&stubModel{text: "x"}), trip.Request{Destination: "Goa"}, governance.MessageInputMissing},
		{"missing credential", nil, scenarioA, governance.MessageCredentialMissing},
		{"empty text wins over missing credential", nil, trip.Request{}, governance.MessageInputMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := collect(t, newTestPipeline(tt.gen), tt.req)
			require.Len(t, events, 1)
			assert.Equal(t, StageRejected, events[0].Stage)
			assert.Equal(t, tt.want, events[0].Log)
			assert.Empty(t, events[0].Result)
			assert.True(t, events[0].Final)
		})
	}
}

func TestPipeline_DeniedPattern(t *testing.T) {
	policy := governance.NewDefaultPolicyEngine()
	require.NoError(t, policy.DenyText(`(?i)casino`))

	model := &stubModel{text: "plan"}
	p := newTestPipeline(NewModelGenerator(model))
	p.Policy = policy

	events := collect(t, p, trip.Request{FreeText: "Casino trip to Goa"})
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Log, "Request blocked")
	assert.Empty(t, model.Prompts())
}

func TestPipeline_StopEarly(t *testing.T) {
	model := &stubModel{text: "plan"}
	p := newTestPipeline(NewModelGenerator(model))

	count := 0
	for range p.Run(context.Background(), scenarioA) {
		count++
		break
	}
	assert.Equal(t, 1, count)
	assert.Empty(t, model.Prompts())
}

func TestPipeline_DestinationFromText(t *testing.T) {
	model := &stubModel{text: "plan"}
	events := collect(t, newTestPipeline(NewModelGenerator(model)), trip.Request{FreeText: "2 days in Goa"})

	assert.Contains(t, events[0].Log, "📍 Route: Nagpur, India ➝ Goa")
	final := events[len(events)-1]
	assert.Contains(t, final.Log, "Destination: Goa: Sunny, 29°C - Beach wear ready.")
	assert.Contains(t, final.Log, "Total: ₹12000 (Days: 2, Daily: ₹5000, Flight: ₹2000)")
}

func TestPipeline_MissingToolsDegrade(t *testing.T) {
	p := newTestPipeline(NewModelGenerator(&stubModel{err: errors.New("down")}))
	p.Registry = tools.NewRegistry()

	events := collect(t, p, scenarioA)
	final := events[len(events)-1]
	assert.Contains(t, final.Log, "Total: ₹17000")
	assert.Contains(t, final.Log, "Mumbai: Humid, 32°C")
}

type allowAll struct{}

func (allowAll) Evaluate(context.Context, governance.Request) (governance.Result, error) {
	return governance.Result{Effect: governance.EffectAllow}, nil
}

func TestPipeline_NoGeneratorFallsBack(t *testing.T) {
	p := newTestPipeline(nil)
	p.Policy = allowAll{}

	var events []ProgressEvent
	require.NotPanics(t, func() { events = collect(t, p, scenarioA) })
	final := events[len(events)-1]
	assert.Equal(t, StageFallbackSynthesized, final.Stage)
	assert.Contains(t, final.Result, "Trip Itinerary (Generated Locally)")
}

func TestPipeline_LargeBudgetTotal(t *testing.T) {
	model := &stubModel{text: "plan"}
	events := collect(t, newTestPipeline(NewModelGenerator(model)), trip.Request{
		FreeText: "Trip for 9999999999 days, budget 9999999999, flight 5",
	})

	final := events[len(events)-1]
	assert.Contains(t, final.Log, "Total: ₹99999999990000000005 (Days: 9999999999, Daily: ₹9999999999, Flight: ₹5)")
}

func TestQuickPlan(t *testing.T) {
	route := trip.Route{Origin: "Delhi", Destination: "London"}

	one := quickPlan(route, 1)
	require.Len(t, one, 1)
	assert.Equal(t, "Day 1", one[0].Label)

	two := quickPlan(route, 2)
	require.Len(t, two, 2)
	assert.Equal(t, "Shopping and return flight.", two[1].Activity)

	five := quickPlan(route, 5)
	require.Len(t, five, 5)
	assert.Equal(t, "Day 4", five[3].Label)

	long := quickPlan(route, 30)
	require.Len(t, long, 3)
	assert.Equal(t, "Days 2-29", long[1].Label)
	assert.Equal(t, "Day 30", long[2].Label)
}
