package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rahul/voyage/internal/governance"
	"github.com/rahul/voyage/internal/observability"
	"github.com/rahul/voyage/internal/tools"
	"github.com/rahul/voyage/internal/trip"
)

// Placeholder is the result carried by every event before the final one.
const Placeholder = "..."

// Stage is the last step a pipeline execution has completed.
type Stage string

const (
	StageInit                Stage = "init"
	StageRouteResolved       Stage = "route_resolved"
	StageWeatherDone         Stage = "weather_done"
	StageBudgetDone          Stage = "budget_done"
	StageSynthesizing        Stage = "synthesizing"
	StageSucceeded           Stage = "succeeded"
	StageFallbackSynthesized Stage = "fallback_synthesized"
	StageRejected            Stage = "rejected"
)

// ProgressEvent is one snapshot of a running request. Log only ever grows
// within a request; Result is Placeholder until the final event.
type ProgressEvent struct {
	RequestID string `json:"request_id"`
	Stage     Stage  `json:"stage"`
	Log       string `json:"log"`
	Result    string `json:"result"`
	Final     bool   `json:"final"`
}

// Pipeline turns a travel request into an itinerary by running the route,
// weather and budget sub-agents and then asking the generative model to
// write the plan.
type Pipeline struct {
	// Generator is nil when no model credential is configured; every request
	// is then rejected.
	Generator Generator
	Registry  *tools.Registry
	Prompts   *PromptManager
	Policy    governance.PolicyEngine
	Logger    *observability.Logger
	Resolver  trip.Resolver
	AppName   string
	Timeout   time.Duration
}

func NewPipeline(generator Generator, registry *tools.Registry, prompts *PromptManager, policy governance.PolicyEngine, logger *observability.Logger) *Pipeline {
	return &Pipeline{
		Generator: generator,
		Registry:  registry,
		Prompts:   prompts,
		Policy:    policy,
		Logger:    logger,
		AppName:   "VoyageAI",
		Timeout:   DefaultTimeout,
	}
}

// execution is the state of one request. It is never shared.
type execution struct {
	id      string
	req     trip.Request
	route   trip.Route
	current Stage
	log     strings.Builder
	context strings.Builder
	yield   func(ProgressEvent) bool
}

func (x *execution) logf(format string, args ...any) {
	fmt.Fprintf(&x.log, format, args...)
}

// Run returns the progress of one request as a lazy sequence. Nothing happens
// until the sequence is ranged over, and each range runs the request afresh.
// The last event has Final set; breaking out of the loop early abandons the
// remaining steps.
func (p *Pipeline) Run(ctx context.Context, req trip.Request) iter.Seq[ProgressEvent] {
	return func(yield func(ProgressEvent) bool) {
		x := &execution{id: uuid.NewString(), req: req, yield: yield}
		defer observability.ClearStatus()

		if reason, ok := p.admit(ctx, x); !ok {
			x.yield(ProgressEvent{RequestID: x.id, Stage: StageRejected, Log: reason, Final: true})
			return
		}
		p.stage(x, StageInit)

		// 1. Route
		x.route = p.Resolver.Resolve(req)
		x.logf("🔵 User Request: %s\n", req.FreeText)
		x.logf("📍 Route: %s\n", x.route)
		fmt.Fprintf(&x.context, "Origin: %s\nDestination: %s\n", x.route.Origin, x.route.Destination)
		if !p.emit(x, StageRouteResolved, Placeholder) {
			return
		}

		// 2. WeatherBot
		x.logf("\n🌤️ Activating WeatherBot...\n")
		if !p.emit(x, StageRouteResolved, Placeholder) {
			return
		}
		wOrigin := p.forecast(ctx, x, x.route.Origin)
		wDest := p.forecast(ctx, x, x.route.Destination)
		weather := fmt.Sprintf("Origin: %s | Destination: %s", wOrigin, wDest)
		x.logf("   ↳ Result: %s\n", weather)
		fmt.Fprintf(&x.context, "[Weather Report]: %s\n", weather)
		if !p.emit(x, StageWeatherDone, Placeholder) {
			return
		}

		// 3. FinanceBot
		x.logf("\n💰 Activating FinanceBot...\n")
		if !p.emit(x, StageWeatherDone, Placeholder) {
			return
		}
		x.logf("   ↳ Extracting parameters...\n")
		params := trip.ExtractParams(req.FreeText)
		budget := p.budget(ctx, x, params)
		x.logf("   ↳ Result: %s\n", budget)
		fmt.Fprintf(&x.context, "[Financial Report]: %s\n", budget)
		if !p.emit(x, StageBudgetDone, Placeholder) {
			return
		}

		// 4. Orchestrator
		x.logf("\n🧠 Orchestrator Synthesizing (Please wait)...\n")
		if !p.emit(x, StageSynthesizing, Placeholder) {
			return
		}

		data := PromptData{
			AppName:            p.AppName,
			Origin:             x.route.Origin,
			Destination:        x.route.Destination,
			Details:            req.FreeText,
			Context:            x.context.String(),
			Budget:             budget,
			OriginWeather:      wOrigin,
			DestinationWeather: wDest,
			Plan:               quickPlan(x.route, params.Days),
		}

		itinerary, err := p.synthesize(ctx, x, data)
		if err != nil {
			p.Logger.LogFallback(x.id, err)
			p.finish(x, StageFallbackSynthesized, p.Prompts.FallbackItinerary(data))
			return
		}
		p.finish(x, StageSucceeded, itinerary)
	}
}

// admit applies the entry guard. Rejections carry the user-visible reason.
func (p *Pipeline) admit(ctx context.Context, x *execution) (string, bool) {
	policy := p.Policy
	if policy == nil {
		policy = governance.NewDefaultPolicyEngine()
	}
	res, err := policy.Evaluate(ctx, governance.Request{
		FreeText:             x.req.FreeText,
		CredentialConfigured: p.Generator != nil,
	})
	if err != nil {
		res = governance.Result{Effect: governance.EffectDeny, Reason: fmt.Sprintf("❌ Error: %v", err)}
	}
	p.Logger.LogPolicy(x.id, string(res.Effect), res.Reason)
	return res.Reason, res.Effect == governance.EffectAllow
}

func (p *Pipeline) stage(x *execution, s Stage) {
	if x.current == s {
		return
	}
	x.current = s
	p.Logger.LogStage(x.id, string(s))
	observability.SetStatus(x.id, string(s))
}

func (p *Pipeline) emit(x *execution, s Stage, result string) bool {
	p.stage(x, s)
	return x.yield(ProgressEvent{
		RequestID: x.id,
		Stage:     s,
		Log:       x.log.String(),
		Result:    result,
	})
}

func (p *Pipeline) finish(x *execution, s Stage, result string) {
	p.stage(x, s)
	x.yield(ProgressEvent{
		RequestID: x.id,
		Stage:     s,
		Log:       x.log.String(),
		Result:    result,
		Final:     true,
	})
}

func (p *Pipeline) forecast(ctx context.Context, x *execution, place string) string {
	out, err := p.callTool(ctx, x, tools.WeatherToolName, map[string]any{"place": place})
	if err != nil {
		return tools.Forecast(place)
	}
	return out
}

func (p *Pipeline) budget(ctx context.Context, x *execution, params trip.Params) string {
	out, err := p.callTool(ctx, x, tools.BudgetToolName, map[string]any{
		"days":         params.Days,
		"daily_budget": params.DailyBudget,
		"flight_cost":  params.FlightCost,
	})
	if err != nil {
		return tools.SummarizeBudget(params.Days, params.DailyBudget, params.FlightCost)
	}
	return out
}

func (p *Pipeline) callTool(ctx context.Context, x *execution, name string, args map[string]any) (string, error) {
	input, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	p.Logger.LogToolCall(x.id, name, string(input))

	if p.Registry == nil {
		err = fmt.Errorf("tool %s not found", name)
	} else {
		var out string
		out, err = p.Registry.Call(ctx, name, string(input))
		if err == nil {
			p.Logger.LogToolResult(x.id, name, out, nil)
			return out, nil
		}
	}
	p.Logger.LogToolResult(x.id, name, "", err)
	return "", err
}

func (p *Pipeline) synthesize(ctx context.Context, x *execution, data PromptData) (string, error) {
	if p.Generator == nil {
		return "", fmt.Errorf("%w: no generator configured", ErrGenerationFailed)
	}
	prompt, err := p.Prompts.SynthesisPrompt(data)
	if err != nil {
		return "", err
	}

	start := time.Now()
	text, err := p.Generator.Generate(ctx, prompt, p.Timeout)
	if err != nil {
		return "", err
	}
	p.Logger.LogLLM(x.id, prompt, text, time.Since(start))
	return text, nil
}

// maxPlanLines keeps long trips from producing one line per day.
const maxPlanLines = 7

// quickPlan lays out a simple day-by-day plan: arrive on the first day,
// explore in between, return on the last.
func quickPlan(route trip.Route, days int) []PlanDay {
	if days <= 1 {
		return []PlanDay{{
			Label:    "Day 1",
			Activity: fmt.Sprintf("Depart from %s. Arrive in %s, explore and return.", route.Origin, route.Destination),
		}}
	}

	explore := fmt.Sprintf("Explore local attractions in %s.", route.Destination)
	plan := []PlanDay{{
		Label:    "Day 1",
		Activity: fmt.Sprintf("Depart from %s. Arrive in %s. Check-in.", route.Origin, route.Destination),
	}}

	if days > maxPlanLines {
		plan = append(plan, PlanDay{Label: fmt.Sprintf("Days 2-%d", days-1), Activity: explore})
	} else {
		for d := 2; d < days; d++ {
			plan = append(plan, PlanDay{Label: fmt.Sprintf("Day %d", d), Activity: explore})
		}
	}

	return append(plan, PlanDay{Label: fmt.Sprintf("Day %d", days), Activity: "Shopping and return flight."})
}
