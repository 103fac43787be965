package governance

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Rule names the check that produced a Result.
type Rule string

const (
	RuleDefault           Rule = "default"
	RuleInputMissing      Rule = "input_missing"
	RuleCredentialMissing Rule = "credential_missing"
	RuleDeniedPattern     Rule = "denied_pattern"
)

// Messages shown to the caller when a request is rejected.
const (
	MessageInputMissing      = "Please enter a travel plan."
	MessageCredentialMissing = "❌ Error: API Key is missing. Please set GEMINI_API_KEY environment variable."
)

// Request contains the context of a travel request to be evaluated.
type Request struct {
	FreeText             string
	CredentialConfigured bool
}

// Result contains the outcome of a policy evaluation. For denials, Reason is
// the user-visible message.
type Result struct {
	Effect Effect
	Rule   Rule
	Reason string
}

// PolicyEngine decides whether a request may enter the pipeline.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine rejects empty requests, requests made without a model
// credential, and requests matching any denied pattern.
type DefaultPolicyEngine struct {
	DeniedRegex []*regexp.Regexp
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedRegex: make([]*regexp.Regexp, 0),
	}
}

// DenyText rejects any request whose free text matches pattern.
func (e *DefaultPolicyEngine) DenyText(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedRegex = append(e.DeniedRegex, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.FreeText) == "" {
		return Result{
			Effect: EffectDeny,
			Rule:   RuleInputMissing,
			Reason: MessageInputMissing,
		}, nil
	}

	if !req.CredentialConfigured {
		return Result{
			Effect: EffectDeny,
			Rule:   RuleCredentialMissing,
			Reason: MessageCredentialMissing,
		}, nil
	}

	for _, re := range e.DeniedRegex {
		if re.MatchString(req.FreeText) {
			return Result{
				Effect: EffectDeny,
				Rule:   RuleDeniedPattern,
				Reason: fmt.Sprintf("⛔ Request blocked: matches restricted pattern %s", re.String()),
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Rule:   RuleDefault,
		Reason: "Approved by default policy",
	}, nil
}
