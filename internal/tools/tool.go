package tools

import (
	"context"
	"fmt"
	"sort"
)

// Tool defines the interface for all sub-agent capabilities.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any // JSON Schema for the tool's inputs
	Execute(ctx context.Context, input string) (string, error)
}

// Registry manages the set of available tools.
type Registry struct {
	Tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		Tools: make(map[string]Tool),
	}
}

// NewDefaultRegistry returns a registry holding the weather and budget sub-agents.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewWeatherTool())
	r.Register(NewBudgetTool())
	return r
}

func (r *Registry) Register(t Tool) {
	r.Tools[t.Name()] = t
}

func (r *Registry) Get(name string) Tool {
	return r.Tools[name]
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Tools))
	for name := range r.Tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call runs the named tool.
func (r *Registry) Call(ctx context.Context, name, input string) (string, error) {
	t := r.Get(name)
	if t == nil {
		return "", fmt.Errorf("tool %s not found", name)
	}
	return t.Execute(ctx, input)
}
