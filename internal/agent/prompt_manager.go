package agent

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"text/template"
)

//go:embed prompts/*.md
var defaultPrompts embed.FS

const (
	synthesisPrompt = "synthesis.md"
	fallbackPrompt  = "fallback.md"
)

var builtinTemplates = template.Must(template.ParseFS(defaultPrompts, "prompts/*.md"))

// PromptData feeds both the synthesis prompt and the local fallback itinerary.
type PromptData struct {
	AppName            string
	Origin             string
	Destination        string
	Details            string
	Context            string
	Budget             string
	OriginWeather      string
	DestinationWeather string
	Plan               []PlanDay
}

// PlanDay is one line of the fallback itinerary.
type PlanDay struct {
	Label    string
	Activity string
}

// PromptManager renders prompt templates. Files in Directory named like the
// built-in templates (synthesis.md, fallback.md) replace them.
type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

// SynthesisPrompt renders the instructions sent to the generative model.
func (pm *PromptManager) SynthesisPrompt(data PromptData) (string, error) {
	return pm.render(synthesisPrompt, data)
}

// FallbackItinerary renders the locally generated itinerary. An override that
// fails to render is skipped in favour of the built-in template.
func (pm *PromptManager) FallbackItinerary(data PromptData) string {
	out, err := pm.render(fallbackPrompt, data)
	if err == nil {
		return out
	}
	log.Printf("Warning: fallback override failed, using built-in template: %v", err)

	var buf bytes.Buffer
	if err := builtinTemplates.ExecuteTemplate(&buf, fallbackPrompt, data); err != nil {
		// The built-in template only ranges over data it is always given.
		return fmt.Sprintf("Route: %s to %s\n%s", data.Origin, data.Destination, data.Budget)
	}
	return buf.String()
}

func (pm *PromptManager) render(name string, data PromptData) (string, error) {
	tmpl, err := pm.lookup(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (pm *PromptManager) lookup(name string) (*template.Template, error) {
	if pm != nil && pm.Directory != "" {
		path := filepath.Join(pm.Directory, name)
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			tmpl, err := template.New(name).Parse(string(data))
			if err != nil {
				return nil, fmt.Errorf("failed to parse prompt %s: %w", path, err)
			}
			return tmpl, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read prompt %s: %w", path, err)
		}
	}
	return builtinTemplates.Lookup(name), nil
}
