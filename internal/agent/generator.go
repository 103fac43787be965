package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// DefaultTimeout bounds a generative call when the caller does not.
const DefaultTimeout = 8 * time.Second

// ErrGenerationFailed wraps every failure of a generative call: timeouts,
// transport errors and unusable responses alike.
var ErrGenerationFailed = errors.New("generation failed")

// Generator turns a prompt into text within a bounded wait.
type Generator interface {
	Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error)
}

// ModelGenerator adapts a langchaingo model to Generator.
type ModelGenerator struct {
	Model   llms.Model
	Options []llms.CallOption
}

func NewModelGenerator(model llms.Model, opts ...llms.CallOption) *ModelGenerator {
	return &ModelGenerator{Model: model, Options: opts}
}

type generation struct {
	text string
	err  error
}

// Generate runs the model call in the background and gives up once timeout
// elapses, whether or not the provider honours context cancellation.
func (g *ModelGenerator) Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan generation, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- generation{err: fmt.Errorf("model panicked: %v", r)}
			}
		}()
		text, err := llms.GenerateFromSinglePrompt(ctx, g.Model, prompt, g.Options...)
		done <- generation{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("%w: %w", ErrGenerationFailed, res.err)
		}
		if strings.TrimSpace(res.text) == "" {
			return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
		}
		return res.text, nil
	}
}
