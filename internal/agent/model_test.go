package agent

import (
	"context"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// stubModel is an llms.Model that answers from fixed values.
type stubModel struct {
	mu      sync.Mutex
	text    string
	err     error
	block   bool          // wait for the context to end
	sleep   time.Duration // ignore the context and sleep
	panics  bool
	prompts []string
}

func (m *stubModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				m.prompts = append(m.prompts, tc.Text)
			}
		}
	}
	m.mu.Unlock()

	switch {
	case m.panics:
		panic("provider bug")
	case m.block:
		<-ctx.Done()
		return nil, ctx.Err()
	case m.sleep > 0:
		time.Sleep(m.sleep)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.text}},
	}, nil
}

func (m *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func (m *stubModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
