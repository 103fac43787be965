package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeStage       EventType = "stage"
	EventTypeToolCall    EventType = "tool_call"
	EventTypeToolResult  EventType = "tool_result"
	EventTypePolicyCheck EventType = "policy_check"
	EventTypeLLM         EventType = "llm"
	EventTypeFallback    EventType = "fallback"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	RequestID string    `json:"request_id,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging.
type Logger struct {
	mu         sync.Mutex
	out        io.Writer
	llmLogPath string
	maxSize    int64
}

// NewLogger writes events to the terminal writer and keeps a copy of every
// LLM exchange in dir/llm.jsonl. An empty dir disables the file.
func NewLogger(dir string) *Logger {
	return NewLoggerTo(NewTermWriter(), dir)
}

func NewLoggerTo(out io.Writer, dir string) *Logger {
	l := &Logger{
		out:     out,
		maxSize: 10 * 1024 * 1024, // 10MB
	}
	if dir != "" {
		l.llmLogPath = filepath.Join(dir, "llm.jsonl")
	}
	return l
}

// Discard returns a logger that drops every event.
func Discard() *Logger {
	return NewLoggerTo(io.Discard, "")
}

// Log emits a structured JSON event.
func (l *Logger) Log(evt Event) {
	if l == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		data = []byte(fmt.Sprintf("{\"error\": %q}", "failed to marshal event: "+err.Error()))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.out, string(data))

	if evt.Type == EventTypeLLM && l.llmLogPath != "" {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogStage(requestID, stage string) {
	l.Log(Event{
		Type:      EventTypeStage,
		RequestID: requestID,
		Stage:     stage,
		Data:      map[string]string{"status": "entered"},
	})
}

func (l *Logger) LogToolCall(requestID, tool, args string) {
	l.Log(Event{
		Type:      EventTypeToolCall,
		RequestID: requestID,
		Data: map[string]string{
			"tool": tool,
			"args": args,
		},
	})
}

func (l *Logger) LogToolResult(requestID, tool, result string, err error) {
	data := map[string]string{
		"tool":   tool,
		"result": result,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	l.Log(Event{
		Type:      EventTypeToolResult,
		RequestID: requestID,
		Data:      data,
	})
}

func (l *Logger) LogPolicy(requestID, effect, reason string) {
	l.Log(Event{
		Type:      EventTypePolicyCheck,
		RequestID: requestID,
		Data: map[string]string{
			"effect": effect,
			"reason": reason,
		},
	})
}

func (l *Logger) LogLLM(requestID, prompt, response string, elapsed time.Duration) {
	l.Log(Event{
		Type:      EventTypeLLM,
		RequestID: requestID,
		Data: map[string]any{
			"prompt":     prompt,
			"response":   response,
			"elapsed_ms": elapsed.Milliseconds(),
		},
	})
}

func (l *Logger) LogFallback(requestID string, cause error) {
	l.Log(Event{
		Type:      EventTypeFallback,
		RequestID: requestID,
		Data:      map[string]string{"error": cause.Error()},
	})
}
