package gateway

import (
	"context"
	"iter"
	"strings"

	"github.com/rahul/voyage/internal/agent"
	"github.com/rahul/voyage/internal/trip"
)

// Messenger defines the interface for chat gateways (Telegram, etc.)
type Messenger interface {
	// Start begins the message listening loop
	Start() error
	// Send sends a message to a specific chat
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}

// Planner produces the progress of one travel request.
type Planner interface {
	Run(ctx context.Context, req trip.Request) iter.Seq[agent.ProgressEvent]
}

// ParseRequest reads a chat message as a travel request. Messages may set the
// route explicitly with "origin | destination | details" or
// "destination | details"; anything else is free text.
func ParseRequest(text string) trip.Request {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "/plan"))

	parts := strings.Split(text, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch len(parts) {
	case 2:
		return trip.Request{Destination: parts[0], FreeText: parts[1]}
	case 3:
		return trip.Request{Origin: parts[0], Destination: parts[1], FreeText: parts[2]}
	default:
		return trip.Request{FreeText: text}
	}
}
