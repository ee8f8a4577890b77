// Package llm wraps the hosted language models used for grammar analysis
// and conversation practice behind a single Provider interface.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a response for a prompt and conversation history.
type Provider interface {
	// Generate sends req to the model. When req.Schema is set the returned
	// Content is JSON that has been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System sets the tutor's role and constraints.
	System string

	// Messages is the conversation history, oldest first. Analysis calls
	// carry a single user message; conversation calls carry every turn.
	Messages []Message

	// Schema, when set, asks the provider for structured JSON output.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema, kebab-case (e.g. "grammar-analysis").
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model output.
type Response struct {
	// Content is validated JSON when a schema was requested, raw text otherwise.
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // "end", "max_tokens"
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
