package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMRequest records every model call for cost tracking and debugging.
type LLMRequest struct {
	ent.Schema
}

func (LLMRequest) Fields() []ent.Field {
	return []ent.Field{
		field.Time("timestamp").
			Immutable().
			Comment("UTC wall-clock time of the call"),
		field.String("provider").
			Comment("Provider name: anthropic, openai, gemini"),
		field.String("model").
			Comment("Actual model ID used"),
		field.String("purpose").
			Comment("Consumer-provided label: analysis, conversation"),
		field.Int("input_tokens").
			Default(0),
		field.Int("output_tokens").
			Default(0),
		field.Int64("latency_ms").
			Default(0).
			Comment("Wall-clock time for the request"),
		field.Bool("success"),
		field.String("error_message").
			Optional(),
		field.Text("request_body").
			Optional(),
		field.Text("response_body").
			Optional(),
	}
}

func (LLMRequest) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("timestamp"),
		index.Fields("purpose"),
	}
}
