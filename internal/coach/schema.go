package coach

import "github.com/abhisek/fluent/internal/llm"

// AnalysisSchema is the structured output expected for grammar analysis.
var AnalysisSchema = &llm.Schema{
	Name:        "grammar-analysis",
	Description: "Grammar errors found in a learner's English text",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"errors": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"original":    map[string]any{"type": "string"},
						"correction":  map[string]any{"type": "string"},
						"explanation": map[string]any{"type": "string"},
						"kind": map[string]any{
							"type": "string",
							"enum": []any{
								KindCapitalization, KindArticle, KindAgreement, KindVerbForm,
								KindRepetition, KindPunctuation, KindOther,
							},
						},
					},
					"required":             []any{"original", "correction", "explanation", "kind"},
					"additionalProperties": false,
				},
			},
			"corrected_text": map[string]any{"type": "string"},
			"score":          map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"next_question":  map[string]any{"type": "string"},
		},
		"required":             []any{"errors", "corrected_text", "score", "next_question"},
		"additionalProperties": false,
	},
}

// ConversationSchema is the structured output expected for a tutor reply.
var ConversationSchema = &llm.Schema{
	Name:        "conversation-reply",
	Description: "The tutor's next message in a speaking practice conversation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reply": map[string]any{"type": "string", "minLength": 1},
			"follow_ups": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []any{"reply", "follow_ups"},
		"additionalProperties": false,
	},
}

type analysisOutput struct {
	Errors        []GrammarError `json:"errors"`
	CorrectedText string         `json:"corrected_text"`
	Score         int            `json:"score"`
	NextQuestion  string         `json:"next_question"`
}

type conversationOutput struct {
	Reply     string   `json:"reply"`
	FollowUps []string `json:"follow_ups"`
}
