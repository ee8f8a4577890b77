package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiSchemaConversion(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"corrected": map[string]any{"type": "string", "description": "fixed sentence"},
			"score":     map[string]any{"type": "integer"},
			"errors": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"kind": map[string]any{"type": "string", "enum": []any{"grammar", "spelling"}},
					},
				},
			},
		},
		"required": []string{"corrected", "score"},
	}

	s := geminiSchema(def)
	assert.Equal(t, genai.TypeObject, s.Type)
	require.Len(t, s.Properties, 3)
	assert.Equal(t, "fixed sentence", s.Properties["corrected"].Description)
	assert.Equal(t, genai.TypeInteger, s.Properties["score"].Type)
	assert.Equal(t, []string{"corrected", "score"}, s.Required)

	items := s.Properties["errors"].Items
	require.NotNil(t, items)
	assert.Equal(t, []string{"grammar", "spelling"}, items.Properties["kind"].Enum)
}

func TestGeminiContentsRoles(t *testing.T) {
	contents := geminiContents([]Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi!"},
	})
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
}
