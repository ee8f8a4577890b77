package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var replySchema = &Schema{
	Name: "test-reply",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reply": map[string]any{"type": "string"},
		},
		"required":             []string{"reply"},
		"additionalProperties": false,
	},
}

func TestMockProviderReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`"first"`), Usage: Usage{InputTokens: 12, OutputTokens: 3}},
		MockResponse{Content: json.RawMessage(`"second"`)},
	)

	r1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, `"first"`, string(r1.Content))
	assert.Equal(t, 12, r1.Usage.InputTokens)
	assert.Equal(t, "mock", r1.Model)

	r2, err := mock.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, `"second"`, string(r2.Content))

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
	assert.Equal(t, 3, mock.CallCount())
	assert.Equal(t, "hi", mock.Calls[0].Messages[0].Content)
}

func TestMockProviderChecksSchema(t *testing.T) {
	mock := NewMockProvider(
		JSONResponse(map[string]any{"reply": "Nice to meet you!"}),
		JSONResponse(map[string]any{"answer": 4}),
	)
	req := Request{Schema: replySchema}

	resp, err := mock.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"reply":"Nice to meet you!"}`, string(resp.Content))

	_, err = mock.Generate(context.Background(), req)
	var invalid *ErrInvalidResponse
	require.ErrorAs(t, err, &invalid)
	assert.JSONEq(t, `{"answer":4}`, string(invalid.Content))
}

func TestMockProviderReturnsQueuedError(t *testing.T) {
	boom := errors.New("boom")
	mock := NewMockProvider(MockResponse{Err: boom})
	_, err := mock.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)
}

func TestPurposeContext(t *testing.T) {
	assert.Equal(t, "unknown", PurposeFrom(context.Background()))
	ctx := WithPurpose(context.Background(), PurposeConversation)
	assert.Equal(t, PurposeConversation, PurposeFrom(ctx))
	assert.Equal(t, "unknown", PurposeFrom(WithPurpose(context.Background(), "")))

	assert.True(t, KnownPurpose(PurposeAnalysis))
	assert.False(t, KnownPurpose("hint"))
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	require.NotNil(t, c)
	assert.InDelta(t, 0.00075, c.Cost(1000, 1000), 1e-9)
	assert.Nil(t, LookupCost("no-such-model"))
}
