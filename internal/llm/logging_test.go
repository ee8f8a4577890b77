package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/fluent/internal/store"
)

func openEventRepo(t *testing.T) store.EventRepo {
	t.Helper()
	st, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st.EventRepo()
}

func TestLoggingRecordsEvents(t *testing.T) {
	events := openEventRepo(t)
	core, logs := observer.New(zapcore.DebugLevel)
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`"Good morning!"`), Usage: Usage{InputTokens: 9, OutputTokens: 4}},
		MockResponse{Err: errors.New("connection reset")},
	)
	p := WithLogging(mock, ProviderMock, events, zap.New(core))

	ctx := WithPurpose(context.Background(), PurposeConversation)
	_, err := p.Generate(ctx, Request{System: "tutor", Messages: []Message{{Role: RoleUser, Content: "Good morning"}}})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{})
	require.Error(t, err)

	recs, err := events.QueryLLMEvents(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Newest first.
	failed, ok := recs[0], recs[1]
	assert.False(t, failed.Success)
	assert.Equal(t, "connection reset", failed.ErrorMessage)
	assert.True(t, ok.Success)
	assert.Equal(t, PurposeConversation, ok.Purpose)
	assert.Equal(t, ProviderMock, ok.Provider)
	assert.Equal(t, "mock", ok.Model)
	assert.Equal(t, 9, ok.InputTokens)
	assert.Contains(t, ok.RequestBody, "[system]\ntutor")
	assert.Contains(t, ok.RequestBody, "[user]\nGood morning")
	assert.Equal(t, `"Good morning!"`, ok.ResponseBody)

	assert.Equal(t, 1, logs.FilterMessage("llm request").Len())
	assert.Equal(t, 1, logs.FilterMessage("llm request failed").Len())
}

func TestLoggingWithoutEventRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`"x"`)})
	p := WithLogging(mock, ProviderMock, nil, nil)
	_, err := p.Generate(context.Background(), Request{})
	assert.NoError(t, err)
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), DefaultConfig(), nil, nil)
	assert.ErrorIs(t, err, ErrDisabled)

	cfg := DefaultConfig()
	cfg.Provider = ProviderOpenAI
	_, err = NewProvider(context.Background(), cfg, nil, nil)
	assert.Error(t, err)

	cfg.Provider = ProviderMock
	p, err := NewProvider(context.Background(), cfg, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())
}
