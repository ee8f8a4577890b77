// Package coach checks learner English and plays the tutor in practice
// conversations. It asks a hosted language model when one is configured
// and falls back to built-in rules and canned questions otherwise.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/fluent/internal/llm"
	"github.com/abhisek/fluent/internal/progress"
)

// Coach is safe for concurrent use.
type Coach struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger

	mu   sync.Mutex
	rand *rand.Rand
}

// Option configures a Coach.
type Option func(*Coach)

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coach) { c.logger = l }
}

// WithConfig overrides DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(c *Coach) { c.cfg = cfg }
}

// WithRand sets the random source used to pick canned questions.
func WithRand(r *rand.Rand) Option {
	return func(c *Coach) { c.rand = r }
}

// New creates a Coach. provider may be nil, in which case every answer
// comes from the local fallback.
func New(provider llm.Provider, opts ...Option) *Coach {
	now := uint64(time.Now().UnixNano())
	c := &Coach{
		provider: provider,
		cfg:      DefaultConfig(),
		logger:   zap.NewNop(),
		rand:     rand.New(rand.NewPCG(now, now>>17)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Remote reports whether a hosted model is configured.
func (c *Coach) Remote() bool {
	return c.provider != nil
}

// Analyze reviews text written by a learner at level.
func (c *Coach) Analyze(ctx context.Context, text string, level progress.Difficulty) (*Analysis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	if c.provider == nil {
		return c.localAnalysis(text, level), nil
	}

	resp, err := c.provider.Generate(llm.WithPurpose(ctx, llm.PurposeAnalysis), llm.Request{
		System:      analysisSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildAnalysisMessage(text, level)}},
		Schema:      AnalysisSchema,
		MaxTokens:   c.cfg.AnalysisMaxTokens,
		Temperature: c.cfg.AnalysisTemperature,
	})
	var out analysisOutput
	if err == nil {
		err = decode(resp, &out)
	}
	if err != nil {
		c.logger.Warn("grammar analysis fell back to local rules", zap.Error(err))
		return c.localAnalysis(text, level), nil
	}

	a := &Analysis{
		Errors:        out.Errors,
		CorrectedText: out.CorrectedText,
		Score:         min(max(out.Score, 0), 100),
		NextQuestion:  out.NextQuestion,
	}
	if a.Errors == nil {
		a.Errors = []GrammarError{}
	}
	if a.CorrectedText == "" {
		a.CorrectedText = text
	}
	if a.NextQuestion == "" {
		a.NextQuestion = c.pick(levelQuestions[levelOrDefault(level)])
	}
	return a, nil
}

// Converse produces the tutor's next message.
func (c *Coach) Converse(ctx context.Context, req ConversationRequest) (*Reply, error) {
	req.Input = strings.TrimSpace(req.Input)
	if req.Input == "" {
		return nil, ErrEmptyInput
	}
	if c.provider == nil {
		return c.localReply(req), nil
	}

	resp, err := c.provider.Generate(llm.WithPurpose(ctx, llm.PurposeConversation), llm.Request{
		System:      conversationSystemPrompt(req.Level, req.Topic),
		Messages:    c.conversationMessages(req),
		Schema:      ConversationSchema,
		MaxTokens:   c.cfg.ConversationMaxTokens,
		Temperature: c.cfg.ConversationTemperature,
	})
	var out conversationOutput
	if err == nil {
		err = decode(resp, &out)
	}
	if err == nil && strings.TrimSpace(out.Reply) == "" {
		err = errors.New("model returned an empty reply")
	}
	if err != nil {
		c.logger.Warn("conversation fell back to canned reply", zap.Error(err))
		return c.localReply(req), nil
	}

	if out.FollowUps == nil {
		out.FollowUps = []string{}
	}
	return &Reply{Text: out.Reply, FollowUps: out.FollowUps}, nil
}

func (c *Coach) conversationMessages(req ConversationRequest) []llm.Message {
	history := req.History
	if limit := c.cfg.HistoryLimit; limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	msgs := make([]llm.Message, 0, len(history)+1)
	for _, t := range history {
		role := llm.RoleUser
		if t.Speaker == SpeakerTutor {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Text})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: req.Input})
}

func decode(resp *llm.Response, v any) error {
	if err := json.Unmarshal(resp.Content, v); err != nil {
		return fmt.Errorf("parse model response: %w", err)
	}
	return nil
}

func (c *Coach) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return options[c.rand.IntN(len(options))]
}

// sample returns up to n distinct options in random order.
func (c *Coach) sample(options []string, n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.rand.Perm(len(options))
	out := make([]string, 0, min(n, len(options)))
	for _, i := range idx[:min(n, len(idx))] {
		out = append(out, options[i])
	}
	return out
}
