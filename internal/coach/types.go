package coach

import (
	"errors"

	"github.com/abhisek/fluent/internal/progress"
)

// ErrEmptyInput is returned when the learner submits blank text.
var ErrEmptyInput = errors.New("coach: input is empty")

// Error kinds reported in GrammarError.Kind.
const (
	KindCapitalization = "capitalization"
	KindArticle        = "article"
	KindAgreement      = "agreement"
	KindVerbForm       = "verb_form"
	KindRepetition     = "repetition"
	KindPunctuation    = "punctuation"
	KindOther          = "other"
)

// GrammarError is one mistake found in the learner's text.
type GrammarError struct {
	Original    string `json:"original"`
	Correction  string `json:"correction"`
	Explanation string `json:"explanation"`
	Kind        string `json:"kind"`
}

// Analysis is the result of checking one piece of learner text.
type Analysis struct {
	Errors        []GrammarError `json:"errors"`
	CorrectedText string         `json:"correctedText"`
	Score         int            `json:"score"`
	NextQuestion  string         `json:"nextQuestion"`
	// Fallback is set when the answer came from the local rules instead of
	// the hosted model.
	Fallback bool `json:"fallback"`
}

// Speaker identifies who said a Turn.
type Speaker string

const (
	SpeakerLearner Speaker = "learner"
	SpeakerTutor   Speaker = "tutor"
)

// Turn is one line of a practice conversation.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// ConversationRequest is the learner's next message plus the conversation so far.
type ConversationRequest struct {
	Input   string              `json:"input"`
	History []Turn              `json:"history,omitempty"`
	Level   progress.Difficulty `json:"level,omitempty"`
	Topic   string              `json:"topic,omitempty"`
}

// Reply is the tutor's answer in a practice conversation.
type Reply struct {
	Text      string   `json:"text"`
	FollowUps []string `json:"followUps"`
	Fallback  bool     `json:"fallback"`
}
