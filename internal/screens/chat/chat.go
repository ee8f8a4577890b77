// Package chat is the conversation practice screen. Every learner message
// is analysed and answered by the coach; closing the screen records the
// exercise outcome.
package chat

import (
	"context"
	"math"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/fluent/internal/coach"
	"github.com/abhisek/fluent/internal/curriculum"
	"github.com/abhisek/fluent/internal/progress"
	"github.com/abhisek/fluent/internal/router"
	"github.com/abhisek/fluent/internal/screen"
	"github.com/abhisek/fluent/internal/screens"
	"github.com/abhisek/fluent/internal/ui/components"
	"github.com/abhisek/fluent/internal/ui/layout"
)

// maxFeedback caps the tips stored with the exercise outcome.
const maxFeedback = 10

// replyMsg is sent when the coach has analysed and answered a message.
type replyMsg struct {
	Analysis *coach.Analysis
	Reply    *coach.Reply
	Err      error
}

// savedMsg is sent once the outcome has been recorded.
type savedMsg struct {
	Err error
}

// ChatScreen implements screen.Screen for a conversation exercise.
type ChatScreen struct {
	deps     screens.Deps
	lesson   *curriculum.Lesson
	exercise *curriculum.Exercise
	level    progress.Difficulty

	history  []coach.Turn
	scores   []int
	feedback []string
	last     *coach.Analysis

	input   components.TextInput
	send    components.Button
	waiting bool
	saving  bool
	errMsg  string

	now     func() time.Time
	started time.Time
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)
var _ screen.BackHandler = (*ChatScreen)(nil)

// New creates a chat for one conversation exercise.
func New(deps screens.Deps, lesson *curriculum.Lesson, exercise *curriculum.Exercise, level progress.Difficulty) *ChatScreen {
	return newWithClock(deps, lesson, exercise, level, time.Now)
}

func newWithClock(deps screens.Deps, lesson *curriculum.Lesson, exercise *curriculum.Exercise, level progress.Difficulty, now func() time.Time) *ChatScreen {
	s := &ChatScreen{
		deps:     deps,
		lesson:   lesson,
		exercise: exercise,
		level:    level,
		history:  []coach.Turn{{Speaker: coach.SpeakerTutor, Text: exercise.Prompt}},
		input:    components.NewTextInput("Type your answer in English...", 500),
		now:      now,
		started:  now(),
	}
	s.send = components.NewButton("Send", false, s.submit)
	return s
}

func (s *ChatScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *ChatScreen) Title() string {
	return s.lesson.Title
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Esc", Description: "Finish"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		s.handleReply(msg)
		s.refreshSend()
		return s, nil

	case savedMsg:
		s.saving = false
		if msg.Err != nil {
			s.errMsg = "Could not save your progress: " + msg.Err.Error()
			return s, nil
		}
		return s, tea.Sequence(router.Pop(), screens.LoadStats(s.deps))

	case tea.KeyMsg:
		if s.saving {
			return s, nil
		}
		if msg.String() == "enter" {
			return s, s.send.Press()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.refreshSend()
	return s, cmd
}

// refreshSend enables sending only when there is text and no reply is pending.
func (s *ChatScreen) refreshSend() {
	s.send.Active = !s.waiting && !s.input.Empty()
}

func (s *ChatScreen) submit() tea.Cmd {
	text := s.input.Value()
	history := append([]coach.Turn(nil), s.history...)

	s.history = append(s.history, coach.Turn{Speaker: coach.SpeakerLearner, Text: text})
	s.input.Clear()
	s.waiting = true
	s.errMsg = ""
	s.refreshSend()

	c, level, topic := s.deps.Coach, s.level, s.lesson.Topic
	return func() tea.Msg {
		ctx := context.Background()
		analysis, err := c.Analyze(ctx, text, level)
		if err != nil {
			return replyMsg{Err: err}
		}
		reply, err := c.Converse(ctx, coach.ConversationRequest{
			Input:   text,
			History: history,
			Level:   level,
			Topic:   topic,
		})
		return replyMsg{Analysis: analysis, Reply: reply, Err: err}
	}
}

func (s *ChatScreen) handleReply(msg replyMsg) {
	s.waiting = false
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return
	}
	s.last = msg.Analysis
	s.scores = append(s.scores, msg.Analysis.Score)
	for _, e := range msg.Analysis.Errors {
		if len(s.feedback) < maxFeedback {
			s.feedback = append(s.feedback, e.Explanation)
		}
	}
	s.history = append(s.history, coach.Turn{Speaker: coach.SpeakerTutor, Text: msg.Reply.Text})
}

// Back records the outcome and closes the screen. A chat without a
// single analysed message is closed without recording anything.
func (s *ChatScreen) Back() tea.Cmd {
	if s.saving {
		return nil
	}
	if len(s.scores) == 0 {
		return router.Pop()
	}
	s.saving = true

	deps := s.deps
	lessonID, exerciseID := s.lesson.ID, s.exercise.ID
	score := MeanScore(s.scores)
	transcript := Transcript(s.history)
	feedback := append([]string(nil), s.feedback...)
	spent := s.now().Sub(s.started)

	return func() tea.Msg {
		ctx := context.Background()
		if _, err := deps.Progress.RecordExerciseOutcome(ctx, lessonID, exerciseID, score, transcript, feedback); err != nil {
			return savedMsg{Err: err}
		}
		_, err := screens.FinishExercise(ctx, deps, lessonID, spent)
		return savedMsg{Err: err}
	}
}

// MeanScore is the rounded mean of scores, or 0 for none.
func MeanScore(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	total := 0
	for _, sc := range scores {
		total += sc
	}
	return int(math.Round(float64(total) / float64(len(scores))))
}

// Transcript renders the conversation one "Speaker: text" line per turn.
func Transcript(turns []coach.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		who := "Tutor"
		if t.Speaker == coach.SpeakerLearner {
			who = "Learner"
		}
		lines = append(lines, who+": "+t.Text)
	}
	return strings.Join(lines, "\n")
}
