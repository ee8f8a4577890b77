// Package blank is the fill-in-the-blank exercise screen. The learner
// fills the gaps one at a time; the last answer grades the exercise and
// records the outcome.
package blank

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluent/internal/curriculum"
	"github.com/abhisek/fluent/internal/router"
	"github.com/abhisek/fluent/internal/screen"
	"github.com/abhisek/fluent/internal/screens"
	"github.com/abhisek/fluent/internal/ui/components"
	"github.com/abhisek/fluent/internal/ui/layout"
	"github.com/abhisek/fluent/internal/ui/theme"
)

// gradedMsg is sent once the answers are graded and recorded.
type gradedMsg struct {
	Result          curriculum.Result
	LessonCompleted bool
	Err             error
}

// BlankScreen implements screen.Screen for a fill-in-the-blank exercise.
type BlankScreen struct {
	deps     screens.Deps
	lesson   *curriculum.Lesson
	exercise *curriculum.Exercise

	answers []string
	input   components.TextInput
	result  *gradedMsg
	grading bool

	now     func() time.Time
	started time.Time
}

var _ screen.Screen = (*BlankScreen)(nil)
var _ screen.KeyHintProvider = (*BlankScreen)(nil)

// New creates the screen for one fill-in-the-blank exercise.
func New(deps screens.Deps, lesson *curriculum.Lesson, exercise *curriculum.Exercise) *BlankScreen {
	return newWithClock(deps, lesson, exercise, time.Now)
}

func newWithClock(deps screens.Deps, lesson *curriculum.Lesson, exercise *curriculum.Exercise, now func() time.Time) *BlankScreen {
	return &BlankScreen{
		deps:     deps,
		lesson:   lesson,
		exercise: exercise,
		input:    components.NewTextInput("Word for the gap", 60),
		now:      now,
		started:  now(),
	}
}

func (s *BlankScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *BlankScreen) Title() string {
	return s.lesson.Title
}

func (s *BlankScreen) KeyHints() []layout.KeyHint {
	if s.result != nil {
		return []layout.KeyHint{{Key: "Enter", Description: "Done"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Next gap"},
		{Key: "Esc", Description: "Leave"},
	}
}

func (s *BlankScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case gradedMsg:
		s.grading = false
		s.result = &msg
		return s, nil

	case tea.KeyMsg:
		if s.result != nil {
			if msg.String() == "enter" {
				return s, tea.Sequence(router.Pop(), screens.LoadStats(s.deps))
			}
			return s, nil
		}
		if s.grading {
			return s, nil
		}
		if msg.String() == "enter" {
			return s, s.answer()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// answer stores the current gap's answer and grades after the last gap.
// Empty answers are not accepted.
func (s *BlankScreen) answer() tea.Cmd {
	if s.input.Empty() {
		return nil
	}
	s.answers = append(s.answers, s.input.Value())
	s.input.Clear()
	if len(s.answers) < len(s.exercise.Blanks) {
		return nil
	}

	s.grading = true
	deps := s.deps
	lessonID, ex := s.lesson.ID, *s.exercise
	answers := append([]string(nil), s.answers...)
	spent := s.now().Sub(s.started)

	return func() tea.Msg {
		res, err := curriculum.GradeBlanks(ex, answers)
		if err != nil {
			return gradedMsg{Err: err}
		}
		ctx := context.Background()
		transcript := strings.Join(answers, " | ")
		if _, err := deps.Progress.RecordExerciseOutcome(ctx, lessonID, ex.ID, res.Score, transcript, res.Feedback); err != nil {
			return gradedMsg{Result: res, Err: err}
		}
		done, err := screens.FinishExercise(ctx, deps, lessonID, spent)
		return gradedMsg{Result: res, LessonCompleted: done, Err: err}
	}
}

func (s *BlankScreen) View(width, height int) string {
	inner := max(width-8, 20)
	sections := []string{
		theme.Hint.Render("Fill in the gaps."),
		theme.Card.Width(inner).Render(s.renderPrompt()),
	}

	switch {
	case s.result != nil:
		sections = append(sections, s.renderResult())
	case s.grading:
		sections = append(sections, theme.Hint.Render("Checking..."))
	default:
		n := len(s.answers) + 1
		label := theme.Selected.Render(fmt.Sprintf("Gap %d of %d: ", n, len(s.exercise.Blanks)))
		sections = append(sections, label+s.input.View())
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 4).
		Render(strings.Join(sections, "\n\n"))
}

// renderPrompt replaces answered gaps with the answers and numbers the rest.
func (s *BlankScreen) renderPrompt() string {
	parts := strings.Split(s.exercise.Prompt, curriculum.BlankMarker)
	var b strings.Builder
	for i, part := range parts {
		b.WriteString(part)
		if i == len(parts)-1 {
			break
		}
		switch {
		case i < len(s.answers):
			b.WriteString(theme.Learner.Render(s.answers[i]))
		case i == len(s.answers):
			b.WriteString(theme.Selected.Render(fmt.Sprintf("(%d)____", i+1)))
		default:
			b.WriteString(theme.Hint.Render(fmt.Sprintf("(%d)____", i+1)))
		}
	}
	return b.String()
}

func (s *BlankScreen) renderResult() string {
	r := s.result
	if r.Err != nil {
		return theme.Incorrect.Render("Could not save your answers: " + r.Err.Error())
	}

	lines := []string{"Score " + theme.ScoreStyle(r.Result.Score).Render(fmt.Sprintf("%d", r.Result.Score))}
	for i, fb := range r.Result.Feedback {
		mark := theme.Correct.Render("✓")
		if !r.Result.Correct[i] {
			mark = theme.Incorrect.Render("✗")
		}
		lines = append(lines, fmt.Sprintf("%s %d. %s", mark, i+1, fb))
	}
	if r.LessonCompleted {
		lines = append(lines, "", theme.Correct.Render("Lesson complete!"))
	}
	return strings.Join(lines, "\n")
}
