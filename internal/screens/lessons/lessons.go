// Package lessons lists the curriculum for the learner's level and opens
// exercises.
package lessons

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluent/internal/curriculum"
	"github.com/abhisek/fluent/internal/progress"
	"github.com/abhisek/fluent/internal/router"
	"github.com/abhisek/fluent/internal/screen"
	"github.com/abhisek/fluent/internal/screens"
	"github.com/abhisek/fluent/internal/screens/blank"
	"github.com/abhisek/fluent/internal/screens/chat"
	"github.com/abhisek/fluent/internal/ui/components"
	"github.com/abhisek/fluent/internal/ui/layout"
	"github.com/abhisek/fluent/internal/ui/theme"
)

type loadedMsg struct {
	Level    progress.Difficulty
	Progress map[string]progress.LessonProgress
	Err      error
}

// openLessonMsg switches the list to the exercises of one lesson.
type openLessonMsg struct {
	Lesson *curriculum.Lesson
}

// LessonsScreen shows lessons, and the exercises of the selected lesson.
type LessonsScreen struct {
	deps     screens.Deps
	level    progress.Difficulty
	lessons  []curriculum.Lesson
	progress map[string]progress.LessonProgress

	menu   components.Menu
	open   *curriculum.Lesson
	loaded bool
	errMsg string
}

var _ screen.Screen = (*LessonsScreen)(nil)
var _ screen.KeyHintProvider = (*LessonsScreen)(nil)
var _ screen.BackHandler = (*LessonsScreen)(nil)
var _ screen.Resumer = (*LessonsScreen)(nil)

// New creates the lessons screen.
func New(deps screens.Deps) *LessonsScreen {
	return &LessonsScreen{deps: deps}
}

func (s *LessonsScreen) Init() tea.Cmd {
	return s.load()
}

// Resume reloads progress after an exercise closes.
func (s *LessonsScreen) Resume() tea.Cmd {
	return s.load()
}

func (s *LessonsScreen) Title() string {
	if s.open != nil {
		return s.open.Title
	}
	return "Lessons"
}

func (s *LessonsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LessonsScreen) load() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		ctx := context.Background()
		p, err := deps.Progress.Profile(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		all, err := deps.Progress.AllLessonProgress(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		byID := make(map[string]progress.LessonProgress, len(all))
		for _, lp := range all {
			byID[lp.LessonID] = lp
		}
		return loadedMsg{Level: screens.Level(p), Progress: byID}
	}
}

func (s *LessonsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.loaded = true
		s.level = msg.Level
		s.lessons = s.deps.Curriculum.LessonsFor(msg.Level)
		s.progress = msg.Progress
		s.rebuildMenu()
		return s, nil

	case openLessonMsg:
		s.open = msg.Lesson
		s.menu.Selected = 0
		s.rebuildMenu()
		return s, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

// Back closes the open lesson first, then the screen.
func (s *LessonsScreen) Back() tea.Cmd {
	if s.open != nil {
		s.open = nil
		s.rebuildMenu()
		return nil
	}
	return router.Pop()
}

// rebuildMenu lists lessons, or the exercises of the open lesson. The
// selection is kept where possible.
func (s *LessonsScreen) rebuildMenu() {
	selected := s.menu.Selected
	var items []components.MenuItem
	if s.open == nil {
		for i := range s.lessons {
			lesson := &s.lessons[i]
			items = append(items, components.MenuItem{
				Label:  lesson.Title,
				Detail: lessonStatus(s.progress[lesson.ID], len(lesson.Exercises)),
				Action: func() tea.Cmd {
					return func() tea.Msg { return openLessonMsg{Lesson: lesson} }
				},
			})
		}
	} else {
		lp := s.progress[s.open.ID]
		for i := range s.open.Exercises {
			ex := &s.open.Exercises[i]
			items = append(items, components.MenuItem{
				Label:  exerciseLabel(ex),
				Detail: exerciseStatus(lp.Exercise(ex.ID)),
				Action: func() tea.Cmd { return s.start(ex) },
			})
		}
	}
	s.menu = components.NewMenu(items)
	if selected < len(items) {
		s.menu.Selected = selected
	}
}

func (s *LessonsScreen) start(ex *curriculum.Exercise) tea.Cmd {
	switch ex.Kind {
	case curriculum.KindConversation:
		return router.Push(chat.New(s.deps, s.open, ex, s.level))
	case curriculum.KindFillBlank:
		return router.Push(blank.New(s.deps, s.open, ex))
	}
	return nil
}

func exerciseLabel(ex *curriculum.Exercise) string {
	switch ex.Kind {
	case curriculum.KindConversation:
		return "Conversation: " + truncate(ex.Prompt, 48)
	case curriculum.KindFillBlank:
		return fmt.Sprintf("Fill the gaps (%d)", len(ex.Blanks))
	}
	return ex.ID
}

func lessonStatus(lp progress.LessonProgress, exercises int) string {
	if lp.Completed && lp.Score != nil {
		return fmt.Sprintf("✓ %d", *lp.Score)
	}
	passed := 0
	for _, ep := range lp.Exercises {
		if ep.BestScore >= progress.PassingScore {
			passed++
		}
	}
	if passed == 0 && lp.Attempts == 0 {
		return "new"
	}
	return fmt.Sprintf("%d/%d exercises", passed, exercises)
}

func exerciseStatus(ep *progress.ExerciseProgress) string {
	switch {
	case ep == nil:
		return ""
	case ep.Completed:
		return fmt.Sprintf("✓ best %d", ep.BestScore)
	default:
		return fmt.Sprintf("last %d, best %d", ep.Score, ep.BestScore)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (s *LessonsScreen) View(width, height int) string {
	var b strings.Builder
	switch {
	case s.errMsg != "":
		b.WriteString(theme.Incorrect.Render(s.errMsg))
	case !s.loaded:
		b.WriteString(theme.Hint.Render("Loading lessons..."))
	case s.open != nil:
		b.WriteString(theme.Title.Render(s.open.Title) + "\n")
		b.WriteString(theme.Hint.Render(s.open.Description) + "\n\n")
		b.WriteString(s.menu.View())
	default:
		b.WriteString(theme.Title.Render(fmt.Sprintf("%s lessons", strings.ToUpper(string(s.level[:1]))+string(s.level[1:]))) + "\n\n")
		b.WriteString(s.menu.View())
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 4).
		Render(b.String())
}
