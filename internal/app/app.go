// Package app is the Bubble Tea shell: header, footer and the screen stack.
package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluent/internal/curriculum"
	"github.com/abhisek/fluent/internal/router"
	"github.com/abhisek/fluent/internal/screen"
	"github.com/abhisek/fluent/internal/screens"
	"github.com/abhisek/fluent/internal/screens/chat"
	"github.com/abhisek/fluent/internal/screens/dashboard"
	"github.com/abhisek/fluent/internal/screens/home"
	"github.com/abhisek/fluent/internal/ui/layout"
)

// Start selects the first screen shown.
type Start int

const (
	StartHome Start = iota
	StartDashboard
	StartChat
)

// Options configures the terminal app.
type Options struct {
	Deps  screens.Deps
	Start Start
	// LessonID and ExerciseID pick the conversation for StartChat. When
	// empty the next open conversation at the learner's level is used.
	LessonID   string
	ExerciseID string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	deps   screens.Deps
	start  tea.Cmd
	header layout.HeaderStats
	width  int
	height int
}

// newAppModel builds the screen stack for opts. Home is always at the
// bottom so Esc from a direct start lands there.
func newAppModel(opts Options) (AppModel, error) {
	m := AppModel{
		router: router.New(home.New(opts.Deps)),
		deps:   opts.Deps,
	}

	var first screen.Screen
	switch opts.Start {
	case StartDashboard:
		first = dashboard.New(opts.Deps)
	case StartChat:
		s, err := chatScreen(opts)
		if err != nil {
			return m, err
		}
		first = s
	}
	if first != nil {
		m.start = m.router.Push(first)
	}
	return m, nil
}

func chatScreen(opts Options) (screen.Screen, error) {
	ctx := context.Background()
	d := opts.Deps
	p, err := d.Progress.Profile(ctx)
	if err != nil {
		return nil, err
	}
	level := screens.Level(p)

	if opts.LessonID == "" {
		lesson, ex, err := screens.NextConversation(ctx, d, level)
		if err != nil {
			return nil, err
		}
		return chat.New(d, lesson, ex, level), nil
	}

	lesson, err := d.Curriculum.Lesson(opts.LessonID)
	if err != nil {
		return nil, err
	}
	for i := range lesson.Exercises {
		ex := &lesson.Exercises[i]
		if opts.ExerciseID != "" && ex.ID != opts.ExerciseID {
			continue
		}
		if ex.Kind == curriculum.KindConversation {
			return chat.New(d, lesson, ex, level), nil
		}
	}
	return nil, fmt.Errorf("lesson %q has no conversation exercise %q", opts.LessonID, opts.ExerciseID)
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(screens.LoadStats(m.deps), m.start)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screens.StatsMsg:
		if msg.Err == nil {
			m.header = layout.HeaderStats{
				LessonsToday: msg.Stats.LessonsToday,
				DailyGoal:    msg.DailyGoal(),
				Streak:       msg.Stats.CurrentStreak,
			}
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m, m.router.Back()
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current terminal size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}
	header := layout.RenderHeader(title, m.header, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m, err := newAppModel(opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
