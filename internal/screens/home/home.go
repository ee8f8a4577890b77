// Package home is the start screen: a greeting, today's progress and the
// main menu.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluent/internal/progress"
	"github.com/abhisek/fluent/internal/router"
	"github.com/abhisek/fluent/internal/screen"
	"github.com/abhisek/fluent/internal/screens"
	"github.com/abhisek/fluent/internal/screens/chat"
	"github.com/abhisek/fluent/internal/screens/dashboard"
	"github.com/abhisek/fluent/internal/screens/lessons"
	"github.com/abhisek/fluent/internal/ui/components"
	"github.com/abhisek/fluent/internal/ui/theme"
)

// errMsg reports a failure to start an activity.
type errMsg struct{ Err error }

// HomeScreen is the main screen of the application.
type HomeScreen struct {
	deps    screens.Deps
	menu    components.Menu
	profile *progress.UserProfile
	stats   progress.UserStats
	loaded  bool
	errText string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates the home screen.
func New(deps screens.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "PRACTICE CONVERSATION", Detail: "next open chat at your level", Action: h.practice},
		{Label: "LESSONS", Action: func() tea.Cmd { return router.Push(lessons.New(deps)) }},
		{Label: "PROGRESS", Action: func() tea.Cmd { return router.Push(dashboard.New(deps)) }},
		{Label: "QUIT", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return screens.LoadStats(h.deps)
}

// Resume refreshes the stats after an activity closes.
func (h *HomeScreen) Resume() tea.Cmd {
	return screens.LoadStats(h.deps)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

// practice opens the next conversation exercise at the learner's level.
func (h *HomeScreen) practice() tea.Cmd {
	deps, level := h.deps, screens.Level(h.profile)
	return func() tea.Msg {
		lesson, ex, err := screens.NextConversation(context.Background(), deps, level)
		if err != nil {
			return errMsg{Err: err}
		}
		return router.PushScreenMsg{Screen: chat.New(deps, lesson, ex, level)}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screens.StatsMsg:
		if msg.Err != nil {
			h.errText = msg.Err.Error()
			return h, nil
		}
		h.loaded = true
		h.profile = msg.Profile
		h.stats = msg.Stats
		return h, nil

	case errMsg:
		h.errText = msg.Err.Error()
		return h, nil

	case tea.KeyMsg:
		h.errText = ""
		var cmd tea.Cmd
		h.menu, cmd = h.menu.Update(msg)
		return h, cmd
	}
	return h, nil
}

func (h *HomeScreen) View(width, height int) string {
	cw := min(max(width-8, 20), 64)
	goal := progress.DefaultPreferences().DailyGoal
	name := "there"
	if h.profile != nil {
		goal = h.profile.Preferences.DailyGoal
		if h.profile.Name != "" {
			name = h.profile.Name
		}
	}

	var sections []string
	sections = append(sections, theme.Title.Width(cw).Render(fmt.Sprintf("Hello, %s!", name)))

	if h.loaded {
		v := mascotFor(h.stats, goal)
		sections = append(sections,
			lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(renderMascot(v, mascotLine(v, h.stats, goal))),
			renderToday(h.stats, goal, cw),
		)
	}

	sections = append(sections, theme.Card.Width(cw).Render(strings.TrimRight(h.menu.View(), "\n")))
	if h.errText != "" {
		sections = append(sections, theme.Incorrect.Render(h.errText))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(sections, "\n\n"))
}

// renderToday shows the daily goal bar and the streak.
func renderToday(stats progress.UserStats, goal, cw int) string {
	bar := components.NewProgressBar(
		fmt.Sprintf("Today %d/%d", stats.LessonsToday, goal),
		components.Ratio(stats.LessonsToday, goal),
		false,
		cw,
	)
	streak := theme.Hint.Render(fmt.Sprintf("Streak %d day(s), best %d, %d lesson(s) completed",
		stats.CurrentStreak, stats.LongestStreak, stats.CompletedLessons))
	return bar.View() + "\n" + streak
}
