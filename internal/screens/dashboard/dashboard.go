// Package dashboard shows the learner's statistics and lesson history.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluent/internal/progress"
	"github.com/abhisek/fluent/internal/screen"
	"github.com/abhisek/fluent/internal/screens"
	"github.com/abhisek/fluent/internal/ui/components"
	"github.com/abhisek/fluent/internal/ui/layout"
	"github.com/abhisek/fluent/internal/ui/theme"
)

type loadedMsg struct {
	Profile *progress.UserProfile
	Stats   progress.UserStats
	Lessons []progress.LessonProgress
	Err     error
}

// DashboardScreen displays stats and per-lesson progress.
type DashboardScreen struct {
	deps    screens.Deps
	profile *progress.UserProfile
	stats   progress.UserStats
	lessons []progress.LessonProgress
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyHintProvider = (*DashboardScreen)(nil)

// New creates the dashboard.
func New(deps screens.Deps) *DashboardScreen {
	return &DashboardScreen{deps: deps}
}

func (s *DashboardScreen) Init() tea.Cmd {
	return s.load()
}

func (s *DashboardScreen) Title() string {
	return "Progress"
}

func (s *DashboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "R", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// load recomputes the stats so they are current even across midnight.
func (s *DashboardScreen) load() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		ctx := context.Background()
		p, err := deps.Progress.Profile(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		stats, err := deps.Progress.RecomputeStats(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		all, err := deps.Progress.AllLessonProgress(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Profile: p, Stats: *stats, Lessons: all}
	}
}

func (s *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.loaded = true
		s.profile = msg.Profile
		s.stats = msg.Stats
		s.lessons = recentFirst(msg.Lessons)
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "r" {
			return s, s.load()
		}
	}
	return s, nil
}

// recentFirst orders completed lessons newest first, then unfinished ones.
func recentFirst(all []progress.LessonProgress) []progress.LessonProgress {
	out := append([]progress.LessonProgress(nil), all...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CompletedAt, out[j].CompletedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})
	return out
}

func (s *DashboardScreen) View(width, height int) string {
	if s.errMsg != "" {
		return theme.Incorrect.Render(s.errMsg)
	}
	if !s.loaded {
		return theme.Hint.Render("Loading progress...")
	}

	cw := max(width-8, 40)
	goal := progress.DefaultPreferences().DailyGoal
	if s.profile != nil {
		goal = s.profile.Preferences.DailyGoal
	}
	st := s.stats

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Completed", fmt.Sprintf("%d / %d", st.CompletedLessons, st.TotalLessons)),
		card("Average", theme.ScoreStyle(st.AverageScore).Render(fmt.Sprintf("%d", st.AverageScore))),
		card("Streak", fmt.Sprintf("%d (best %d)", st.CurrentStreak, st.LongestStreak)),
		card("Time", formatMinutes(st.TotalTimeSpent)),
	)

	bar := components.NewProgressBar(
		fmt.Sprintf("Today %d/%d", st.LessonsToday, goal),
		components.Ratio(st.LessonsToday, goal),
		true,
		cw,
	)

	sections := []string{cards, bar.View(), s.renderLessons(cw, max(height-14, 3))}
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 4).
		Render(strings.Join(sections, "\n\n"))
}

func card(label, value string) string {
	return theme.Card.Width(20).Render(theme.Hint.Render(label) + "\n" + theme.Body.Bold(true).Render(value))
}

// renderLessons lists up to rows lessons with their score and time.
func (s *DashboardScreen) renderLessons(width, rows int) string {
	if len(s.lessons) == 0 {
		return theme.Hint.Render("No lessons started yet.")
	}
	header := theme.Hint.Render(fmt.Sprintf("%-32s %6s %8s %7s  %s", "Lesson", "Score", "Attempts", "Time", "Completed"))
	lines := []string{header}
	for i, lp := range s.lessons {
		if i >= rows {
			lines = append(lines, theme.Hint.Render(fmt.Sprintf("… %d more", len(s.lessons)-rows)))
			break
		}
		lines = append(lines, s.lessonLine(lp))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (s *DashboardScreen) lessonLine(lp progress.LessonProgress) string {
	title := lp.LessonID
	if l, err := s.deps.Curriculum.Lesson(lp.LessonID); err == nil {
		title = l.Title
	}
	if r := []rune(title); len(r) > 32 {
		title = string(r[:31]) + "…"
	}
	score, completed := "-", "-"
	if lp.Score != nil {
		score = fmt.Sprintf("%d", *lp.Score)
	}
	if lp.CompletedAt != nil {
		completed = lp.CompletedAt.Local().Format("Jan 2 15:04")
	}
	return fmt.Sprintf("%-32s %6s %8d %7s  %s", title, score, lp.Attempts, formatMinutes(lp.TimeSpent), completed)
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}
