package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluent/internal/progress"
	"github.com/abhisek/fluent/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota
	MascotCelebrating               // daily goal met
	MascotNudge                     // streak alive but nothing done today
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ A B │
└─────┘`

const mascotCelebrating = `┌─────┐
│ ★ ★ │
│  ▿  │
│ A B │
└─╥═╥─┘
  ╚═╝`

const mascotNudge = `┌─────┐
│ ◉ ◉ │ !
│  ○  │
│ A B │
└─────┘`

// mascotFor picks the variant for the learner's day.
func mascotFor(stats progress.UserStats, dailyGoal int) MascotVariant {
	switch {
	case dailyGoal > 0 && stats.LessonsToday >= dailyGoal:
		return MascotCelebrating
	case stats.LessonsToday == 0 && stats.CurrentStreak > 0:
		return MascotNudge
	}
	return MascotIdle
}

func mascotLine(v MascotVariant, stats progress.UserStats, dailyGoal int) string {
	switch v {
	case MascotCelebrating:
		return "Daily goal reached. Great job!"
	case MascotNudge:
		return "Keep your streak alive: one lesson today!"
	}
	if left := dailyGoal - stats.LessonsToday; left > 0 {
		return fmt.Sprintf("%d more lesson(s) to reach today's goal.", left)
	}
	return "Ready when you are."
}

// renderMascot draws the mascot with a one-line speech bubble.
func renderMascot(v MascotVariant, line string) string {
	art, color := mascotIdle, theme.Primary
	switch v {
	case MascotCelebrating:
		art, color = mascotCelebrating, theme.Success
	case MascotNudge:
		art, color = mascotNudge, theme.Accent
	}
	body := lipgloss.NewStyle().Foreground(color).Render(art)
	bubble := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1).
		Foreground(theme.Text).
		Render(line)
	return lipgloss.JoinHorizontal(lipgloss.Center, body, "  ", bubble)
}
