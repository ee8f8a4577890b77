package chat

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluent/internal/coach"
	"github.com/abhisek/fluent/internal/ui/theme"
)

func (s *ChatScreen) View(width, height int) string {
	inner := max(width-6, 20)

	feedback := s.renderFeedback(inner)
	composer := s.renderComposer(inner)

	used := lipgloss.Height(feedback) + lipgloss.Height(composer) + 2
	transcript := s.renderTranscript(inner, max(height-used, 3))

	sections := []string{transcript}
	if feedback != "" {
		sections = append(sections, feedback)
	}
	sections = append(sections, composer)

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		Render(strings.Join(sections, "\n"))
}

// renderTranscript shows the most recent turns that fit in height lines.
func (s *ChatScreen) renderTranscript(width, height int) string {
	var lines []string
	for _, t := range s.history {
		label, style := "Tutor", theme.Tutor
		if t.Speaker == coach.SpeakerLearner {
			label, style = "You", theme.Learner
		}
		block := style.Render(label+": ") + theme.Body.Width(width-len(label)-2).Render(t.Text)
		lines = append(lines, strings.Split(block, "\n")...)
	}
	if s.waiting {
		lines = append(lines, theme.Hint.Render("Tutor is thinking..."))
	}
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return lipgloss.NewStyle().Height(height).Render(strings.Join(lines, "\n"))
}

func (s *ChatScreen) renderFeedback(width int) string {
	if s.errMsg != "" {
		return theme.Incorrect.Render(s.errMsg)
	}
	a := s.last
	if a == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Score ")
	b.WriteString(theme.ScoreStyle(a.Score).Render(fmt.Sprintf("%d", a.Score)))
	if n := len(s.scores); n > 1 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("   average %d over %d messages", MeanScore(s.scores), n)))
	}
	if a.Fallback {
		b.WriteString(theme.Hint.Render("   (offline check)"))
	}
	if len(a.Errors) == 0 {
		b.WriteString("\n" + theme.Correct.Render("No mistakes found. Well done!"))
	}
	for _, e := range a.Errors {
		b.WriteString("\n" + theme.Tip.Render(fmt.Sprintf("%s → %s", e.Original, e.Correction)))
		if e.Explanation != "" {
			b.WriteString(theme.Hint.Render("  " + e.Explanation))
		}
	}
	return theme.Card.Width(width).Render(b.String())
}

func (s *ChatScreen) renderComposer(width int) string {
	if s.saving {
		return theme.Hint.Render("Saving your progress...")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		lipgloss.NewStyle().Width(max(width-14, 10)).Render(s.input.View()),
		"  ",
		s.send.View(),
	)
}
