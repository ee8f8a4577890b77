// Package screenstest builds screen dependencies backed by an in-memory
// database for tests.
package screenstest

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/fluent/internal/coach"
	"github.com/abhisek/fluent/internal/curriculum"
	"github.com/abhisek/fluent/internal/llm"
	"github.com/abhisek/fluent/internal/progress"
	"github.com/abhisek/fluent/internal/screens"
	"github.com/abhisek/fluent/internal/store"
)

// Now is the fixed clock of the test progress store.
var Now = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

// Deps returns dependencies with a fresh database, the built-in
// curriculum and a coach answering from provider (nil for local rules).
// A profile named "Ana" is created.
func Deps(t testing.TB, provider llm.Provider) screens.Deps {
	t.Helper()
	return DepsAt(t, provider, func() time.Time { return Now })
}

// DepsAt is Deps with the progress store reading the time from now.
func DepsAt(t testing.TB, provider llm.Provider, now func() time.Time) screens.Deps {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cur, err := curriculum.Load()
	if err != nil {
		t.Fatalf("load curriculum: %v", err)
	}

	ps := progress.New(st.KVRepo(),
		progress.WithClock(now),
		progress.WithLocation(time.UTC),
	)
	if _, err := ps.CreateProfile(context.Background(), "Ana", ""); err != nil {
		t.Fatalf("create profile: %v", err)
	}

	return screens.Deps{
		Progress:   ps,
		Coach:      coach.New(provider, coach.WithRand(rand.New(rand.NewPCG(1, 2)))),
		Curriculum: cur,
	}
}

// Key builds a key press for a printable character or one of
// "enter", "esc", "up", "down" and "backspace".
func Key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

// Type returns one key press per rune of text.
func Type(text string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(text))
	for _, r := range text {
		msgs = append(msgs, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return msgs
}
