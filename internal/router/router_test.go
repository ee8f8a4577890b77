package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/fluent/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title   string
	initRan bool
	resumed int
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

// resumingScreen counts Resume calls.
type resumingScreen struct {
	stubScreen
}

func (s *resumingScreen) Resume() tea.Cmd {
	s.resumed++
	return nil
}

type finishedMsg struct{}

// finishingScreen asks to finish before being popped.
type finishingScreen struct {
	stubScreen
	backCalled bool
}

func (s *finishingScreen) Back() tea.Cmd {
	s.backCalled = true
	return func() tea.Msg { return finishedMsg{} }
}

func TestPush(t *testing.T) {
	r := New(&stubScreen{title: "home"})

	s2 := &stubScreen{title: "chat"}
	r.Update(PushScreenMsg{Screen: s2})

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "chat" {
		t.Errorf("expected active 'chat', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPopResumesScreenBelow(t *testing.T) {
	home := &resumingScreen{stubScreen{title: "home"}}
	r := New(home)
	r.Push(&stubScreen{title: "chat"})

	r.Update(PopScreenMsg{})

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if home.resumed != 1 {
		t.Errorf("expected home to be resumed once, got %d", home.resumed)
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	home := &resumingScreen{stubScreen{title: "home"}}
	r := New(home)

	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
	if home.resumed != 0 {
		t.Error("bottom screen must not be resumed")
	}
}

func TestBackDefersToBackHandler(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	chat := &finishingScreen{stubScreen: stubScreen{title: "chat"}}
	r.Push(chat)

	cmd := r.Back()

	if !chat.backCalled {
		t.Fatal("expected Back() on the active screen")
	}
	if r.Depth() != 2 {
		t.Errorf("screen must stay open until it pops itself, depth %d", r.Depth())
	}
	if _, ok := cmd().(finishedMsg); !ok {
		t.Error("expected the screen's own command")
	}
}

func TestBackPopsPlainScreen(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	r.Push(&stubScreen{title: "stats"})

	r.Back()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.Back() != nil {
		t.Error("Back at bottom should do nothing")
	}
}

func TestReplaceScreenMsg(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	r.Push(&stubScreen{title: "exercise"})

	result := &stubScreen{title: "result"}
	r.Update(ReplaceScreenMsg{Screen: result})

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "result" {
		t.Errorf("expected active 'result', got %q", r.Active().Title())
	}
	if !result.initRan {
		t.Error("expected Init() to run via ReplaceScreenMsg")
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	if got := r.View(80, 24); got != "home" {
		t.Errorf("expected view 'home', got %q", got)
	}
}
