// Package screen defines the contract between the app shell and its screens.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/fluent/internal/ui/layout"
)

// Screen is one page of the terminal UI.
type Screen interface {
	// Init returns an initial command when the screen is first shown.
	Init() tea.Cmd

	// Update handles messages and returns the updated screen and command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content, excluding header and footer.
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// BackHandler is implemented by screens that need to finish work before
// being closed with Esc. Back returns the command that eventually pops
// the screen.
type BackHandler interface {
	Back() tea.Cmd
}

// Resumer is implemented by screens that reload their data when they
// become active again after the screen above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}
