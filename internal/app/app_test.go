package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/fluent/internal/screens"
	"github.com/abhisek/fluent/internal/screens/screenstest"
)

func TestStartScreens(t *testing.T) {
	deps := screenstest.Deps(t, nil)

	m, err := newAppModel(Options{Deps: deps})
	require.NoError(t, err)
	assert.Equal(t, 1, m.router.Depth())
	assert.Equal(t, "Home", m.router.Active().Title())

	m, err = newAppModel(Options{Deps: deps, Start: StartDashboard})
	require.NoError(t, err)
	assert.Equal(t, 2, m.router.Depth())
	assert.Equal(t, "Progress", m.router.Active().Title())

	m, err = newAppModel(Options{Deps: deps, Start: StartChat})
	require.NoError(t, err)
	assert.Equal(t, "Greetings and Introductions", m.router.Active().Title())

	m, err = newAppModel(Options{Deps: deps, Start: StartChat, LessonID: "opinions", ExerciseID: "debate-chat"})
	require.NoError(t, err)
	assert.Equal(t, "Agreeing and Disagreeing", m.router.Active().Title())
}

func TestStartChatErrors(t *testing.T) {
	deps := screenstest.Deps(t, nil)

	_, err := newAppModel(Options{Deps: deps, Start: StartChat, LessonID: "missing"})
	assert.Error(t, err)

	_, err = newAppModel(Options{Deps: deps, Start: StartChat, LessonID: "greetings", ExerciseID: "be-verb"})
	assert.Error(t, err, "fill-in-the-blank is not a conversation")
}

func TestStatsUpdateHeader(t *testing.T) {
	deps := screenstest.Deps(t, nil)
	m, err := newAppModel(Options{Deps: deps})
	require.NoError(t, err)

	msg := screens.LoadStats(deps)()
	updated, _ := m.Update(msg)
	m = updated.(AppModel)
	assert.Equal(t, 3, m.header.DailyGoal)
	assert.Equal(t, 0, m.header.LessonsToday)
}

func TestEscPopsToHome(t *testing.T) {
	deps := screenstest.Deps(t, nil)
	m, err := newAppModel(Options{Deps: deps, Start: StartDashboard})
	require.NoError(t, err)

	updated, _ := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	m = updated.(AppModel)
	assert.Equal(t, 1, m.router.Depth())

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewTooSmall(t *testing.T) {
	deps := screenstest.Deps(t, nil)
	m, err := newAppModel(Options{Deps: deps})
	require.NoError(t, err)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Contains(t, updated.(AppModel).render(), "Terminal too small")

	updated, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	frame := updated.(AppModel).render()
	assert.Contains(t, frame, "Fluent")
	assert.Contains(t, frame, "Home")
}
