package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/fluent/internal/progress"
	"github.com/abhisek/fluent/internal/screens/screenstest"
)

func TestLoadAndRender(t *testing.T) {
	deps := screenstest.Deps(t, nil)
	ctx := context.Background()
	_, err := deps.Progress.CompleteLesson(ctx, "greetings", 90, 75)
	require.NoError(t, err)
	_, err = deps.Progress.RecordExerciseOutcome(ctx, "food-basics", "articles", 50, "", nil)
	require.NoError(t, err)

	s := New(deps)
	assert.Contains(t, s.View(100, 30), "Loading")

	s.Update(s.Init()())
	require.True(t, s.loaded)
	assert.Equal(t, 2, s.stats.TotalLessons)
	assert.Equal(t, 1, s.stats.CompletedLessons)
	require.Len(t, s.lessons, 2)
	assert.Equal(t, "greetings", s.lessons[0].LessonID)

	view := s.View(120, 40)
	assert.Contains(t, view, "Greetings and Introductions")
	assert.Contains(t, view, "Food and Drink")
	assert.Contains(t, view, "1h15m")
	assert.Contains(t, view, "Today 1/3")
}

func TestRefreshKey(t *testing.T) {
	s := New(screenstest.Deps(t, nil))
	_, cmd := s.Update(screenstest.Key("r"))
	require.NotNil(t, cmd)
	assert.IsType(t, loadedMsg{}, cmd())
}

func TestEmptyHistory(t *testing.T) {
	s := New(screenstest.Deps(t, nil))
	s.Update(s.Init()())
	assert.Contains(t, s.View(100, 30), "No lessons started yet.")
}

func TestRecentFirst(t *testing.T) {
	older := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 0, 5)
	got := recentFirst([]progress.LessonProgress{
		{LessonID: "open"},
		{LessonID: "old", CompletedAt: &older},
		{LessonID: "new", CompletedAt: &newer},
	})
	ids := []string{got[0].LessonID, got[1].LessonID, got[2].LessonID}
	assert.Equal(t, []string{"new", "old", "open"}, ids)
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0m", formatMinutes(0))
	assert.Equal(t, "45m", formatMinutes(45))
	assert.Equal(t, "2h05m", formatMinutes(125))
}
