package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/fluent/internal/progress"
)

func sampleData() Data {
	score := 88
	done := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)
	return Data{
		Profile: &progress.UserProfile{Name: "Ana", Preferences: progress.DefaultPreferences()},
		Lessons: []progress.LessonProgress{
			{
				LessonID: "greetings", Completed: true, Score: &score, Attempts: 3, TimeSpent: 14, CompletedAt: &done,
				Exercises: []progress.ExerciseProgress{
					{ExerciseID: "intro-chat", Completed: true, Score: 80, BestScore: 90, Attempts: 2, Feedback: []string{"Good", "Watch articles"}},
					{ExerciseID: "be-verb", Completed: false, Score: 33, BestScore: 33, Attempts: 1},
				},
			},
			{LessonID: "daily-routine", Attempts: 1, TimeSpent: 4},
		},
		Stats:  progress.UserStats{TotalLessons: 2, CompletedLessons: 1, AverageScore: 88, CurrentStreak: 1, LongestStreak: 3},
		Titles: map[string]string{"greetings": "Greetings and Introductions"},
	}
}

func TestBuild(t *testing.T) {
	f, err := Build(sampleData())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetLessons, SheetExercises, SheetStats}, f.GetSheetList())

	lessons, err := f.GetRows(SheetLessons)
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	assert.Equal(t, []string{"greetings", "Greetings and Introductions", "yes", "88", "3", "14", "2025-03-10 18:30"}, lessons[1])
	assert.Equal(t, []string{"daily-routine", "", "no", "", "1", "4"}, lessons[2])

	exercises, err := f.GetRows(SheetExercises)
	require.NoError(t, err)
	require.Len(t, exercises, 3)
	assert.Equal(t, "Good; Watch articles", exercises[1][6])
	assert.Equal(t, "be-verb", exercises[2][1])

	learner, err := f.GetCellValue(SheetStats, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Ana", learner)

	rows, err := f.GetRows(SheetStats)
	require.NoError(t, err)
	assert.Contains(t, rows, []string{"Longest streak (days)", "3"})
}

func TestBuildWithoutProfile(t *testing.T) {
	f, err := Build(Data{})
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetStats)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lessons started", "0"}, rows[1])
}

func TestWriteAndSave(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleData()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 3)

	path := filepath.Join(t.TempDir(), "progress.xlsx")
	require.NoError(t, SaveAs(path, sampleData()))
	g, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer g.Close()
	v, err := g.GetCellValue(SheetLessons, "A2")
	require.NoError(t, err)
	assert.Equal(t, "greetings", v)
}
