// Package screens holds what the individual terminal screens share: their
// dependencies and the progress bookkeeping done when an exercise ends.
package screens

import (
	"context"
	"fmt"
	"math"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/fluent/internal/coach"
	"github.com/abhisek/fluent/internal/curriculum"
	"github.com/abhisek/fluent/internal/progress"
)

// Deps are the services the screens work with.
type Deps struct {
	Progress   *progress.Store
	Coach      *coach.Coach
	Curriculum *curriculum.Curriculum
}

// StatsMsg carries fresh stats for the header and the screens showing them.
type StatsMsg struct {
	Profile *progress.UserProfile
	Stats   progress.UserStats
	Err     error
}

// DailyGoal returns the profile's goal, or the default goal without a profile.
func (m StatsMsg) DailyGoal() int {
	if m.Profile == nil {
		return progress.DefaultPreferences().DailyGoal
	}
	return m.Profile.Preferences.DailyGoal
}

// LoadStats recomputes the stats so "today" and the streak are current.
func LoadStats(d Deps) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		p, err := d.Progress.Profile(ctx)
		if err != nil {
			return StatsMsg{Err: err}
		}
		stats, err := d.Progress.RecomputeStats(ctx)
		if err != nil {
			return StatsMsg{Err: err}
		}
		return StatsMsg{Profile: p, Stats: *stats}
	}
}

// Level returns the profile's difficulty, or beginner without a profile.
func Level(p *progress.UserProfile) progress.Difficulty {
	if p == nil || !p.Preferences.Difficulty.Valid() {
		return progress.DifficultyBeginner
	}
	return p.Preferences.Difficulty
}

// Minutes rounds d up to whole minutes. Any activity counts as one minute.
func Minutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}

// FinishExercise adds the time spent on an exercise to its lesson and
// completes the lesson once every exercise in it has a passing result.
// A completed lesson is completed again, dated today, when every
// exercise's latest result passes, so re-practice counts towards the
// daily goal and the streak. It reports whether this call completed the
// lesson.
func FinishExercise(ctx context.Context, d Deps, lessonID string, spent time.Duration) (bool, error) {
	lesson, err := d.Curriculum.Lesson(lessonID)
	if err != nil {
		return false, err
	}
	lp, err := d.Progress.LessonProgress(ctx, lessonID)
	if err != nil {
		return false, err
	}
	if lp == nil {
		return false, fmt.Errorf("no progress recorded for lesson %q", lessonID)
	}

	// First completion goes by best scores, repeats by the latest ones.
	score := bestScore
	if lp.Completed {
		score = latestScore
	}
	if !allPassed(lesson, lp, score) {
		lp.TimeSpent += Minutes(spent)
		return false, d.Progress.SaveLessonProgress(ctx, *lp)
	}

	total := 0
	for _, ex := range lesson.Exercises {
		total += score(lp.Exercise(ex.ID))
	}
	mean := int(math.Round(float64(total) / float64(len(lesson.Exercises))))
	if _, err := d.Progress.CompleteLesson(ctx, lessonID, mean, Minutes(spent)); err != nil {
		return false, err
	}
	return true, nil
}

func bestScore(ep *progress.ExerciseProgress) int   { return ep.BestScore }
func latestScore(ep *progress.ExerciseProgress) int { return ep.Score }

func allPassed(lesson *curriculum.Lesson, lp *progress.LessonProgress, score func(*progress.ExerciseProgress) int) bool {
	for _, ex := range lesson.Exercises {
		ep := lp.Exercise(ex.ID)
		if ep == nil || score(ep) < progress.PassingScore {
			return false
		}
	}
	return true
}

// NextConversation returns the first conversation exercise at level that
// has no passing result yet, or the first one at that level when all pass.
func NextConversation(ctx context.Context, d Deps, level progress.Difficulty) (*curriculum.Lesson, *curriculum.Exercise, error) {
	lessons := d.Curriculum.LessonsFor(level)
	var firstLesson *curriculum.Lesson
	var firstEx *curriculum.Exercise
	for i := range lessons {
		lesson := &lessons[i]
		lp, err := d.Progress.LessonProgress(ctx, lesson.ID)
		if err != nil {
			return nil, nil, err
		}
		for j := range lesson.Exercises {
			ex := &lesson.Exercises[j]
			if ex.Kind != curriculum.KindConversation {
				continue
			}
			if firstEx == nil {
				firstLesson, firstEx = lesson, ex
			}
			if lp == nil {
				return lesson, ex, nil
			}
			if ep := lp.Exercise(ex.ID); ep == nil || ep.BestScore < progress.PassingScore {
				return lesson, ex, nil
			}
		}
	}
	if firstEx == nil {
		return nil, nil, fmt.Errorf("no conversation exercises for level %s: %w", level, curriculum.ErrNotFound)
	}
	return firstLesson, firstEx, nil
}
