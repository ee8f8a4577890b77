package progress

import (
	"math"
	"time"
)

// ComputeStats derives UserStats from the full lesson progress list.
// It is a pure function of its inputs; loc decides calendar-day boundaries.
func ComputeStats(lessons []LessonProgress, now time.Time, loc *time.Location) UserStats {
	stats := UserStats{TotalLessons: len(lessons)}
	today := civilDay(now, loc)

	for _, lp := range lessons {
		stats.TotalTimeSpent += lp.TimeSpent

		if !lp.Completed {
			continue
		}
		stats.CompletedLessons++
		if lp.Score != nil {
			stats.TotalScore += *lp.Score
		}
		if lp.CompletedAt == nil {
			continue
		}
		if civilDay(*lp.CompletedAt, loc).Equal(today) {
			stats.LessonsToday++
		}
		if stats.LastLessonDate == nil || lp.CompletedAt.After(*stats.LastLessonDate) {
			last := *lp.CompletedAt
			stats.LastLessonDate = &last
		}
	}

	if stats.CompletedLessons > 0 {
		stats.AverageScore = int(math.Round(float64(stats.TotalScore) / float64(stats.CompletedLessons)))
	}

	stats.CurrentStreak, stats.LongestStreak = streaks(activeDays(lessons, loc), today)
	return stats
}
