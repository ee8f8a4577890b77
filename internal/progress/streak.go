package progress

import (
	"sort"
	"time"
)

const dayLayout = "2006-01-02"

// civilDay truncates t to its calendar day in loc. The result is midnight
// UTC of that date so that day arithmetic is immune to DST shifts.
func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// activeDays returns the distinct calendar days with at least one
// completed lesson, most recent first.
func activeDays(lessons []LessonProgress, loc *time.Location) []time.Time {
	seen := make(map[string]time.Time)
	for _, lp := range lessons {
		if !lp.Completed || lp.CompletedAt == nil {
			continue
		}
		day := civilDay(*lp.CompletedAt, loc)
		seen[day.Format(dayLayout)] = day
	}

	days := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

// streaks computes the current and longest runs of consecutive days.
// days must be distinct and sorted most recent first; today is a civil day.
//
// The current streak only counts when the most recent active day is today
// or yesterday. The longest streak covers every run, including the
// current one, so longest >= current always holds.
func streaks(days []time.Time, today time.Time) (current, longest int) {
	if len(days) == 0 {
		return 0, 0
	}

	yesterday := today.AddDate(0, 0, -1)
	if days[0].Equal(today) || days[0].Equal(yesterday) {
		current = 1
		for i := 1; i < len(days); i++ {
			if !consecutive(days[i-1], days[i]) {
				break
			}
			current++
		}
	}

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if consecutive(days[i-1], days[i]) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	return current, max(longest, current)
}

// consecutive reports whether earlier is exactly one day before later.
func consecutive(later, earlier time.Time) bool {
	return later.AddDate(0, 0, -1).Equal(earlier)
}
