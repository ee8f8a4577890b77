package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluent/internal/progress"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		fresh, _ := cmd.Flags().GetBool("fresh")
		asJSON, _ := cmd.Flags().GetBool("json")

		rt, err := newRuntime(cmd, setupOpts{})
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		var stats *progress.UserStats
		if fresh {
			stats, err = rt.progress.RecomputeStats(ctx)
		} else {
			stats, err = rt.progress.Stats(ctx)
		}
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, stats)
		}

		goal := progress.DefaultPreferences().DailyGoal
		if p, err := rt.progress.Profile(ctx); err == nil && p != nil {
			goal = p.Preferences.DailyGoal
		}

		fmt.Fprintf(out, "Lessons:        %d completed of %d started\n", stats.CompletedLessons, stats.TotalLessons)
		fmt.Fprintf(out, "Average score:  %d\n", stats.AverageScore)
		fmt.Fprintf(out, "Total score:    %d\n", stats.TotalScore)
		fmt.Fprintf(out, "Time spent:     %d min\n", stats.TotalTimeSpent)
		fmt.Fprintf(out, "Today:          %d of %d\n", stats.LessonsToday, goal)
		fmt.Fprintf(out, "Current streak: %d day(s)\n", stats.CurrentStreak)
		fmt.Fprintf(out, "Longest streak: %d day(s)\n", stats.LongestStreak)
		fmt.Fprintf(out, "Last lesson:    %s\n", formatTime(stats.LastLessonDate))
		if !fresh {
			fmt.Fprintln(out, "\nStats are as of the last recorded lesson; use --fresh to recompute for today.")
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("fresh", false, "Recompute from all progress for the current day")
	statsCmd.Flags().Bool("json", false, "Print as JSON")
}
