package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluent/internal/curriculum"
	"github.com/abhisek/fluent/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress [lesson-id]",
	Short: "Show lesson progress",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		rt, err := newRuntime(cmd, setupOpts{})
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			lp, err := rt.progress.LessonProgress(ctx, args[0])
			if err != nil {
				return fmt.Errorf("load progress: %w", err)
			}
			if lp == nil {
				return fmt.Errorf("no progress recorded for lesson %q", args[0])
			}
			if asJSON {
				return writeJSON(out, lp)
			}
			printLessonDetail(out, rt.curriculum, lp)
			return nil
		}

		all, err := rt.progress.AllLessonProgress(ctx)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}
		if asJSON {
			if all == nil {
				all = []progress.LessonProgress{}
			}
			return writeJSON(out, all)
		}
		if len(all) == 0 {
			fmt.Fprintln(out, "No lessons started yet.")
			return nil
		}

		fmt.Fprintf(out, "%-16s  %-30s  %-4s  %5s  %8s  %6s  %s\n",
			"Lesson", "Title", "Done", "Score", "Attempts", "Min", "Completed")
		rule(out, 96)
		for _, lp := range all {
			done := "no"
			if lp.Completed {
				done = "yes"
			}
			fmt.Fprintf(out, "%-16s  %-30s  %-4s  %5s  %8d  %6d  %s\n",
				truncate(lp.LessonID, 16),
				truncate(lessonTitle(rt.curriculum, lp.LessonID), 30),
				done,
				formatScore(lp.Score),
				lp.Attempts,
				lp.TimeSpent,
				formatTime(lp.CompletedAt),
			)
		}
		return nil
	},
}

func lessonTitle(cur *curriculum.Curriculum, id string) string {
	if l, err := cur.Lesson(id); err == nil {
		return l.Title
	}
	return ""
}

func printLessonDetail(w io.Writer, cur *curriculum.Curriculum, lp *progress.LessonProgress) {
	fmt.Fprintf(w, "Lesson:     %s", lp.LessonID)
	if t := lessonTitle(cur, lp.LessonID); t != "" {
		fmt.Fprintf(w, " (%s)", t)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Completed:  %v\n", lp.Completed)
	fmt.Fprintf(w, "Score:      %s\n", formatScore(lp.Score))
	fmt.Fprintf(w, "Attempts:   %d\n", lp.Attempts)
	fmt.Fprintf(w, "Time spent: %d min\n", lp.TimeSpent)
	fmt.Fprintf(w, "Finished:   %s\n", formatTime(lp.CompletedAt))
	if len(lp.Exercises) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-18s  %-4s  %5s  %4s  %8s\n", "Exercise", "Pass", "Score", "Best", "Attempts")
	rule(w, 48)
	for _, ep := range lp.Exercises {
		pass := "no"
		if ep.Completed {
			pass = "yes"
		}
		fmt.Fprintf(w, "%-18s  %-4s  %5d  %4d  %8d\n", truncate(ep.ExerciseID, 18), pass, ep.Score, ep.BestScore, ep.Attempts)
		for _, fb := range ep.Feedback {
			fmt.Fprintf(w, "    - %s\n", fb)
		}
	}
}

func init() {
	progressCmd.Flags().Bool("json", false, "Print as JSON")
}
