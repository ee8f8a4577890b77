package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record <lesson-id> <exercise-id> <score>",
	Short: "Record the result of one exercise attempt",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid score %q: %w", args[2], err)
		}
		transcript, _ := cmd.Flags().GetString("transcript")
		feedback, _ := cmd.Flags().GetStringArray("feedback")

		rt, err := newRuntime(cmd, setupOpts{})
		if err != nil {
			return err
		}
		defer rt.Close()

		lp, err := rt.progress.RecordExerciseOutcome(cmd.Context(), args[0], args[1], score, transcript, feedback)
		if err != nil {
			return fmt.Errorf("record outcome: %w", err)
		}
		ep := lp.Exercise(args[1])
		status := "not passed yet"
		if ep.Completed {
			status = "passed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s/%s: score %d (best %d, attempt %d), %s.\n",
			lp.LessonID, ep.ExerciseID, ep.Score, ep.BestScore, ep.Attempts, status)
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <lesson-id> <score>",
	Short: "Mark a lesson completed with its final score",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid score %q: %w", args[1], err)
		}
		minutes, _ := cmd.Flags().GetInt("minutes")

		rt, err := newRuntime(cmd, setupOpts{})
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		lp, err := rt.progress.CompleteLesson(ctx, args[0], score, minutes)
		if err != nil {
			return fmt.Errorf("complete lesson: %w", err)
		}
		stats, err := rt.progress.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Completed %s with score %s (%d min total).\n",
			lp.LessonID, formatScore(lp.Score), lp.TimeSpent)
		fmt.Fprintf(cmd.OutOrStdout(), "Today: %d lesson(s). Streak: %d day(s).\n",
			stats.LessonsToday, stats.CurrentStreak)
		return nil
	},
}

func init() {
	recordCmd.Flags().String("transcript", "", "What the learner said or wrote")
	recordCmd.Flags().StringArray("feedback", nil, "Feedback line (repeatable)")
	completeCmd.Flags().Int("minutes", 0, "Minutes spent in this sitting")
}
