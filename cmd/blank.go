package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluent/internal/curriculum"
)

var blankCmd = &cobra.Command{
	Use:   "blank <lesson-id> <exercise-id> [answers...]",
	Short: "Grade answers to a fill-in-the-blank exercise",
	Long: "Grade answers to a fill-in-the-blank exercise. Without answers the\n" +
		"exercise prompt is printed.",
	Example: "  fluent blank greetings be-verb am is are --record",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, _ := cmd.Flags().GetBool("record")

		rt, err := newRuntime(cmd, setupOpts{})
		if err != nil {
			return err
		}
		defer rt.Close()

		out := cmd.OutOrStdout()
		ex, err := rt.curriculum.Exercise(args[0], args[1])
		if err != nil {
			return err
		}
		answers := args[2:]
		if len(answers) == 0 {
			fmt.Fprintln(out, ex.Prompt)
			for i, b := range ex.Blanks {
				if b.Hint != "" {
					fmt.Fprintf(out, "  %d. hint: %s\n", i+1, b.Hint)
				}
			}
			return nil
		}

		res, err := curriculum.GradeBlanks(*ex, answers)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Score: %d/100\n", res.Score)
		for i, fb := range res.Feedback {
			mark := "✓"
			if !res.Correct[i] {
				mark = "✗"
			}
			fmt.Fprintf(out, "  %s %d. %s\n", mark, i+1, fb)
		}

		if record {
			if _, err := rt.progress.RecordExerciseOutcome(cmd.Context(), args[0], args[1], res.Score, strings.Join(answers, " | "), res.Feedback); err != nil {
				return fmt.Errorf("record outcome: %w", err)
			}
			fmt.Fprintln(out, "Recorded.")
		}
		return nil
	},
}

func init() {
	blankCmd.Flags().Bool("record", false, "Record the result as an exercise attempt")
}
