package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluent/internal/coach"
	"github.com/abhisek/fluent/internal/progress"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text...]",
	Short: "Check a piece of English for grammar mistakes",
	Long:  "Check a piece of English for grammar mistakes. Without arguments the text is read from stdin.",
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if len(args) == 0 {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			text = string(raw)
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		levelFlag, _ := cmd.Flags().GetString("level")

		rt, err := newRuntime(cmd, setupOpts{})
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		level := progress.Difficulty(levelFlag)
		if level == "" {
			level = progress.DifficultyBeginner
			if p, err := rt.progress.Profile(ctx); err == nil && p != nil {
				level = p.Preferences.Difficulty
			}
		}
		if !level.Valid() {
			return fmt.Errorf("unknown level %q", levelFlag)
		}

		a, err := rt.coach(ctx).Analyze(ctx, text, level)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, a)
		}
		printAnalysis(out, a)
		return nil
	},
}

func printAnalysis(w io.Writer, a *coach.Analysis) {
	source := "model"
	if a.Fallback {
		source = "local rules"
	}
	fmt.Fprintf(w, "Score: %d/100 (%s)\n", a.Score, source)
	if len(a.Errors) == 0 {
		fmt.Fprintln(w, "No mistakes found.")
	} else {
		fmt.Fprintln(w)
		for i, e := range a.Errors {
			fmt.Fprintf(w, "%d. %q → %q [%s]\n", i+1, e.Original, e.Correction, e.Kind)
			if e.Explanation != "" {
				fmt.Fprintf(w, "   %s\n", e.Explanation)
			}
		}
		fmt.Fprintf(w, "\nCorrected: %s\n", a.CorrectedText)
	}
	if a.NextQuestion != "" {
		fmt.Fprintf(w, "\nNext question: %s\n", a.NextQuestion)
	}
}

func init() {
	analyzeCmd.Flags().String("level", "", "Learner level (defaults to the profile's)")
	analyzeCmd.Flags().Bool("json", false, "Print as JSON")
}
