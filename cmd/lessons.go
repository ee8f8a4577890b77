package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluent/internal/curriculum"
	"github.com/abhisek/fluent/internal/progress"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List the curriculum with your progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		levelFlag, _ := cmd.Flags().GetString("level")
		asJSON, _ := cmd.Flags().GetBool("json")

		rt, err := newRuntime(cmd, setupOpts{})
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		levels := rt.curriculum.Levels
		if levelFlag != "" {
			lessons := rt.curriculum.LessonsFor(progress.Difficulty(levelFlag))
			if lessons == nil {
				return fmt.Errorf("unknown level %q", levelFlag)
			}
			levels = []curriculum.Level{{ID: progress.Difficulty(levelFlag), Lessons: lessons}}
		}
		if asJSON {
			return writeJSON(out, levels)
		}

		all, err := rt.progress.AllLessonProgress(ctx)
		if err != nil {
			return err
		}
		byID := make(map[string]progress.LessonProgress, len(all))
		for _, lp := range all {
			byID[lp.LessonID] = lp
		}

		for _, lvl := range levels {
			fmt.Fprintf(out, "\n%s\n", lvl.ID)
			rule(out, 72)
			for _, l := range lvl.Lessons {
				status := ""
				if lp, ok := byID[l.ID]; ok {
					status = fmt.Sprintf("%d attempt(s)", lp.Attempts)
					if lp.Completed {
						status = "done, score " + formatScore(lp.Score)
					}
				}
				fmt.Fprintf(out, "%-16s  %-32s  %s\n", l.ID, truncate(l.Title, 32), status)
				for _, ex := range l.Exercises {
					fmt.Fprintf(out, "    %-18s  %s\n", ex.ID, ex.Kind)
				}
			}
		}
		return nil
	},
}

func init() {
	lessonsCmd.Flags().String("level", "", "Only show one level")
	lessonsCmd.Flags().Bool("json", false, "Print as JSON")
}
