package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluent/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export progress and stats to an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, setupOpts{})
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		p, err := rt.progress.Profile(ctx)
		if err != nil {
			return err
		}
		lessons, err := rt.progress.AllLessonProgress(ctx)
		if err != nil {
			return err
		}
		stats, err := rt.progress.RecomputeStats(ctx)
		if err != nil {
			return err
		}

		titles := make(map[string]string)
		for _, l := range rt.curriculum.Lessons() {
			titles[l.ID] = l.Title
		}

		err = export.SaveAs(args[0], export.Data{
			Profile: p,
			Lessons: lessons,
			Stats:   *stats,
			Titles:  titles,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d lesson(s) to %s\n", len(lessons), args[0])
		return nil
	},
}
