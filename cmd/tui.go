package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/fluent/internal/app"
	"github.com/abhisek/fluent/internal/screens"
)

type tuiOptions struct {
	start      app.Start
	lessonID   string
	exerciseID string
}

// runTUI opens the store, builds dependencies, and launches the TUI.
func runTUI(cmd *cobra.Command, opts tuiOptions) error {
	rt, err := newRuntime(cmd, setupOpts{logToFile: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	if _, err := rt.requireProfile(ctx); err != nil {
		return err
	}

	return app.Run(app.Options{
		Deps: screens.Deps{
			Progress:   rt.progress,
			Coach:      rt.coach(ctx),
			Curriculum: rt.curriculum,
		},
		Start:      opts.start,
		LessonID:   opts.lessonID,
		ExerciseID: opts.exerciseID,
	})
}

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Open the progress dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, tuiOptions{start: app.StartDashboard})
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Practise a conversation with the coach",
	Long: "Practise a conversation with the coach. Without flags the next open\n" +
		"conversation exercise at your level is used.",
	RunE: func(cmd *cobra.Command, args []string) error {
		lessonID, _ := cmd.Flags().GetString("lesson")
		exerciseID, _ := cmd.Flags().GetString("exercise")
		return runTUI(cmd, tuiOptions{start: app.StartChat, lessonID: lessonID, exerciseID: exerciseID})
	},
}

func init() {
	chatCmd.Flags().String("lesson", "", "Lesson ID")
	chatCmd.Flags().String("exercise", "", "Conversation exercise ID within the lesson")
}
