package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fluent",
	Short: "English speaking practice with progress tracking",
	Long: "Fluent tracks English lessons, exercises, scores and daily streaks, and\n" +
		"coaches conversation practice with a hosted language model or local rules.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, tuiOptions{})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides FLUENT_DB and config)")
	rootCmd.PersistentFlags().String("config", "", "Directory containing config.yaml")

	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(blankCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(dashCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
