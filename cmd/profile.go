package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluent/internal/progress"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Create and inspect the learner profile",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new profile, replacing any existing one",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")

		rt, err := newRuntime(cmd, setupOpts{})
		if err != nil {
			return err
		}
		defer rt.Close()

		p, err := rt.progress.CreateProfile(cmd.Context(), strings.Join(args, " "), email)
		if err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		printProfile(cmd.OutOrStdout(), p)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the learner profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, setupOpts{})
		if err != nil {
			return err
		}
		defer rt.Close()

		p, err := rt.requireProfile(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), p)
		}
		printProfile(cmd.OutOrStdout(), p)
		return nil
	},
}

var profilePrefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Update learning preferences",
	Example: "  fluent profile prefs --goal 5 --reminder 08:30\n" +
		"  fluent profile prefs --level intermediate --focus grammar,vocabulary",
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := preferencesPatch(cmd)
		if err != nil {
			return err
		}
		if err := patch.Validate(); err != nil {
			return err
		}

		rt, err := newRuntime(cmd, setupOpts{})
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		if _, err := rt.requireProfile(ctx); err != nil {
			return err
		}
		if err := rt.progress.UpdatePreferences(ctx, patch); err != nil {
			return fmt.Errorf("update preferences: %w", err)
		}
		p, err := rt.progress.Profile(ctx)
		if err != nil {
			return err
		}
		printProfile(cmd.OutOrStdout(), p)
		return nil
	},
}

// preferencesPatch builds a patch from the flags the user actually set.
func preferencesPatch(cmd *cobra.Command) (progress.PreferencesPatch, error) {
	var patch progress.PreferencesPatch
	f := cmd.Flags()
	if f.Changed("goal") {
		v, _ := f.GetInt("goal")
		patch.DailyGoal = &v
	}
	if f.Changed("reminder") {
		v, _ := f.GetString("reminder")
		patch.ReminderTime = &v
	}
	if f.Changed("level") {
		v, _ := f.GetString("level")
		d := progress.Difficulty(strings.ToLower(v))
		patch.Difficulty = &d
	}
	if f.Changed("focus") {
		v, _ := f.GetStringSlice("focus")
		patch.FocusAreas = &v
	}
	if f.Changed("native-language") {
		v, _ := f.GetString("native-language")
		patch.NativeLanguage = &v
	}
	if f.Changed("goals") {
		v, _ := f.GetStringSlice("goals")
		patch.Goals = &v
	}
	if patch == (progress.PreferencesPatch{}) {
		return patch, fmt.Errorf("nothing to update; see --help for the available flags")
	}
	return patch, nil
}

func printProfile(w io.Writer, p *progress.UserProfile) {
	prefs := p.Preferences
	fmt.Fprintf(w, "ID:          %s\n", p.ID)
	fmt.Fprintf(w, "Name:        %s\n", p.Name)
	if p.Email != "" {
		fmt.Fprintf(w, "Email:       %s\n", p.Email)
	}
	fmt.Fprintf(w, "Created:     %s\n", p.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Last active: %s\n", p.LastActiveAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Level:       %s\n", prefs.Difficulty)
	fmt.Fprintf(w, "Daily goal:  %d lesson(s)\n", prefs.DailyGoal)
	fmt.Fprintf(w, "Reminder:    %s\n", prefs.ReminderTime)
	fmt.Fprintf(w, "Focus:       %s\n", strings.Join(prefs.FocusAreas, ", "))
	if prefs.NativeLanguage != "" {
		fmt.Fprintf(w, "Native:      %s\n", prefs.NativeLanguage)
	}
	if len(prefs.Goals) > 0 {
		fmt.Fprintf(w, "Goals:       %s\n", strings.Join(prefs.Goals, "; "))
	}
}

func init() {
	profileCreateCmd.Flags().String("email", "", "Contact email")
	profileShowCmd.Flags().Bool("json", false, "Print as JSON")

	f := profilePrefsCmd.Flags()
	f.Int("goal", 0, "Lessons per day")
	f.String("reminder", "", "Daily reminder time, HH:MM")
	f.String("level", "", "beginner, intermediate or advanced")
	f.StringSlice("focus", nil, "Focus areas, comma separated")
	f.String("native-language", "", "Native language")
	f.StringSlice("goals", nil, "Personal learning goals, comma separated")

	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profilePrefsCmd)
}
