package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/fluent/internal/progress"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores defaults; commands are package globals shared by tests.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestProgressCommands(t *testing.T) {
	t.Setenv("FLUENT_LLM_PROVIDER", "")
	db := filepath.Join(t.TempDir(), "fluent.db")

	out, err := execute(t, "--db", db, "profile", "create", "Ana")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana")

	out, err = execute(t, "--db", db, "record", "greetings", "introductions", "72")
	require.NoError(t, err)
	assert.Contains(t, out, "score 72 (best 72, attempt 1), passed.")

	out, err = execute(t, "--db", db, "complete", "greetings", "88", "--minutes", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "Completed greetings with score 88 (12 min total).")
	assert.Contains(t, out, "Today: 1 lesson(s). Streak: 1 day(s).")

	out, err = execute(t, "--db", db, "stats", "--json")
	require.NoError(t, err)
	var stats progress.UserStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 1, stats.TotalLessons)
	assert.Equal(t, 1, stats.CompletedLessons)
	assert.Equal(t, 88, stats.AverageScore)
	assert.Equal(t, 12, stats.TotalTimeSpent)
	assert.Equal(t, 1, stats.CurrentStreak)

	out, err = execute(t, "--db", db, "llm", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No model calls recorded.")
}

func TestRecordRejectsNonNumericScore(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fluent.db")
	_, err := execute(t, "--db", db, "record", "greetings", "introductions", "great")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid score "great"`)
}

func TestLLMListRejectsUnknownPurpose(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fluent.db")
	_, err := execute(t, "--db", db, "llm", "list", "--purpose", "hint")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown purpose "hint"`)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fluent (devel)")
}
