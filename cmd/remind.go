package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluent/internal/reminder"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Remind about the daily goal",
	Long: "Check today's progress against the daily goal and print a reminder\n" +
		"when it is not met. With --watch the check runs every day at the\n" +
		"profile's reminder time until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")

		rt, err := newRuntime(cmd, setupOpts{})
		if err != nil {
			return err
		}
		defer rt.Close()

		out := cmd.OutOrStdout()
		sched := reminder.New(rt.progress, reminder.WriterNotifier{W: out}, rt.loc, rt.logger.Named("reminder"))

		if !watch {
			r, err := sched.Check(cmd.Context())
			if err != nil {
				return err
			}
			if r == nil {
				fmt.Fprintln(out, "Daily goal reached. Nothing to remind.")
			}
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
		fmt.Fprintf(out, "Next reminder check at %s. Press Ctrl+C to stop.\n", sched.NextRun().Format("Mon 15:04"))
		<-ctx.Done()
		return nil
	},
}

func init() {
	remindCmd.Flags().Bool("watch", false, "Keep running and check daily")
}
