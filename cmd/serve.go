package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/fluent/internal/api"
	"github.com/abhisek/fluent/internal/reminder"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the progress and coaching HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, setupOpts{})
		if err != nil {
			return err
		}
		defer rt.Close()

		addr := rt.cfg.HTTP.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if withReminders, _ := cmd.Flags().GetBool("reminders"); withReminders {
			sched := reminder.New(rt.progress, reminder.WriterNotifier{W: os.Stderr}, rt.loc, rt.logger.Named("reminder"))
			switch err := sched.Start(ctx); {
			case errors.Is(err, reminder.ErrNoProfile):
				rt.logger.Warn("reminders disabled until a profile exists")
			case err != nil:
				return err
			default:
				defer sched.Stop()
			}
		}

		srv := api.New(rt.progress, rt.coach(ctx), rt.curriculum,
			api.WithLogger(rt.logger.Named("http")),
			api.WithCORSOrigins(rt.cfg.HTTP.CORSOrigins...),
		)
		rt.logger.Info("starting fluent api", zap.String("db", rt.dbPath))
		if err := srv.ListenAndServe(ctx, addr); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	serveCmd.Flags().Bool("reminders", false, "Also print the daily practice reminder")
}
