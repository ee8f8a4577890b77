// Package reminder nudges the learner once a day when the daily lesson
// goal has not been met yet.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/abhisek/fluent/internal/progress"
)

// ErrNoProfile is returned by Start when there is no learner profile to
// read the reminder time from.
var ErrNoProfile = errors.New("reminder: no profile")

// Reminder describes one nudge.
type Reminder struct {
	Name          string
	LessonsToday  int
	DailyGoal     int
	CurrentStreak int
}

// Message renders the reminder as a single line of text.
func (r Reminder) Message() string {
	name := r.Name
	if name == "" {
		name = "there"
	}
	left := r.DailyGoal - r.LessonsToday
	msg := fmt.Sprintf("Hi %s! You have finished %d of %d lessons today; %d to go.", name, r.LessonsToday, r.DailyGoal, left)
	if r.CurrentStreak > 0 {
		msg += fmt.Sprintf(" Keep your %d-day streak alive!", r.CurrentStreak)
	}
	return msg
}

// Notifier delivers reminders.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// WriterNotifier prints reminders to W, one per line.
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) Notify(_ context.Context, r Reminder) error {
	_, err := fmt.Fprintf(n.W, "[%s] %s\n", time.Now().Format("15:04"), r.Message())
	return err
}

// Source is the subset of the progress store the scheduler reads.
type Source interface {
	Profile(ctx context.Context) (*progress.UserProfile, error)
	RecomputeStats(ctx context.Context) (*progress.UserStats, error)
}

// Scheduler runs the daily reminder check.
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    Source
	notifier  Notifier
	logger    *zap.Logger
}

// New creates a Scheduler that fires in loc.
func New(source Source, notifier Notifier, loc *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		source:    source,
		notifier:  notifier,
		logger:    logger,
	}
}

// Start schedules the check daily at the profile's reminder time and
// returns when the job is registered. Jobs run until Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	p, err := s.source.Profile(ctx)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if p == nil {
		return ErrNoProfile
	}
	at := p.Preferences.ReminderTime
	if _, err := time.Parse(progress.ReminderLayout, at); err != nil {
		return fmt.Errorf("reminder time %q is not HH:MM", at)
	}

	_, err = s.scheduler.Every(1).Day().At(at).Do(func() {
		if _, err := s.Check(ctx); err != nil {
			s.logger.Error("reminder check failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("reminders scheduled", zap.String("at", at), zap.Time("next", s.NextRun()))
	return nil
}

// NextRun returns when the check fires next.
func (s *Scheduler) NextRun() time.Time {
	_, next := s.scheduler.NextRun()
	return next
}

// Stop cancels all scheduled checks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Check refreshes the stats and sends a reminder when fewer lessons than
// the daily goal were completed today. It returns the reminder sent, or
// nil when the goal is already met.
func (s *Scheduler) Check(ctx context.Context) (*Reminder, error) {
	p, err := s.source.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	stats, err := s.source.RecomputeStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("recompute stats: %w", err)
	}

	goal := p.Preferences.DailyGoal
	if stats.LessonsToday >= goal {
		s.logger.Debug("daily goal met", zap.Int("lessons_today", stats.LessonsToday), zap.Int("goal", goal))
		return nil, nil
	}

	r := Reminder{
		Name:          p.Name,
		LessonsToday:  stats.LessonsToday,
		DailyGoal:     goal,
		CurrentStreak: stats.CurrentStreak,
	}
	if err := s.notifier.Notify(ctx, r); err != nil {
		return nil, fmt.Errorf("send reminder: %w", err)
	}
	return &r, nil
}
