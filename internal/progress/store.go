// Package progress persists the learner profile and lesson progress, and
// derives aggregate statistics such as average score and daily streaks.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storage keys in the key-value namespace.
const (
	KeyProfile        = "profile"
	KeyLessonProgress = "lesson_progress"
	KeyStats          = "stats"
	KeyAchievements   = "achievements"
)

// ErrNilProfile is returned by SaveProfile when given no profile.
var ErrNilProfile = errors.New("progress: nil profile")

// KV is the key-value storage the store persists into.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	PutMany(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Store is the learner's progress store. It is safe for concurrent use;
// every operation is a read-modify-write under one lock.
type Store struct {
	kv     KV
	logger *zap.Logger
	now    func() time.Time
	loc    *time.Location
	newID  func(now time.Time) string

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the sink for recoverable storage problems.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the time zone used for calendar-day bucketing.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithIDSource overrides profile id generation.
func WithIDSource(fn func(now time.Time) string) Option {
	return func(s *Store) { s.newID = fn }
}

// New creates a Store backed by kv.
func New(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: zap.NewNop(),
		now:    time.Now,
		loc:    time.Local,
		newID:  newProfileID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newProfileID returns "user_<unix millis>_<8 random hex>".
func newProfileID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("user_%d_%s", now.UnixMilli(), suffix)
}

// CreateProfile creates and persists a fresh profile with default
// preferences, replacing any existing one.
func (s *Store) CreateProfile(ctx context.Context, name, email string) (*UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p := &UserProfile{
		ID:           s.newID(now),
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		CreatedAt:    now,
		LastActiveAt: now,
		Preferences:  DefaultPreferences(),
	}
	if err := s.putJSON(ctx, KeyProfile, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Profile returns the stored profile, or nil when none exists or the
// stored value cannot be decoded.
func (s *Store) Profile(ctx context.Context) (*UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadProfile(ctx)
}

// SaveProfile persists p with LastActiveAt set to now. p itself is not modified.
func (s *Store) SaveProfile(ctx context.Context, p *UserProfile) error {
	if p == nil {
		return ErrNilProfile
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveProfile(ctx, *p)
}

// UpdatePreferences merges patch into the stored profile's preferences.
// It does nothing when no profile exists.
func (s *Store) UpdatePreferences(ctx context.Context, patch PreferencesPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.loadProfile(ctx)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}
	p.Preferences = patch.Apply(p.Preferences)
	return s.saveProfile(ctx, *p)
}

// LessonProgress returns the progress for lessonID, or nil.
func (s *Store) LessonProgress(ctx context.Context, lessonID string) (*LessonProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadLessons(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(all, lessonID); i >= 0 {
		return &all[i], nil
	}
	return nil, nil
}

// AllLessonProgress returns every lesson's progress in the order each
// lesson was first recorded.
func (s *Store) AllLessonProgress(ctx context.Context) ([]LessonProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLessons(ctx)
}

// SaveLessonProgress upserts lp by lesson id and refreshes the stats.
func (s *Store) SaveLessonProgress(ctx context.Context, lp LessonProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadLessons(ctx)
	if err != nil {
		return err
	}
	_, err = s.saveLesson(ctx, all, lp)
	return err
}

// RecordExerciseOutcome upserts the result of one exercise attempt and
// counts it as an attempt on the owning lesson.
func (s *Store) RecordExerciseOutcome(ctx context.Context, lessonID, exerciseID string, score int, transcript string, feedback []string) (*LessonProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, lp, err := s.lessonOrNew(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	score = clampScore(score)
	ex := lp.Exercise(exerciseID)
	if ex == nil {
		lp.Exercises = append(lp.Exercises, ExerciseProgress{ExerciseID: exerciseID})
		ex = &lp.Exercises[len(lp.Exercises)-1]
	}
	ex.Completed = score >= PassingScore
	ex.Score = score
	ex.Attempts++
	ex.BestScore = max(ex.BestScore, score)
	ex.Transcript = transcript
	ex.Feedback = feedback

	lp.Attempts++

	return s.saveLesson(ctx, all, lp)
}

// CompleteLesson marks a lesson completed with its final score and adds
// timeSpent minutes to its cumulative time.
func (s *Store) CompleteLesson(ctx context.Context, lessonID string, totalScore, timeSpent int) (*LessonProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, lp, err := s.lessonOrNew(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	score := clampScore(totalScore)
	now := s.now()
	lp.Completed = true
	lp.Score = &score
	lp.TimeSpent += max(timeSpent, 0)
	lp.CompletedAt = &now
	lp.Attempts++

	return s.saveLesson(ctx, all, lp)
}

// Stats returns the stats persisted by the last progress write. It does
// not recompute; use RecomputeStats for a fresh view.
func (s *Store) Stats(ctx context.Context) (*UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats UserStats
	ok, err := s.getJSON(ctx, KeyStats, &stats)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Partially decoded garbage must not leak out.
		return &UserStats{}, nil
	}
	return &stats, nil
}

// RecomputeStats derives stats from the stored progress list, persists
// them, and returns them.
func (s *Store) RecomputeStats(ctx context.Context) (*UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadLessons(ctx)
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(all, s.now(), s.loc)
	if err := s.putJSON(ctx, KeyStats, stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ResetAll deletes the profile, all progress, stats and achievements.
func (s *Store) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, KeyProfile, KeyLessonProgress, KeyStats, KeyAchievements); err != nil {
		return fmt.Errorf("reset progress data: %w", err)
	}
	s.logger.Info("progress data reset")
	return nil
}

func (s *Store) loadProfile(ctx context.Context) (*UserProfile, error) {
	var p UserProfile
	ok, err := s.getJSON(ctx, KeyProfile, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (s *Store) saveProfile(ctx context.Context, p UserProfile) error {
	p.LastActiveAt = s.now()
	return s.putJSON(ctx, KeyProfile, p)
}

func (s *Store) loadLessons(ctx context.Context) ([]LessonProgress, error) {
	var all []LessonProgress
	ok, err := s.getJSON(ctx, KeyLessonProgress, &all)
	if err != nil || !ok {
		return nil, err
	}
	return all, nil
}

// lessonOrNew loads the list and returns a copy of lessonID's progress,
// or a fresh record owned by the current profile.
func (s *Store) lessonOrNew(ctx context.Context, lessonID string) ([]LessonProgress, LessonProgress, error) {
	all, err := s.loadLessons(ctx)
	if err != nil {
		return nil, LessonProgress{}, err
	}
	if i := indexOf(all, lessonID); i >= 0 {
		return all, all[i], nil
	}

	lp := LessonProgress{LessonID: lessonID, Exercises: []ExerciseProgress{}}
	p, err := s.loadProfile(ctx)
	if err != nil {
		return nil, LessonProgress{}, err
	}
	if p != nil {
		lp.UserID = p.ID
	}
	return all, lp, nil
}

// saveLesson upserts lp into all and writes the list together with the
// recomputed stats in a single storage transaction.
func (s *Store) saveLesson(ctx context.Context, all []LessonProgress, lp LessonProgress) (*LessonProgress, error) {
	if i := indexOf(all, lp.LessonID); i >= 0 {
		all[i] = lp
	} else {
		all = append(all, lp)
	}

	stats := ComputeStats(all, s.now(), s.loc)

	lessonsJSON, err := json.Marshal(all)
	if err != nil {
		return nil, fmt.Errorf("encode lesson progress: %w", err)
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("encode stats: %w", err)
	}

	err = s.kv.PutMany(ctx, map[string][]byte{
		KeyLessonProgress: lessonsJSON,
		KeyStats:          statsJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("save lesson progress: %w", err)
	}
	return &lp, nil
}

// getJSON decodes key into v. Corrupt values are logged and reported as absent.
func (s *Store) getJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn("discarding unreadable stored value",
			zap.String("key", key),
			zap.Error(err),
		)
		return false, nil
	}
	return true, nil
}

func (s *Store) putJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func indexOf(all []LessonProgress, lessonID string) int {
	for i := range all {
		if all[i].LessonID == lessonID {
			return i
		}
	}
	return -1
}

func clampScore(score int) int {
	return min(max(score, 0), 100)
}
