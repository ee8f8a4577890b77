package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/fluent/internal/store"
)

// memKV is an in-memory KV with optional write failures.
type memKV struct {
	data     map[string][]byte
	failPuts error
	putMany  int
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Put(_ context.Context, key string, value []byte) error {
	if m.failPuts != nil {
		return m.failPuts
	}
	m.data[key] = value
	return nil
}

func (m *memKV) PutMany(_ context.Context, entries map[string][]byte) error {
	if m.failPuts != nil {
		return m.failPuts
	}
	m.putMany++
	for k, v := range entries {
		m.data[k] = v
	}
	return nil
}

func (m *memKV) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// testClock is a settable clock.
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func newTestStore(t *testing.T, kv KV) (*Store, *testClock) {
	t.Helper()
	clock := &testClock{t: testNow}
	s := New(kv,
		WithClock(clock.Now),
		WithLocation(time.UTC),
		WithIDSource(func(now time.Time) string { return fmt.Sprintf("user_%d_test", now.UnixMilli()) }),
	)
	return s, clock
}

func TestCreateProfileDefaults(t *testing.T) {
	s, _ := newTestStore(t, newMemKV())
	ctx := context.Background()

	p, err := s.CreateProfile(ctx, "Ana", "")
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("user_%d_test", testNow.UnixMilli()), p.ID)
	assert.Equal(t, "Ana", p.Name)
	assert.Empty(t, p.Email)
	assert.Equal(t, 3, p.Preferences.DailyGoal)
	assert.Equal(t, DifficultyBeginner, p.Preferences.Difficulty)
	assert.Equal(t, []string{"pronunciation", "conversation"}, p.Preferences.FocusAreas)

	got, err := s.Profile(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)
}

func TestDefaultProfileIDFormat(t *testing.T) {
	id := newProfileID(testNow)
	prefix := fmt.Sprintf("user_%d_", testNow.UnixMilli())
	require.True(t, strings.HasPrefix(id, prefix), id)
	assert.Len(t, strings.TrimPrefix(id, prefix), 8)
	assert.NotEqual(t, id, newProfileID(testNow))
}

func TestCreateProfileOverwrites(t *testing.T) {
	s, clock := newTestStore(t, newMemKV())
	ctx := context.Background()

	_, err := s.CreateProfile(ctx, "Ana", "ana@example.com")
	require.NoError(t, err)
	clock.t = clock.t.Add(time.Minute)
	second, err := s.CreateProfile(ctx, "Bo", "")
	require.NoError(t, err)

	got, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, "Bo", got.Name)
}

func TestProfileAbsent(t *testing.T) {
	s, _ := newTestStore(t, newMemKV())
	p, err := s.Profile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileCorruptIsAbsentAndLogged(t *testing.T) {
	kv := newMemKV()
	kv.data[KeyProfile] = []byte(`{"id": 42,`)

	core, logs := observer.New(zap.WarnLevel)
	s := New(kv, WithLogger(zap.New(core)))

	p, err := s.Profile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, p)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, KeyProfile, logs.All()[0].ContextMap()["key"])
}

func TestSaveProfileRoundTrip(t *testing.T) {
	s, clock := newTestStore(t, newMemKV())
	ctx := context.Background()

	p, err := s.CreateProfile(ctx, "Ana", "ana@example.com")
	require.NoError(t, err)

	p.Name = "Ana Maria"
	p.Preferences.NativeLanguage = "pt"
	clock.t = clock.t.Add(2 * time.Hour)
	require.NoError(t, s.SaveProfile(ctx, p))

	got, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.True(t, got.LastActiveAt.Equal(clock.t), "last active refreshed")
	assert.True(t, p.LastActiveAt.Equal(testNow), "input not mutated")

	want := *p
	want.LastActiveAt = got.LastActiveAt
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Email, got.Email)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, want.Preferences, got.Preferences)
}

func TestSaveProfileNil(t *testing.T) {
	kv := newMemKV()
	s, _ := newTestStore(t, kv)

	err := s.SaveProfile(context.Background(), nil)
	require.ErrorIs(t, err, ErrNilProfile)
	assert.Empty(t, kv.data, "nothing written")
}

func TestUpdatePreferences(t *testing.T) {
	s, _ := newTestStore(t, newMemKV())
	ctx := context.Background()

	// No profile: no-op.
	goal := 5
	require.NoError(t, s.UpdatePreferences(ctx, PreferencesPatch{DailyGoal: &goal}))
	p, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = s.CreateProfile(ctx, "Ana", "")
	require.NoError(t, err)

	level := DifficultyAdvanced
	require.NoError(t, s.UpdatePreferences(ctx, PreferencesPatch{DailyGoal: &goal, Difficulty: &level}))

	p, err = s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Preferences.DailyGoal)
	assert.Equal(t, DifficultyAdvanced, p.Preferences.Difficulty)
	assert.Equal(t, "19:00", p.Preferences.ReminderTime, "untouched fields kept")
	assert.Equal(t, []string{"pronunciation", "conversation"}, p.Preferences.FocusAreas)
}

func TestRecordExerciseOutcomeScenario(t *testing.T) {
	s, _ := newTestStore(t, newMemKV())
	ctx := context.Background()

	user, err := s.CreateProfile(ctx, "Ana", "")
	require.NoError(t, err)

	_, err = s.RecordExerciseOutcome(ctx, "lesson1", "ex1", 80, "hi", []string{})
	require.NoError(t, err)

	lp, err := s.LessonProgress(ctx, "lesson1")
	require.NoError(t, err)
	require.NotNil(t, lp)
	require.Len(t, lp.Exercises, 1)
	assert.Equal(t, 80, lp.Exercises[0].BestScore)
	assert.True(t, lp.Exercises[0].Completed)
	assert.Equal(t, "hi", lp.Exercises[0].Transcript)
	assert.Equal(t, user.ID, lp.UserID)
	assert.Equal(t, 1, lp.Attempts)
	assert.False(t, lp.Completed)
	assert.Zero(t, lp.TimeSpent)
}

func TestExerciseCompletedThreshold(t *testing.T) {
	tests := []struct {
		score int
		want  bool
	}{
		{59, false},
		{60, true},
		{0, false},
		{100, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.score), func(t *testing.T) {
			s, _ := newTestStore(t, newMemKV())
			lp, err := s.RecordExerciseOutcome(context.Background(), "l", "e", tt.score, "", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lp.Exercises[0].Completed)
		})
	}
}

func TestBestScoreIsMaxOfSubmitted(t *testing.T) {
	sequences := [][]int{
		{40},
		{40, 90, 70},
		{100, 10, 20},
		{55, 59, 60, 61},
		{-5, 150},
	}
	for _, seq := range sequences {
		t.Run(fmt.Sprint(seq), func(t *testing.T) {
			s, _ := newTestStore(t, newMemKV())
			ctx := context.Background()

			want := 0
			var lp *LessonProgress
			var err error
			for i, score := range seq {
				lp, err = s.RecordExerciseOutcome(ctx, "l", "e", score, "", nil)
				require.NoError(t, err)
				want = max(want, clampScore(score))
				assert.Equal(t, want, lp.Exercises[0].BestScore)
				assert.Equal(t, i+1, lp.Exercises[0].Attempts)
				assert.Equal(t, clampScore(score), lp.Exercises[0].Score)
			}
			assert.Equal(t, len(seq), lp.Attempts)
			assert.Len(t, lp.Exercises, 1)
		})
	}
}

func TestRecordSeparateExercises(t *testing.T) {
	s, _ := newTestStore(t, newMemKV())
	ctx := context.Background()

	_, err := s.RecordExerciseOutcome(ctx, "l", "e1", 70, "", []string{"good"})
	require.NoError(t, err)
	lp, err := s.RecordExerciseOutcome(ctx, "l", "e2", 30, "", nil)
	require.NoError(t, err)

	require.Len(t, lp.Exercises, 2)
	assert.Equal(t, "e1", lp.Exercises[0].ExerciseID)
	assert.Equal(t, []string{"good"}, lp.Exercises[0].Feedback)
	assert.Equal(t, "e2", lp.Exercises[1].ExerciseID)
	assert.Equal(t, 2, lp.Attempts)
}

func TestCompleteLesson(t *testing.T) {
	s, clock := newTestStore(t, newMemKV())
	ctx := context.Background()

	_, err := s.RecordExerciseOutcome(ctx, "l1", "e1", 70, "", nil)
	require.NoError(t, err)

	lp, err := s.CompleteLesson(ctx, "l1", 85, 12)
	require.NoError(t, err)
	assert.True(t, lp.Completed)
	require.NotNil(t, lp.Score)
	assert.Equal(t, 85, *lp.Score)
	assert.Equal(t, 12, lp.TimeSpent)
	assert.Equal(t, 2, lp.Attempts)
	require.NotNil(t, lp.CompletedAt)
	assert.True(t, lp.CompletedAt.Equal(clock.t))

	lp, err = s.CompleteLesson(ctx, "l1", 95, 8)
	require.NoError(t, err)
	assert.Equal(t, 20, lp.TimeSpent, "time accumulates")
	assert.Equal(t, 95, *lp.Score)
	assert.Len(t, lp.Exercises, 1)
}

func TestStatsFollowEveryWrite(t *testing.T) {
	s, clock := newTestStore(t, newMemKV())
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, UserStats{}, *stats)

	_, err = s.CompleteLesson(ctx, "l1", 90, 10)
	require.NoError(t, err)
	_, err = s.RecordExerciseOutcome(ctx, "l2", "e1", 50, "", nil)
	require.NoError(t, err)

	clock.t = clock.t.AddDate(0, 0, 1)
	_, err = s.CompleteLesson(ctx, "l3", 71, 5)
	require.NoError(t, err)

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	all, err := s.AllLessonProgress(ctx)
	require.NoError(t, err)

	completed := 0
	for _, lp := range all {
		if lp.Completed {
			completed++
		}
	}
	assert.Equal(t, completed, stats.CompletedLessons)
	assert.Equal(t, 3, stats.TotalLessons)
	assert.Equal(t, 2, stats.CompletedLessons)
	assert.Equal(t, 81, stats.AverageScore)
	assert.Equal(t, 15, stats.TotalTimeSpent)
	assert.Equal(t, 1, stats.LessonsToday)
	assert.Equal(t, 2, stats.CurrentStreak)
}

func TestStatsNotRecomputedOnRead(t *testing.T) {
	s, clock := newTestStore(t, newMemKV())
	ctx := context.Background()

	_, err := s.CompleteLesson(ctx, "l1", 90, 10)
	require.NoError(t, err)

	clock.t = clock.t.AddDate(0, 0, 3)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.LessonsToday, "snapshot from last write")

	fresh, err := s.RecomputeStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.LessonsToday)
	assert.Equal(t, 0, fresh.CurrentStreak)
	assert.Equal(t, 1, fresh.LongestStreak)

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, *fresh, *stats)
}

func TestProgressAndStatsWrittenTogether(t *testing.T) {
	kv := newMemKV()
	s, _ := newTestStore(t, kv)

	_, err := s.RecordExerciseOutcome(context.Background(), "l", "e", 70, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, kv.putMany)
	assert.Contains(t, kv.data, KeyLessonProgress)
	assert.Contains(t, kv.data, KeyStats)
}

func TestAllLessonProgressInsertionOrderAndIdempotent(t *testing.T) {
	s, _ := newTestStore(t, newMemKV())
	ctx := context.Background()

	for _, id := range []string{"zeta", "alpha", "mid"} {
		_, err := s.RecordExerciseOutcome(ctx, id, "e", 60, "", nil)
		require.NoError(t, err)
	}
	_, err := s.CompleteLesson(ctx, "alpha", 70, 1)
	require.NoError(t, err)

	first, err := s.AllLessonProgress(ctx)
	require.NoError(t, err)
	second, err := s.AllLessonProgress(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, "zeta", first[0].LessonID)
	assert.Equal(t, "alpha", first[1].LessonID)
	assert.Equal(t, "mid", first[2].LessonID)
}

func TestSaveLessonProgressUpserts(t *testing.T) {
	s, _ := newTestStore(t, newMemKV())
	ctx := context.Background()

	require.NoError(t, s.SaveLessonProgress(ctx, LessonProgress{LessonID: "a", TimeSpent: 1}))
	require.NoError(t, s.SaveLessonProgress(ctx, LessonProgress{LessonID: "b", TimeSpent: 2}))
	require.NoError(t, s.SaveLessonProgress(ctx, LessonProgress{LessonID: "a", TimeSpent: 5}))

	all, err := s.AllLessonProgress(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 5, all[0].TimeSpent)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalTimeSpent)
}

func TestCorruptProgressTreatedAsEmpty(t *testing.T) {
	kv := newMemKV()
	kv.data[KeyLessonProgress] = []byte(`not json`)
	kv.data[KeyStats] = []byte(`{"totalLessons":"many"}`)
	s, _ := newTestStore(t, kv)
	ctx := context.Background()

	all, err := s.AllLessonProgress(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, UserStats{}, *stats)
}

func TestWriteFailureSurfaces(t *testing.T) {
	kv := newMemKV()
	s, _ := newTestStore(t, kv)
	kv.failPuts = errors.New("quota exceeded")
	ctx := context.Background()

	_, err := s.CreateProfile(ctx, "Ana", "")
	require.ErrorIs(t, err, kv.failPuts)

	_, err = s.RecordExerciseOutcome(ctx, "l", "e", 70, "", nil)
	require.ErrorIs(t, err, kv.failPuts)

	_, err = s.CompleteLesson(ctx, "l", 70, 1)
	require.ErrorIs(t, err, kv.failPuts)
}

func TestResetAll(t *testing.T) {
	kv := newMemKV()
	s, _ := newTestStore(t, kv)
	ctx := context.Background()

	_, err := s.CreateProfile(ctx, "Ana", "")
	require.NoError(t, err)
	_, err = s.CompleteLesson(ctx, "l", 90, 3)
	require.NoError(t, err)
	kv.data[KeyAchievements] = []byte(`[]`)

	require.NoError(t, s.ResetAll(ctx))
	assert.Empty(t, kv.data)

	p, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, UserStats{}, *stats)
	assert.Nil(t, stats.LastLessonDate)
}

func TestStoreOnSQLite(t *testing.T) {
	db, err := store.Open("file:progress_sqlite?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, _ := newTestStore(t, db.KVRepo())
	ctx := context.Background()

	_, err = s.CreateProfile(ctx, "Ana", "")
	require.NoError(t, err)
	_, err = s.RecordExerciseOutcome(ctx, "lesson1", "ex1", 80, "hi", nil)
	require.NoError(t, err)
	_, err = s.CompleteLesson(ctx, "lesson1", 80, 4)
	require.NoError(t, err)

	lp, err := s.LessonProgress(ctx, "lesson1")
	require.NoError(t, err)
	require.NotNil(t, lp)
	assert.Equal(t, 80, lp.Exercises[0].BestScore)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CompletedLessons)
	assert.Equal(t, 1, stats.CurrentStreak)

	require.NoError(t, s.ResetAll(ctx))
	all, err := s.AllLessonProgress(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
