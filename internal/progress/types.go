package progress

import (
	"fmt"
	"time"
)

// Difficulty is the learner's preferred exercise level.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// PassingScore is the minimum exercise score that counts as completed.
const PassingScore = 60

// UserProfile is the single learner profile of this installation.
type UserProfile struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	LastActiveAt time.Time   `json:"lastActiveAt"`
	Preferences  Preferences `json:"preferences"`
}

// Preferences holds the learner's mutable settings.
type Preferences struct {
	DailyGoal      int        `json:"dailyGoal"`
	ReminderTime   string     `json:"reminderTime"` // "HH:MM", local time
	Difficulty     Difficulty `json:"difficulty"`
	FocusAreas     []string   `json:"focusAreas"`
	NativeLanguage string     `json:"nativeLanguage,omitempty"`
	Goals          []string   `json:"goals,omitempty"`
}

// ReminderLayout is the time.Parse layout of Preferences.ReminderTime.
const ReminderLayout = "15:04"

// DefaultPreferences returns the preferences given to a new profile.
func DefaultPreferences() Preferences {
	return Preferences{
		DailyGoal:    3,
		ReminderTime: "19:00",
		Difficulty:   DifficultyBeginner,
		FocusAreas:   []string{"pronunciation", "conversation"},
	}
}

// PreferencesPatch is a partial preference update. Nil fields are left unchanged.
type PreferencesPatch struct {
	DailyGoal      *int        `json:"dailyGoal,omitempty"`
	ReminderTime   *string     `json:"reminderTime,omitempty"`
	Difficulty     *Difficulty `json:"difficulty,omitempty"`
	FocusAreas     *[]string   `json:"focusAreas,omitempty"`
	NativeLanguage *string     `json:"nativeLanguage,omitempty"`
	Goals          *[]string   `json:"goals,omitempty"`
}

// Validate reports the first field of the patch that holds an unusable value.
func (patch PreferencesPatch) Validate() error {
	if patch.DailyGoal != nil && *patch.DailyGoal < 1 {
		return fmt.Errorf("daily goal must be at least 1, got %d", *patch.DailyGoal)
	}
	if patch.ReminderTime != nil {
		if _, err := time.Parse(ReminderLayout, *patch.ReminderTime); err != nil {
			return fmt.Errorf("reminder time %q is not HH:MM", *patch.ReminderTime)
		}
	}
	if patch.Difficulty != nil && !patch.Difficulty.Valid() {
		return fmt.Errorf("unknown difficulty %q", *patch.Difficulty)
	}
	return nil
}

// Apply merges the non-nil fields of the patch into p.
func (patch PreferencesPatch) Apply(p Preferences) Preferences {
	if patch.DailyGoal != nil {
		p.DailyGoal = *patch.DailyGoal
	}
	if patch.ReminderTime != nil {
		p.ReminderTime = *patch.ReminderTime
	}
	if patch.Difficulty != nil {
		p.Difficulty = *patch.Difficulty
	}
	if patch.FocusAreas != nil {
		p.FocusAreas = *patch.FocusAreas
	}
	if patch.NativeLanguage != nil {
		p.NativeLanguage = *patch.NativeLanguage
	}
	if patch.Goals != nil {
		p.Goals = *patch.Goals
	}
	return p
}

// LessonProgress tracks a learner's work on one lesson.
type LessonProgress struct {
	UserID      string             `json:"userId"`
	LessonID    string             `json:"lessonId"`
	Completed   bool               `json:"completed"`
	Score       *int               `json:"score,omitempty"`
	Attempts    int                `json:"attempts"`
	TimeSpent   int                `json:"timeSpent"` // minutes
	CompletedAt *time.Time         `json:"completedAt,omitempty"`
	Exercises   []ExerciseProgress `json:"exercises"`
}

// Exercise returns the progress for exerciseID, or nil.
func (lp *LessonProgress) Exercise(exerciseID string) *ExerciseProgress {
	for i := range lp.Exercises {
		if lp.Exercises[i].ExerciseID == exerciseID {
			return &lp.Exercises[i]
		}
	}
	return nil
}

// ExerciseProgress tracks the latest and best result of one exercise.
type ExerciseProgress struct {
	ExerciseID string   `json:"exerciseId"`
	Completed  bool     `json:"completed"`
	Score      int      `json:"score"`
	Attempts   int      `json:"attempts"`
	BestScore  int      `json:"bestScore"`
	Transcript string   `json:"transcript,omitempty"`
	Feedback   []string `json:"feedback,omitempty"`
}

// UserStats is derived from the lesson progress collection.
type UserStats struct {
	TotalLessons     int        `json:"totalLessons"`
	CompletedLessons int        `json:"completedLessons"`
	CurrentStreak    int        `json:"currentStreak"`
	LongestStreak    int        `json:"longestStreak"`
	TotalScore       int        `json:"totalScore"`
	AverageScore     int        `json:"averageScore"`
	TotalTimeSpent   int        `json:"totalTimeSpent"` // minutes
	LessonsToday     int        `json:"lessonsToday"`
	LastLessonDate   *time.Time `json:"lastLessonDate,omitempty"`
}
