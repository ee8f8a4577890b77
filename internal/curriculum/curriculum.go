// Package curriculum holds the built-in lessons and grades fill-in-the-blank
// exercises.
package curriculum

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/fluent/internal/progress"
)

//go:embed curriculum.yaml
var builtin []byte

// BlankMarker marks a gap in a fill-in-the-blank prompt.
const BlankMarker = "___"

// ErrNotFound is returned for unknown lesson or exercise IDs.
var ErrNotFound = errors.New("curriculum: not found")

// Kind is the type of exercise.
type Kind string

const (
	KindConversation Kind = "conversation"
	KindFillBlank    Kind = "fill_blank"
)

// Curriculum is the ordered set of levels and their lessons.
type Curriculum struct {
	Levels []Level `yaml:"levels" json:"levels"`
}

// Level groups lessons of one difficulty.
type Level struct {
	ID      progress.Difficulty `yaml:"id" json:"id"`
	Title   string              `yaml:"title" json:"title"`
	Lessons []Lesson            `yaml:"lessons" json:"lessons"`
}

// Lesson is a themed group of exercises.
type Lesson struct {
	ID          string              `yaml:"id" json:"id"`
	Title       string              `yaml:"title" json:"title"`
	Description string              `yaml:"description" json:"description"`
	Topic       string              `yaml:"topic" json:"topic"`
	Level       progress.Difficulty `yaml:"-" json:"level"`
	Exercises   []Exercise          `yaml:"exercises" json:"exercises"`
}

// Exercise is a single task inside a lesson.
type Exercise struct {
	ID     string  `yaml:"id" json:"id"`
	Kind   Kind    `yaml:"kind" json:"kind"`
	Prompt string  `yaml:"prompt" json:"prompt"`
	Blanks []Blank `yaml:"blanks,omitempty" json:"blanks,omitempty"`
}

// Blank is one gap of a fill-in-the-blank exercise.
type Blank struct {
	Answers []string `yaml:"answers" json:"-"`
	Hint    string   `yaml:"hint,omitempty" json:"hint,omitempty"`
}

var (
	loadOnce sync.Once
	loaded   *Curriculum
	loadErr  error
)

// Load returns the built-in curriculum. It is parsed once.
func Load() (*Curriculum, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(builtin)
	})
	return loaded, loadErr
}

// Parse decodes and validates a curriculum document.
func Parse(data []byte) (*Curriculum, error) {
	var c Curriculum
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse curriculum: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Curriculum) validate() error {
	seen := make(map[string]bool)
	for li := range c.Levels {
		lvl := &c.Levels[li]
		if !lvl.ID.Valid() {
			return fmt.Errorf("level %q: unknown difficulty", lvl.ID)
		}
		for i := range lvl.Lessons {
			lesson := &lvl.Lessons[i]
			lesson.Level = lvl.ID
			if lesson.ID == "" || seen[lesson.ID] {
				return fmt.Errorf("lesson %q: missing or duplicate id", lesson.ID)
			}
			seen[lesson.ID] = true
			if err := validateExercises(lesson); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateExercises(lesson *Lesson) error {
	ids := make(map[string]bool)
	for _, ex := range lesson.Exercises {
		if ex.ID == "" || ids[ex.ID] {
			return fmt.Errorf("lesson %q: missing or duplicate exercise id %q", lesson.ID, ex.ID)
		}
		ids[ex.ID] = true
		switch ex.Kind {
		case KindConversation:
		case KindFillBlank:
			if n := strings.Count(ex.Prompt, BlankMarker); n != len(ex.Blanks) || n == 0 {
				return fmt.Errorf("exercise %s/%s: %d gaps but %d blanks", lesson.ID, ex.ID, n, len(ex.Blanks))
			}
			for i, b := range ex.Blanks {
				if len(b.Answers) == 0 {
					return fmt.Errorf("exercise %s/%s: blank %d has no answers", lesson.ID, ex.ID, i+1)
				}
			}
		default:
			return fmt.Errorf("exercise %s/%s: unknown kind %q", lesson.ID, ex.ID, ex.Kind)
		}
	}
	return nil
}

// Lessons returns every lesson in curriculum order.
func (c *Curriculum) Lessons() []Lesson {
	var out []Lesson
	for _, lvl := range c.Levels {
		out = append(out, lvl.Lessons...)
	}
	return out
}

// LessonsFor returns the lessons of one level.
func (c *Curriculum) LessonsFor(level progress.Difficulty) []Lesson {
	for _, lvl := range c.Levels {
		if lvl.ID == level {
			return lvl.Lessons
		}
	}
	return nil
}

// Lesson looks up a lesson by ID.
func (c *Curriculum) Lesson(id string) (*Lesson, error) {
	for li := range c.Levels {
		for i := range c.Levels[li].Lessons {
			if l := &c.Levels[li].Lessons[i]; l.ID == id {
				return l, nil
			}
		}
	}
	return nil, fmt.Errorf("lesson %q: %w", id, ErrNotFound)
}

// Exercise looks up an exercise within a lesson.
func (c *Curriculum) Exercise(lessonID, exerciseID string) (*Exercise, error) {
	lesson, err := c.Lesson(lessonID)
	if err != nil {
		return nil, err
	}
	for i := range lesson.Exercises {
		if ex := &lesson.Exercises[i]; ex.ID == exerciseID {
			return ex, nil
		}
	}
	return nil, fmt.Errorf("exercise %s/%s: %w", lessonID, exerciseID, ErrNotFound)
}
