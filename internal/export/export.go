// Package export writes the learner's progress to an Excel workbook.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/fluent/internal/progress"
)

// Sheet names in the exported workbook.
const (
	SheetLessons   = "Lessons"
	SheetExercises = "Exercises"
	SheetStats     = "Stats"
)

// Data is everything that goes into a workbook.
type Data struct {
	Profile *progress.UserProfile
	Lessons []progress.LessonProgress
	Stats   progress.UserStats
	// Titles maps lesson IDs to display titles. Unknown IDs are exported
	// with an empty title.
	Titles map[string]string
}

// Build creates the workbook.
func Build(d Data) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetLessons); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetExercises, SheetStats} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	steps := []func(*excelize.File, Data, int) error{writeLessons, writeExercises, writeStats}
	for _, step := range steps {
		if err := step(f, d, header); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the workbook and writes it to w as .xlsx.
func Write(w io.Writer, d Data) error {
	f, err := Build(d)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveAs builds the workbook and saves it to path.
func SaveAs(path string, d Data) error {
	f, err := Build(d)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeLessons(f *excelize.File, d Data, header int) error {
	rows := [][]any{{"Lesson", "Title", "Completed", "Score", "Attempts", "Time spent (min)", "Completed at"}}
	for _, lp := range d.Lessons {
		rows = append(rows, []any{
			lp.LessonID,
			d.Titles[lp.LessonID],
			yesNo(lp.Completed),
			optionalInt(lp.Score),
			lp.Attempts,
			lp.TimeSpent,
			optionalTime(lp.CompletedAt),
		})
	}
	return writeTable(f, SheetLessons, rows, header, []float64{18, 30, 12, 8, 10, 16, 20})
}

func writeExercises(f *excelize.File, d Data, header int) error {
	rows := [][]any{{"Lesson", "Exercise", "Completed", "Score", "Best score", "Attempts", "Feedback"}}
	for _, lp := range d.Lessons {
		for _, ex := range lp.Exercises {
			rows = append(rows, []any{
				lp.LessonID,
				ex.ExerciseID,
				yesNo(ex.Completed),
				ex.Score,
				ex.BestScore,
				ex.Attempts,
				strings.Join(ex.Feedback, "; "),
			})
		}
	}
	return writeTable(f, SheetExercises, rows, header, []float64{18, 18, 12, 8, 10, 10, 50})
}

func writeStats(f *excelize.File, d Data, header int) error {
	s := d.Stats
	rows := [][]any{{"Metric", "Value"}}
	if p := d.Profile; p != nil {
		rows = append(rows,
			[]any{"Learner", p.Name},
			[]any{"Level", string(p.Preferences.Difficulty)},
			[]any{"Daily goal", p.Preferences.DailyGoal},
		)
	}
	rows = append(rows,
		[]any{"Lessons started", s.TotalLessons},
		[]any{"Lessons completed", s.CompletedLessons},
		[]any{"Average score", s.AverageScore},
		[]any{"Total score", s.TotalScore},
		[]any{"Time spent (min)", s.TotalTimeSpent},
		[]any{"Lessons today", s.LessonsToday},
		[]any{"Current streak (days)", s.CurrentStreak},
		[]any{"Longest streak (days)", s.LongestStreak},
		[]any{"Last lesson", optionalTime(s.LastLessonDate)},
	)
	return writeTable(f, SheetStats, rows, header, []float64{24, 24})
}

func writeTable(f *excelize.File, sheet string, rows [][]any, header int, widths []float64) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	last, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", header); err != nil {
		return err
	}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func optionalInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
