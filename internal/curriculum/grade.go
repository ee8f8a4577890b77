package curriculum

import (
	"fmt"
	"math"
	"strings"
)

// Result is the outcome of grading a fill-in-the-blank exercise.
type Result struct {
	Score    int      `json:"score"`
	Correct  []bool   `json:"correct"`
	Feedback []string `json:"feedback"`
}

// GradeBlanks checks answers against ex's blanks in order. Matching
// ignores case, surrounding punctuation and repeated spaces. Missing
// answers count as wrong.
func GradeBlanks(ex Exercise, answers []string) (Result, error) {
	if ex.Kind != KindFillBlank {
		return Result{}, fmt.Errorf("exercise %q is not a fill-in-the-blank exercise", ex.ID)
	}

	res := Result{
		Correct:  make([]bool, len(ex.Blanks)),
		Feedback: make([]string, len(ex.Blanks)),
	}
	right := 0
	for i, blank := range ex.Blanks {
		var given string
		if i < len(answers) {
			given = normalize(answers[i])
		}
		for _, want := range blank.Answers {
			if given != "" && given == normalize(want) {
				res.Correct[i] = true
				break
			}
		}
		if res.Correct[i] {
			right++
			res.Feedback[i] = "Correct!"
			continue
		}
		fb := fmt.Sprintf("Expected %q", blank.Answers[0])
		if blank.Hint != "" {
			fb += ". " + blank.Hint
		}
		res.Feedback[i] = fb
	}
	if n := len(ex.Blanks); n > 0 {
		res.Score = int(math.Round(100 * float64(right) / float64(n)))
	}
	return res, nil
}

func normalize(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	return strings.Trim(s, ".,!?;:\"")
}
