package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/abhisek/fluent/internal/coach"
	"github.com/abhisek/fluent/internal/curriculum"
	"github.com/abhisek/fluent/internal/progress"
)

type analyzeRequest struct {
	Text  string              `json:"text"`
	Level progress.Difficulty `json:"level"`
}

type gradeRequest struct {
	Answers []string `json:"answers"`
	// Record stores the graded attempt as an exercise outcome.
	Record bool `json:"record"`
}

type gradeResponse struct {
	curriculum.Result
	Progress *progress.LessonProgress `json:"progress,omitempty"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Level == "" {
		req.Level = s.preferredLevel(r)
	}
	a, err := s.coach.Analyze(r.Context(), req.Text, req.Level)
	if errors.Is(err, coach.ErrEmptyInput) {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if err != nil {
		s.internalError(w, "analyze", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) converse(w http.ResponseWriter, r *http.Request) {
	var req coach.ConversationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Level == "" {
		req.Level = s.preferredLevel(r)
	}
	reply, err := s.coach.Converse(r.Context(), req)
	if errors.Is(err, coach.ErrEmptyInput) {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}
	if err != nil {
		s.internalError(w, "conversation", err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) getCurriculum(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.curriculum)
}

func (s *Server) gradeExercise(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ex, err := s.curriculum.Exercise(vars["lessonID"], vars["exerciseID"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	var req gradeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := curriculum.GradeBlanks(*ex, req.Answers)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := gradeResponse{Result: res}
	if req.Record {
		out.Progress, err = s.progress.RecordExerciseOutcome(r.Context(), vars["lessonID"], ex.ID, res.Score, "", res.Feedback)
		if err != nil {
			s.internalError(w, "record exercise", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// preferredLevel falls back to the profile's difficulty when a request
// names no level.
func (s *Server) preferredLevel(r *http.Request) progress.Difficulty {
	p, err := s.progress.Profile(r.Context())
	if err != nil || p == nil {
		return progress.DifficultyBeginner
	}
	return p.Preferences.Difficulty
}
