package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/abhisek/fluent/internal/progress"
)

type createProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type exerciseOutcomeRequest struct {
	Score      int      `json:"score"`
	Transcript string   `json:"transcript"`
	Feedback   []string `json:"feedback"`
}

type completeLessonRequest struct {
	TotalScore int `json:"totalScore"`
	TimeSpent  int `json:"timeSpent"`
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.progress.Profile(r.Context())
	if err != nil {
		s.internalError(w, "load profile", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "no profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	p, err := s.progress.CreateProfile(r.Context(), req.Name, req.Email)
	if err != nil {
		s.internalError(w, "create profile", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updatePreferences(w http.ResponseWriter, r *http.Request) {
	var patch progress.PreferencesPatch
	if err := decodeBody(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx := r.Context()
	if err := s.progress.UpdatePreferences(ctx, patch); err != nil {
		s.internalError(w, "update preferences", err)
		return
	}
	p, err := s.progress.Profile(ctx)
	if err != nil {
		s.internalError(w, "load profile", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "no profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) listProgress(w http.ResponseWriter, r *http.Request) {
	all, err := s.progress.AllLessonProgress(r.Context())
	if err != nil {
		s.internalError(w, "load progress", err)
		return
	}
	if all == nil {
		all = []progress.LessonProgress{}
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) getLessonProgress(w http.ResponseWriter, r *http.Request) {
	lessonID := mux.Vars(r)["lessonID"]
	lp, err := s.progress.LessonProgress(r.Context(), lessonID)
	if err != nil {
		s.internalError(w, "load lesson progress", err)
		return
	}
	if lp == nil {
		writeError(w, http.StatusNotFound, "no progress for lesson "+lessonID)
		return
	}
	writeJSON(w, http.StatusOK, lp)
}

func (s *Server) recordExercise(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req exerciseOutcomeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lp, err := s.progress.RecordExerciseOutcome(r.Context(), vars["lessonID"], vars["exerciseID"], req.Score, req.Transcript, req.Feedback)
	if err != nil {
		s.internalError(w, "record exercise", err)
		return
	}
	writeJSON(w, http.StatusOK, lp)
}

func (s *Server) completeLesson(w http.ResponseWriter, r *http.Request) {
	var req completeLessonRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lp, err := s.progress.CompleteLesson(r.Context(), mux.Vars(r)["lessonID"], req.TotalScore, req.TimeSpent)
	if err != nil {
		s.internalError(w, "complete lesson", err)
		return
	}
	writeJSON(w, http.StatusOK, lp)
}

// getStats returns the persisted stats; ?fresh=true recomputes them first
// so streaks reflect the current day.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	var (
		stats *progress.UserStats
		err   error
	)
	if r.URL.Query().Get("fresh") == "true" {
		stats, err = s.progress.RecomputeStats(r.Context())
	} else {
		stats, err = s.progress.Stats(r.Context())
	}
	if err != nil {
		s.internalError(w, "load stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) resetData(w http.ResponseWriter, r *http.Request) {
	if err := s.progress.ResetAll(r.Context()); err != nil {
		s.internalError(w, "reset data", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, op+" failed")
}
