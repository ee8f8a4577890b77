// Package api exposes the progress store, the coach and the curriculum
// as a JSON HTTP API for browser front ends.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/abhisek/fluent/internal/coach"
	"github.com/abhisek/fluent/internal/curriculum"
	"github.com/abhisek/fluent/internal/progress"
)

// Server serves the /api routes.
type Server struct {
	progress   *progress.Store
	coach      *coach.Coach
	curriculum *curriculum.Curriculum
	logger     *zap.Logger
	origins    []string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithCORSOrigins sets the browser origins allowed to call the API.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// New creates a Server.
func New(ps *progress.Store, c *coach.Coach, cur *curriculum.Curriculum, opts ...Option) *Server {
	s := &Server{
		progress:   ps,
		coach:      c,
		curriculum: cur,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the mux with every route registered.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverer(s.logger), requestLogger(s.logger))
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/profile", s.getProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile", s.createProfile).Methods(http.MethodPost)
	api.HandleFunc("/profile/preferences", s.updatePreferences).Methods(http.MethodPatch)

	api.HandleFunc("/progress", s.listProgress).Methods(http.MethodGet)
	api.HandleFunc("/progress/{lessonID}", s.getLessonProgress).Methods(http.MethodGet)
	api.HandleFunc("/progress/{lessonID}/exercises/{exerciseID}", s.recordExercise).Methods(http.MethodPost)
	api.HandleFunc("/progress/{lessonID}/complete", s.completeLesson).Methods(http.MethodPost)
	api.HandleFunc("/stats", s.getStats).Methods(http.MethodGet)
	api.HandleFunc("/data", s.resetData).Methods(http.MethodDelete)

	api.HandleFunc("/analyze", s.analyze).Methods(http.MethodPost)
	api.HandleFunc("/conversation", s.converse).Methods(http.MethodPost)

	api.HandleFunc("/curriculum", s.getCurriculum).Methods(http.MethodGet)
	api.HandleFunc("/curriculum/{lessonID}/{exerciseID}/grade", s.gradeExercise).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

// Handler wraps the router with CORS handling.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	})
	return c.Handler(s.Router())
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Conversation replies may wait on a slow model.
		WriteTimeout: 60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		s.logger.Info("http server stopped")
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "remoteCoach": s.coach.Remote()})
}
