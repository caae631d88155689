// Package api exposes the quiz and tutor engines over HTTP for a local
// web front end.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/quiz"
	"github.com/abhisek/studyhall/internal/textgen"
	"github.com/abhisek/studyhall/internal/tutor"
)

// Deps are the engines the API serves. All are required.
type Deps struct {
	Quiz        *quiz.Engine
	Tutor       *tutor.Engine
	Credentials *textgen.StoreCredentials
}

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	// RequestTimeout bounds each request. Tutor replies wait on the AI
	// service, so it should exceed the LLM timeout.
	RequestTimeout time.Duration
}

type handler struct {
	quiz  *quiz.Engine
	tutor *tutor.Engine
	creds *textgen.StoreCredentials
	log   *zap.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(deps Deps, opts Options, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 90 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:*"}
	}

	h := &handler{
		quiz:  deps.Quiz,
		tutor: deps.Tutor,
		creds: deps.Credentials,
		log:   log.Named("api"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(h.log), middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/quiz", func(r chi.Router) {
		r.Get("/", h.getQuiz)
		r.Post("/start", h.startQuiz)
		r.Post("/select", h.selectAnswer)
		r.Post("/check", h.checkAnswer)
		r.Post("/advance", h.advanceQuiz)
		r.Post("/restart", h.restartQuiz)
	})

	r.Route("/tutor", func(r chi.Router) {
		r.Get("/subjects", h.listSubjects)
		r.Post("/sessions", h.startSession)
		r.Post("/sessions/{id}/resume", h.resumeSession)
		r.Get("/session", h.currentSession)
		r.Delete("/session", h.endSession)
		r.Post("/messages", h.sendMessage)
		r.Get("/history", h.history)
	})

	r.Put("/credential", h.saveCredential)
	r.Delete("/credential", h.clearCredential)

	return r
}

// Server wraps http.Server with context-driven shutdown.
type Server struct {
	srv *http.Server
	log *zap.Logger
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, handler http.Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.srv.Addr))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down http server")
	return s.srv.Shutdown(shutdownCtx)
}
