package handle

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"lecture-quiz/api/internal/logger"
)

func (h *Handle) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, h.requestLogger, middleware.Recoverer)
	// generation is the slow path; leave it room past the engine timeout
	r.Use(middleware.Timeout(h.opts.GenerationTimeout + 30*time.Second))

	origins := h.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/kinds", h.Kinds)
	r.Post("/upload", h.Upload)
	r.Get("/quizzes", h.LatestQuiz)
	r.Route("/quizzes/{id}", func(qr chi.Router) {
		qr.Get("/", h.GetQuiz)
		qr.Post("/grade", h.GradeQuiz)
		qr.Get("/export", h.ExportQuiz)
		qr.Post("/export", h.ExportQuiz)
	})
	return r
}

func (h *Handle) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logger.LogRequest(h.log, r.Method, r.URL.Path, status, time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()), "bytes", ww.BytesWritten())
	})
}
