package handle

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"lecture-quiz/api/internal/extract"
	"lecture-quiz/api/internal/generate"
	"lecture-quiz/api/internal/quiz"
	"lecture-quiz/api/internal/store"
)

type Generator interface {
	Generate(ctx context.Context, req generate.Request) (quiz.Set, error)
	Config() generate.Config
	Catalog() *quiz.Catalog
}

type Options struct {
	MaxUploadBytes    int64
	DefaultQuestions  int
	GenerationTimeout time.Duration
	AllowedOrigins    []string
}

type Handle struct {
	gen       Generator
	extractor extract.Extractor
	repo      store.QuizRepo
	grader    *quiz.Grader
	log       *slog.Logger
	opts      Options
}

func New(gen Generator, ex extract.Extractor, repo store.QuizRepo, log *slog.Logger, opts Options) *Handle {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = extract.DefaultMaxUploadBytes
	}
	if opts.DefaultQuestions <= 0 {
		opts.DefaultQuestions = generate.DefaultNumQuestions
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = 120 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handle{
		gen:       gen,
		extractor: ex,
		repo:      repo,
		grader:    quiz.NewGrader(gen.Catalog()),
		log:       log,
		opts:      opts,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// writeError is the single error → status mapping of the HTTP surface.
func (h *Handle) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, reason := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "reason", reason, "error", err)
	}
	writeJSON(w, code, errorResponse{Error: quiz.UserMessage(err), Reason: reason})
}

func statusFor(err error) (int, string) {
	var (
		ve *quiz.ValidationError
		ee *quiz.ExtractionError
		ge *quiz.GenerationError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, quiz.ErrNoQuiz):
		return http.StatusBadRequest, "no_quiz"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &ee):
		return http.StatusInternalServerError, "extraction"
	case errors.As(err, &ge):
		return http.StatusInternalServerError, string(ge.Reason)
	}
	return http.StatusInternalServerError, string(quiz.ReasonUnknown)
}

func (h *Handle) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type kindInfo struct {
	Type  quiz.Kind `json:"type"`
	Label string    `json:"label"`
	Rule  quiz.Rule `json:"rule"`
}

func (h *Handle) Kinds(w http.ResponseWriter, r *http.Request) {
	c := h.gen.Catalog()
	out := make([]kindInfo, 0)
	for _, k := range c.Kinds() {
		out = append(out, kindInfo{Type: k, Label: c.Label(k), Rule: c.Rule(k)})
	}
	cfg := h.gen.Config()
	writeJSON(w, http.StatusOK, map[string]any{
		"kinds":         out,
		"min_questions": cfg.MinQuestions,
		"max_questions": cfg.MaxQuestions,
		"default":       h.opts.DefaultQuestions,
	})
}
