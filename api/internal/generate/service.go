package generate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"lecture-quiz/api/internal/llm"
	"lecture-quiz/api/internal/prompt"
	"lecture-quiz/api/internal/quiz"
	"lecture-quiz/api/internal/util"
)

const (
	DefaultMaxSourceChars = 3000
	DefaultMinQuestions   = 1
	DefaultMaxQuestions   = 10
	DefaultNumQuestions   = 5
	DefaultRetryDelay     = 5 * time.Second
)

type Config struct {
	MaxSourceChars   int
	MinQuestions     int
	MaxQuestions     int
	RateLimitRetries int
	RetryDelay       time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxSourceChars: DefaultMaxSourceChars,
		MinQuestions:   DefaultMinQuestions,
		MaxQuestions:   DefaultMaxQuestions,
		RetryDelay:     DefaultRetryDelay,
	}
}

type EngineResolver interface {
	GetEngine(llmName string) (llm.Engine, error)
}

// Saver persists generated sets; *store.QuizRepo implementations satisfy it.
type Saver interface {
	Save(ctx context.Context, set quiz.Set) error
}

type Service struct {
	engines EngineResolver
	prompts *prompt.Builder
	catalog *quiz.Catalog
	repo    Saver
	cfg     Config
	v       *validator.Validate
	log     *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

type Option func(*Service)

func WithRepo(r Saver) Option               { return func(s *Service) { s.repo = r } }
func WithPrompts(b *prompt.Builder) Option  { return func(s *Service) { s.prompts = b } }
func WithCatalog(c *quiz.Catalog) Option    { return func(s *Service) { s.catalog = c } }
func WithLogger(l *slog.Logger) Option      { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(engines EngineResolver, cfg Config, opts ...Option) *Service {
	def := DefaultConfig()
	if cfg.MaxSourceChars <= 0 {
		cfg.MaxSourceChars = def.MaxSourceChars
	}
	if cfg.MinQuestions <= 0 {
		cfg.MinQuestions = def.MinQuestions
	}
	if cfg.MaxQuestions < cfg.MinQuestions {
		cfg.MaxQuestions = max(def.MaxQuestions, cfg.MinQuestions)
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	s := &Service{
		engines: engines,
		cfg:     cfg,
		log:     slog.Default(),
		now:     time.Now,
		sleep:   sleepCtx,
	}
	for _, o := range opts {
		o(s)
	}
	if s.catalog == nil {
		s.catalog = quiz.DefaultCatalog()
	}
	if s.prompts == nil {
		s.prompts = prompt.MustDefault()
	}
	s.v = newValidator(s.catalog)
	return s
}

func (s *Service) Config() Config         { return s.cfg }
func (s *Service) Catalog() *quiz.Catalog { return s.catalog }

// Generate validates, calls the engine once (plus configured rate-limit retries) and parses the reply.
func (s *Service) Generate(ctx context.Context, req Request) (quiz.Set, error) {
	if err := s.validate(req); err != nil {
		return quiz.Set{}, err
	}
	eng, err := s.engines.GetEngine(req.LLMName)
	if err != nil {
		return quiz.Set{}, quiz.NewValidationError("llm_name", err.Error())
	}

	text := util.ClampRunes(req.Text, s.cfg.MaxSourceChars)
	p, err := s.prompts.Build(prompt.Params{Text: text, NumQuestions: req.NumQuestions, Kinds: req.Kinds})
	if err != nil {
		return quiz.Set{}, &quiz.GenerationError{Reason: quiz.ReasonUnknown, Err: err}
	}

	log := s.log.With("engine", eng.Name(), "model", eng.GetModel())
	start := s.now()
	raw, err := s.call(ctx, eng, p, log)
	if err != nil {
		log.Error("generation failed", "error", err, "duration", s.now().Sub(start))
		return quiz.Set{}, err
	}

	set, err := quiz.ParseSet(raw, s.catalog)
	if err != nil {
		log.Warn("model response rejected", "error", err)
		return quiz.Set{}, err
	}
	set.ID = uuid.NewString()
	set.RequestKey = quiz.RequestKey(text, req.NumQuestions, req.Kinds)
	set.Engine = eng.Name()
	set.Model = eng.GetModel()
	set.SourceName = req.SourceName
	set.NumQuestions = req.NumQuestions
	set.Kinds = append([]quiz.Kind(nil), req.Kinds...)
	set.CreatedAt = s.now().UTC()
	log.Info("quiz generated", "quiz_id", set.ID, "items", set.Len(), "duration", s.now().Sub(start))

	if s.repo != nil {
		if err := s.repo.Save(ctx, set); err != nil {
			log.Warn("quiz save failed", "quiz_id", set.ID, "error", err)
		}
	}
	return set, nil
}

func (s *Service) call(ctx context.Context, eng llm.Engine, p prompt.Prompt, log *slog.Logger) (string, error) {
	for attempt := 0; ; attempt++ {
		raw, err := eng.Generate(ctx, p)
		if err == nil {
			return raw, nil
		}
		gerr := llm.Wrap(err)
		var ge *quiz.GenerationError
		if !errors.As(gerr, &ge) || ge.Reason != quiz.ReasonRateLimited || attempt >= s.cfg.RateLimitRetries {
			return "", gerr
		}
		log.Warn("rate limited, retrying", "attempt", attempt+1, "delay", s.cfg.RetryDelay)
		if err := s.sleep(ctx, s.cfg.RetryDelay); err != nil {
			return "", gerr
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
