package generate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"lecture-quiz/api/internal/quiz"
)

// Request is one generation call as the adapters hand it over.
type Request struct {
	Text         string      `json:"text" validate:"required"`
	NumQuestions int         `json:"num_questions"`
	Kinds        []quiz.Kind `json:"kinds" validate:"required,min=1,dive,quiz_kind"`
	SourceName   string      `json:"source_name"`
	LLMName      string      `json:"llm_name"`
}

func newValidator(c *quiz.Catalog) *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("quiz_kind", func(fl validator.FieldLevel) bool {
		return c.Supports(quiz.Kind(fl.Field().String()))
	})
	return v
}

func (s *Service) validate(req Request) error {
	if err := s.v.Struct(req); err != nil {
		return toValidationError(err)
	}
	rule := fmt.Sprintf("min=%d,max=%d", s.cfg.MinQuestions, s.cfg.MaxQuestions)
	if err := s.v.Var(req.NumQuestions, rule); err != nil {
		return quiz.NewValidationError("num_questions",
			fmt.Sprintf("number of questions must be between %d and %d", s.cfg.MinQuestions, s.cfg.MaxQuestions))
	}
	return nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return quiz.NewValidationError("request", err.Error())
	}
	fe := verrs[0]
	field := fe.Field()
	switch {
	case strings.HasPrefix(field, "kinds"):
		if fe.Tag() == "quiz_kind" {
			return quiz.NewValidationError("kinds", fmt.Sprintf("unsupported question type %q", fe.Value()))
		}
		return quiz.NewValidationError("kinds", "select at least one question type")
	case field == "text":
		return quiz.NewValidationError("text", "no text to build a quiz from")
	default:
		return quiz.NewValidationError(field, fmt.Sprintf("failed on '%s'", fe.Tag()))
	}
}
