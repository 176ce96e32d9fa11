package quiz

import (
	"errors"
	"fmt"
)

// ErrNoQuiz is returned when grading is attempted without any quiz items.
var ErrNoQuiz = errors.New("quiz: no quiz items to grade")

// ValidationError reports bad request parameters. No external call has been made.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ExtractionError reports an unreadable or corrupt document.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return "extraction failed: " + e.Err.Error() }
func (e *ExtractionError) Unwrap() error { return e.Err }

type Reason string

const (
	ReasonRateLimited    Reason = "rate_limited"
	ReasonAuthOrNotFound Reason = "auth_or_not_found"
	ReasonUnknown        Reason = "unknown"
)

// GenerationError covers external API failures and responses that violate the quiz schema.
type GenerationError struct {
	Reason Reason
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// UserMessage turns any error of the taxonomy into a distinct, actionable message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		ve *ValidationError
		ee *ExtractionError
		ge *GenerationError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &ee):
		return "Could not read the PDF: " + ee.Err.Error()
	case errors.As(err, &ge):
		switch ge.Reason {
		case ReasonRateLimited:
			return "API quota exceeded. Please try again in a few minutes."
		case ReasonAuthOrNotFound:
			return "Model not found or API key rejected. Check your credentials and model name."
		default:
			return "Quiz generation failed: " + ge.Err.Error()
		}
	case errors.Is(err, ErrNoQuiz):
		return "There is no quiz to grade yet. Generate a quiz first."
	default:
		return "Unexpected error: " + err.Error()
	}
}
