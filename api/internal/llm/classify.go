package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"lecture-quiz/api/internal/quiz"
)

// APIError is a non-2xx reply from an HTTP model provider.
type APIError struct {
	Provider string
	Op       string
	Code     int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s %d: %s", e.Provider, e.Op, e.Code, e.Body)
}

// Classify maps an engine failure onto a generation reason.
func Classify(err error) quiz.Reason {
	if err == nil {
		return quiz.ReasonUnknown
	}
	var ge *quiz.GenerationError
	if errors.As(err, &ge) {
		return ge.Reason
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if r, ok := reasonForStatus(gerr.Code); ok {
			return r
		}
	}
	var aerr *APIError
	if errors.As(err, &aerr) {
		if r, ok := reasonForStatus(aerr.Code); ok {
			return r
		}
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"), strings.Contains(msg, "quota"), strings.Contains(msg, "resource_exhausted"):
		return quiz.ReasonRateLimited
	case strings.Contains(msg, "404"), strings.Contains(msg, "not found"),
		strings.Contains(msg, "api key"), strings.Contains(msg, "401"), strings.Contains(msg, "permission"):
		return quiz.ReasonAuthOrNotFound
	}
	return quiz.ReasonUnknown
}

func reasonForStatus(code int) (quiz.Reason, bool) {
	switch code {
	case http.StatusTooManyRequests:
		return quiz.ReasonRateLimited, true
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return quiz.ReasonAuthOrNotFound, true
	}
	return "", false
}

// Wrap classifies err into a GenerationError, keeping the original for diagnostics.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var ge *quiz.GenerationError
	if errors.As(err, &ge) {
		return err
	}
	return &quiz.GenerationError{Reason: Classify(err), Err: err}
}
