package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"lecture-quiz/api/internal/prompt"
	"lecture-quiz/api/internal/quiz"
)

type stubEngine struct{ name string }

func (s stubEngine) Name() string     { return s.name }
func (s stubEngine) GetModel() string { return s.name + "-model" }
func (s stubEngine) Generate(context.Context, prompt.Prompt) (string, error) {
	return "", nil
}

func TestGetEngine(t *testing.T) {
	e := &Engines{Gemini: stubEngine{"gemini"}, OpenAI: stubEngine{"gpt"}, Default: "gemini"}

	got, err := e.GetEngine("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", got.Name())

	got, err = e.GetEngine(" OpenAI ")
	require.NoError(t, err)
	assert.Equal(t, "gpt", got.Name())

	_, err = e.GetEngine("claude")
	assert.Error(t, err)

	assert.Equal(t, []string{"gemini", "gpt"}, e.Names())
}

func TestGetEngineNotConfigured(t *testing.T) {
	e := &Engines{Gemini: stubEngine{"gemini"}, Default: "gemini"}
	_, err := e.GetEngine("gpt")
	assert.ErrorContains(t, err, "not configured")
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want quiz.Reason
	}{
		{&googleapi.Error{Code: 429}, quiz.ReasonRateLimited},
		{fmt.Errorf("gemini generate: %w", &googleapi.Error{Code: 404}), quiz.ReasonAuthOrNotFound},
		{&googleapi.Error{Code: 403}, quiz.ReasonAuthOrNotFound},
		{&APIError{Provider: "openai", Op: "generate", Code: 429}, quiz.ReasonRateLimited},
		{errors.New("rpc error: code = ResourceExhausted desc = Quota exceeded"), quiz.ReasonRateLimited},
		{errors.New("RESOURCE_EXHAUSTED"), quiz.ReasonRateLimited},
		{errors.New("models/gemini-x is not found for API version v1beta"), quiz.ReasonAuthOrNotFound},
		{errors.New("API key not valid"), quiz.ReasonAuthOrNotFound},
		{errors.New("PermissionDenied"), quiz.ReasonAuthOrNotFound},
		{errors.New("connection reset by peer"), quiz.ReasonUnknown},
		{&googleapi.Error{Code: 500, Message: "internal"}, quiz.ReasonUnknown},
		{nil, quiz.ReasonUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.err), "%v", tc.err)
	}
}

func TestWrapKeepsExistingGenerationError(t *testing.T) {
	orig := &quiz.GenerationError{Reason: quiz.ReasonRateLimited, Err: errors.New("x")}
	assert.Same(t, orig, Wrap(orig))
	assert.Nil(t, Wrap(nil))

	var ge *quiz.GenerationError
	require.ErrorAs(t, Wrap(errors.New("429 Too Many Requests")), &ge)
	assert.Equal(t, quiz.ReasonRateLimited, ge.Reason)
}
