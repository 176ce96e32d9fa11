package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-quiz/api/internal/prompt"
)

func TestNewDefaultsModel(t *testing.T) {
	e := New(" key ", "")
	assert.Equal(t, "key", e.APIKey)
	assert.Equal(t, DefaultModel, e.GetModel())
	assert.Equal(t, "gemini", e.Name())
}

func TestGenerateWithoutKey(t *testing.T) {
	_, err := New("", "m").Generate(context.Background(), prompt.Prompt{User: "u"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestFirstText(t *testing.T) {
	assert.Equal(t, "", firstText(nil))
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: nil},
		{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"quizzes":`), genai.Text(`[]}`)}}},
	}}
	assert.Equal(t, `{"quizzes":[]}`, firstText(resp))
}
