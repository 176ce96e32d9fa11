package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"lecture-quiz/api/internal/prompt"
	"lecture-quiz/api/internal/util"
)

const DefaultModel = "gemini-2.5-flash"

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  model,
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Generate returns the first text candidate, code fences stripped.
func (e *Engine) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", fmt.Errorf("gemini generate: client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(p.Temperature),
		ResponseMIMEType: "application/json",
	}
	if strings.TrimSpace(p.System) != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(p.System)},
		}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(p.User))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", fmt.Errorf("gemini generate: empty response")
	}
	return util.StripCodeFences(strings.TrimSpace(txt)), nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
