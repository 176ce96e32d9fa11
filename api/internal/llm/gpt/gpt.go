package gpt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lecture-quiz/api/internal/llm"
	"lecture-quiz/api/internal/prompt"
	"lecture-quiz/api/internal/util"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultBaseURL = "https://api.openai.com/v1"
)

type Engine struct {
	APIKey  string
	Model   string
	BaseURL string
	httpc   *http.Client
}

func New(key, model string) *Engine {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Engine{
		APIKey:  strings.TrimSpace(key),
		Model:   model,
		BaseURL: DefaultBaseURL,
		httpc:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("OPENAI_API_KEY is empty")
	}
	messages := make([]any, 0, 2)
	if strings.TrimSpace(p.System) != "" {
		messages = append(messages, map[string]any{"role": "system", "content": p.System})
	}
	messages = append(messages, map[string]any{"role": "user", "content": p.User})

	body := map[string]any{
		"model":           e.Model,
		"messages":        messages,
		"temperature":     p.Temperature,
		"response_format": map[string]any{"type": "json_object"},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("openai generate: encode: %w", err)
	}

	url := strings.TrimRight(e.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &llm.APIError{Provider: "openai", Op: "generate", Code: resp.StatusCode, Body: strings.TrimSpace(string(x))}
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("openai generate: bad JSON: %w", err)
	}
	if len(raw.Choices) == 0 || strings.TrimSpace(raw.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai generate: empty response")
	}
	return util.StripCodeFences(strings.TrimSpace(raw.Choices[0].Message.Content)), nil
}
