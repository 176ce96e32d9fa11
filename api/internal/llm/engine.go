package llm

import (
	"context"
	"fmt"
	"strings"

	"lecture-quiz/api/internal/prompt"
)

// Engine turns a prompt into the raw model text. Parsing is the caller's job.
type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, p prompt.Prompt) (string, error)
}

type Engines struct {
	Gemini  Engine
	OpenAI  Engine
	Default string
}

// GetEngine resolves llm_name; an empty name picks the default engine.
func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = e.Default
	}
	var eng Engine
	switch name {
	case "gemini", "google":
		eng = e.Gemini
	case "gpt", "openai":
		eng = e.OpenAI
	default:
		return nil, fmt.Errorf("unknown llm_name %q; use 'gemini' or 'gpt'", llmName)
	}
	if eng == nil {
		return nil, fmt.Errorf("llm %q is not configured", name)
	}
	return eng, nil
}

// Names lists the configured engines.
func (e *Engines) Names() []string {
	var out []string
	if e.Gemini != nil {
		out = append(out, e.Gemini.Name())
	}
	if e.OpenAI != nil {
		out = append(out, e.OpenAI.Name())
	}
	return out
}
