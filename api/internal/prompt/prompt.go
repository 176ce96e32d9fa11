package prompt

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"lecture-quiz/api/internal/quiz"
)

// Temperature is high on purpose: every generation should produce different questions.
const Temperature float32 = 0.8

const System = `You are an education expert. You write quizzes that test the key concepts of lecture notes.
Respond with a single JSON object only, no other text.`

// Schema is the response shape the model is asked to follow.
const Schema = `{
  "quizzes": [
    {
      "type": "multiple_choice" | "short_answer" | "true_false" | "matching",
      "question": "question text",
      "options": ["choice 1", "choice 2", "choice 3", "choice 4"],
      "pairs": {"item 1": "description 1", "item 2": "description 2", "item 3": "description 3"},
      "answer": "correct answer",
      "explanation": "why the answer is correct"
    }
  ]
}`

const userTemplate = `Create {{.NumQuestions}} quiz questions based on the lecture notes below.
Allowed question types: {{.Kinds}}

Lecture notes:
{{.Text}}

Respond with JSON only, in exactly this format:
{{.Schema}}

Rules:
- multiple_choice questions must include the "options" array and "answer" must be one of the options, copied verbatim
- true_false answers must be exactly "O" (true) or "X" (false)
- short_answer questions have no "options", only "answer"
- matching questions must include the "pairs" object and "answer" in the form "item 1-description 1, item 2-description 2, item 3-description 3"
- omit "options" and "pairs" when the type does not use them
- every question must cover a key concept of the lecture
- approach the material from different angles so that each generation produces different questions`

type Params struct {
	Text         string
	NumQuestions int
	Kinds        []quiz.Kind
}

type Prompt struct {
	System      string
	User        string
	Temperature float32
}

type Builder struct {
	system string
	user   *template.Template
}

// NewBuilder uses the built-in prompts, or quiz.system.txt / quiz.user.txt from dir when present.
func NewBuilder(dir string) (*Builder, error) {
	system := System
	user := userTemplate
	if dir != "" {
		if s, ok, err := readPrompt(dir, "quiz.system.txt"); err != nil {
			return nil, err
		} else if ok {
			system = s
		}
		if s, ok, err := readPrompt(dir, "quiz.user.txt"); err != nil {
			return nil, err
		} else if ok {
			user = s
		}
	}
	tpl, err := template.New("quiz.user").Option("missingkey=error").Parse(user)
	if err != nil {
		return nil, fmt.Errorf("prompt: bad user template: %w", err)
	}
	return &Builder{system: system, user: tpl}, nil
}

// MustDefault is the built-in builder; it cannot fail.
func MustDefault() *Builder {
	b, err := NewBuilder("")
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Builder) Build(p Params) (Prompt, error) {
	kinds := make([]string, 0, len(p.Kinds))
	for _, k := range p.Kinds {
		kinds = append(kinds, string(k))
	}
	var buf bytes.Buffer
	err := b.user.Execute(&buf, map[string]any{
		"NumQuestions": p.NumQuestions,
		"Kinds":        strings.Join(kinds, ", "),
		"Text":         p.Text,
		"Schema":       Schema,
	})
	if err != nil {
		return Prompt{}, fmt.Errorf("prompt: render: %w", err)
	}
	return Prompt{System: b.system, User: buf.String(), Temperature: Temperature}, nil
}

func readPrompt(dir, name string) (string, bool, error) {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("prompt: read %s: %w", name, err)
	}
	s := strings.TrimSpace(string(b))
	return s, s != "", nil
}
