package quiz

import (
	"strconv"
	"strings"
)

// Answers maps item index to the raw submitted text. Missing indices are unanswered.
type Answers map[int]string

// Get returns the submission for i; empty or blank text counts as unanswered.
func (a Answers) Get(i int) (string, bool) {
	v, ok := a[i]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// AnswersFromAny coerces an external payload ({"0": "b", "1": "O"}).
// Non-integer keys and non-string values are dropped, which leaves those items unanswered.
func AnswersFromAny(m map[string]any) Answers {
	out := make(Answers, len(m))
	for k, v := range m {
		i, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || i < 0 {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		out[i] = s
	}
	return out
}
