package quiz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Item is one generated question.
type Item struct {
	Kind        Kind     `json:"type"`
	Question    string   `json:"question"`
	Options     []string `json:"options,omitempty"`
	Pairs       Pairs    `json:"pairs,omitempty"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

type Pair struct {
	Left  string
	Right string
}

// Pairs keeps the key order of the JSON object it was decoded from.
type Pairs []Pair

func (p Pairs) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var b bytes.Buffer
	b.WriteByte('{')
	for i, pr := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(pr.Left)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(pr.Right)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (p *Pairs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("pairs: expected JSON object")
	}
	out := Pairs{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := kt.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		right := scalarString(v)
		if i := out.index(key); i >= 0 {
			out[i].Right = right
			continue
		}
		out = append(out, Pair{Left: key, Right: right})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

func (p Pairs) index(left string) int {
	for i, pr := range p {
		if pr.Left == left {
			return i
		}
	}
	return -1
}

// Letter is the display label of the i-th right-hand description (A, B, …).
func Letter(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return Letter(i/26-1) + Letter(i%26)
}

// Normalize trims text fields and drops options/pairs on kinds that do not use them.
func (it *Item) Normalize() {
	it.Question = strings.TrimSpace(it.Question)
	it.Answer = strings.TrimSpace(it.Answer)
	it.Explanation = strings.TrimSpace(it.Explanation)
	if it.Kind == MultipleChoice {
		opts := make([]string, 0, len(it.Options))
		for _, o := range it.Options {
			if o = strings.TrimSpace(o); o != "" {
				opts = append(opts, o)
			}
		}
		it.Options = opts
	} else {
		it.Options = nil
	}
	if it.Kind == Matching {
		for i := range it.Pairs {
			it.Pairs[i].Left = strings.TrimSpace(it.Pairs[i].Left)
			it.Pairs[i].Right = strings.TrimSpace(it.Pairs[i].Right)
		}
	} else {
		it.Pairs = nil
	}
	if it.Kind == TrueFalse {
		it.Answer = strings.ToUpper(it.Answer)
	}
}

// Validate checks the schema invariants of a single item.
func (it Item) Validate(c *Catalog) error {
	if !c.Supports(it.Kind) {
		return fmt.Errorf("unsupported type %q", it.Kind)
	}
	if strings.TrimSpace(it.Question) == "" {
		return errors.New("empty question")
	}
	if strings.TrimSpace(it.Answer) == "" {
		return errors.New("empty answer")
	}
	switch it.Kind {
	case MultipleChoice:
		if len(it.Options) == 0 {
			return errors.New("multiple_choice without options")
		}
		for _, o := range it.Options {
			if MatchExact(it.Answer, o) {
				return nil
			}
		}
		return fmt.Errorf("answer %q is not one of the options", it.Answer)
	case TrueFalse:
		if a := strings.ToUpper(strings.TrimSpace(it.Answer)); a != "O" && a != "X" {
			return fmt.Errorf("true_false answer must be O or X, got %q", it.Answer)
		}
	case Matching:
		if len(it.Pairs) == 0 {
			return errors.New("matching without pairs")
		}
		return validateMatchingKey(it.Pairs, it.Answer)
	}
	return nil
}

// validateMatchingKey requires every pair to be referenced exactly once,
// by its label or by its 1-based position.
func validateMatchingKey(pairs Pairs, key string) error {
	seen := make([]int, len(pairs))
	for tok := range tokenSet(key) {
		idx := pairForToken(pairs, tok)
		if idx < 0 {
			return fmt.Errorf("answer token %q does not reference any pair", tok)
		}
		seen[idx]++
	}
	for i, n := range seen {
		if n != 1 {
			return fmt.Errorf("pair %q referenced %d times in answer", pairs[i].Left, n)
		}
	}
	return nil
}

// pairForToken resolves tok to a pair. Labels win over positions, so a key
// written with numeric labels ("2-a, 1-b") is read by label.
func pairForToken(pairs Pairs, tok string) int {
	if i := prefixMatch(pairs, tok, func(_ int, p Pair) string { return p.Left }); i >= 0 {
		return i
	}
	return prefixMatch(pairs, tok, func(i int, _ Pair) string { return strconv.Itoa(i + 1) })
}

// prefixMatch picks the pair whose label is the longest "label-" prefix of tok.
func prefixMatch(pairs Pairs, tok string, label func(int, Pair) string) int {
	best, bestLen := -1, -1
	low := strings.ToLower(tok)
	for i, p := range pairs {
		l := label(i, p)
		if l == "" || len(l) <= bestLen {
			continue
		}
		if strings.HasPrefix(low, strings.ToLower(l)+"-") {
			best, bestLen = i, len(l)
		}
	}
	return best
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
