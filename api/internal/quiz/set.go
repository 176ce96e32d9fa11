package quiz

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"lecture-quiz/api/internal/util"
)

// ItemsKey is the top-level key holding the item list in a model response.
const ItemsKey = "quizzes"

// legacy HTTP variant used "questions"
var itemKeyAliases = []string{ItemsKey, "questions"}

// Set is the ordered result of one generation call. It is replaced, never merged.
type Set struct {
	ID           string    `json:"id,omitempty"`
	RequestKey   string    `json:"request_key,omitempty"`
	Engine       string    `json:"engine,omitempty"`
	Model        string    `json:"model,omitempty"`
	SourceName   string    `json:"source_name,omitempty"`
	NumQuestions int       `json:"num_questions,omitempty"`
	Kinds        []Kind    `json:"kinds,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Items        []Item    `json:"quizzes"`
}

func (s Set) Len() int    { return len(s.Items) }
func (s Set) Empty() bool { return len(s.Items) == 0 }

func (s Set) Validate(c *Catalog) error {
	if s.Empty() {
		return errors.New("no quiz items")
	}
	var errs []error
	for i, it := range s.Items {
		if err := it.Validate(c); err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

type rawItem struct {
	Type          string          `json:"type"`
	Question      string          `json:"question"`
	Options       []string        `json:"options"`
	Pairs         Pairs           `json:"pairs"`
	Answer        json.RawMessage `json:"answer"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
	Explanation   string          `json:"explanation"`
}

// ParseSet decodes a raw model response into a validated Set.
// Any failure is a GenerationError with the diagnostic kept.
func ParseSet(raw string, c *Catalog) (Set, error) {
	items, err := parseItems(raw, c)
	if err != nil {
		return Set{}, &GenerationError{Reason: ReasonUnknown, Err: fmt.Errorf("bad quiz response: %w", err)}
	}
	return Set{Items: items}, nil
}

func parseItems(raw string, c *Catalog) ([]Item, error) {
	body := util.StripCodeFences(raw)
	if body == "" {
		return nil, errors.New("empty response")
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &top); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w; body=%s", err, util.ClampRunes(body, 300))
	}
	list, ok := pickItemList(top)
	if !ok {
		return nil, fmt.Errorf("missing %q key", ItemsKey)
	}
	var raws []rawItem
	if err := json.Unmarshal(list, &raws); err != nil {
		return nil, fmt.Errorf("%q is not a list of items: %w", ItemsKey, err)
	}
	if len(raws) == 0 {
		return nil, errors.New("no quiz items")
	}
	items := make([]Item, 0, len(raws))
	var errs []error
	for i, r := range raws {
		it, err := r.toItem(c)
		if err == nil {
			err = it.Validate(c)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i+1, err))
			continue
		}
		items = append(items, it)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return items, nil
}

func pickItemList(top map[string]json.RawMessage) (json.RawMessage, bool) {
	for _, k := range itemKeyAliases {
		if v, ok := top[k]; ok {
			return v, true
		}
	}
	if len(top) == 1 {
		for _, v := range top {
			if t := strings.TrimSpace(string(v)); strings.HasPrefix(t, "[") {
				return v, true
			}
		}
	}
	return nil, false
}

func (r rawItem) toItem(c *Catalog) (Item, error) {
	kind, ok := c.Lookup(r.Type)
	if !ok {
		return Item{}, fmt.Errorf("unsupported type %q", r.Type)
	}
	ans := r.Answer
	if len(ans) == 0 || string(ans) == "null" {
		ans = r.CorrectAnswer
	}
	it := Item{
		Kind:        kind,
		Question:    r.Question,
		Options:     r.Options,
		Pairs:       r.Pairs,
		Answer:      answerString(ans, kind),
		Explanation: r.Explanation,
	}
	it.Normalize()
	return it, nil
}

// answerString accepts strings, booleans (true_false) and numbers.
func answerString(raw json.RawMessage, kind Kind) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if kind == TrueFalse {
			if t {
				return "O"
			}
			return "X"
		}
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// RequestKey identifies a generation request: source text, count and kinds.
func RequestKey(text string, count int, kinds []Kind) string {
	ks := make([]string, 0, len(kinds))
	for _, k := range kinds {
		ks = append(ks, string(k))
	}
	sort.Strings(ks)
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(count)))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(ks, ",")))
	return hex.EncodeToString(h.Sum(nil))
}
