package quiz

import (
	"math"
	"strings"
)

// NoAnswer is shown in place of a missing or empty submission.
const NoAnswer = "(no answer)"

type ItemResult struct {
	Index       int    `json:"index"`
	Kind        Kind   `json:"type"`
	Question    string `json:"question"`
	Answered    bool   `json:"answered"`
	Submitted   string `json:"submitted"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
	IsCorrect   bool   `json:"is_correct"`
}

type Result struct {
	Items      []ItemResult `json:"items"`
	Correct    int          `json:"correct_count"`
	Total      int          `json:"total"`
	Percentage float64      `json:"percentage"`
}

type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierReview    Tier = "review"
)

func (r Result) Tier() Tier {
	switch {
	case r.Percentage >= 80:
		return TierExcellent
	case r.Percentage >= 60:
		return TierGood
	default:
		return TierReview
	}
}

func (t Tier) Message() string {
	switch t {
	case TierExcellent:
		return "Excellent! You understood the lecture well."
	case TierGood:
		return "Good job! A little more review and it will be perfect."
	default:
		return "Review the lecture notes once more and try again."
	}
}

type Grader struct {
	catalog *Catalog
}

func NewGrader(c *Catalog) *Grader {
	if c == nil {
		c = DefaultCatalog()
	}
	return &Grader{catalog: c}
}

var defaultGrader = NewGrader(nil)

// Grade scores answers against set with the default kinds.
func Grade(set Set, answers Answers) (Result, error) {
	return defaultGrader.Grade(set, answers)
}

// Grade is pure: it depends only on set and answers.
func (g *Grader) Grade(set Set, answers Answers) (Result, error) {
	if set.Empty() {
		return Result{}, ErrNoQuiz
	}
	res := Result{Items: make([]ItemResult, 0, len(set.Items)), Total: len(set.Items)}
	for i, it := range set.Items {
		ir := ItemResult{
			Index:       i,
			Kind:        it.Kind,
			Question:    it.Question,
			Submitted:   NoAnswer,
			Answer:      it.Answer,
			Explanation: it.Explanation,
		}
		if sub, ok := answers.Get(i); ok {
			ir.Answered = true
			ir.Submitted = sub
			ir.IsCorrect = g.match(it, sub)
		}
		if ir.IsCorrect {
			res.Correct++
		}
		res.Items = append(res.Items, ir)
	}
	res.Percentage = Percentage(res.Correct, res.Total)
	return res, nil
}

func (g *Grader) match(it Item, submitted string) bool {
	if g.catalog.Rule(it.Kind) == RuleSet {
		return MatchSet(submitted, it.Answer)
	}
	return MatchExact(submitted, it.Answer)
}

// Percentage is 100*correct/total rounded to one decimal place.
func Percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct)*1000/float64(total)) / 10
}

func MatchExact(submitted, key string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(key))
}

// MatchSet compares comma separated tokens ignoring order and duplicates.
func MatchSet(submitted, key string) bool {
	a, b := tokenSet(submitted), tokenSet(key)
	if len(a) != len(b) {
		return false
	}
	for t := range a {
		if _, ok := b[t]; !ok {
			return false
		}
	}
	return true
}

func tokenSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out[t] = struct{}{}
		}
	}
	return out
}
