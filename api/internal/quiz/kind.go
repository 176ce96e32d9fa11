package quiz

import (
	"fmt"
	"strings"
)

type Kind string

const (
	MultipleChoice Kind = "multiple_choice"
	ShortAnswer    Kind = "short_answer"
	TrueFalse      Kind = "true_false"
	Matching       Kind = "matching"
)

// Rule selects how a submitted answer is compared with the key.
type Rule string

const (
	RuleExact Rule = "exact" // trimmed, case-folded equality
	RuleSet   Rule = "set"   // comma separated tokens compared as sets
)

type KindSpec struct {
	Kind    Kind
	Label   string
	Rule    Rule
	Aliases []string
}

// Catalog holds the question kinds a deployment supports.
type Catalog struct {
	specs   []KindSpec
	byAlias map[string]Kind
}

func DefaultCatalog() *Catalog {
	c := &Catalog{byAlias: map[string]Kind{}}
	for _, s := range []KindSpec{
		{Kind: MultipleChoice, Label: "Multiple choice", Rule: RuleExact, Aliases: []string{"MultipleChoice", "mcq", "choice", "객관식"}},
		{Kind: ShortAnswer, Label: "Short answer", Rule: RuleExact, Aliases: []string{"ShortAnswer", "short", "주관식", "단답형", "서술형", "essay"}},
		{Kind: TrueFalse, Label: "True / False (O/X)", Rule: RuleExact, Aliases: []string{"TrueFalse", "tf", "ox", "o/x"}},
		{Kind: Matching, Label: "Matching", Rule: RuleSet, Aliases: []string{"match", "짝짓기"}},
	} {
		_ = c.Register(s)
	}
	return c
}

// Register adds a kind. Re-registering an existing kind is an error; a new kind
// takes over any alias of the same name ("essay").
func (c *Catalog) Register(s KindSpec) error {
	s.Kind = Kind(strings.TrimSpace(string(s.Kind)))
	if s.Kind == "" {
		return fmt.Errorf("quiz: empty kind")
	}
	if c.Supports(s.Kind) {
		return fmt.Errorf("quiz: kind %q already registered", s.Kind)
	}
	switch s.Rule {
	case RuleExact, RuleSet:
	case "":
		s.Rule = RuleExact
	default:
		return fmt.Errorf("quiz: kind %q: unknown rule %q", s.Kind, s.Rule)
	}
	if s.Label == "" {
		s.Label = string(s.Kind)
	}
	if c.byAlias == nil {
		c.byAlias = map[string]Kind{}
	}
	c.specs = append(c.specs, s)
	c.byAlias[aliasKey(string(s.Kind))] = s.Kind
	for _, a := range s.Aliases {
		c.byAlias[aliasKey(a)] = s.Kind
	}
	return nil
}

// Lookup resolves a kind name or alias ("MultipleChoice", "OX", "짝짓기").
func (c *Catalog) Lookup(name string) (Kind, bool) {
	k, ok := c.byAlias[aliasKey(name)]
	return k, ok
}

func (c *Catalog) Supports(k Kind) bool {
	for _, s := range c.specs {
		if s.Kind == k {
			return true
		}
	}
	return false
}

func (c *Catalog) Kinds() []Kind {
	out := make([]Kind, 0, len(c.specs))
	for _, s := range c.specs {
		out = append(out, s.Kind)
	}
	return out
}

func (c *Catalog) Label(k Kind) string {
	for _, s := range c.specs {
		if s.Kind == k {
			return s.Label
		}
	}
	return string(k)
}

// Rule returns the grading rule of k; unknown kinds grade by exact match.
func (c *Catalog) Rule(k Kind) Rule {
	for _, s := range c.specs {
		if s.Kind == k {
			return s.Rule
		}
	}
	return RuleExact
}

// ParseKindSpecs reads "essay:exact,ordering:set" style configuration.
func ParseKindSpecs(s string) ([]KindSpec, error) {
	var out []KindSpec
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, rule, _ := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("quiz: bad kind spec %q", part)
		}
		r := Rule(strings.ToLower(strings.TrimSpace(rule)))
		if r == "" {
			r = RuleExact
		}
		if r != RuleExact && r != RuleSet {
			return nil, fmt.Errorf("quiz: bad rule in kind spec %q", part)
		}
		out = append(out, KindSpec{Kind: Kind(name), Rule: r})
	}
	return out, nil
}

func aliasKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "", "/", "").Replace(s)
}
