package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLookup(t *testing.T) {
	c := DefaultCatalog()
	for in, want := range map[string]Kind{
		"MultipleChoice":  MultipleChoice,
		"multiple_choice": MultipleChoice,
		"객관식":             MultipleChoice,
		"ShortAnswer":     ShortAnswer,
		"주관식":             ShortAnswer,
		"TrueFalse":       TrueFalse,
		"O/X":             TrueFalse,
		"OX":              TrueFalse,
		"Matching":        Matching,
		"짝짓기":             Matching,
	} {
		got, ok := c.Lookup(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := c.Lookup("essay")
	assert.False(t, ok)
	assert.Equal(t, []Kind{MultipleChoice, ShortAnswer, TrueFalse, Matching}, c.Kinds())
}

func TestCatalogRegister(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, c.Register(KindSpec{Kind: "essay"}))
	k, ok := c.Lookup("Essay")
	assert.True(t, ok)
	assert.Equal(t, Kind("essay"), k)
	assert.Equal(t, RuleExact, c.Rule("essay"))
	assert.Equal(t, "essay", c.Label("essay"))

	assert.Error(t, c.Register(KindSpec{Kind: Matching}))
	assert.Error(t, c.Register(KindSpec{Kind: ""}))
	assert.Error(t, c.Register(KindSpec{Kind: "x", Rule: "fuzzy"}))
	assert.Equal(t, RuleSet, c.Rule(Matching))
}

func TestParseKindSpecs(t *testing.T) {
	specs, err := ParseKindSpecs("essay, ordering:set ,")
	require.NoError(t, err)
	assert.Equal(t, []KindSpec{{Kind: "essay", Rule: RuleExact}, {Kind: "ordering", Rule: RuleSet}}, specs)

	_, err = ParseKindSpecs("x:fuzzy")
	assert.Error(t, err)
	_, err = ParseKindSpecs(":set")
	assert.Error(t, err)

	specs, err = ParseKindSpecs("")
	require.NoError(t, err)
	assert.Empty(t, specs)
}
