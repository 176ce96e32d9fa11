package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSet() Set {
	return Set{Items: []Item{
		{Kind: MultipleChoice, Question: "Which?", Options: []string{"A", "B", "C", "D"}, Answer: "B", Explanation: "B is right"},
		{Kind: TrueFalse, Question: "Go has generics.", Answer: "O", Explanation: "since 1.18"},
		{Kind: Matching, Question: "Match", Pairs: Pairs{{"1", "x"}, {"2", "y"}}, Answer: "1-x,2-y", Explanation: "pairs"},
	}}
}

func TestGradeRoundTrip(t *testing.T) {
	res, err := Grade(sampleSet(), Answers{0: "b", 1: "O", 2: "2-y, 1-x"})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Correct)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 100.0, res.Percentage)
	for _, ir := range res.Items {
		assert.True(t, ir.IsCorrect, "item %d", ir.Index)
	}
	assert.Equal(t, TierExcellent, res.Tier())
}

func TestGradeExactRuleIgnoresCaseAndOuterWhitespace(t *testing.T) {
	set := Set{Items: []Item{
		{Kind: TrueFalse, Question: "q", Answer: "O"},
		{Kind: ShortAnswer, Question: "q", Answer: "Goroutine"},
		{Kind: ShortAnswer, Question: "q", Answer: "channel"},
	}}
	res, err := Grade(set, Answers{0: " O ", 1: "  goroutine\t", 2: "channels"})
	require.NoError(t, err)

	assert.True(t, res.Items[0].IsCorrect)
	assert.True(t, res.Items[1].IsCorrect)
	assert.False(t, res.Items[2].IsCorrect)
	assert.Equal(t, 2, res.Correct)
}

func TestGradeMatchingIsOrderIndependent(t *testing.T) {
	set := Set{Items: []Item{{Kind: Matching, Question: "q", Pairs: Pairs{{"1", "A"}, {"2", "B"}, {"3", "C"}}, Answer: "2-B,1-A,3-C"}}}

	res, err := Grade(set, Answers{0: "1-A, 2-B, 3-C"})
	require.NoError(t, err)
	assert.True(t, res.Items[0].IsCorrect)

	res, err = Grade(set, Answers{0: "1-A, 2-B"})
	require.NoError(t, err)
	assert.False(t, res.Items[0].IsCorrect)

	res, err = Grade(set, Answers{0: "1-A, 1-A, 2-B, 3-C"})
	require.NoError(t, err)
	assert.True(t, res.Items[0].IsCorrect, "duplicate tokens collapse")
}

func TestGradeMissingAndEmptyAnswersAreIdentical(t *testing.T) {
	set := Set{Items: []Item{{Kind: ShortAnswer, Question: "q", Answer: "x", Explanation: "e"}}}

	missing, err := Grade(set, Answers{})
	require.NoError(t, err)
	empty, err := Grade(set, Answers{0: ""})
	require.NoError(t, err)

	assert.Equal(t, missing, empty)
	assert.False(t, missing.Items[0].IsCorrect)
	assert.False(t, missing.Items[0].Answered)
	assert.Equal(t, NoAnswer, missing.Items[0].Submitted)
}

func TestGradeAggregate(t *testing.T) {
	set := Set{Items: []Item{
		{Kind: ShortAnswer, Question: "q1", Answer: "a"},
		{Kind: ShortAnswer, Question: "q2", Answer: "b"},
		{Kind: ShortAnswer, Question: "q3", Answer: "c"},
	}}
	res, err := Grade(set, Answers{0: "a", 1: "b", 2: "wrong"})
	require.NoError(t, err)

	correct := 0
	for _, ir := range res.Items {
		if MatchExact(ir.Submitted, ir.Answer) {
			correct++
		}
	}
	assert.Equal(t, correct, res.Correct)
	assert.Equal(t, 66.7, res.Percentage)
	assert.Equal(t, TierGood, res.Tier())
}

func TestGradeEmptySet(t *testing.T) {
	_, err := Grade(Set{}, Answers{0: "a"})
	assert.ErrorIs(t, err, ErrNoQuiz)
}

func TestGraderUsesRegisteredRule(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, c.Register(KindSpec{Kind: "ordering", Rule: RuleSet}))
	g := NewGrader(c)

	set := Set{Items: []Item{{Kind: "ordering", Question: "q", Answer: "a,b"}}}
	res, err := g.Grade(set, Answers{0: "b, a"})
	require.NoError(t, err)
	assert.True(t, res.Items[0].IsCorrect)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(0, 0))
	assert.Equal(t, 33.3, Percentage(1, 3))
	assert.Equal(t, 12.5, Percentage(1, 8))
	assert.Equal(t, 85.7, Percentage(6, 7))
	assert.Equal(t, 100.0, Percentage(7, 7))
}

func TestTiers(t *testing.T) {
	assert.Equal(t, TierExcellent, Result{Percentage: 80}.Tier())
	assert.Equal(t, TierGood, Result{Percentage: 60}.Tier())
	assert.Equal(t, TierReview, Result{Percentage: 59.9}.Tier())
	assert.NotEqual(t, TierGood.Message(), TierReview.Message())
}
