package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairsUnmarshal(t *testing.T) {
	var p Pairs
	require.NoError(t, json.Unmarshal([]byte(`{"z": "last", "a": 1, "m": true, "z": "again"}`), &p))
	assert.Equal(t, Pairs{{"z", "again"}, {"a", "1"}, {"m", "true"}}, p)

	require.NoError(t, json.Unmarshal([]byte(`null`), &p))
	assert.Nil(t, p)

	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &p))
}

func TestLetter(t *testing.T) {
	assert.Equal(t, "A", Letter(0))
	assert.Equal(t, "C", Letter(2))
	assert.Equal(t, "Z", Letter(25))
	assert.Equal(t, "AA", Letter(26))
}

func TestValidateMatchingKey(t *testing.T) {
	c := DefaultCatalog()
	it := Item{Kind: Matching, Question: "q", Pairs: Pairs{{"Go", "gopher"}, {"Rust", "crab"}}}

	it.Answer = "Go-gopher, Rust-crab"
	assert.NoError(t, it.Validate(c))

	it.Answer = "1-A, 2-B"
	assert.NoError(t, it.Validate(c), "positions reference pairs too")

	it.Answer = "Go-gopher"
	assert.Error(t, it.Validate(c), "every pair must be referenced")

	it.Answer = "Go-gopher, Go-crab, Rust-crab"
	assert.Error(t, it.Validate(c), "a pair referenced twice")

	it.Answer = "Go-gopher, Java-duke, Rust-crab"
	assert.Error(t, it.Validate(c), "unknown label")

	numeric := Item{Kind: Matching, Question: "q", Pairs: Pairs{{"2", "a"}, {"1", "b"}}, Answer: "1-b, 2-a"}
	assert.NoError(t, numeric.Validate(c), "numeric labels resolve by label before position")
}

func TestParseSetNumericLabelsOutOfOrder(t *testing.T) {
	raw := `{"quizzes":[{"type":"matching","question":"q","pairs":{"2":"a","1":"b"},"answer":"1-b, 2-a"}]}`
	set, err := ParseSet(raw, DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, Pairs{{"2", "a"}, {"1", "b"}}, set.Items[0].Pairs)
}

func TestValidateMatchingPrefersLongestLabel(t *testing.T) {
	it := Item{Kind: Matching, Question: "q", Pairs: Pairs{{"C", "1972"}, {"C-sharp", "2000"}}, Answer: "C-1972, C-sharp-2000"}
	assert.NoError(t, it.Validate(DefaultCatalog()))
}

func TestValidateMultipleChoice(t *testing.T) {
	c := DefaultCatalog()
	it := Item{Kind: MultipleChoice, Question: "q", Options: []string{"Alpha", "Beta"}, Answer: " beta "}
	assert.NoError(t, it.Validate(c))

	it.Answer = "B"
	assert.Error(t, it.Validate(c))
}

func TestNormalize(t *testing.T) {
	it := Item{Kind: ShortAnswer, Question: " q ", Options: []string{"a"}, Pairs: Pairs{{"1", "a"}}, Answer: " x "}
	it.Normalize()
	assert.Equal(t, "q", it.Question)
	assert.Equal(t, "x", it.Answer)
	assert.Nil(t, it.Options)
	assert.Nil(t, it.Pairs)

	mc := Item{Kind: MultipleChoice, Options: []string{" a ", "", "b"}}
	mc.Normalize()
	assert.Equal(t, []string{"a", "b"}, mc.Options)

	tf := Item{Kind: TrueFalse, Answer: " o"}
	tf.Normalize()
	assert.Equal(t, "O", tf.Answer)
}
