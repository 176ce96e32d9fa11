package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswersFromAny(t *testing.T) {
	got := AnswersFromAny(map[string]any{
		"0":   "b",
		" 1 ": "O",
		"2":   42,
		"x":   "ignored",
		"-1":  "ignored",
		"3":   nil,
	})
	assert.Equal(t, Answers{0: "b", 1: "O"}, got)
}

func TestAnswersGet(t *testing.T) {
	a := Answers{0: "x", 1: "", 2: "   "}
	v, ok := a.Get(0)
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	for _, i := range []int{1, 2, 3} {
		_, ok := a.Get(i)
		assert.False(t, ok, i)
	}
}

func TestAnswersClone(t *testing.T) {
	a := Answers{0: "x"}
	b := a.Clone()
	b[1] = "y"
	assert.Len(t, a, 1)
}
