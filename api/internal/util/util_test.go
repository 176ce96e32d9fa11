package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("  {\"a\":1}  "))
}

func TestClampRunes(t *testing.T) {
	assert.Equal(t, "강의", ClampRunes("강의노트", 2))
	assert.Equal(t, "abc", ClampRunes("abc", 10))
	assert.Equal(t, "ab…", Ellipsize("abcdef", 2))
	assert.Equal(t, "ab", Ellipsize("ab", 2))
}

func TestSniffMime(t *testing.T) {
	assert.Equal(t, "application/pdf", SniffMime([]byte("%PDF-1.7\n...")))
	assert.Equal(t, "image/jpeg", SniffMime([]byte{0xFF, 0xD8, 0xFF}))
	assert.Equal(t, "application/octet-stream", SniffMime(nil))
}

func TestPickMIME(t *testing.T) {
	assert.Equal(t, "application/pdf", PickMIME("application/PDF; name=a.pdf", nil))
	assert.Equal(t, "application/pdf", PickMIME("application/octet-stream", []byte("%PDF-1.4")))
	assert.Equal(t, "application/pdf", PickMIME("", []byte("%PDF-1.4")))
}

func TestSHA256Hex(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", SHA256Hex(nil))
}
