package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testReason struct {
	text string
}

func (r testReason) String() string { return "reason: " + r.text }

func TestNone(t *testing.T) {
	assert.False(t, None[string]().IsDefined())

	assert.Equal(t, 0, None[int]().Value())
	assert.Equal(t, "", None[string]().Value())
	assert.Nil(t, None[*string]().Value())
	assert.Equal(t, testReason{}, None[testReason]().Value())
}

func TestZeroValueIsNone(t *testing.T) {
	var m Maybe[string]
	assert.False(t, m.IsDefined())
	assert.Equal(t, None[string](), m)
}

func TestSome(t *testing.T) {
	assert.True(t, Some("").IsDefined())

	assert.Equal(t, 1, Some(1).Value())
	assert.Equal(t, "skipped in production", Some("skipped in production").Value())
}

func TestOrElse(t *testing.T) {
	assert.Equal(t, 3, None[int]().OrElse(3))
	assert.Equal(t, 4, Some(4).OrElse(3))
	assert.Equal(t, "(no reason given)", None[string]().OrElse("(no reason given)"))
}

func TestString(t *testing.T) {
	assert.Equal(t, "[none]", None[int]().String())
	assert.Equal(t, "20", Some(20).String())
	assert.Equal(t, "reason: out of stock", Some(testReason{text: "out of stock"}).String())
}
