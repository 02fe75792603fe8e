package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendRoundTrip(t *testing.T) {
	d := New("")
	d.Append("a")
	d.Append("b")
	assert.Equal(t, "ab", d.PlainText())
}

func TestClearThenRead(t *testing.T) {
	d := New("Hello world")
	d.Clear()
	assert.Equal(t, "", d.PlainText())
	assert.Equal(t, 0, d.Cursor())
}

func TestSeedTextAndCursor(t *testing.T) {
	d := New("Hello")
	assert.Equal(t, "Hello", d.PlainText())
	assert.Equal(t, 5, d.Cursor())
}

func TestOnChangeFiresOncePerMutation(t *testing.T) {
	d := New("")
	var snapshots []string
	d.OnChange(func(text string) {
		snapshots = append(snapshots, text)
	})

	d.Append("Hi")
	d.Append(" there")
	d.Clear()

	assert.Equal(t, []string{"Hi", "Hi there", ""}, snapshots)
}

func TestNoChangeEventForNoOps(t *testing.T) {
	d := New("")
	count := 0
	d.OnChange(func(string) { count++ })

	d.Append("")
	d.Clear() // already empty
	d.MoveCursorToEnd()

	assert.Zero(t, count)
}

func TestControlCharactersStrippedOnRead(t *testing.T) {
	d := New("")
	d.Append("a\x00b\x07c\nd\te")
	assert.Equal(t, "abc\nd\te", d.PlainText())
}

func TestControlOnlyAppendIsNotAContentChange(t *testing.T) {
	d := New("abc")
	count := 0
	d.OnChange(func(string) { count++ })

	d.Append("\x07")
	assert.Zero(t, count)
	assert.Equal(t, uint64(0), d.Version())
	assert.Equal(t, "abc", d.PlainText())

	d.Append("\x07d")
	assert.Equal(t, 1, count)
	assert.Equal(t, "abcd", d.PlainText())
}

func TestVersionCountsEffectiveMutations(t *testing.T) {
	d := New("x")
	assert.Equal(t, uint64(0), d.Version())
	d.Append("y")
	d.Clear()
	d.Clear()
	assert.Equal(t, uint64(2), d.Version())
}

func TestMoveCursorToEnd(t *testing.T) {
	d := New("")
	d.Append("abc")
	d.MoveCursorToEnd()
	assert.Equal(t, 3, d.Cursor())
}
