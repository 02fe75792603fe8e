// Package document holds the in-memory rich-text document the editor session
// mutates. The session core only sees the small adapter surface here: read
// plain text, append, clear, and observe content changes.
package document

import (
	"strings"
	"sync"
	"unicode"
)

// ChangeFunc is invoked once per content-changing mutation with the
// document's new plain text.
type ChangeFunc func(plainText string)

// Document is an append-oriented text buffer with change observation.
// Mutations are atomic: each Append or Clear produces at most one change
// notification, and readers never observe a half-applied mutation.
type Document struct {
	mu        sync.Mutex
	runes     []rune
	cursor    int
	version   uint64
	observers []ChangeFunc
}

// New creates a document seeded with the given text. The cursor starts at
// the end of the seed text.
func New(text string) *Document {
	r := []rune(text)
	return &Document{
		runes:  r,
		cursor: len(r),
	}
}

// PlainText returns the current document content with control characters
// stripped. Newlines and tabs survive; everything else below U+0020 does not.
func (d *Document) PlainText() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return stripControl(d.runes)
}

// Append inserts s immediately before the document's trailing boundary and
// notifies observers. Appends that leave the plain text unchanged (empty
// strings, or strings whose runes are all stripped on read) are not content
// changes: they bump no version and fire no change event.
func (d *Document) Append(s string) {
	if s == "" {
		return
	}
	d.mu.Lock()
	before := stripControl(d.runes)
	d.runes = append(d.runes, []rune(s)...)
	text := stripControl(d.runes)
	if text == before {
		d.mu.Unlock()
		return
	}
	d.version++
	observers := d.observers
	d.mu.Unlock()

	for _, fn := range observers {
		fn(text)
	}
}

// Clear removes all content and resets the cursor. Clearing an already
// empty document is a no-op and fires no change event.
func (d *Document) Clear() {
	d.mu.Lock()
	if len(d.runes) == 0 {
		d.mu.Unlock()
		return
	}
	d.runes = d.runes[:0]
	d.cursor = 0
	d.version++
	observers := d.observers
	d.mu.Unlock()

	for _, fn := range observers {
		fn("")
	}
}

// OnChange registers fn to be called after every content-changing mutation.
// Observers are invoked outside the document lock, in registration order.
func (d *Document) OnChange(fn ChangeFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, fn)
}

// Len returns the current content length in runes.
func (d *Document) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.runes)
}

// Version returns a counter incremented on every effective mutation.
func (d *Document) Version() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

// Cursor returns the current cursor position as a rune offset.
func (d *Document) Cursor() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor
}

// MoveCursorToEnd places the cursor after the last rune. Cursor moves are
// not content changes and fire no change event.
func (d *Document) MoveCursorToEnd() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cursor = len(d.runes)
}

func stripControl(runes []rune) string {
	var sb strings.Builder
	sb.Grow(len(runes))
	for _, r := range runes {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
