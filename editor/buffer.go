// Package editor provides an in-memory text buffer usable as the editor
// collaborator of the paste orchestrator.
package editor

import "sync"

// Buffer is a document with a cursor and an optional selection. Offsets are
// counted in runes. It is safe for concurrent use.
type Buffer struct {
	mu       sync.Mutex
	text     []rune
	selStart int
	selEnd   int
}

// NewBuffer returns a buffer holding text with the cursor at offset cursor.
func NewBuffer(text string, cursor int) *Buffer {
	b := &Buffer{text: []rune(text)}
	b.SetCursor(cursor)
	return b
}

func (b *Buffer) clamp(offset int) int {
	if offset < 0 {
		return 0
	} else if offset > len(b.text) {
		return len(b.text)
	}
	return offset
}

// SetCursor collapses the selection at offset.
func (b *Buffer) SetCursor(offset int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.selStart = b.clamp(offset)
	b.selEnd = b.selStart
}

// Select marks [start, end) as the current selection.
func (b *Buffer) Select(start, end int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start, end = b.clamp(start), b.clamp(end)
	if start > end {
		start, end = end, start
	}
	b.selStart, b.selEnd = start, end
}

// Cursor returns the start of the selection.
func (b *Buffer) Cursor() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.selStart
}

// ReplaceSelection swaps the selection for text and leaves the cursor after it.
func (b *Buffer) ReplaceSelection(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	end := b.splice(text, b.selStart, b.selEnd)
	b.selStart, b.selEnd = end, end
}

// ReplaceRange swaps [start, end) for text. Out of range offsets are clamped.
// A cursor located after the range is shifted by the length difference.
func (b *Buffer) ReplaceRange(text string, start, end int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start, end = b.clamp(start), b.clamp(end)
	if start > end {
		start, end = end, start
	}

	delta := len([]rune(text)) - (end - start)
	b.splice(text, start, end)

	if b.selStart >= end {
		b.selStart += delta
	} else if b.selStart > start {
		b.selStart = start
	}
	if b.selEnd >= end {
		b.selEnd += delta
	} else if b.selEnd > start {
		b.selEnd = start
	}
}

// splice must be called with mu held, it returns the offset after text.
func (b *Buffer) splice(text string, start, end int) int {
	insert := []rune(text)

	out := make([]rune, 0, len(b.text)-(end-start)+len(insert))
	out = append(out, b.text[:start]...)
	out = append(out, insert...)
	out = append(out, b.text[end:]...)
	b.text = out

	return start + len(insert)
}

// String returns the whole document.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return string(b.text)
}
