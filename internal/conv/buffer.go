package conv

import (
	"strings"
	"sync"
)

// Buffer is the transcript document for one conversation: an ordered,
// immutable history of entries followed by a single mutable input region.
// The boundary between the two is always len(history) and only ever moves
// forward. The input region is never part of history, even though it renders
// where the next entry will land.
//
// Programmatic appends may interleave with user edits to the input region;
// the append path resolves the race by evicting the region rather than
// merging with it (see AppendEntry).
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	input   string
}

// NewBuffer returns an empty buffer in the idle state.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// AppendEntry splices e in at the history/input boundary, advances the
// boundary past it, and re-establishes the input region at the new tail.
//
// Any uncommitted composing text is dropped by the splice: the region is
// removed from the tail, the entry inserted where the boundary was, and an
// empty region re-created below it. This mirrors the evict-then-insert
// discipline the append path has always had; whether composition should be
// preserved instead is recorded as an open question in DESIGN.md.
func (b *Buffer) AppendEntry(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, e)
	b.input = ""
}

// AppendSystem appends an unattributed system line with the same splice
// discipline as AppendEntry.
func (b *Buffer) AppendSystem(text string, sev Severity) {
	b.AppendEntry(NewSystemEntry(text, sev))
}

// TakeInput returns the trimmed content of the input region and clears it.
// It is the only operation allowed to originate a send.
func (b *Buffer) TakeInput() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	text := strings.TrimSpace(b.input)
	b.input = ""
	return text
}

// SetInput replaces the input region content. This is the user-edit surface;
// it never touches history.
func (b *Buffer) SetInput(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.input = text
}

// Input returns the current input region content.
func (b *Buffer) Input() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.input
}

// Boundary returns the index of the history/input boundary, i.e. the number
// of entries appended so far.
func (b *Buffer) Boundary() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// GuardCursor clamps pos to the boundary: history is read-only, so any
// attempted navigation before the boundary lands on it. Call on every
// interactive movement.
func (b *Buffer) GuardCursor(pos int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pos < len(b.entries) {
		return len(b.entries)
	}
	return pos
}

// History returns a copy of the appended entries in append order.
func (b *Buffer) History() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of history entries.
func (b *Buffer) Len() int {
	return b.Boundary()
}
