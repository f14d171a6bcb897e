package conv

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_AppendPreservesOrder(t *testing.T) {
	b := NewBuffer()
	const n = 50
	for i := 0; i < n; i++ {
		b.AppendEntry(NewMessageEntry(DirectionIncoming, "Ann", fmt.Sprintf("msg %d", i)))
	}

	history := b.History()
	require.Len(t, history, n)
	for i, e := range history {
		assert.Equal(t, fmt.Sprintf("msg %d", i), e.Text)
	}

	// The boundary always sits after the last entry.
	assert.Equal(t, n, b.Boundary())
}

func TestBuffer_AppendEvictsComposingText(t *testing.T) {
	b := NewBuffer()
	b.SetInput("half-typed repl")

	b.AppendEntry(NewMessageEntry(DirectionIncoming, "Ann", "hi"))

	// Current behavior: the splice discards in-progress composition and
	// re-establishes an empty region at the new tail.
	assert.Empty(t, b.Input())
	assert.Equal(t, 1, b.Boundary())
}

func TestBuffer_TakeInput(t *testing.T) {
	b := NewBuffer()
	b.SetInput("  hello there \n")

	got := b.TakeInput()
	assert.Equal(t, "hello there", got)
	assert.Empty(t, b.Input())

	// A second take returns nothing.
	assert.Empty(t, b.TakeInput())
}

func TestBuffer_GuardCursor(t *testing.T) {
	b := NewBuffer()
	for i := 0; i < 3; i++ {
		b.AppendEntry(NewMessageEntry(DirectionIncoming, "Ann", "x"))
	}

	assert.Equal(t, 3, b.GuardCursor(0), "positions inside history clamp to the boundary")
	assert.Equal(t, 3, b.GuardCursor(2))
	assert.Equal(t, 3, b.GuardCursor(3))
	assert.Equal(t, 7, b.GuardCursor(7), "positions at or after the boundary pass through")
}

func TestBuffer_AppendSystem(t *testing.T) {
	b := NewBuffer()
	b.AppendSystem("daemon error: untrusted identity", SeverityError)

	history := b.History()
	require.Len(t, history, 1)
	assert.Equal(t, EntrySystem, history[0].Kind)
	assert.Equal(t, SeverityError, history[0].Severity)
	assert.Empty(t, history[0].Sender)
}

func TestBuffer_ConcurrentAppendAndEdit(t *testing.T) {
	b := NewBuffer()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			b.AppendEntry(NewMessageEntry(DirectionIncoming, "Ann", fmt.Sprintf("%d", i)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			b.SetInput("typing...")
			_ = b.Input()
		}
	}()
	wg.Wait()

	history := b.History()
	require.Len(t, history, 200)
	for i, e := range history {
		assert.Equal(t, fmt.Sprintf("%d", i), e.Text, "appends must never reorder")
	}
}

func TestEntry_HasContent(t *testing.T) {
	assert.False(t, Entry{}.HasContent())
	assert.False(t, Entry{Text: "   "}.HasContent())
	assert.True(t, Entry{Text: "hi"}.HasContent())
	assert.True(t, Entry{Attachments: []Attachment{{ID: "a1"}}}.HasContent())
	assert.True(t, Entry{Sticker: &Sticker{Emoji: "🦊"}}.HasContent())
}

func TestIsGroup(t *testing.T) {
	assert.False(t, IsGroup("+15550001"))
	assert.True(t, IsGroup("Ckt0qvCLmJmEm0UWgFKJgUc3Oz+0ogDkNIsW8lXhWEo="))
}
