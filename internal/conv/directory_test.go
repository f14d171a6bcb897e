package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_ImplicitCreation(t *testing.T) {
	d := NewDirectory()

	b1 := d.Buffer("+15550001")
	require.NotNil(t, b1)

	// Same conversation, same buffer.
	b2 := d.Buffer("+15550001")
	assert.Same(t, b1, b2)
}

func TestDirectory_NameCache(t *testing.T) {
	d := NewDirectory()

	assert.Equal(t, "+15550001", d.Name("+15550001"), "falls back to id")

	d.SetName("+15550001", "Ann")
	assert.Equal(t, "Ann", d.Name("+15550001"))

	// Fresher name wins.
	d.SetName("+15550001", "Ann B.")
	assert.Equal(t, "Ann B.", d.Name("+15550001"))

	// Empty names never overwrite.
	d.SetName("+15550001", "")
	assert.Equal(t, "Ann B.", d.Name("+15550001"))
}

func TestDirectory_ActiveOrdering(t *testing.T) {
	d := NewDirectory()
	d.SetName("+15550002", "Bob")

	d.MarkActive("G1")
	d.MarkActive("+15550002")
	d.MarkActive("G1") // re-activation keeps the original position

	got := d.Active()
	require.Len(t, got, 2)
	assert.Equal(t, Pair{ID: "G1", Name: "G1"}, got[0])
	assert.Equal(t, Pair{ID: "+15550002", Name: "Bob"}, got[1])
}

func TestDirectory_Typing(t *testing.T) {
	d := NewDirectory()

	assert.False(t, d.Typing("G1"))

	d.MarkTyping("G1")
	assert.True(t, d.Typing("G1"))

	d.ClearTyping("G1")
	assert.False(t, d.Typing("G1"))
}
