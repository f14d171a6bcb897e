package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDesktop_Disabled(t *testing.T) {
	d := NewDesktop(false)
	assert.False(t, d.Enabled())

	// Must be safe to call in the no-op state.
	d.Send("title", "body")
}

func TestNewDesktop_MissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	d := NewDesktop(true)
	assert.False(t, d.Enabled())
	d.Send("title", "body")
}
