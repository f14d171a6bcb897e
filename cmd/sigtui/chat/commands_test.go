package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  composerCommand
		ok    bool
	}{
		{"plain text", "hello there", composerCommand{}, false},
		{"bare slash", "/", composerCommand{}, false},
		{"simple", "/restart", composerCommand{Name: "restart"}, true},
		{"uppercase normalized", "/Help", composerCommand{Name: "help"}, true},
		{"args", "/attach /tmp/cat.png look at this", composerCommand{Name: "attach", Args: []string{"/tmp/cat.png", "look", "at", "this"}}, true},
		{"leading whitespace", "  /open", composerCommand{Name: "open"}, true},
		{"escaped slash is text", "//shrug", composerCommand{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseCommand(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want.Name, got.Name)
				assert.Equal(t, tt.want.Args, got.Args)
			}
		})
	}
}

func TestUnescapeSlash(t *testing.T) {
	assert.Equal(t, "/shrug", unescapeSlash("//shrug"))
	assert.Equal(t, "plain", unescapeSlash("plain"))
	assert.Equal(t, "/already single", unescapeSlash("/already single"))
}
