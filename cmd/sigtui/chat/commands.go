package chat

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// COMPOSER COMMANDS
// =============================================================================

// composerCommand is a parsed slash command from the composer.
type composerCommand struct {
	Name string
	Args []string
}

// parseCommand recognizes a composer slash command. Returns ok=false for
// plain message text, including text that merely starts with "//" (an escape
// for sending a literal slash).
func parseCommand(input string) (composerCommand, bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") || strings.HasPrefix(trimmed, "//") {
		return composerCommand{}, false
	}
	fields := strings.Fields(trimmed[1:])
	if len(fields) == 0 {
		return composerCommand{}, false
	}
	cmd := composerCommand{Name: strings.ToLower(fields[0])}
	if len(fields) > 1 {
		cmd.Args = fields[1:]
	}
	return cmd, true
}

// unescapeSlash turns a "//"-escaped composer line back into literal text.
func unescapeSlash(input string) string {
	if strings.HasPrefix(strings.TrimSpace(input), "//") {
		trimmed := strings.TrimSpace(input)
		return "/" + strings.TrimPrefix(trimmed, "//")
	}
	return input
}

// helpText lists the composer commands.
func helpText() string {
	return strings.Join([]string{
		"/attach <path> [caption]  send a file",
		"/open                     open the latest media in this conversation",
		"/restart                  restart the signal-cli daemon",
		"/help                     this list",
		"//text                    send a message starting with a literal /",
	}, "\n")
}

// =============================================================================
// ASYNC COMMANDS
// =============================================================================

// waitForUpdate blocks on the dispatch goroutine's update channel.
func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.updates
		if !ok {
			return nil
		}
		return entryMsg(u)
	}
}

// listenEvents blocks on supervisor lifecycle events.
func (m Model) listenEvents() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.sup.Events()
		if !ok {
			return nil
		}
		return daemonEventMsg(ev)
	}
}

// tickCmd drives the once-a-second redraw.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// typingIdleCmd schedules the stopped-typing signal. seq guards against
// firing for an already superseded keystroke.
func typingIdleCmd(seq int) tea.Cmd {
	return tea.Tick(typingIdleAfter, func(time.Time) tea.Msg {
		return typingIdleMsg{seq: seq}
	})
}

// sendMessageCmd sends composer text to the daemon off the UI thread.
func (m Model) sendMessageCmd(conversationID, text string) tea.Cmd {
	sup := m.sup
	return func() tea.Msg {
		if err := sup.SendMessage(conversationID, text); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// sendAttachmentCmd sends a local file to the daemon off the UI thread.
func (m Model) sendAttachmentCmd(conversationID, path, caption string) tea.Cmd {
	sup := m.sup
	return func() tea.Msg {
		if err := sup.SendAttachment(conversationID, path, caption); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// sendTypingCmd signals typing state to the daemon. Failures are dropped:
// a missed typing indicator is not worth surfacing.
func (m Model) sendTypingCmd(conversationID string, stop bool) tea.Cmd {
	sup := m.sup
	return func() tea.Msg {
		_ = sup.SendTyping(conversationID, stop)
		return nil
	}
}

// restartCmd bounces the daemon.
func (m Model) restartCmd() tea.Cmd {
	sup := m.sup
	ctx := m.runCtx
	return func() tea.Msg {
		if err := sup.Restart(ctx); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}
