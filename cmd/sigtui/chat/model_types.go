// Package chat provides the interactive TUI for sigtui: the conversation
// list, the transcript viewport, and the composer wired to the daemon.
package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"

	"sigtui/cmd/sigtui/ui"
	"sigtui/internal/config"
	"sigtui/internal/conv"
	"sigtui/internal/daemon"
	"sigtui/internal/dispatch"
	"sigtui/internal/media"
	"sigtui/internal/notify"
)

// ViewMode determines which surface is focused.
type ViewMode int

const (
	ChatView ViewMode = iota
	ListView
)

// typingIdleAfter is how long after the last keystroke we tell the daemon we
// stopped typing.
const typingIdleAfter = 3 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// uiUpdate is what the dispatch goroutine pushes at the UI thread.
type uiUpdate struct {
	conversationID string
	entry          conv.Entry
}

// entryMsg reports a new transcript entry appended by the dispatcher.
type entryMsg uiUpdate

// daemonEventMsg reports a supervisor lifecycle transition.
type daemonEventMsg daemon.Event

// tickMsg drives periodic redraw (typing indicator expiry, clock).
type tickMsg time.Time

// typingIdleMsg fires when the composer has been quiet long enough to send
// the stopped-typing signal.
type typingIdleMsg struct{ seq int }

// errMsg carries an async failure into Update.
type errMsg struct{ err error }

// convItem is a list item for the conversation list.
type convItem struct {
	id, name string
	typing   bool
}

func (i convItem) Title() string { return i.name }
func (i convItem) Description() string {
	if i.typing {
		return i.id + "  typing…"
	}
	return i.id
}
func (i convItem) FilterValue() string { return i.name + " " + i.id }

// =============================================================================
// MODEL
// =============================================================================

// Model is the bubbletea model for the chat surface.
type Model struct {
	// UI components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	list     list.Model
	styles   ui.Styles

	viewMode ViewMode

	// Layout
	width  int
	height int
	ready  bool

	// Backend
	cfg      *config.Config
	sup      *daemon.Supervisor
	dir      *conv.Directory
	disp     *dispatch.Dispatcher
	store    *media.Store
	notifier *notify.Desktop

	// updates is fed by the dispatch goroutine and drained one entry per
	// Update cycle, which keeps transcript order intact.
	updates chan uiUpdate

	runCtx    context.Context
	runCancel context.CancelFunc

	// State
	current     string // focused conversation id, empty until one exists
	daemonState daemon.State
	statusText  string
	typingSeq   int  // invalidates stale typingIdleMsg
	typingSent  bool // we told the daemon we are typing
	err         error
}
