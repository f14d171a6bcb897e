package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"sigtui/cmd/sigtui/ui"
	"sigtui/internal/config"
	"sigtui/internal/conv"
	"sigtui/internal/daemon"
	"sigtui/internal/dispatch"
	"sigtui/internal/logging"
	"sigtui/internal/media"
	"sigtui/internal/notify"
)

// NewModel wires the chat model to an already-constructed backend. The
// supervisor is expected to be started by Run.
func NewModel(cfg *config.Config, sup *daemon.Supervisor, dir *conv.Directory, disp *dispatch.Dispatcher, store *media.Store, notifier *notify.Desktop, updates chan uiUpdate, runCtx context.Context, runCancel context.CancelFunc) Model {
	styles := ui.DefaultStyles()

	ta := textarea.New()
	ta.Placeholder = "Message (Enter to send, /help for commands)"
	ta.Prompt = "┃ "
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Muted

	delegate := list.NewDefaultDelegate()
	convList := list.New(nil, delegate, 0, 0)
	convList.Title = "Conversations"
	convList.SetShowStatusBar(false)
	convList.SetFilteringEnabled(true)

	return Model{
		textarea:    ta,
		spinner:     sp,
		list:        convList,
		styles:      styles,
		viewMode:    ChatView,
		cfg:         cfg,
		sup:         sup,
		dir:         dir,
		disp:        disp,
		store:       store,
		notifier:    notifier,
		updates:     updates,
		runCtx:      runCtx,
		runCancel:   runCancel,
		daemonState: sup.State(),
		statusText:  "connecting",
	}
}

// Run builds the full backend, starts the daemon and dispatch loop, and
// blocks in the TUI until the user quits.
func Run(cfg *config.Config) error {
	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	dir := conv.NewDirectory()
	sup := daemon.New(cfg.SignalCLI, cfg.DaemonArgs()...)
	notifier := notify.NewDesktop(cfg.Notifications)
	store := media.NewStore(cfg.AttachmentsDir)

	disp := dispatch.New(dir, sup.Correlator(), notifier, "me")

	updates := make(chan uiUpdate, 128)
	disp.OnEntry(func(conversationID string, entry conv.Entry) {
		select {
		case updates <- uiUpdate{conversationID: conversationID, entry: entry}:
		case <-runCtx.Done():
		}
	})

	if err := sup.Start(runCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	defer sup.Stop()

	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		disp.Run(runCtx, sup.Messages())
	}()

	m := NewModel(cfg, sup, dir, disp, store, notifier, updates, runCtx, runCancel)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()

	runCancel()
	<-dispatchDone
	return err
}

// Init starts the background listeners and the cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.waitForUpdate(),
		m.listenEvents(),
		tickCmd(),
	)
}

// Update is the single event loop for the chat surface.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case entryMsg:
		m.applyEntry(uiUpdate(msg))
		cmds = append(cmds, m.waitForUpdate())

	case daemonEventMsg:
		m.applyDaemonEvent(daemon.Event(msg))
		cmds = append(cmds, m.listenEvents())

	case tickMsg:
		// Redraw so typing indicators age out visually.
		cmds = append(cmds, tickCmd())

	case typingIdleMsg:
		if msg.seq == m.typingSeq && m.typingSent && m.current != "" {
			m.typingSent = false
			cmds = append(cmds, m.sendTypingCmd(m.current, true))
		}

	case errMsg:
		m.err = msg.err
		if m.current != "" {
			m.dir.Buffer(m.current).AppendSystem(msg.err.Error(), conv.SeverityError)
			m.refreshViewport()
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab":
		if m.viewMode == ChatView {
			m.refreshList()
			m.viewMode = ListView
		} else {
			m.viewMode = ChatView
		}
		return m, nil
	}

	if m.viewMode == ListView {
		return m.handleListKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if item, ok := m.list.SelectedItem().(convItem); ok {
			m.focusConversation(item.id)
			m.viewMode = ChatView
		}
		return m, nil
	case "esc":
		if !m.list.SettingFilter() {
			m.viewMode = ChatView
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.submitComposer()

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	// Mirror the composer into the buffer's input region so a programmatic
	// append can evict it, and schedule typing signals.
	if m.current != "" {
		buf := m.dir.Buffer(m.current)
		buf.SetInput(m.textarea.Value())

		if m.textarea.Value() != "" && !m.typingSent {
			m.typingSent = true
			cmds = append(cmds, m.sendTypingCmd(m.current, false))
		}
		m.typingSeq++
		cmds = append(cmds, typingIdleCmd(m.typingSeq))
	}

	return m, tea.Batch(cmds...)
}

// submitComposer sends the composer content: either a slash command or a
// plain message through the buffer's take-and-clear path.
func (m Model) submitComposer() (tea.Model, tea.Cmd) {
	value := m.textarea.Value()

	if cmd, ok := parseCommand(value); ok {
		m.textarea.Reset()
		if m.current != "" {
			m.dir.Buffer(m.current).SetInput("")
		}
		return m.runComposerCommand(cmd)
	}

	if m.current == "" {
		return m, nil
	}

	buf := m.dir.Buffer(m.current)
	buf.SetInput(unescapeSlash(value))
	text := buf.TakeInput()
	m.textarea.Reset()
	if text == "" {
		return m, nil
	}

	entry := conv.NewMessageEntry(conv.DirectionOutgoing, "me", text)
	buf.AppendEntry(entry)
	m.dir.MarkActive(m.current)
	m.refreshViewport()

	m.typingSent = false
	m.typingSeq++
	return m, m.sendMessageCmd(m.current, text)
}

func (m Model) runComposerCommand(cmd composerCommand) (tea.Model, tea.Cmd) {
	appendSystem := func(text string, sev conv.Severity) {
		if m.current != "" {
			m.dir.Buffer(m.current).AppendSystem(text, sev)
			m.refreshViewport()
		}
	}

	switch cmd.Name {
	case "help":
		appendSystem(helpText(), conv.SeverityInfo)
		return m, nil

	case "attach":
		if len(cmd.Args) == 0 {
			appendSystem("usage: /attach <path> [caption]", conv.SeverityError)
			return m, nil
		}
		if m.current == "" {
			return m, nil
		}
		path := cmd.Args[0]
		caption := strings.Join(cmd.Args[1:], " ")
		appendSystem(fmt.Sprintf("sending %s", path), conv.SeverityInfo)
		return m, m.sendAttachmentCmd(m.current, path, caption)

	case "open":
		m.openLatestMedia()
		return m, nil

	case "restart":
		appendSystem("restarting daemon", conv.SeverityInfo)
		return m, m.restartCmd()

	default:
		appendSystem(fmt.Sprintf("unknown command /%s", cmd.Name), conv.SeverityError)
		return m, nil
	}
}

// applyEntry reacts to an entry the dispatcher appended: refresh whatever
// surface shows it and auto-reveal fresh media when configured.
func (m *Model) applyEntry(u uiUpdate) {
	if m.current == "" {
		m.focusConversation(u.conversationID)
	}
	if m.viewMode == ListView {
		m.refreshList()
	}
	if u.conversationID == m.current {
		m.refreshViewport()

		if m.cfg.AutoReveal && u.entry.Direction == conv.DirectionIncoming {
			for _, att := range u.entry.Attachments {
				if path, ok := m.store.Locate(att); ok {
					media.Reveal(path)
				}
			}
		}
	}
}

func (m *Model) applyDaemonEvent(ev daemon.Event) {
	m.daemonState = ev.State
	switch ev.State {
	case daemon.StateRunning:
		m.statusText = "connected"
	case daemon.StateStarting:
		m.statusText = "connecting"
	case daemon.StateStopped:
		m.statusText = "stopped"
	case daemon.StateFailed:
		m.statusText = "daemon down"
		logging.DaemonError("daemon failed: %v", ev.Err)
		if m.current != "" {
			text := "signal-cli exited unexpectedly; /restart to reconnect"
			m.dir.Buffer(m.current).AppendSystem(text, conv.SeverityError)
			m.refreshViewport()
		}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// focusConversation switches the transcript and composer to a conversation.
func (m *Model) focusConversation(id string) {
	if m.current != "" && m.current != id {
		// Park the composer text in the buffer we are leaving.
		m.dir.Buffer(m.current).SetInput(m.textarea.Value())
	}
	m.current = id
	m.dir.MarkActive(id)
	m.textarea.SetValue(m.dir.Buffer(id).Input())
	m.typingSent = false
	m.typingSeq++
	m.refreshViewport()
}

func (m *Model) refreshList() {
	active := m.dir.Active()
	items := make([]list.Item, 0, len(active))
	for _, pair := range active {
		items = append(items, convItem{
			id:     pair.ID,
			name:   pair.Name,
			typing: m.dir.Typing(pair.ID),
		})
	}
	m.list.SetItems(items)
}

func (m *Model) refreshViewport() {
	if m.current == "" {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m *Model) resize() {
	headerHeight := 3
	footerHeight := 2
	inputHeight := m.textarea.Height() + 2

	m.viewport = viewport.New(m.width, max(m.height-headerHeight-footerHeight-inputHeight, 1))
	m.textarea.SetWidth(m.width - 4)
	m.list.SetSize(m.width, m.height-2)
	m.refreshViewport()
}

func (m *Model) openLatestMedia() {
	if m.current == "" {
		return
	}
	history := m.dir.Buffer(m.current).History()
	for i := len(history) - 1; i >= 0; i-- {
		for _, att := range history[i].Attachments {
			if path, ok := m.store.Locate(att); ok {
				media.Reveal(path)
				return
			}
		}
	}
	m.dir.Buffer(m.current).AppendSystem("no media to open", conv.SeverityInfo)
	m.refreshViewport()
}
