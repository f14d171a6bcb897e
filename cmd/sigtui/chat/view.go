// View rendering for the chat surface: transcript, header, footer, list.
package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"sigtui/internal/conv"
	"sigtui/internal/daemon"
	"sigtui/internal/media"
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.viewMode == ListView {
		return m.styles.Content.Render(m.list.View())
	}

	header := m.renderHeader()
	transcript := m.styles.Content.Render(m.viewport.View())

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textarea.View())

	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		transcript,
		inputArea,
		footer,
	)
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" sigtui ")

	conversation := m.styles.Muted.Render("no conversation")
	if m.current != "" {
		name := m.dir.Name(m.current)
		conversation = m.styles.Title.Render(name)
		if m.dir.Typing(m.current) {
			conversation += m.styles.Muted.Render("  typing…")
		}
	}

	var status string
	switch m.daemonState {
	case daemon.StateRunning:
		status = m.styles.Success.Render(m.statusText)
	case daemon.StateStarting:
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Muted.Render(m.statusText))
	default:
		status = m.styles.Error.Render(m.statusText)
	}

	line := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", conversation, "  ", status)
	return lipgloss.JoinVertical(lipgloss.Left, line, m.styles.RenderDivider(m.width))
}

func (m Model) renderFooter() string {
	timestamp := time.Now().Format("15:04")
	help := "Tab: conversations | Enter: send | /help | Ctrl+C: quit"
	return m.styles.Footer.Render(fmt.Sprintf("%s | %s", timestamp, help))
}

func (m Model) renderHistory() string {
	if m.current == "" {
		return ""
	}

	var sb strings.Builder
	for _, entry := range m.dir.Buffer(m.current).History() {
		sb.WriteString(m.renderEntry(entry))
	}
	return sb.String()
}

func (m Model) renderEntry(entry conv.Entry) string {
	if entry.Kind == conv.EntrySystem {
		style := m.styles.System
		if entry.Severity == conv.SeverityError {
			style = m.styles.Error
		}
		return style.Render("· "+entry.Text) + "\n"
	}

	senderStyle := m.styles.Sender
	if entry.Direction == conv.DirectionOutgoing {
		senderStyle = m.styles.Self
	}
	stamp := m.styles.Muted.Render(entry.Time.Format("15:04"))

	var sb strings.Builder
	sb.WriteString(senderStyle.Render(entry.Sender) + " " + stamp + "\n")
	if entry.Text != "" {
		sb.WriteString(entry.Text + "\n")
	}
	if entry.Sticker != nil {
		sb.WriteString(m.styles.Muted.Render(media.StickerLabel(*entry.Sticker)) + "\n")
	}
	for _, att := range entry.Attachments {
		sb.WriteString(m.styles.Muted.Render(media.Label(att)) + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}
