package daemon

import (
	"fmt"

	"sigtui/internal/conv"
)

// sendParams is the params shape of a "send" request. Exactly one of GroupID
// and Recipients is set, depending on the conversation's identifier space.
type sendParams struct {
	Message     string   `json:"message,omitempty"`
	GroupID     string   `json:"groupId,omitempty"`
	Recipients  []string `json:"recipient,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

// typingParams is the params shape of a "sendTyping" request.
type typingParams struct {
	GroupID    string   `json:"groupId,omitempty"`
	Recipients []string `json:"recipient,omitempty"`
	Stop       bool     `json:"stop,omitempty"`
}

func addressed(conversationID string) (groupID string, recipients []string) {
	if conv.IsGroup(conversationID) {
		return conversationID, nil
	}
	return "", []string{conversationID}
}

// SendMessage sends text to a conversation. The request is registered with
// the correlator so a daemon error lands back in that conversation.
func (s *Supervisor) SendMessage(conversationID, text string) error {
	if text == "" {
		return nil
	}
	p := sendParams{Message: text}
	p.GroupID, p.Recipients = addressed(conversationID)

	if _, err := s.Call("send", p, conversationID); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendAttachment sends a local file, with optional caption text, to a
// conversation.
func (s *Supervisor) SendAttachment(conversationID, path, caption string) error {
	p := sendParams{Message: caption, Attachments: []string{path}}
	p.GroupID, p.Recipients = addressed(conversationID)

	if _, err := s.Call("send", p, conversationID); err != nil {
		return fmt.Errorf("send attachment: %w", err)
	}
	return nil
}

// SendTyping signals that we started (stop=false) or stopped (stop=true)
// typing in a conversation. Fire-and-forget: no correlation registered,
// errors from the daemon are dropped.
func (s *Supervisor) SendTyping(conversationID string, stop bool) error {
	p := typingParams{Stop: stop}
	p.GroupID, p.Recipients = addressed(conversationID)

	if _, err := s.Call("sendTyping", p, ""); err != nil {
		return fmt.Errorf("send typing: %w", err)
	}
	return nil
}
