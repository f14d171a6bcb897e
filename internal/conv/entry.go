// Package conv holds the per-conversation state: the directory of known
// conversations and the append-only transcript buffer each one owns.
package conv

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Direction marks who originated a message entry.
type Direction int

const (
	DirectionIncoming Direction = iota
	DirectionOutgoing
)

// EntryKind separates real messages from locally generated system lines.
type EntryKind int

const (
	EntryMessage EntryKind = iota
	EntrySystem
)

// Severity tags system entries.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityError
)

// Attachment describes one received or sent attachment. LocalPath is filled
// in lazily by the media layer; the dispatch path never blocks on it.
type Attachment struct {
	ID          string
	ContentType string
	Filename    string
	LocalPath   string
}

// Sticker identifies a sticker by pack and index, with an emoji fallback for
// terminals that cannot render the artwork.
type Sticker struct {
	PackID    string
	StickerID int
	Emoji     string
}

// Entry is one immutable unit of conversation history. Once appended to a
// Buffer it is never mutated or removed.
type Entry struct {
	ID          string
	Kind        EntryKind
	Direction   Direction
	Severity    Severity
	Sender      string // display name or number; empty for system entries
	Text        string
	Attachments []Attachment
	Sticker     *Sticker
	Time        time.Time
}

// NewMessageEntry builds a message entry with a fresh id.
func NewMessageEntry(dir Direction, sender, text string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Kind:      EntryMessage,
		Direction: dir,
		Sender:    sender,
		Text:      text,
		Time:      time.Now(),
	}
}

// NewSystemEntry builds an unattributed system entry.
func NewSystemEntry(text string, sev Severity) Entry {
	return Entry{
		ID:       uuid.NewString(),
		Kind:     EntrySystem,
		Severity: sev,
		Text:     text,
		Time:     time.Now(),
	}
}

// HasContent reports whether the entry carries anything worth appending:
// text, at least one attachment, or a sticker.
func (e Entry) HasContent() bool {
	return strings.TrimSpace(e.Text) != "" || len(e.Attachments) > 0 || e.Sticker != nil
}

// IsGroup reports whether a conversation id addresses a group. Individual
// conversations use phone-number-like ids ("+1555..."); everything else is a
// group id, and the two spaces never overlap. Outgoing routing depends on
// this: groups are addressed by groupId, individuals by recipient.
func IsGroup(conversationID string) bool {
	return !strings.HasPrefix(conversationID, "+")
}
