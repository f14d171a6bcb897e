// Package dispatch routes decoded daemon messages to the conversation layer:
// responses and errors back to their originating conversation via the
// correlator, receive notifications into transcript buffers and the
// directory.
package dispatch

import "sigtui/internal/conv"

// ReceiveParams is the payload of a "receive" notification.
type ReceiveParams struct {
	Envelope Envelope `json:"envelope"`
	Account  string   `json:"account"`
}

// Envelope describes one received protocol event. At most one of
// DataMessage, SyncMessage and TypingMessage is set.
type Envelope struct {
	SourceNumber  string         `json:"sourceNumber"`
	SourceName    string         `json:"sourceName"`
	Timestamp     int64          `json:"timestamp"`
	DataMessage   *DataMessage   `json:"dataMessage"`
	SyncMessage   *SyncMessage   `json:"syncMessage"`
	TypingMessage *TypingMessage `json:"typingMessage"`
}

// DataMessage is a message someone sent to us.
type DataMessage struct {
	Message     string       `json:"message"`
	Timestamp   int64        `json:"timestamp"`
	GroupInfo   *GroupInfo   `json:"groupInfo"`
	Attachments []Attachment `json:"attachments"`
	Sticker     *Sticker     `json:"sticker"`
}

// SyncMessage echoes activity from another linked device of our own account.
type SyncMessage struct {
	SentMessage *SentMessage `json:"sentMessage"`
}

// SentMessage is our own outgoing message echoed back by a sync.
type SentMessage struct {
	Destination string       `json:"destinationNumber"`
	Message     string       `json:"message"`
	Timestamp   int64        `json:"timestamp"`
	GroupInfo   *GroupInfo   `json:"groupInfo"`
	Attachments []Attachment `json:"attachments"`
	Sticker     *Sticker     `json:"sticker"`
}

// TypingMessage is a transient typing indicator; never enters history.
type TypingMessage struct {
	Action    string     `json:"action"` // STARTED or STOPPED
	Timestamp int64      `json:"timestamp"`
	GroupInfo *GroupInfo `json:"groupInfo"`
	GroupID   string     `json:"groupId"`
}

// GroupInfo carries the group routing metadata of a message.
type GroupInfo struct {
	GroupID string `json:"groupId"`
	Type    string `json:"type"`
}

// Attachment is the wire descriptor of one attachment.
type Attachment struct {
	ID          string `json:"id"`
	ContentType string `json:"contentType"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
}

// Sticker is the wire descriptor of a sticker.
type Sticker struct {
	PackID    string `json:"packId"`
	StickerID int    `json:"stickerId"`
	Emoji     string `json:"emoji"`
}

// conversationID computes the target conversation for the envelope's data
// message: the group id when group metadata is present, else the sender.
func (e *Envelope) conversationID() string {
	if e.DataMessage != nil && e.DataMessage.GroupInfo != nil && e.DataMessage.GroupInfo.GroupID != "" {
		return e.DataMessage.GroupInfo.GroupID
	}
	return e.SourceNumber
}

// typingConversationID computes the conversation a typing indicator belongs
// to. signal-cli has emitted the group id both nested and flat over time, so
// both spots are honored.
func (e *Envelope) typingConversationID() string {
	t := e.TypingMessage
	if t != nil {
		if t.GroupInfo != nil && t.GroupInfo.GroupID != "" {
			return t.GroupInfo.GroupID
		}
		if t.GroupID != "" {
			return t.GroupID
		}
	}
	return e.SourceNumber
}

func toConvAttachments(in []Attachment) []conv.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]conv.Attachment, len(in))
	for i, a := range in {
		out[i] = conv.Attachment{ID: a.ID, ContentType: a.ContentType, Filename: a.Filename}
	}
	return out
}

func toConvSticker(in *Sticker) *conv.Sticker {
	if in == nil {
		return nil
	}
	return &conv.Sticker{PackID: in.PackID, StickerID: in.StickerID, Emoji: in.Emoji}
}
