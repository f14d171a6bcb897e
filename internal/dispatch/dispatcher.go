package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"sigtui/internal/conv"
	"sigtui/internal/logging"
	"sigtui/internal/rpc"
)

// Notifier delivers a desktop notification. Fire-and-forget; implementations
// must not block the dispatch loop.
type Notifier interface {
	Send(title, body string)
}

// EntryHook observes every entry the dispatcher appends. The UI uses it to
// refresh the transcript and optionally auto-reveal fresh media. Called from
// the dispatch loop, so it must return quickly.
type EntryHook func(conversationID string, entry conv.Entry)

// Dispatcher classifies decoded messages and applies them to the directory
// and transcript buffers. All conversation state mutation funnels through
// here, on a single goroutine, which is what keeps per-conversation entry
// order stable.
type Dispatcher struct {
	dir     *conv.Directory
	corr    *rpc.Correlator
	notify  Notifier
	onEntry EntryHook
	self    string // display name for our own sync'd messages
}

// New builds a dispatcher. notify and onEntry may be nil.
func New(dir *conv.Directory, corr *rpc.Correlator, notify Notifier, self string) *Dispatcher {
	if self == "" {
		self = "me"
	}
	return &Dispatcher{dir: dir, corr: corr, notify: notify, self: self}
}

// OnEntry installs the entry hook. Call before Run.
func (d *Dispatcher) OnEntry(hook EntryHook) {
	d.onEntry = hook
}

// Run consumes decoded messages until the channel closes or ctx is
// cancelled. This is the single dispatch loop: messages are applied strictly
// in arrival order.
func (d *Dispatcher) Run(ctx context.Context, msgs <-chan *rpc.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			d.Dispatch(msg)
		}
	}
}

// Dispatch routes one decoded message. Exactly one branch fires:
// receive notifications go to the receive handler, error responses are
// correlated back to their conversation, and everything else (success
// responses, unknown notifications, server-initiated requests) is dropped.
func (d *Dispatcher) Dispatch(msg *rpc.Message) {
	switch msg.Kind {
	case rpc.KindNotification:
		if msg.Method == "receive" {
			d.handleReceive(msg.Params)
			return
		}
		logging.DispatchDebug("ignoring notification method=%q", msg.Method)

	case rpc.KindErrorResponse:
		d.handleError(msg)

	case rpc.KindResponse:
		// Success result for a request we sent; nothing to surface. The
		// registration, if any, is consumed so a duplicate error for the
		// same id cannot fire later.
		d.corr.Resolve(msg.ID)

	case rpc.KindRequest:
		logging.DispatchDebug("dropping server-initiated request method=%q id=%d", msg.Method, msg.ID)
	}
}

// handleError surfaces a daemon-reported RPC failure in the conversation
// that originated the request, when one was registered. Unknown ids are
// dropped silently: the request was fire-and-forget or already resolved.
func (d *Dispatcher) handleError(msg *rpc.Message) {
	convID, ok := d.corr.Resolve(msg.ID)
	if !ok || convID == "" {
		logging.Get(logging.CategoryDispatch).Warn("daemon error without conversation context id=%d: %s", msg.ID, msg.Err.Message)
		return
	}
	text := fmt.Sprintf("send failed: %s", msg.Err.Message)
	d.appendEntry(convID, conv.NewSystemEntry(text, conv.SeverityError))
}

// handleReceive applies one envelope to the conversation layer.
func (d *Dispatcher) handleReceive(params json.RawMessage) {
	var p ReceiveParams
	if err := json.Unmarshal(params, &p); err != nil {
		logging.Get(logging.CategoryDispatch).Error("malformed receive params: %v", err)
		return
	}
	env := &p.Envelope

	if env.SourceNumber != "" && env.SourceName != "" {
		d.dir.SetName(env.SourceNumber, env.SourceName)
	}

	switch {
	case env.DataMessage != nil:
		d.handleDataMessage(env)
	case env.SyncMessage != nil && env.SyncMessage.SentMessage != nil:
		d.handleSyncSent(env.SyncMessage.SentMessage)
	case env.TypingMessage != nil:
		d.handleTyping(env)
	default:
		// Receipts and other envelope flavors carry nothing for the
		// transcript.
		logging.DispatchDebug("envelope from %s with no displayable payload", env.SourceNumber)
	}
}

func (d *Dispatcher) handleDataMessage(env *Envelope) {
	convID := env.conversationID()
	if convID == "" {
		return
	}
	d.dir.MarkActive(convID)
	d.dir.ClearTyping(convID)

	dm := env.DataMessage
	entry := conv.NewMessageEntry(conv.DirectionIncoming, d.dir.Name(env.SourceNumber), dm.Message)
	entry.Attachments = toConvAttachments(dm.Attachments)
	entry.Sticker = toConvSticker(dm.Sticker)
	if !entry.HasContent() {
		// Reaction-only or expiry-timer updates; nothing to append.
		return
	}

	d.appendEntry(convID, entry)

	if d.notify != nil {
		d.notify.Send(d.dir.Name(convID), notificationBody(entry))
	}
}

// handleSyncSent records our own message, echoed from another linked device,
// as an outgoing entry under the destination conversation.
func (d *Dispatcher) handleSyncSent(sent *SentMessage) {
	convID := sent.Destination
	if sent.GroupInfo != nil && sent.GroupInfo.GroupID != "" {
		convID = sent.GroupInfo.GroupID
	}
	if convID == "" {
		return
	}
	d.dir.MarkActive(convID)

	entry := conv.NewMessageEntry(conv.DirectionOutgoing, d.self, sent.Message)
	entry.Attachments = toConvAttachments(sent.Attachments)
	entry.Sticker = toConvSticker(sent.Sticker)
	if !entry.HasContent() {
		return
	}
	d.appendEntry(convID, entry)
}

func (d *Dispatcher) handleTyping(env *Envelope) {
	convID := env.typingConversationID()
	if convID == "" {
		return
	}
	d.dir.MarkActive(convID)

	switch env.TypingMessage.Action {
	case "STARTED":
		d.dir.MarkTyping(convID)
	case "STOPPED":
		d.dir.ClearTyping(convID)
	}
}

func (d *Dispatcher) appendEntry(convID string, entry conv.Entry) {
	d.dir.Buffer(convID).AppendEntry(entry)
	if d.onEntry != nil {
		d.onEntry(convID, entry)
	}
}

// notificationBody derives the notification text by priority:
// text > sticker marker > attachment marker > generic.
func notificationBody(entry conv.Entry) string {
	switch {
	case entry.Text != "":
		return entry.Text
	case entry.Sticker != nil:
		if entry.Sticker.Emoji != "" {
			return "sticker " + entry.Sticker.Emoji
		}
		return "sticker"
	case len(entry.Attachments) > 0:
		return fmt.Sprintf("%d attachment(s)", len(entry.Attachments))
	default:
		return "new message"
	}
}
