// Package rpc implements the wire layer for the signal-cli JSON-RPC daemon:
// newline framing of the raw byte stream, decoding of individual records into
// a tagged message union, and correlation of outbound request ids with the
// conversation that originated them.
package rpc

import "encoding/json"

// Kind discriminates decoded JSON-RPC messages. Every decoded record is
// exactly one of these; downstream dispatch switches on Kind exhaustively
// instead of re-probing fields.
type Kind int

const (
	// KindRequest is a server-initiated request (has both method and id).
	// The daemon does not normally send these; they are classified so the
	// dispatcher can drop them deliberately.
	KindRequest Kind = iota

	// KindResponse is a success response carrying a result for an id.
	KindResponse

	// KindErrorResponse is a failure response carrying an error object.
	KindErrorResponse

	// KindNotification is a server-initiated event with a method and no id.
	KindNotification
)

// String returns the kind name for logs.
func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindErrorResponse:
		return "error"
	case KindNotification:
		return "notification"
	}
	return "unknown"
}

// Error is the JSON-RPC error object attached to a failed response.
type Error struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

// Message is one decoded inbound unit. ID is meaningful for KindRequest,
// KindResponse and KindErrorResponse; Method and Params for KindRequest and
// KindNotification; Result for KindResponse; Err for KindErrorResponse.
type Message struct {
	Kind   Kind
	ID     int64
	Method string
	Params json.RawMessage
	Result json.RawMessage
	Err    *Error
}

// Request is the outbound JSON-RPC call shape. Marshalled and written as a
// single newline-terminated line on the daemon's stdin.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      int64  `json:"id"`
}

// NewRequest builds an outbound request with the protocol version set.
func NewRequest(id int64, method string, params any) Request {
	return Request{JSONRPC: "2.0", Method: method, Params: params, ID: id}
}
