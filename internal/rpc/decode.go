package rpc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// wireMessage is the superset shape used to probe an inbound record before
// classifying it. Pointer fields distinguish "absent" from zero values.
type wireMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// Decode parses one framed record into a Message.
//
// Records that do not begin with '{' after trimming are not protocol traffic
// (signal-cli interleaves plain log lines on the same stream) and yield
// (nil, nil): skipped, not an error. Records that look like JSON objects but
// fail to parse return a decode error; the caller logs and drops the record
// and the stream continues.
func Decode(record string) (*Message, error) {
	record = strings.TrimSpace(record)
	if !strings.HasPrefix(record, "{") {
		return nil, nil
	}

	var w wireMessage
	if err := json.Unmarshal([]byte(record), &w); err != nil {
		return nil, fmt.Errorf("rpc: decode record: %w", err)
	}

	msg := &Message{
		Method: w.Method,
		Params: w.Params,
		Result: w.Result,
		Err:    w.Error,
	}
	if w.ID != nil {
		msg.ID = *w.ID
	}

	switch {
	case w.Error != nil:
		msg.Kind = KindErrorResponse
	case w.Method != "" && w.ID == nil:
		msg.Kind = KindNotification
	case w.Method != "":
		msg.Kind = KindRequest
	default:
		msg.Kind = KindResponse
	}
	return msg, nil
}
