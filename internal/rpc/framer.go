package rpc

import (
	"bytes"
	"errors"
	"fmt"
)

// MaxRecordBytes bounds the remainder buffer. A daemon that streams bytes
// without ever terminating a record would otherwise grow the buffer without
// limit; past this ceiling the buffered bytes are discarded wholesale.
const MaxRecordBytes = 100_000

// ErrOversizedRecord reports that the remainder buffer exceeded
// MaxRecordBytes without completing a record and was discarded.
var ErrOversizedRecord = errors.New("rpc: unterminated record exceeded size ceiling")

// LineFramer reassembles a chunked byte stream into complete
// newline-terminated records. A trailing fragment without a terminator is
// held across Feed calls and never emitted on its own.
type LineFramer struct {
	remainder []byte
}

// Feed appends chunk to the remainder buffer and returns every complete
// record now available, in stream order, without their terminators.
//
// When the remainder grows past MaxRecordBytes without a terminator, it is
// cleared in full and ErrOversizedRecord is returned alongside any records
// that did complete; no record is ever derived from the discarded bytes.
// The framer stays usable after the error.
func (f *LineFramer) Feed(chunk []byte) ([]string, error) {
	f.remainder = append(f.remainder, chunk...)

	var records []string
	for {
		i := bytes.IndexByte(f.remainder, '\n')
		if i < 0 {
			break
		}
		records = append(records, string(f.remainder[:i]))
		f.remainder = f.remainder[i+1:]
	}

	if len(f.remainder) > MaxRecordBytes {
		n := len(f.remainder)
		f.remainder = nil
		return records, fmt.Errorf("%w (%d bytes buffered)", ErrOversizedRecord, n)
	}
	return records, nil
}

// Pending returns the number of buffered bytes awaiting a terminator.
func (f *LineFramer) Pending() int {
	return len(f.remainder)
}

// Reset discards the remainder buffer. Called on connection stop/restart so
// a partial record from the old process never leaks into the new stream.
func (f *LineFramer) Reset() {
	f.remainder = nil
}
