package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Classification(t *testing.T) {
	t.Run("notification", func(t *testing.T) {
		msg, err := Decode(`{"jsonrpc":"2.0","method":"receive","params":{"envelope":{}}}`)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, KindNotification, msg.Kind)
		assert.Equal(t, "receive", msg.Method)
		assert.JSONEq(t, `{"envelope":{}}`, string(msg.Params))
	})

	t.Run("response with result", func(t *testing.T) {
		msg, err := Decode(`{"jsonrpc":"2.0","id":7,"result":{"timestamp":123}}`)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, KindResponse, msg.Kind)
		assert.Equal(t, int64(7), msg.ID)
	})

	t.Run("error response", func(t *testing.T) {
		msg, err := Decode(`{"jsonrpc":"2.0","id":3,"error":{"code":-32602,"message":"bad params"}}`)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, KindErrorResponse, msg.Kind)
		assert.Equal(t, int64(3), msg.ID)
		require.NotNil(t, msg.Err)
		assert.Equal(t, "bad params", msg.Err.Message)
		assert.Equal(t, -32602, msg.Err.Code)
	})

	t.Run("server request has method and id", func(t *testing.T) {
		msg, err := Decode(`{"jsonrpc":"2.0","id":9,"method":"ping"}`)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, KindRequest, msg.Kind)
	})
}

func TestDecode_ForeignLines(t *testing.T) {
	for _, record := range []string{
		"",
		"   ",
		"INFO  ReceiveHelper - envelope received",
		"[2.9.0] starting daemon",
		`"just a string"`,
	} {
		msg, err := Decode(record)
		assert.NoError(t, err, "record %q", record)
		assert.Nil(t, msg, "record %q should be skipped", record)
	}
}

func TestDecode_Malformed(t *testing.T) {
	msg, err := Decode(`{"jsonrpc":"2.0","id":`)
	assert.Error(t, err)
	assert.Nil(t, msg)

	// A malformed record must not poison later ones.
	msg, err = Decode(`{"jsonrpc":"2.0","id":1,"result":{}}`)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, KindResponse, msg.Kind)
}

func TestDecode_SurroundingWhitespace(t *testing.T) {
	msg, err := Decode("  \t{\"jsonrpc\":\"2.0\",\"id\":2,\"result\":null}\r")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, KindResponse, msg.Kind)
	assert.Equal(t, int64(2), msg.ID)
}

// A record arriving in two chunks must produce exactly one decoded
// notification once framed.
func TestDecode_AfterFraming(t *testing.T) {
	var f LineFramer
	records, err := f.Feed([]byte(`{"method":"r`))
	require.NoError(t, err)
	require.Empty(t, records)

	records, err = f.Feed([]byte("eceive\",\"params\":{}}\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)

	msg, err := Decode(records[0])
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, KindNotification, msg.Kind)
	assert.Equal(t, "receive", msg.Method)
}
