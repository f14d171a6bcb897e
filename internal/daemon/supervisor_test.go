package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sigtui/internal/rpc"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitMessage(t *testing.T, s *Supervisor) *rpc.Message {
	t.Helper()
	select {
	case msg := <-s.Messages():
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a decoded message")
		return nil
	}
}

func waitState(t *testing.T, s *Supervisor, want State) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("state never reached %v, still %v", want, s.State())
}

func TestSupervisor_CallRejectedWhenStopped(t *testing.T) {
	s := New("true")
	_, err := s.Call("send", nil, "+1555")
	assert.ErrorIs(t, err, ErrNotRunning)

	err = s.SendMessage("+1555", "hi")
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestSupervisor_DecodesDaemonOutput(t *testing.T) {
	// A stand-in daemon that interleaves protocol traffic with log noise.
	script := `printf '%s\n' \
'INFO starting up' \
'{"jsonrpc":"2.0","method":"receive","params":{"envelope":{"sourceNumber":"+1555"}}}' \
'not json at all' \
'{"jsonrpc":"2.0","id":1,"result":{}}'
exec sleep 5`
	s := New("sh", "-c", script)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	msg := waitMessage(t, s)
	assert.Equal(t, rpc.KindNotification, msg.Kind)
	assert.Equal(t, "receive", msg.Method)

	msg = waitMessage(t, s)
	assert.Equal(t, rpc.KindResponse, msg.Kind)
	assert.Equal(t, int64(1), msg.ID)
}

func TestSupervisor_CrashMarksFailed(t *testing.T) {
	s := New("sh", "-c", "exit 3")
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	waitState(t, s, StateFailed)
}

func TestSupervisor_WritesRequests(t *testing.T) {
	// cat echoes our own requests back, which exercises the full
	// write -> frame -> decode round trip.
	s := New("cat")
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.NoError(t, s.SendMessage("+1555", "hello"))

	msg := waitMessage(t, s)
	assert.Equal(t, rpc.KindRequest, msg.Kind, "echoed request has method and id")
	assert.Equal(t, "send", msg.Method)
	assert.Equal(t, int64(1), msg.ID)
	assert.JSONEq(t, `{"message":"hello","recipient":["+1555"]}`, string(msg.Params))

	// One in-flight registration for error surfacing.
	assert.Equal(t, 1, s.Correlator().Pending())
}

func TestSupervisor_GroupAddressing(t *testing.T) {
	s := New("cat")
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.NoError(t, s.SendMessage("GroupIdBase64=", "yo"))
	msg := waitMessage(t, s)
	assert.JSONEq(t, `{"message":"yo","groupId":"GroupIdBase64="}`, string(msg.Params))

	require.NoError(t, s.SendTyping("+1555", true))
	msg = waitMessage(t, s)
	assert.Equal(t, "sendTyping", msg.Method)
	assert.JSONEq(t, `{"recipient":["+1555"],"stop":true}`, string(msg.Params))
}

func TestSupervisor_RestartResetsCorrelationsKeepsCounter(t *testing.T) {
	s := New("cat")
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, s.SendMessage("+1555", "first"))
	require.Equal(t, 1, s.Correlator().Pending())

	require.NoError(t, s.Restart(context.Background()))
	defer s.Stop()

	// In-flight contexts abandoned without firing error paths.
	assert.Equal(t, 0, s.Correlator().Pending())

	// Ids keep increasing across the restart; the first message after the
	// restart may still be pre-restart echo, so only check the id.
	require.NoError(t, s.SendMessage("+1555", "second"))
	for {
		msg := waitMessage(t, s)
		if msg.Method == "send" && msg.ID > 1 {
			assert.Equal(t, int64(2), msg.ID)
			break
		}
	}
}

func TestSupervisor_StopIsIdempotent(t *testing.T) {
	s := New("cat")
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	s.Stop()
	assert.Equal(t, StateStopped, s.State())
}
