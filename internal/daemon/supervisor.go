// Package daemon supervises the signal-cli child process and turns its
// stdout into an ordered stream of decoded JSON-RPC messages.
package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sigtui/internal/logging"
	"sigtui/internal/rpc"
)

// ErrNotRunning is returned synchronously when an outbound call is attempted
// while no daemon process is running. Nothing is written in that case.
var ErrNotRunning = errors.New("daemon: not running")

// State is the supervisor lifecycle state.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Event is one lifecycle transition surfaced to the UI.
type Event struct {
	State State
	Err   error
}

// readChunkSize is the stdout read granularity. Deliberately small enough
// that partial records are routine and the framer does real work.
const readChunkSize = 4096

// Supervisor owns the signal-cli subprocess: lifecycle, the reader goroutines
// feeding the framer/decoder, and the write side for outbound requests.
//
// Decoded messages are delivered on Messages() strictly in stream order; the
// consumer is expected to be a single dispatch loop. The request-id counter
// lives in the Correlator and survives restarts; the framer remainder and the
// in-flight table do not.
type Supervisor struct {
	command string
	args    []string

	corr *rpc.Correlator

	msgs   chan *rpc.Message
	events chan Event

	mu     sync.Mutex
	state  State
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New builds a supervisor for the given daemon command line. Nothing is
// spawned until Start.
func New(command string, args ...string) *Supervisor {
	return &Supervisor{
		command: command,
		args:    args,
		corr:    rpc.NewCorrelator(),
		msgs:    make(chan *rpc.Message, 64),
		events:  make(chan Event, 8),
	}
}

// Messages returns the ordered stream of decoded daemon messages. The
// channel stays open across restarts and for the life of the supervisor.
func (s *Supervisor) Messages() <-chan *rpc.Message {
	return s.msgs
}

// Events returns the lifecycle event stream.
func (s *Supervisor) Events() <-chan Event {
	return s.events
}

// Correlator exposes the shared request correlator.
func (s *Supervisor) Correlator() *rpc.Correlator {
	return s.corr
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start spawns the daemon and begins reading its output. Idempotent while
// running.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning || s.state == StateStarting {
		return nil
	}
	if s.command == "" {
		return fmt.Errorf("daemon: empty command")
	}

	s.setStateLocked(StateStarting, nil)

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, s.command, s.args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		s.setStateLocked(StateFailed, err)
		return fmt.Errorf("daemon: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		s.setStateLocked(StateFailed, err)
		return fmt.Errorf("daemon: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		s.setStateLocked(StateFailed, err)
		return fmt.Errorf("daemon: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		s.setStateLocked(StateFailed, err)
		return fmt.Errorf("daemon: start %s: %w", s.command, err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.cancel = cancel

	g, gctx := errgroup.WithContext(runCtx)
	s.group = g
	g.Go(func() error { return s.readStdout(gctx, stdout) })
	g.Go(func() error { s.readStderr(stderr); return nil })
	g.Go(func() error {
		err := cmd.Wait()
		s.onExit(err)
		return nil
	})

	s.setStateLocked(StateRunning, nil)
	logging.Daemon("started %s (pid %d)", s.command, cmd.Process.Pid)
	return nil
}

// Stop terminates the daemon unconditionally: the process is killed, the
// framer remainder is discarded, and every in-flight request context is
// abandoned without firing its error path.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	s.setStateLocked(StateStopped, nil)
	cancel := s.cancel
	stdin := s.stdin
	group := s.group
	s.cmd = nil
	s.stdin = nil
	s.cancel = nil
	s.group = nil
	s.mu.Unlock()

	if stdin != nil {
		_ = stdin.Close()
	}
	if cancel != nil {
		cancel()
	}
	if group != nil {
		done := make(chan struct{})
		go func() {
			_ = group.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			logging.DaemonError("timeout waiting for reader goroutines to exit")
		}
	}

	s.corr.Abandon()
	logging.Daemon("stopped")
}

// Restart stops any running daemon and starts a fresh one. The request-id
// counter is preserved; remainder buffer and correlation table are not.
func (s *Supervisor) Restart(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

// Call assigns the next request id, optionally registers conversationID for
// error surfacing, and writes one newline-terminated JSON-RPC request to the
// daemon's stdin. It rejects synchronously with ErrNotRunning when no daemon
// is up.
func (s *Supervisor) Call(method string, params any, conversationID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning || s.stdin == nil {
		return 0, ErrNotRunning
	}

	id := s.corr.NextID()
	data, err := json.Marshal(rpc.NewRequest(id, method, params))
	if err != nil {
		return 0, fmt.Errorf("daemon: marshal request: %w", err)
	}

	if conversationID != "" {
		s.corr.Register(id, conversationID)
	}
	if _, err := s.stdin.Write(append(data, '\n')); err != nil {
		s.corr.Resolve(id)
		return 0, fmt.Errorf("daemon: write request: %w", err)
	}
	logging.RPC("-> %s id=%d", method, id)
	return id, nil
}

// setStateLocked transitions the lifecycle state and emits an event without
// ever blocking the caller.
func (s *Supervisor) setStateLocked(state State, err error) {
	s.state = state
	select {
	case s.events <- Event{State: state, Err: err}:
	default:
	}
}

// onExit handles the child terminating on its own. A deliberate Stop has
// already moved the state away from Running, so anything else is a crash.
func (s *Supervisor) onExit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning && s.state != StateStarting {
		return
	}
	logging.DaemonError("daemon exited unexpectedly: %v", err)
	s.setStateLocked(StateFailed, err)
}

// readStdout drives the framing and decode pipeline. The framer is local to
// one daemon run, so a partial record from a dead process can never leak
// into its successor's stream. Records are processed strictly in arrival
// order; decoded messages are forwarded on s.msgs.
func (s *Supervisor) readStdout(ctx context.Context, r io.Reader) error {
	var framer rpc.LineFramer
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			records, ferr := framer.Feed(buf[:n])
			if ferr != nil {
				// Oversized remainder was discarded; the stream goes on.
				logging.RPCWarn("framing: %v", ferr)
			}
			for _, record := range records {
				msg, derr := rpc.Decode(record)
				if derr != nil {
					logging.RPCWarn("decode: %v", derr)
					continue
				}
				if msg == nil {
					continue // foreign log line
				}
				select {
				case s.msgs <- msg:
				case <-ctx.Done():
					return nil
				}
			}
		}
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				logging.DaemonError("stdout read: %v", err)
			}
			return nil
		}
	}
}

// readStderr logs daemon diagnostics line by line.
func (s *Supervisor) readStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		logging.Get(logging.CategoryDaemon).Info("[stderr] %s", scanner.Text())
	}
}
