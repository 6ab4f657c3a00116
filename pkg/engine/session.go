package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnavailable is returned when the engine cannot be reached or did not
// complete the ready handshake in time. Callers are expected to degrade to
// "no evaluation" rather than block.
var ErrUnavailable = errors.New("engine unavailable")

const shutdownTimeout = 3 * time.Second

// Options are one-shot engine tunables sent before first use.
type Options struct {
	Hash    int
	Threads int
	MultiPV int
}

// Session owns one external UCI engine process and turns its output into a
// typed event stream. Commands are fire-and-forget; replies arrive later on
// the Events channel.
type Session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	events chan Event
	log    zerolog.Logger

	mu        sync.Mutex
	closed    bool
	available bool
}

// NewSession spawns the engine process and starts reading its output.
// The protocol handshake is not performed until Start is called.
func NewSession(logger zerolog.Logger, path string, args ...string) (*Session, error) {
	if path == "" {
		return nil, errors.New("engine path is required")
	}
	cmd := exec.Command(path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", path, err)
	}
	s := newSession(logger, stdin, stdout)
	s.cmd = cmd
	return s, nil
}

// newSession builds a session over raw streams. Tests use it with an
// in-memory fake engine.
func newSession(logger zerolog.Logger, stdin io.WriteCloser, stdout io.Reader) *Session {
	s := &Session{
		stdin:  stdin,
		events: make(chan Event, 64),
		log:    logger,
	}
	go s.readLoop(stdout)
	return s
}

func (s *Session) readLoop(stdout io.Reader) {
	defer close(s.events)
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		ev := ParseLine(scanner.Text())
		if ev.Type == EventUnknown {
			continue
		}
		s.events <- ev
	}
	if err := scanner.Err(); err != nil {
		s.log.Warn().Err(err).Msg("engine stdout closed")
	}
}

// Start runs the identification handshake and waits (bounded) for the
// engine's ready acknowledgment. On timeout the session is left unavailable
// and ErrUnavailable is returned.
func (s *Session) Start(ctx context.Context, timeout time.Duration) error {
	if err := s.send("uci"); err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return ErrUnavailable
		case ev, ok := <-s.events:
			if !ok {
				return ErrUnavailable
			}
			if ev.Type == EventReady {
				s.mu.Lock()
				s.available = true
				s.mu.Unlock()
				return nil
			}
		}
	}
}

// Available reports whether the ready handshake completed.
func (s *Session) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

// Configure sends the option set to the engine. Call between Start and the
// first search.
func (s *Session) Configure(opts Options) error {
	if opts.Hash > 0 {
		if err := s.send(fmt.Sprintf("setoption name Hash value %d", opts.Hash)); err != nil {
			return err
		}
	}
	if opts.Threads > 0 {
		if err := s.send(fmt.Sprintf("setoption name Threads value %d", opts.Threads)); err != nil {
			return err
		}
	}
	if opts.MultiPV > 0 {
		if err := s.send(fmt.Sprintf("setoption name MultiPV value %d", opts.MultiPV)); err != nil {
			return err
		}
	}
	return nil
}

// SetPosition declares the position for the next search.
func (s *Session) SetPosition(fen string) error {
	return s.send("position fen " + fen)
}

// Search starts a bounded-depth search on the declared position.
func (s *Session) Search(depth int) error {
	return s.send(fmt.Sprintf("go depth %d", depth))
}

// Stop requests cancellation of the running search. It is advisory: the
// engine may still emit a final best-move event for the superseded search,
// and callers must not assume suppression.
func (s *Session) Stop() error {
	return s.send("stop")
}

// Events returns the inbound typed event stream. The channel is closed when
// the engine's output stream ends.
func (s *Session) Events() <-chan Event {
	return s.events
}

func (s *Session) send(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrUnavailable
	}
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	_, err := io.WriteString(s.stdin, line)
	return err
}

// Close stops any running search and terminates the engine process. The
// process gets a bounded grace period before being killed.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	_ = s.send("stop")
	_ = s.send("quit")

	s.mu.Lock()
	s.closed = true
	s.available = false
	s.mu.Unlock()
	_ = s.stdin.Close()

	if s.cmd == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(shutdownTimeout):
		_ = s.cmd.Process.Kill()
		return errors.New("engine did not exit in time")
	}
}
