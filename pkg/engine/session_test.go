package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// scriptedEngine answers session commands like a tiny UCI engine over
// in-memory pipes.
func scriptedEngine(t *testing.T) (*Session, *commandLog) {
	t.Helper()
	cmdR, cmdW := io.Pipe()
	outR, outW := io.Pipe()
	log := &commandLog{ch: make(chan string, 64)}

	go func() {
		scanner := bufio.NewScanner(cmdR)
		for scanner.Scan() {
			cmd := scanner.Text()
			log.add(cmd)
			switch {
			case cmd == "uci":
				fmt.Fprintln(outW, "id name Fakefish 1.0")
				fmt.Fprintln(outW, "option name Hash type spin default 16 min 1 max 1024")
				fmt.Fprintln(outW, "uciok")
			case strings.HasPrefix(cmd, "go"):
				fmt.Fprintln(outW, "info depth 1 seldepth 1 score cp 30 pv e2e4")
				fmt.Fprintln(outW, "some junk the parser must survive")
				fmt.Fprintln(outW, "info depth 8 score cp 55 pv e2e4 e7e5")
				fmt.Fprintln(outW, "bestmove e2e4 ponder e7e5")
			case cmd == "quit":
				outW.Close()
				return
			}
		}
	}()

	s := newSession(zerolog.Nop(), cmdW, outR)
	t.Cleanup(func() { _ = s.Close() })
	return s, log
}

type commandLog struct {
	ch chan string
}

func (c *commandLog) add(cmd string) {
	select {
	case c.ch <- cmd:
	default:
	}
}

func TestSessionHandshake(t *testing.T) {
	s, _ := scriptedEngine(t)

	if err := s.Start(context.Background(), time.Second); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !s.Available() {
		t.Error("session should be available after handshake")
	}
}

func TestSessionHandshakeTimeout(t *testing.T) {
	cmdR, cmdW := io.Pipe()
	outR, _ := io.Pipe()
	go io.Copy(io.Discard, cmdR) // engine that never answers

	s := newSession(zerolog.Nop(), cmdW, outR)
	err := s.Start(context.Background(), 50*time.Millisecond)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Start = %v, want ErrUnavailable", err)
	}
	if s.Available() {
		t.Error("session must not be available after handshake timeout")
	}
}

func TestSessionSearchEvents(t *testing.T) {
	s, _ := scriptedEngine(t)
	if err := s.Start(context.Background(), time.Second); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.SetPosition("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	if err := s.Search(8); err != nil {
		t.Fatalf("Search: %v", err)
	}

	var events []Event
	timeout := time.After(time.Second)
	for len(events) < 3 {
		select {
		case ev := <-s.Events():
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("timed out after %d events", len(events))
		}
	}

	if events[0].Type != EventProgress || events[0].Score != Centipawns(30) {
		t.Errorf("first event = %+v, want depth-1 progress", events[0])
	}
	if events[1].Type != EventProgress || events[1].Depth != 8 || events[1].Score != Centipawns(55) {
		t.Errorf("second event = %+v, want depth-8 progress", events[1])
	}
	if events[2].Type != EventBestMove || events[2].Move != "e2e4" || events[2].Ponder != "e7e5" {
		t.Errorf("third event = %+v, want bestmove", events[2])
	}
}

func TestSessionConfigureAndStop(t *testing.T) {
	s, log := scriptedEngine(t)
	if err := s.Start(context.Background(), time.Second); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Configure(Options{Hash: 128, Threads: 2}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	want := []string{
		"uci",
		"setoption name Hash value 128",
		"setoption name Threads value 2",
		"stop",
	}
	timeout := time.After(time.Second)
	for _, wantCmd := range want {
		select {
		case got := <-log.ch:
			if got != wantCmd {
				t.Fatalf("engine received %q, want %q", got, wantCmd)
			}
		case <-timeout:
			t.Fatalf("engine never received %q", wantCmd)
		}
	}
}
