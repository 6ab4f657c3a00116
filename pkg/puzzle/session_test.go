package puzzle

import (
	"errors"
	"testing"
	"time"
)

const (
	// White rook a1 checks on a8, the king steps to h7.
	rookLiftFEN = "6k1/8/8/8/8/8/8/R5K1 w - - 0 1"
	promoteFEN  = "8/4P1k1/8/8/8/8/8/4K3 w - - 0 1"
)

func rookLiftPuzzle() Puzzle {
	return Puzzle{
		StartFEN:    rookLiftFEN,
		Solution:    []string{"a1a8", "g8h7"},
		IsWhiteTurn: true,
		TargetElo:   1500,
	}
}

func testConfig() Config {
	return Config{SolveBonus: 8, FailPenalty: 4, RevealPenalty: 4}
}

func TestSolveWithDelayedReply(t *testing.T) {
	replies := make(chan string, 1)
	cfg := testConfig()
	cfg.ReplyDelay = 10 * time.Millisecond
	cfg.OnReply = func(token string) { replies <- token }

	s := NewSession(cfg, 1500)
	if err := s.Start(rookLiftPuzzle()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.Status() != Solving {
		t.Fatalf("status = %s, want solving", s.Status())
	}

	outcome, err := s.SubmitMove("a1", "a8", "")
	if err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	if outcome != MoveAccepted || s.Cursor() != 1 {
		t.Fatalf("outcome = %d cursor = %d, want accepted at cursor 1", outcome, s.Cursor())
	}
	if s.Status() != Solving {
		t.Fatal("session must keep solving until the scripted reply lands")
	}

	select {
	case token := <-replies:
		if token != "g8h7" {
			t.Errorf("reply = %q, want g8h7", token)
		}
	case <-time.After(time.Second):
		t.Fatal("scripted reply never applied")
	}

	if s.Status() != Solved || s.Cursor() != 2 {
		t.Errorf("status = %s cursor = %d, want solved at cursor 2", s.Status(), s.Cursor())
	}
	if s.Rating() != 1508 {
		t.Errorf("rating = %d, want 1508", s.Rating())
	}

	if _, err := s.SubmitMove("a8", "a7", ""); !errors.Is(err, ErrNotSolving) {
		t.Errorf("SubmitMove after solve = %v, want ErrNotSolving", err)
	}
}

func TestSynchronousReply(t *testing.T) {
	s := NewSession(testConfig(), 1500)
	puz := rookLiftPuzzle()
	puz.Solution = []string{"a1a8", "g8h7", "a8a7"}
	if err := s.Start(puz); err != nil {
		t.Fatalf("Start: %v", err)
	}

	outcome, err := s.SubmitMove("a1", "a8", "")
	if err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	if outcome != MoveAccepted || s.Cursor() != 2 {
		t.Fatalf("outcome = %d cursor = %d, want reply applied inline", outcome, s.Cursor())
	}

	outcome, err = s.SubmitMove("a8", "a7", "")
	if err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	if outcome != MoveSolved || s.Status() != Solved {
		t.Errorf("outcome = %d status = %s, want solved", outcome, s.Status())
	}
}

func TestWrongMoveRetry(t *testing.T) {
	s := NewSession(testConfig(), 1500)
	if err := s.Start(rookLiftPuzzle()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	outcome, err := s.SubmitMove("a1", "a2", "")
	if err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	if outcome != MoveWrong {
		t.Fatalf("outcome = %d, want wrong", outcome)
	}
	if s.Status() != Solving || s.Cursor() != 0 {
		t.Errorf("status = %s cursor = %d, retry policy must not advance", s.Status(), s.Cursor())
	}
	if s.Rating() != 1500 {
		t.Errorf("rating = %d, a retried move costs nothing", s.Rating())
	}

	if outcome, _ := s.SubmitMove("a1", "a8", ""); outcome != MoveAccepted {
		t.Errorf("outcome = %d, correct move must still be accepted", outcome)
	}
}

func TestWrongMoveFail(t *testing.T) {
	cfg := testConfig()
	cfg.Policy = PolicyFail
	s := NewSession(cfg, 1500)
	if err := s.Start(rookLiftPuzzle()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	outcome, err := s.SubmitMove("a1", "a2", "")
	if err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	if outcome != MoveFailed || s.Status() != Failed {
		t.Fatalf("outcome = %d status = %s, want failed", outcome, s.Status())
	}
	if s.Rating() != 1496 {
		t.Errorf("rating = %d, want 1496", s.Rating())
	}
	if _, err := s.SubmitMove("a1", "a8", ""); !errors.Is(err, ErrNotSolving) {
		t.Errorf("SubmitMove after fail = %v, want ErrNotSolving", err)
	}
}

func TestPromotionMustMatch(t *testing.T) {
	s := NewSession(testConfig(), 1500)
	puz := Puzzle{StartFEN: promoteFEN, Solution: []string{"e7e8q"}, IsWhiteTurn: true}
	if err := s.Start(puz); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if outcome, _ := s.SubmitMove("e7", "e8", ""); outcome != MoveWrong {
		t.Error("missing promotion piece must not match e7e8q")
	}
	if outcome, _ := s.SubmitMove("e7", "e8", "n"); outcome != MoveWrong {
		t.Error("underpromotion must not match e7e8q")
	}
	outcome, err := s.SubmitMove("e7", "e8", "q")
	if err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	if outcome != MoveSolved {
		t.Errorf("outcome = %d, want solved", outcome)
	}
}

func TestShowSolution(t *testing.T) {
	s := NewSession(testConfig(), 1500)
	if _, err := s.ShowSolution(); !errors.Is(err, ErrNotSolving) {
		t.Fatalf("ShowSolution while idle = %v, want ErrNotSolving", err)
	}
	if err := s.Start(rookLiftPuzzle()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	tokens, err := s.ShowSolution()
	if err != nil {
		t.Fatalf("ShowSolution: %v", err)
	}
	if len(tokens) != 2 || tokens[0] != "a1a8" || tokens[1] != "g8h7" {
		t.Errorf("tokens = %v, want the full solution", tokens)
	}
	if s.Rating() != 1496 {
		t.Errorf("rating = %d, want the reveal penalty applied", s.Rating())
	}
	if s.Status() != Solving || s.Cursor() != 0 {
		t.Error("revealing must not touch the board or cursor")
	}

	if _, err := s.ShowSolution(); !errors.Is(err, ErrAlreadyRevealed) {
		t.Errorf("second ShowSolution = %v, want ErrAlreadyRevealed", err)
	}
	if s.Rating() != 1496 {
		t.Errorf("rating = %d, the penalty must apply once", s.Rating())
	}
}

func TestStartInvalidatesPendingReply(t *testing.T) {
	replied := make(chan string, 1)
	cfg := testConfig()
	cfg.ReplyDelay = 20 * time.Millisecond
	cfg.OnReply = func(token string) { replied <- token }

	s := NewSession(cfg, 1500)
	if err := s.Start(rookLiftPuzzle()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.SubmitMove("a1", "a8", ""); err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}

	// Loading the next puzzle before the reply timer fires must cancel it.
	if err := s.Start(rookLiftPuzzle()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(60 * time.Millisecond)

	select {
	case token := <-replied:
		t.Fatalf("stale reply %q applied to the new puzzle", token)
	default:
	}
	if s.Cursor() != 0 || s.Status() != Solving {
		t.Errorf("cursor = %d status = %s, want a fresh session", s.Cursor(), s.Status())
	}
}

func TestStartRejectsBrokenPuzzles(t *testing.T) {
	s := NewSession(testConfig(), 1500)
	if err := s.Start(Puzzle{StartFEN: rookLiftFEN}); err == nil {
		t.Error("puzzle without a solution must be rejected")
	}
	if err := s.Start(Puzzle{StartFEN: "not a fen", Solution: []string{"a1a8"}}); err == nil {
		t.Error("unparseable start position must be rejected")
	}
	if s.Status() != Idle {
		t.Errorf("status = %s, a rejected puzzle must leave the session idle", s.Status())
	}
}
