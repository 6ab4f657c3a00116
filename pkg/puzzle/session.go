package puzzle

import (
	"errors"
	"sync"
	"time"

	"github.com/notnil/chess"
)

// Status is the puzzle session lifecycle state. Solved and Failed are
// terminal until a new puzzle is loaded, which always re-enters via Idle.
type Status int

const (
	Idle Status = iota
	Solving
	Solved
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Solving:
		return "solving"
	case Solved:
		return "solved"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// WrongMovePolicy decides what a non-matching move does. The two behaviors
// are not interchangeable, so the policy is explicit configuration.
type WrongMovePolicy int

const (
	// PolicyRetry rejects the move and keeps the session solving,
	// with unlimited retries.
	PolicyRetry WrongMovePolicy = iota
	// PolicyFail ends the session with a rating penalty on the first
	// wrong move.
	PolicyFail
)

// MoveOutcome is the result of one submitted move.
type MoveOutcome int

const (
	MoveWrong MoveOutcome = iota
	MoveAccepted
	MoveSolved
	MoveFailed
)

var (
	ErrNotSolving      = errors.New("no puzzle being solved")
	ErrAlreadyRevealed = errors.New("solution already revealed")
)

// Config tunes a puzzle session.
type Config struct {
	Policy        WrongMovePolicy
	SolveBonus    int
	FailPenalty   int
	RevealPenalty int
	// ReplyDelay postpones the scripted opponent reply. Zero applies the
	// reply synchronously inside SubmitMove.
	ReplyDelay time.Duration
	// OnReply, when set, is called after a delayed scripted reply has
	// been applied.
	OnReply func(token string)
}

// Session matches user input against a stored solution token sequence and
// auto-plays the scripted replies. It is independent of the analysis
// scheduler; move legality is pre-validated by the rules library before a
// coordinate pair reaches SubmitMove, so an illegal move and a legal-but-
// wrong move are treated identically.
type Session struct {
	mu sync.Mutex

	cfg         Config
	puzzle      Puzzle
	game        *chess.Game
	cursor      int
	status      Status
	orientation chess.Color
	rating      int
	revealed    bool
	epoch       int
}

// NewSession creates an idle session for a player at the given rating.
func NewSession(cfg Config, rating int) *Session {
	if cfg.SolveBonus == 0 && cfg.FailPenalty == 0 && cfg.RevealPenalty == 0 {
		cfg.SolveBonus, cfg.FailPenalty, cfg.RevealPenalty = SuggestDeltas(rating)
	}
	return &Session{cfg: cfg, status: Idle, rating: rating}
}

// Start loads a puzzle, resets the cursor and enters Solving. Any reply
// still scheduled for the previous puzzle is invalidated.
func (s *Session) Start(p Puzzle) error {
	if err := p.Validate(); err != nil {
		return err
	}
	fenOpt, err := chess.FEN(p.StartFEN)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puzzle = p
	s.game = chess.NewGame(fenOpt)
	s.cursor = 0
	s.status = Solving
	s.orientation = s.game.Position().Turn()
	s.revealed = false
	s.epoch++
	return nil
}

// SubmitMove compares a coordinate pair against the expected solution
// token. A trailing promotion letter on the expected token must be matched;
// otherwise the submitted promotion is ignored.
func (s *Session) SubmitMove(from, to, promotion string) (MoveOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != Solving {
		return MoveWrong, ErrNotSolving
	}
	want := s.puzzle.Solution[s.cursor]
	if !tokenMatches(want, from, to, promotion) {
		if s.cfg.Policy == PolicyFail {
			s.status = Failed
			s.rating -= s.cfg.FailPenalty
			return MoveFailed, nil
		}
		return MoveWrong, nil
	}

	if err := s.applyTokenLocked(want); err != nil {
		return MoveWrong, err
	}
	s.cursor++
	if s.cursor == len(s.puzzle.Solution) {
		s.solveLocked()
		return MoveSolved, nil
	}

	if s.cfg.ReplyDelay <= 0 {
		if s.applyReplyLocked() && s.status == Solved {
			return MoveSolved, nil
		}
		return MoveAccepted, nil
	}

	epoch := s.epoch
	time.AfterFunc(s.cfg.ReplyDelay, func() {
		s.mu.Lock()
		var applied string
		if s.epoch == epoch && s.status == Solving {
			applied = s.puzzle.Solution[s.cursor]
			if !s.applyReplyLocked() {
				applied = ""
			}
		}
		onReply := s.cfg.OnReply
		s.mu.Unlock()
		if applied != "" && onReply != nil {
			onReply(applied)
		}
	})
	return MoveAccepted, nil
}

// applyReplyLocked plays the scripted opponent reply at the cursor.
func (s *Session) applyReplyLocked() bool {
	token := s.puzzle.Solution[s.cursor]
	if err := s.applyTokenLocked(token); err != nil {
		return false
	}
	s.cursor++
	if s.cursor == len(s.puzzle.Solution) {
		s.solveLocked()
	}
	return true
}

func (s *Session) applyTokenLocked(token string) error {
	move, err := chess.UCINotation{}.Decode(s.game.Position(), token)
	if err != nil {
		return err
	}
	return s.game.Move(move)
}

func (s *Session) solveLocked() {
	s.status = Solved
	s.rating += s.cfg.SolveBonus
}

// tokenMatches checks a submitted coordinate pair against a solution
// token.
func tokenMatches(want, from, to, promotion string) bool {
	if len(want) < 4 || want[0:2] != from || want[2:4] != to {
		return false
	}
	if len(want) == 5 {
		return promotion == want[4:]
	}
	return true
}

// ShowSolution reveals the full token list. Permitted only while solving
// and at most once per puzzle; the fixed penalty is applied on the first
// call and the board and cursor stay untouched.
func (s *Session) ShowSolution() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != Solving {
		return nil, ErrNotSolving
	}
	if s.revealed {
		return nil, ErrAlreadyRevealed
	}
	s.revealed = true
	s.rating -= s.cfg.RevealPenalty
	out := make([]string, len(s.puzzle.Solution))
	copy(out, s.puzzle.Solution)
	return out, nil
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Cursor returns the index of the next expected solution token.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Rating returns the player's current rating.
func (s *Session) Rating() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rating
}

// Orientation is the side to move at the puzzle start.
func (s *Session) Orientation() chess.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orientation
}

// FEN returns the current board position.
func (s *Session) FEN() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return ""
	}
	return s.game.FEN()
}

// Board renders the current position as ASCII for CLI use.
func (s *Session) Board() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return ""
	}
	return s.game.Position().Board().Draw()
}
