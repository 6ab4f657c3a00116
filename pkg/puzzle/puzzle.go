package puzzle

import (
	"fmt"
	"strings"
)

// Puzzle is a stored "solve this position" exercise. The solution is a
// space-separated sequence of 4-character coordinate move tokens, each with
// an optional trailing promotion-piece letter, consumed alternately as user
// move then scripted reply. The sequence may end on an unanswered user move.
type Puzzle struct {
	StartFEN    string   `json:"start_fen" bson:"start_fen"`
	Solution    []string `json:"solution" bson:"solution"`
	IsWhiteTurn bool     `json:"is_white_turn" bson:"is_white_turn"`
	TargetElo   int      `json:"target_elo" bson:"target_elo"`
}

// ParseSolution splits and validates a solution line.
func ParseSolution(line string) ([]string, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty solution")
	}
	for _, token := range tokens {
		if err := validateToken(token); err != nil {
			return nil, err
		}
	}
	return tokens, nil
}

func validateToken(token string) error {
	if len(token) != 4 && len(token) != 5 {
		return fmt.Errorf("bad solution token %q", token)
	}
	if !isSquare(token[0:2]) || !isSquare(token[2:4]) {
		return fmt.Errorf("bad solution token %q", token)
	}
	if len(token) == 5 && !strings.ContainsRune("qrbn", rune(token[4])) {
		return fmt.Errorf("bad promotion in token %q", token)
	}
	return nil
}

func isSquare(s string) bool {
	return s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

// Validate checks the stored puzzle fields.
func (p Puzzle) Validate() error {
	if p.StartFEN == "" {
		return fmt.Errorf("puzzle has no start position")
	}
	if len(p.Solution) == 0 {
		return fmt.Errorf("puzzle has no solution")
	}
	for _, token := range p.Solution {
		if err := validateToken(token); err != nil {
			return err
		}
	}
	return nil
}
