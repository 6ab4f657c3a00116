package puzzle

import (
	"reflect"
	"testing"
)

func TestParseSolution(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr bool
	}{
		{"single move", "a1a8", []string{"a1a8"}, false},
		{"sequence", "a1a8 g8h7 a8a7", []string{"a1a8", "g8h7", "a8a7"}, false},
		{"promotion", "e7e8q", []string{"e7e8q"}, false},
		{"extra spacing", "  a1a8   g8h7 ", []string{"a1a8", "g8h7"}, false},
		{"empty", "   ", nil, true},
		{"short token", "a1a", nil, true},
		{"off-board square", "a1i8", nil, true},
		{"bad promotion piece", "e7e8k", nil, true},
		{"san instead of coordinates", "Ra8+", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSolution(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSolution(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSolution(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestPuzzleValidate(t *testing.T) {
	good := Puzzle{StartFEN: rookLiftFEN, Solution: []string{"a1a8", "g8h7"}}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
	if err := (Puzzle{Solution: []string{"a1a8"}}).Validate(); err == nil {
		t.Error("missing start position must fail validation")
	}
	if err := (Puzzle{StartFEN: rookLiftFEN}).Validate(); err == nil {
		t.Error("missing solution must fail validation")
	}
	if err := (Puzzle{StartFEN: rookLiftFEN, Solution: []string{"a1x8"}}).Validate(); err == nil {
		t.Error("malformed token must fail validation")
	}
}

func TestSuggestDeltas(t *testing.T) {
	tests := []struct {
		elo                       int
		bonus, failPen, revealPen int
	}{
		{800, 10, 5, 5},
		{1999, 10, 5, 5},
		{2000, 5, 2, 2},
		{2399, 5, 2, 2},
		{2400, 2, 1, 1},
	}
	for _, tt := range tests {
		bonus, failPen, revealPen := SuggestDeltas(tt.elo)
		if bonus != tt.bonus || failPen != tt.failPen || revealPen != tt.revealPen {
			t.Errorf("SuggestDeltas(%d) = (%d,%d,%d), want (%d,%d,%d)",
				tt.elo, bonus, failPen, revealPen, tt.bonus, tt.failPen, tt.revealPen)
		}
	}
}
