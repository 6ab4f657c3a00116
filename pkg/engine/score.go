package engine

import "strconv"

// ScoreKind discriminates the engine's two score units.
type ScoreKind int

const (
	ScoreUnknown ScoreKind = iota
	ScoreCentipawn
	ScoreMate
)

// Score is a single typed engine evaluation, always relative to the side
// to move in the position it was reported for. For ScoreMate, Value is the
// distance to mate in moves; zero means the side to move is already mated.
type Score struct {
	Kind  ScoreKind `json:"kind" bson:"kind"`
	Value int       `json:"value" bson:"value"`
}

// Centipawns builds a centipawn score.
func Centipawns(v int) Score {
	return Score{Kind: ScoreCentipawn, Value: v}
}

// MateIn builds a mate-distance score.
func MateIn(n int) Score {
	return Score{Kind: ScoreMate, Value: n}
}

// String returns a human-readable score like "+1.25", "-0.50", "#3" or "#-5".
func (s Score) String() string {
	if s.Kind == ScoreMate {
		return "#" + strconv.Itoa(s.Value)
	}
	if s.Kind != ScoreCentipawn {
		return "?"
	}
	cp := s.Value
	sign := "+"
	if cp < 0 {
		sign = "-"
		cp = -cp
	}
	whole := cp / 100
	frac := cp % 100
	if frac < 10 {
		return sign + strconv.Itoa(whole) + ".0" + strconv.Itoa(frac)
	}
	return sign + strconv.Itoa(whole) + "." + strconv.Itoa(frac)
}
