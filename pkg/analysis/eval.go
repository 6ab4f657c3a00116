package analysis

import (
	"github.com/notnil/chess"

	"github.com/gmkornilov/chess-coach-backend/pkg/engine"
)

// MateBase places every forced mate above any realistic centipawn
// magnitude on the normalized scale.
const MateBase = 20000

// Evaluation is one engine verdict for one position, relative to the side
// to move there.
type Evaluation struct {
	Score engine.Score `json:"score" bson:"score"`
	Depth int          `json:"depth" bson:"depth"`
	PV    []string     `json:"pv,omitempty" bson:"pv,omitempty"`
}

// Scalar collapses centipawn and mate scores onto one ordered scale.
// Any forced mate outranks any finite material edge, and a closer mate
// outranks a more distant one of the same sign. Mate in zero means the
// side to move is already checkmated and maps to -MateBase.
func Scalar(s engine.Score) int {
	switch s.Kind {
	case engine.ScoreCentipawn:
		return s.Value
	case engine.ScoreMate:
		if s.Value > 0 {
			return MateBase - s.Value
		}
		return -(MateBase + s.Value)
	default:
		return 0
	}
}

// Absolute flips a side-relative scalar to White's perspective. It exists
// for side-independent display only and must not feed classification math.
func Absolute(scalar int, sideToMove chess.Color) int {
	if sideToMove == chess.White {
		return scalar
	}
	return -scalar
}
