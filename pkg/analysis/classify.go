package analysis

// Classification buckets how much ground a played move cost the mover.
type Classification string

const (
	ClassGood       Classification = "good"
	ClassInaccuracy Classification = "inaccuracy"
	ClassMistake    Classification = "mistake"
	ClassBlunder    Classification = "blunder"
)

// Thresholds are the upper loss bounds for each quality tier, in
// normalized scalar units.
type Thresholds struct {
	Good       int
	Inaccuracy int
	Mistake    int
}

// DefaultThresholds returns the standard tier bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{Good: 50, Inaccuracy: 150, Mistake: 300}
}

// Classify buckets a loss value. Negative losses (the engine revising an
// earlier verdict) fall through the same bounds and land on good.
func (t Thresholds) Classify(loss int) Classification {
	switch {
	case loss <= t.Good:
		return ClassGood
	case loss <= t.Inaccuracy:
		return ClassInaccuracy
	case loss <= t.Mistake:
		return ClassMistake
	default:
		return ClassBlunder
	}
}

// MoveRecord is the per-ply analysis outcome. Pre is the evaluation of the
// position the move was played from, Post the evaluation of the position it
// produced (from the opponent's perspective).
type MoveRecord struct {
	Ply             int            `json:"ply" bson:"ply"`
	Notation        string         `json:"san" bson:"san"`
	Pre             *Evaluation    `json:"pre,omitempty" bson:"pre,omitempty"`
	Post            *Evaluation    `json:"post,omitempty" bson:"post,omitempty"`
	Loss            int            `json:"loss" bson:"loss"`
	Classification  Classification `json:"classification,omitempty" bson:"classification,omitempty"`
	BestAlternative string         `json:"best_alternative,omitempty" bson:"best_alternative,omitempty"`
}

// Classified reports whether both evaluations arrived and the move has a
// final verdict.
func (r *MoveRecord) Classified() bool {
	return r.Classification != ""
}

// refresh recomputes loss and classification once both evaluations exist.
// The perspective flips between consecutive plies, so the loss is the sum
// of the two side-relative scalars: a move that preserves the mover's
// position sums to roughly zero, a move that squanders advantage sums to a
// large positive value.
func (r *MoveRecord) refresh(t Thresholds) {
	if r.Pre == nil || r.Post == nil {
		return
	}
	r.Loss = Scalar(r.Pre.Score) + Scalar(r.Post.Score)
	r.Classification = t.Classify(r.Loss)
}
