package analysis

import (
	"testing"

	"github.com/gmkornilov/chess-coach-backend/pkg/engine"
)

func TestClassify(t *testing.T) {
	thresholds := DefaultThresholds()
	tests := []struct {
		loss int
		want Classification
	}{
		{-400, ClassGood}, // engine revised its earlier verdict
		{0, ClassGood},
		{50, ClassGood},
		{51, ClassInaccuracy},
		{150, ClassInaccuracy},
		{151, ClassMistake},
		{300, ClassMistake},
		{301, ClassBlunder},
		{5000, ClassBlunder},
	}

	for _, tt := range tests {
		if got := thresholds.Classify(tt.loss); got != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.loss, got, tt.want)
		}
	}
}

func TestRefreshExactCancel(t *testing.T) {
	rec := &MoveRecord{
		Ply:      1,
		Notation: "e4",
		Pre:      &Evaluation{Score: engine.Centipawns(120)},
		Post:     &Evaluation{Score: engine.Centipawns(-120)},
	}
	rec.refresh(DefaultThresholds())
	if rec.Loss != 0 {
		t.Errorf("loss = %d, want 0", rec.Loss)
	}
	if rec.Classification != ClassGood {
		t.Errorf("classification = %s, want good", rec.Classification)
	}
}

func TestRefreshNeedsBothEvaluations(t *testing.T) {
	rec := &MoveRecord{Ply: 1, Pre: &Evaluation{Score: engine.Centipawns(30)}}
	rec.refresh(DefaultThresholds())
	if rec.Classified() {
		t.Error("classification must stay unset without the post evaluation")
	}

	rec = &MoveRecord{Ply: 1, Post: &Evaluation{Score: engine.Centipawns(30)}}
	rec.refresh(DefaultThresholds())
	if rec.Classified() {
		t.Error("classification must stay unset without the pre evaluation")
	}
}

func TestRefreshBlunderIntoMate(t *testing.T) {
	// Mover had +2 and walked into mate in 3 for the opponent.
	rec := &MoveRecord{
		Ply:      10,
		Notation: "Kg2",
		Pre:      &Evaluation{Score: engine.Centipawns(200)},
		Post:     &Evaluation{Score: engine.MateIn(3)},
	}
	rec.refresh(DefaultThresholds())
	if rec.Classification != ClassBlunder {
		t.Errorf("classification = %s, want blunder", rec.Classification)
	}
	if rec.Loss != 200+(MateBase-3) {
		t.Errorf("loss = %d, want %d", rec.Loss, 200+(MateBase-3))
	}
}
