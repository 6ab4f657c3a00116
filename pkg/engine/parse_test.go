package engine

import (
	"reflect"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Event
	}{
		{"uciok", "uciok", Event{Type: EventReady}},
		{"bestmove", "bestmove e2e4", Event{Type: EventBestMove, Move: "e2e4"}},
		{"bestmove with ponder", "bestmove e2e4 ponder e7e5", Event{Type: EventBestMove, Move: "e2e4", Ponder: "e7e5"}},
		{"info cp", "info depth 12 seldepth 16 multipv 1 score cp 35 nodes 1000 nps 50000 pv e2e4 e7e5",
			Event{Type: EventProgress, Depth: 12, Score: Centipawns(35), PV: []string{"e2e4", "e7e5"}}},
		{"info negative mate", "info depth 20 score mate -3 pv a1a8",
			Event{Type: EventProgress, Depth: 20, Score: MateIn(-3), PV: []string{"a1a8"}}},
		{"info without score", "info string NNUE evaluation using nn-whatever.nnue", Event{}},
		{"info currmove only", "info depth 5 currmove e2e4 currmovenumber 1", Event{}},
		{"id line ignored", "id name Stockfish 14", Event{}},
		{"readyok ignored", "readyok", Event{}},
		{"garbage", "this is not a protocol line", Event{}},
		{"empty", "", Event{}},
		{"truncated bestmove", "bestmove", Event{}},
		{"unparseable score", "info depth 3 score cp banana pv e2e4", Event{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLine(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestScoreString(t *testing.T) {
	tests := []struct {
		score Score
		want  string
	}{
		{Centipawns(125), "+1.25"},
		{Centipawns(-50), "-0.50"},
		{Centipawns(5), "+0.05"},
		{Centipawns(0), "+0.00"},
		{MateIn(3), "#3"},
		{MateIn(-5), "#-5"},
		{Score{}, "?"},
	}

	for _, tt := range tests {
		if got := tt.score.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.score, got, tt.want)
		}
	}
}
