package engine

import (
	"strconv"
	"strings"
)

// EventType represents a UCI protocol event type.
type EventType int

const (
	EventUnknown EventType = iota
	EventReady
	EventProgress
	EventBestMove
)

// Event is a parsed UCI protocol line.
type Event struct {
	Type   EventType
	Depth  int
	Score  Score
	PV     []string
	Move   string
	Ponder string
}

// ParseLine converts one raw engine output line into a typed event.
// Only whitelisted prefixes are interpreted; everything else, including
// malformed variants of known lines, comes back as EventUnknown.
func ParseLine(line string) Event {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Event{}
	}
	switch fields[0] {
	case "uciok":
		return Event{Type: EventReady}
	case "bestmove":
		if len(fields) < 2 {
			return Event{}
		}
		ev := Event{Type: EventBestMove, Move: fields[1]}
		if len(fields) >= 4 && fields[2] == "ponder" {
			ev.Ponder = fields[3]
		}
		return ev
	case "info":
		return parseInfo(fields)
	default:
		return Event{}
	}
}

// parseInfo extracts depth, score and pv from an "info" line. Info lines
// without a score (e.g. "info string ...", currmove reports) carry nothing
// we track and are dropped.
func parseInfo(fields []string) Event {
	ev := Event{Type: EventProgress}
	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				if d, err := strconv.Atoi(fields[i+1]); err == nil {
					ev.Depth = d
				}
				i++
			}
		case "score":
			if i+2 < len(fields) {
				if v, err := strconv.Atoi(fields[i+2]); err == nil {
					switch fields[i+1] {
					case "cp":
						ev.Score = Centipawns(v)
					case "mate":
						ev.Score = MateIn(v)
					}
				}
				i += 2
			}
		case "pv":
			ev.PV = fields[i+1:]
			i = len(fields)
		}
	}
	if ev.Score.Kind == ScoreUnknown {
		return Event{}
	}
	return ev
}
