package lichess

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// LiveAnalyzer is the slice of the analysis scheduler the watcher drives.
type LiveAnalyzer interface {
	SetLivePosition(fen string) error
}

type PlayerInfo struct {
	Color string `json:"color"`
	User  struct {
		Name  string `json:"name"`
		Id    string `json:"id"`
		Title string `json:"title"`
	}
	Rating int `json:"rating"`
}

type GameStart struct {
	Id          string       `json:"id"`
	Orientation string       `json:"orientation"`
	Players     []PlayerInfo `json:"players"`
	Fen         string       `json:"fen"`
}

type GameTurn struct {
	Fen             string `json:"fen"`
	TurnUciNotation string `json:"lm"`
	WhiteClock      int    `json:"wc"`
	BlackClock      int    `json:"bc"`
}

type LiveMessage struct {
	Action string          `json:"t"`
	Data   json.RawMessage `json:"d"`
}

// Watcher streams the lichess TV feed and tracks the featured game's
// current position on the live analyzer.
type Watcher struct {
	analyzer LiveAnalyzer
	url      string
	log      zerolog.Logger
}

func NewWatcher(analyzer LiveAnalyzer, url string, logger zerolog.Logger) *Watcher {
	if url == "" {
		url = BaseURL + "/api/tv/feed"
	}
	return &Watcher{analyzer: analyzer, url: url, log: logger}
}

// Run streams until the context is cancelled, reconnecting on feed errors.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		err := w.stream(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.log.Warn().Err(err).Msg("tv feed dropped, reconnecting")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

func (w *Watcher) stream(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	d := json.NewDecoder(resp.Body)
	for d.More() {
		var cur LiveMessage
		if err := d.Decode(&cur); err != nil {
			return err
		}
		switch cur.Action {
		case "featured":
			var gameStart GameStart
			if err := json.Unmarshal(cur.Data, &gameStart); err != nil {
				return err
			}
			w.log.Info().Str("game_id", gameStart.Id).Msg("new featured game")
			w.track(gameStart.Fen)
		case "fen":
			var gameTurn GameTurn
			if err := json.Unmarshal(cur.Data, &gameTurn); err != nil {
				return err
			}
			w.track(gameTurn.Fen)
		default:
			w.log.Debug().Str("action", cur.Action).Msg("ignoring feed message")
		}
	}
	return nil
}

func (w *Watcher) track(fen string) {
	// The feed strips castling rights, en passant and move counters.
	fen += " - - 0 1"
	if err := w.analyzer.SetLivePosition(fen); err != nil {
		w.log.Warn().Err(err).Str("fen", fen).Msg("live position rejected")
	}
}
