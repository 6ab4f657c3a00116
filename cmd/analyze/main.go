package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/notnil/chess"

	"github.com/gmkornilov/chess-coach-backend/internal/logging"
	"github.com/gmkornilov/chess-coach-backend/pkg/analysis"
	"github.com/gmkornilov/chess-coach-backend/pkg/engine"
)

func main() {
	var (
		pgnPath    = flag.String("pgn", "", "path to the PGN file to analyze")
		enginePath = flag.String("engine", "stockfish", "path to the UCI engine")
		depth      = flag.Int("depth", 18, "search depth per position")
		hash       = flag.Int("hash", 128, "engine hash size in MB")
	)
	flag.Parse()

	logger := logging.NewLogger()
	if *pgnPath == "" {
		logger.Fatal().Msg("-pgn is required")
	}

	f, err := os.Open(*pgnPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open pgn")
	}
	defer f.Close()
	pgn, err := chess.PGN(f)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse pgn")
	}
	game := chess.NewGame(pgn)

	session, err := engine.NewSession(logger, *enginePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("spawn engine")
	}
	defer session.Close()
	if err := session.Start(context.Background(), 5*time.Second); err != nil {
		logger.Fatal().Err(err).Msg("engine handshake")
	}
	if err := session.Configure(engine.Options{Hash: *hash}); err != nil {
		logger.Fatal().Err(err).Msg("configure engine")
	}

	scheduler := analysis.NewScheduler(session, *depth, analysis.DefaultThresholds(), logger)
	defer scheduler.Close()

	batch, err := scheduler.StartBatch(game)
	if err != nil {
		logger.Fatal().Err(err).Msg("start analysis")
	}
	if err := batch.Wait(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("analysis failed")
	}

	printReport(game, batch.Records())
}

func printReport(game *chess.Game, records []analysis.MoveRecord) {
	report := analysis.NewGameReport(game, records)
	fmt.Printf("%s - %s\n\n", report.WhitePlayer, report.BlackPlayer)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLY\tMOVE\tEVAL\tLOSS\tVERDICT\tBEST")
	for _, rec := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			rec.Ply, rec.Notation, evalColumn(rec), lossColumn(rec),
			rec.Classification, rec.BestAlternative)
	}
	w.Flush()
}

// evalColumn shows the evaluation the mover faced, from White's side.
func evalColumn(rec analysis.MoveRecord) string {
	if rec.Pre == nil {
		return "?"
	}
	score := rec.Pre.Score
	whiteToMove := rec.Ply%2 == 1
	if !whiteToMove && score.Kind != engine.ScoreUnknown {
		score.Value = -score.Value
	}
	return score.String()
}

func lossColumn(rec analysis.MoveRecord) string {
	if !rec.Classified() {
		return "?"
	}
	return fmt.Sprintf("%d", rec.Loss)
}
