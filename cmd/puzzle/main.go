package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/gmkornilov/chess-coach-backend/internal/config"
	"github.com/gmkornilov/chess-coach-backend/internal/dao"
	"github.com/gmkornilov/chess-coach-backend/internal/db"
	"github.com/gmkornilov/chess-coach-backend/internal/logging"
	"github.com/gmkornilov/chess-coach-backend/pkg/puzzle"
)

func main() {
	var (
		file   = flag.String("file", "", "JSON file with puzzles (skips mongo)")
		elo    = flag.Int("elo", 1500, "player rating")
		policy = flag.String("policy", "retry", "wrong-move policy: retry or fail")
	)
	flag.Parse()
	rand.Seed(time.Now().UnixNano())

	logger := logging.NewLogger()

	puz, err := loadPuzzle(*file, *elo)
	if err != nil {
		logger.Fatal().Err(err).Msg("load puzzle")
	}

	cfg := puzzle.Config{
		Policy:     puzzle.PolicyRetry,
		ReplyDelay: 300 * time.Millisecond,
		OnReply: func(token string) {
			fmt.Printf("opponent plays %s\n", token)
		},
	}
	if *policy == "fail" {
		cfg.Policy = puzzle.PolicyFail
	}

	session := puzzle.NewSession(cfg, *elo)
	if err := session.Start(puz); err != nil {
		logger.Fatal().Err(err).Msg("start puzzle")
	}

	fmt.Printf("side to move: %s\n", session.Orientation())
	fmt.Println(session.Board())
	fmt.Println(`enter moves like "e2e4" (promotions "e7e8q"), or "show" / "quit"`)

	scanner := bufio.NewScanner(os.Stdin)
	for session.Status() == puzzle.Solving {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "quit":
			return
		case "show":
			tokens, err := session.ShowSolution()
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("solution: %s\n", strings.Join(tokens, " "))
			continue
		}
		if len(input) < 4 {
			fmt.Println("bad move, expected coordinates like e2e4")
			continue
		}
		outcome, err := session.SubmitMove(input[0:2], input[2:4], input[4:])
		if err != nil {
			fmt.Println(err)
			continue
		}
		switch outcome {
		case puzzle.MoveWrong:
			fmt.Println("not it, try again")
		case puzzle.MoveAccepted:
			fmt.Println("correct!")
			// give the scripted reply time to land before reprinting
			time.Sleep(cfg.ReplyDelay + 50*time.Millisecond)
			fmt.Println(session.Board())
		case puzzle.MoveSolved:
			fmt.Println(session.Board())
		case puzzle.MoveFailed:
			fmt.Println("wrong move")
		}
	}

	switch session.Status() {
	case puzzle.Solved:
		fmt.Printf("solved! rating: %d\n", session.Rating())
	case puzzle.Failed:
		fmt.Printf("failed. rating: %d\n", session.Rating())
	}
}

func loadPuzzle(file string, elo int) (puzzle.Puzzle, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return puzzle.Puzzle{}, err
		}
		var puzzles []puzzle.Puzzle
		if err := json.Unmarshal(data, &puzzles); err != nil {
			return puzzle.Puzzle{}, err
		}
		if len(puzzles) == 0 {
			return puzzle.Puzzle{}, fmt.Errorf("no puzzles in %s", file)
		}
		return puzzles[rand.Intn(len(puzzles))], nil
	}

	cfg, err := config.InitConfig()
	if err != nil {
		return puzzle.Puzzle{}, err
	}
	dbClient, err := db.NewDbClient(cfg)
	if err != nil {
		return puzzle.Puzzle{}, err
	}
	defer dbClient.Close()
	return dao.NewPuzzleRepository(dbClient).GetRandomPuzzleForElo(elo)
}
