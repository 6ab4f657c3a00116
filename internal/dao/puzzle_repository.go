package dao

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gmkornilov/chess-coach-backend/internal/db"
	"github.com/gmkornilov/chess-coach-backend/pkg/puzzle"
)

type PuzzleRepository interface {
	GetRandomPuzzleForElo(elo int) (puzzle.Puzzle, error)

	InsertPuzzle(p puzzle.Puzzle) error

	InsertAllPuzzles(puzzles []puzzle.Puzzle) error
}

type puzzleRepository struct {
	dbClient *db.CoachDbClient
}

func NewPuzzleRepository(dbClient *db.CoachDbClient) PuzzleRepository {
	return &puzzleRepository{dbClient}
}

func (r *puzzleRepository) GetRandomPuzzleForElo(elo int) (puzzle.Puzzle, error) {
	ctx, cancel := context.WithTimeout(context.TODO(), time.Second)
	defer cancel()

	matchStage := bson.D{{Key: "$match", Value: bson.D{{
		Key: "target_elo", Value: bson.D{{Key: "$gte", Value: elo - 100}, {Key: "$lte", Value: elo + 100}},
	}}}}
	sampleStage := bson.D{{Key: "$sample", Value: bson.D{{Key: "size", Value: 1}}}}

	cursor, err := r.dbClient.PuzzleCollection.Aggregate(ctx, mongo.Pipeline{matchStage, sampleStage})
	if err != nil {
		return puzzle.Puzzle{}, err
	}

	var loadedPuzzles []puzzle.Puzzle
	if err = cursor.All(ctx, &loadedPuzzles); err != nil {
		return puzzle.Puzzle{}, err
	}
	if len(loadedPuzzles) != 1 {
		return puzzle.Puzzle{}, fmt.Errorf("no puzzles near elo %d", elo)
	}
	return loadedPuzzles[0], nil
}

func (r *puzzleRepository) InsertPuzzle(p puzzle.Puzzle) error {
	ctx, cancel := context.WithTimeout(context.TODO(), time.Second)
	defer cancel()

	_, err := r.dbClient.PuzzleCollection.InsertOne(ctx, p)
	return err
}

func (r *puzzleRepository) InsertAllPuzzles(puzzles []puzzle.Puzzle) error {
	ctx, cancel := context.WithTimeout(context.TODO(), time.Second)
	defer cancel()

	docs := make([]interface{}, 0, len(puzzles))
	for _, p := range puzzles {
		docs = append(docs, p)
	}
	_, err := r.dbClient.PuzzleCollection.InsertMany(ctx, docs)
	return err
}
