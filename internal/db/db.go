package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gmkornilov/chess-coach-backend/internal/config"
)

type CoachDbClient struct {
	client           *mongo.Client
	PuzzleCollection *mongo.Collection
	ReportCollection *mongo.Collection
}

func (c *CoachDbClient) Close() error {
	return c.client.Disconnect(context.TODO())
}

func NewDbClient(cfg *config.Configuration) (*CoachDbClient, error) {
	clientOpts := options.Client().ApplyURI(cfg.Database.Address)

	dbClient := &CoachDbClient{}

	client, err := mongo.Connect(context.TODO(), clientOpts)
	if err != nil {
		return nil, err
	}
	dbClient.client = client

	err = client.Ping(context.TODO(), nil)
	if err != nil {
		return nil, err
	}

	database := client.Database(cfg.Database.DatabaseName)
	dbClient.PuzzleCollection = database.Collection(cfg.Database.PuzzleCollection)
	if dbClient.PuzzleCollection == nil {
		return nil, fmt.Errorf("can't resolve collection %s.%s", cfg.Database.DatabaseName, cfg.Database.PuzzleCollection)
	}
	dbClient.ReportCollection = database.Collection(cfg.Database.ReportCollection)
	if dbClient.ReportCollection == nil {
		return nil, fmt.Errorf("can't resolve collection %s.%s", cfg.Database.DatabaseName, cfg.Database.ReportCollection)
	}
	return dbClient, nil
}
