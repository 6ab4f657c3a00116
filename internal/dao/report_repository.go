package dao

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gmkornilov/chess-coach-backend/internal/db"
	"github.com/gmkornilov/chess-coach-backend/pkg/analysis"
)

type ReportRepository interface {
	InsertReport(report analysis.GameReport) (string, error)

	GetReport(id string) (analysis.GameReport, error)

	GetPlayerReports(player string) ([]analysis.GameReport, error)
}

type reportRepository struct {
	dbClient *db.CoachDbClient
}

func NewReportRepository(dbClient *db.CoachDbClient) ReportRepository {
	return &reportRepository{dbClient}
}

func (r *reportRepository) InsertReport(report analysis.GameReport) (string, error) {
	ctx, cancel := context.WithTimeout(context.TODO(), time.Second)
	defer cancel()

	res, err := r.dbClient.ReportCollection.InsertOne(ctx, report)
	if err != nil {
		return "", err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return id.Hex(), nil
}

func (r *reportRepository) GetReport(id string) (analysis.GameReport, error) {
	ctx, cancel := context.WithTimeout(context.TODO(), time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return analysis.GameReport{}, err
	}
	cur := r.dbClient.ReportCollection.FindOne(ctx, bson.D{{Key: "_id", Value: objectID}})
	var report analysis.GameReport
	if err := cur.Decode(&report); err != nil {
		return analysis.GameReport{}, err
	}
	return report, nil
}

func (r *reportRepository) GetPlayerReports(player string) ([]analysis.GameReport, error) {
	ctx, cancel := context.WithTimeout(context.TODO(), time.Second)
	defer cancel()

	opts := options.Find()
	opts.SetSort(bson.D{{Key: "date", Value: -1}})

	filter := bson.D{
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "white_player", Value: player}},
			bson.D{{Key: "black_player", Value: player}},
		}},
	}
	cur, err := r.dbClient.ReportCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var reports []analysis.GameReport
	if err = cur.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
