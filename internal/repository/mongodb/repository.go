package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/bogarovo/internal/domain/models"
)

const (
	movementsCollection = "stock_movements"
	reportsCollection   = "daily_reports"
)

// Repository defines the interface for movement and report storage.
type Repository interface {
	RecordMovement(ctx context.Context, movement models.Movement) error
	ListMovements(ctx context.Context, stockItemID int64, limit int64) ([]models.Movement, error)
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{client: client, dbName: dbName}

	_, err = repo.collection(movementsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "stock_item_id", Value: 1}, {Key: "at", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create movement index: %w", err)
	}

	return repo, nil
}

// RecordMovement appends one stock movement to the log.
func (r *MongoDBRepository) RecordMovement(ctx context.Context, movement models.Movement) error {
	if _, err := r.collection(movementsCollection).InsertOne(ctx, movement); err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}
	return nil
}

// ListMovements returns the newest movements of one stock item first.
func (r *MongoDBRepository) ListMovements(ctx context.Context, stockItemID int64, limit int64) ([]models.Movement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection(movementsCollection).Find(ctx, bson.M{"stock_item_id": stockItemID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}

	movements := []models.Movement{}
	if err := cursor.All(ctx, &movements); err != nil {
		return nil, fmt.Errorf("failed to decode movements: %w", err)
	}
	return movements, nil
}

// SaveDailyReport saves a daily report to the database.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	if _, err := r.collection(reportsCollection).InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert daily report: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}
