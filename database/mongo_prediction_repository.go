package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nba-predictions-go/logging"
	"nba-predictions-go/models"
)

// MongoPredictionRepository stores predictions in the "predictions" collection
type MongoPredictionRepository struct {
	collection *mongo.Collection
}

// NewMongoPredictionRepository creates the repository and its indexes
func NewMongoPredictionRepository(ctx context.Context, db *MongoDB) *MongoPredictionRepository {
	collection := db.GetCollection("predictions")

	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "team_name", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logging.WithPrefix("MongoDB").Warnf("Could not create prediction indexes: %v", err)
	}

	return &MongoPredictionRepository{collection: collection}
}

// Insert stores a prediction, assigning its id and (when unset) its creation time
func (r *MongoPredictionRepository) Insert(ctx context.Context, prediction *models.Prediction) (*models.Prediction, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	stored := *prediction
	stored.ID = primitive.NewObjectID().Hex()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, stored); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to create prediction: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create prediction: %w", err)
	}
	return &stored, nil
}

// QueryByUser returns a user's predictions, newest first
func (r *MongoPredictionRepository) QueryByUser(ctx context.Context, userID string) ([]models.Prediction, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

// QueryByTeam returns every prediction on a team, newest first
func (r *MongoPredictionRepository) QueryByTeam(ctx context.Context, teamName string) ([]models.Prediction, error) {
	return r.find(ctx, bson.M{"team_name": teamName})
}

// QueryAll returns every prediction, newest first
func (r *MongoPredictionRepository) QueryAll(ctx context.Context) ([]models.Prediction, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoPredictionRepository) find(ctx context.Context, filter bson.M) ([]models.Prediction, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find predictions: %w", err)
	}
	defer cursor.Close(ctx)

	predictions := make([]models.Prediction, 0)
	if err := cursor.All(ctx, &predictions); err != nil {
		return nil, fmt.Errorf("failed to decode predictions: %w", err)
	}
	return predictions, nil
}

