package repository

import (
	"context"
	"errors"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoNotificationRepository struct {
	db *mongo.Database
}

func NewMongoNotificationRepository(db *mongo.Database) domain.NotificationRepository {
	return &mongoNotificationRepository{
		db: db,
	}
}

func (r *mongoNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	collection := r.db.Collection(db.NotificationsCollection)

	_, err := collection.InsertOne(ctx, n)
	return err
}

func (r *mongoNotificationRepository) List(ctx context.Context, userID string, includeRead bool) ([]domain.Notification, error) {
	collection := r.db.Collection(db.NotificationsCollection)

	filter := bson.M{"user_id": userID}
	if !includeRead {
		filter["is_read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []domain.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *mongoNotificationRepository) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	collection := r.db.Collection(db.NotificationsCollection)

	filter := bson.M{"user_id": userID, "is_read": false}
	if len(ids) > 0 {
		filter["_id"] = bson.M{"$in": ids}
	}

	res, err := collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *mongoNotificationRepository) GetSettings(ctx context.Context, userID string) (*domain.NotificationSettings, error) {
	collection := r.db.Collection(db.NotificationSettingsCollection)

	var settings domain.NotificationSettings
	err := collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *mongoNotificationRepository) SaveSettings(ctx context.Context, settings *domain.NotificationSettings) error {
	collection := r.db.Collection(db.NotificationSettingsCollection)

	_, err := collection.ReplaceOne(ctx, bson.M{"_id": settings.UserID}, settings, options.Replace().SetUpsert(true))
	return err
}

// EnsureNotificationIndexes creates the indexes List and MarkRead rely on.
func EnsureNotificationIndexes(ctx context.Context, database *mongo.Database) error {
	collection := database.Collection(db.NotificationsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_read", Value: 1},
			},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
