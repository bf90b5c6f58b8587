package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const notificationsCollection = "notifications"

// NotificationRepository persists in-app notifications. It implements ports.Notifier.
type NotificationRepository struct {
	coll *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{coll: db.Collection(notificationsCollection)}
}

type mongoNotification struct {
	UserID    primitive.ObjectID `bson:"user_id"`
	Message   string             `bson:"message"`
	Kind      string             `bson:"kind"`
	Read      bool               `bson:"read"`
	CreatedAt time.Time          `bson:"created_at"`
}

// EnsureIndexes supports listing a user's notifications newest first.
func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create notifications index: %w", err)
	}
	return nil
}

// Notify stores a notification for userID.
func (r *NotificationRepository) Notify(ctx context.Context, userID, message, kind string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("notify: invalid user id %q: %w", userID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = r.coll.InsertOne(ctx, mongoNotification{
		UserID:    oid,
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
