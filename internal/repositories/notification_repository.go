package repositories

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/devhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification operations.
// Every operation is scoped by recipient identity; a mark/delete against a
// notification the recipient does not own matches nothing and is not an error.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID uint) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string, recipientID uint) (*models.Notification, error)
	MarkAllRead(ctx context.Context, recipientID uint) error
	Delete(ctx context.Context, id string, recipientID uint) error
	DeleteAll(ctx context.Context, recipientID uint) error
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	collection := db.Collection("notifications")

	// Every query filters on recipient_id; the listing sorts on created_at.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		log.Printf("Failed to ensure notifications index: %v", err)
	}

	return &MongoNotificationRepository{collection: collection}
}

// CreateNotification inserts a notification document, assigning its ID and timestamp
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	n.Read = false
	n.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

// ListByRecipient returns all notifications for a recipient, newest first
func (r *MongoNotificationRepository) ListByRecipient(ctx context.Context, recipientID uint) ([]models.Notification, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"recipient_id": recipientID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead marks a single notification as read if it belongs to the recipient.
// A notification that is missing or owned by someone else yields (nil, nil).
func (r *MongoNotificationRepository) MarkRead(ctx context.Context, id string, recipientID uint) (*models.Notification, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid notification ID format: %w", err)
	}

	var n models.Notification
	after := options.After
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"read": true}},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// MarkAllRead marks every unread notification of the recipient as read
func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, recipientID uint) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}

// Delete removes a single notification if it belongs to the recipient; deleting
// an already-deleted notification is not an error
func (r *MongoNotificationRepository) Delete(ctx context.Context, id string, recipientID uint) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", err)
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objID, "recipient_id": recipientID})
	return err
}

// DeleteAll clears every notification of the recipient
func (r *MongoNotificationRepository) DeleteAll(ctx context.Context, recipientID uint) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"recipient_id": recipientID})
	return err
}

// CountUnread returns the number of unread notifications for the recipient
func (r *MongoNotificationRepository) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "read": false})
}
