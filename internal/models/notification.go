package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification kinds. The set is open-ended; unknown kinds fall back to a
// generic rendering on the client.
const (
	NotificationKindLike    = "like"
	NotificationKindComment = "comment"
	NotificationKindFollow  = "follow"
)

// Notification is a per-recipient notification document (MongoDB).
// ID and RecipientID are immutable after creation; Read only ever
// transitions from false to true.
type Notification struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RecipientID uint               `json:"recipient_id" bson:"recipient_id"`
	Kind        string             `json:"kind" bson:"kind"`
	ActorID     uint               `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	SubjectID   string             `json:"subject_id,omitempty" bson:"subject_id,omitempty"` // related content id, e.g. a post
	Read        bool               `json:"read" bson:"read"`
	Message     string             `json:"message,omitempty" bson:"message,omitempty"` // precomputed text; client derives from Kind when absent
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
