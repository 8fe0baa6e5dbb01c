// Package notify implements the notification write path: persist a record as
// the side effect of a user action, then attempt best-effort live delivery.
package notify

import (
	"context"
	"log"

	"github.com/devhub/backend/internal/metrics"
	"github.com/devhub/backend/internal/models"
	"github.com/devhub/backend/internal/repositories"
)

// Publisher is the live delivery channel the writer pushes onto after a
// successful persist. The realtime Hub satisfies it.
type Publisher interface {
	Publish(userID uint, event string, data interface{}) int
}

// Notifier creates notification records and dispatches them to live
// subscribers. It is a silent best-effort side channel: failures are logged
// and swallowed so the triggering action is never rolled back or failed.
type Notifier struct {
	repo repositories.NotificationRepository
	pub  Publisher
}

// NewNotifier creates a new Notifier
func NewNotifier(repo repositories.NotificationRepository, pub Publisher) *Notifier {
	return &Notifier{repo: repo, pub: pub}
}

// Notify persists a notification for recipientID and publishes it on the
// recipient's channel. Self-notifications (actor == recipient) are skipped.
// The returned record is nil when nothing was created.
func (n *Notifier) Notify(ctx context.Context, recipientID uint, kind string, actorID uint, subjectID, message string) *models.Notification {
	if actorID == recipientID {
		return nil
	}

	notif := &models.Notification{
		RecipientID: recipientID,
		Kind:        kind,
		ActorID:     actorID,
		SubjectID:   subjectID,
		Message:     message,
	}

	if err := n.repo.CreateNotification(ctx, notif); err != nil {
		log.Printf("notify: failed to persist %s notification for user %d: %v", kind, recipientID, err)
		metrics.NotificationsDropped.Inc()
		return nil
	}
	metrics.NotificationsCreated.WithLabelValues(kind).Inc()

	// Live delivery only happens after the record is durable. No subscriber
	// listening means the fetch-on-demand history covers it.
	n.pub.Publish(recipientID, "notification", notif)

	return notif
}
