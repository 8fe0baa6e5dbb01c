package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/devhub/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotification(t *testing.T, repo *memNotificationRepo, recipientID, actorID uint, kind string) models.Notification {
	t.Helper()
	n := &models.Notification{
		RecipientID: recipientID,
		Kind:        kind,
		ActorID:     actorID,
	}
	require.NoError(t, repo.CreateNotification(context.Background(), n))
	return *n
}

func TestGetNotifications_NewestFirstAndScopedToRecipient(t *testing.T) {
	e := echo.New()
	notifRepo := &memNotificationRepo{}
	userRepo := newMemUserRepo(&models.User{ID: 2, Name: "Bob", Avatar: "b.png"})
	h := NewNotificationHandler(notifRepo, userRepo)

	older := seedNotification(t, notifRepo, 1, 2, models.NotificationKindLike)
	newer := seedNotification(t, notifRepo, 1, 2, models.NotificationKindComment)
	seedNotification(t, notifRepo, 99, 2, models.NotificationKindFollow) // someone else's

	c, rec := newTestContext(e, http.MethodGet, "/notifications", nil, 1)
	require.NoError(t, h.GetNotifications(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got []EnrichedNotification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID.Hex(), got[0].ID.Hex())
	assert.Equal(t, older.ID.Hex(), got[1].ID.Hex())

	// actor enrichment from the account store
	require.NotNil(t, got[0].Actor)
	assert.Equal(t, "Bob", got[0].Actor.Name)
	assert.Equal(t, "b.png", got[0].Actor.Avatar)
}

func TestMarkAsRead_ReturnsUpdatedRecord(t *testing.T) {
	e := echo.New()
	notifRepo := &memNotificationRepo{}
	h := NewNotificationHandler(notifRepo, newMemUserRepo())

	n := seedNotification(t, notifRepo, 1, 2, models.NotificationKindLike)

	c, rec := newTestContext(e, http.MethodPut, "/", nil, 1)
	c.SetParamNames("id")
	c.SetParamValues(n.ID.Hex())
	require.NoError(t, h.MarkAsRead(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got models.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Read)
	assert.Equal(t, n.ID.Hex(), got.ID.Hex())
}

func TestMarkAsRead_ForeignNotificationMatchesNothing(t *testing.T) {
	e := echo.New()
	notifRepo := &memNotificationRepo{}
	h := NewNotificationHandler(notifRepo, newMemUserRepo())

	n := seedNotification(t, notifRepo, 1, 2, models.NotificationKindLike)

	// user 3 tries to mark user 1's notification
	c, rec := newTestContext(e, http.MethodPut, "/", nil, 3)
	c.SetParamNames("id")
	c.SetParamValues(n.ID.Hex())
	require.NoError(t, h.MarkAsRead(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// the record stays unread
	remaining, err := notifRepo.ListByRecipient(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.False(t, remaining[0].Read)
}

func TestMarkAllAsRead_LeavesOtherRecipientsUntouched(t *testing.T) {
	e := echo.New()
	notifRepo := &memNotificationRepo{}
	h := NewNotificationHandler(notifRepo, newMemUserRepo())

	seedNotification(t, notifRepo, 1, 2, models.NotificationKindLike)
	seedNotification(t, notifRepo, 1, 3, models.NotificationKindFollow)
	seedNotification(t, notifRepo, 9, 2, models.NotificationKindLike)

	c, rec := newTestContext(e, http.MethodPut, "/notifications/read-all", nil, 1)
	require.NoError(t, h.MarkAllAsRead(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	mine, _ := notifRepo.ListByRecipient(context.Background(), 1)
	for _, n := range mine {
		assert.True(t, n.Read)
	}
	theirs, _ := notifRepo.ListByRecipient(context.Background(), 9)
	require.Len(t, theirs, 1)
	assert.False(t, theirs[0].Read)
}

func TestDeleteNotification_IsIdempotent(t *testing.T) {
	e := echo.New()
	notifRepo := &memNotificationRepo{}
	h := NewNotificationHandler(notifRepo, newMemUserRepo())

	n := seedNotification(t, notifRepo, 1, 2, models.NotificationKindLike)

	for i := 0; i < 2; i++ {
		c, rec := newTestContext(e, http.MethodDelete, "/", nil, 1)
		c.SetParamNames("id")
		c.SetParamValues(n.ID.Hex())
		require.NoError(t, h.DeleteNotification(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	remaining, _ := notifRepo.ListByRecipient(context.Background(), 1)
	assert.Empty(t, remaining)
}

func TestDeleteAllNotifications_ClearsOnlyCallersHistory(t *testing.T) {
	e := echo.New()
	notifRepo := &memNotificationRepo{}
	h := NewNotificationHandler(notifRepo, newMemUserRepo())

	seedNotification(t, notifRepo, 1, 2, models.NotificationKindLike)
	seedNotification(t, notifRepo, 1, 3, models.NotificationKindComment)
	seedNotification(t, notifRepo, 9, 2, models.NotificationKindFollow)

	c, rec := newTestContext(e, http.MethodDelete, "/notifications", nil, 1)
	require.NoError(t, h.DeleteAllNotifications(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	mine, _ := notifRepo.ListByRecipient(context.Background(), 1)
	assert.Empty(t, mine)
	theirs, _ := notifRepo.ListByRecipient(context.Background(), 9)
	assert.Len(t, theirs, 1)
}

func TestGetUnreadCount(t *testing.T) {
	e := echo.New()
	notifRepo := &memNotificationRepo{}
	h := NewNotificationHandler(notifRepo, newMemUserRepo())

	a := seedNotification(t, notifRepo, 1, 2, models.NotificationKindLike)
	seedNotification(t, notifRepo, 1, 3, models.NotificationKindComment)
	_, err := notifRepo.MarkRead(context.Background(), a.ID.Hex(), 1)
	require.NoError(t, err)

	c, rec := newTestContext(e, http.MethodGet, "/notifications/unread-count", nil, 1)
	require.NoError(t, h.GetUnreadCount(c))

	var got map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got["count"])
}

func TestNotificationEndpoints_RequireAuthentication(t *testing.T) {
	e := echo.New()
	h := NewNotificationHandler(&memNotificationRepo{}, newMemUserRepo())

	c, _ := newTestContext(e, http.MethodGet, "/notifications", nil, 0)
	err := h.GetNotifications(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
