package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/devhub/backend/internal/models"
	"github.com/devhub/backend/internal/notify"
	"github.com/devhub/backend/internal/realtime"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newProfileTestHandler(profiles ...*models.Profile) (*ProfileHandler, *memNotificationRepo, *memProfileRepo) {
	userRepo := newMemUserRepo(
		&models.User{ID: 1, Name: "Alice", Avatar: "a.png"},
		&models.User{ID: 2, Name: "Bob", Avatar: "b.png"},
	)
	profileRepo := newMemProfileRepo(profiles...)
	notifRepo := &memNotificationRepo{}
	notifier := notify.NewNotifier(notifRepo, realtime.NewHub())
	return NewProfileHandler(profileRepo, userRepo, newMemPostRepo(), notifier), notifRepo, profileRepo
}

func testProfile(userID uint) *models.Profile {
	return &models.Profile{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Status:    "Developer",
		Skills:    []string{"Go"},
		Followers: []uint{},
		Following: []uint{},
	}
}

func TestFollowUser_NotifiesTarget(t *testing.T) {
	e := echo.New()
	h, notifRepo, profileRepo := newProfileTestHandler(testProfile(1), testProfile(2))

	c, rec := newTestContext(e, http.MethodPut, "/", nil, 1)
	c.SetParamNames("user_id")
	c.SetParamValues("2")
	require.NoError(t, h.FollowUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	target, err := profileRepo.GetProfileByUserID(context.Background(), 2)
	require.NoError(t, err)
	assert.Contains(t, target.Followers, uint(1))
	follower, err := profileRepo.GetProfileByUserID(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, follower.Following, uint(2))

	records, err := notifRepo.ListByRecipient(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.NotificationKindFollow, records[0].Kind)
	assert.Equal(t, uint(1), records[0].ActorID)
	assert.Empty(t, records[0].SubjectID)
	assert.False(t, records[0].Read)
	assert.Equal(t, "Alice started following you", records[0].Message)
}

func TestFollowUser_SelfFollowIsRejected(t *testing.T) {
	e := echo.New()
	h, notifRepo, _ := newProfileTestHandler(testProfile(1))

	c, _ := newTestContext(e, http.MethodPut, "/", nil, 1)
	c.SetParamNames("user_id")
	c.SetParamValues("1")
	err := h.FollowUser(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)

	records, _ := notifRepo.ListByRecipient(context.Background(), 1)
	assert.Empty(t, records)
}

func TestFollowUser_AlreadyFollowingIsRejected(t *testing.T) {
	e := echo.New()
	target := testProfile(2)
	target.Followers = []uint{1}
	h, notifRepo, _ := newProfileTestHandler(testProfile(1), target)

	c, _ := newTestContext(e, http.MethodPut, "/", nil, 1)
	c.SetParamNames("user_id")
	c.SetParamValues("2")
	err := h.FollowUser(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)

	records, _ := notifRepo.ListByRecipient(context.Background(), 2)
	assert.Empty(t, records, "a rejected follow must not notify")
}

func TestUnfollowUser_CreatesNoNotification(t *testing.T) {
	e := echo.New()
	target := testProfile(2)
	target.Followers = []uint{1}
	me := testProfile(1)
	me.Following = []uint{2}
	h, notifRepo, profileRepo := newProfileTestHandler(me, target)

	c, rec := newTestContext(e, http.MethodPut, "/", nil, 1)
	c.SetParamNames("user_id")
	c.SetParamValues("2")
	require.NoError(t, h.UnfollowUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	updated, err := profileRepo.GetProfileByUserID(context.Background(), 2)
	require.NoError(t, err)
	assert.NotContains(t, updated.Followers, uint(1))

	records, _ := notifRepo.ListByRecipient(context.Background(), 2)
	assert.Empty(t, records)
}

func TestFollowUser_MissingProfileIsNotFound(t *testing.T) {
	e := echo.New()
	h, _, _ := newProfileTestHandler(testProfile(1))

	c, _ := newTestContext(e, http.MethodPut, "/", nil, 1)
	c.SetParamNames("user_id")
	c.SetParamValues("42")
	err := h.FollowUser(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}
