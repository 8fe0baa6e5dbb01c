package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"time"

	"github.com/devhub/backend/internal/models"
	"github.com/devhub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes shared by the handler tests. They mirror the
// Mongo/Postgres implementations closely enough to exercise the handlers'
// scoping and ordering guarantees without a live database.

type memUserRepo struct {
	users map[uint]*models.User
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	r := &memUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) CreateUser(user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetUserByID(id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("record not found")
	}
	return u, nil
}

func (r *memUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("record not found")
}

func (r *memUserRepo) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	for _, u := range r.users {
		if u.FirebaseUID == firebaseUID {
			return u, nil
		}
	}
	return nil, fmt.Errorf("record not found")
}

func (r *memUserRepo) UpdateUser(user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) DeleteUser(id uint) error {
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) SearchUsers(string) ([]models.User, error) { return nil, nil }

type memNotificationRepo struct {
	notifications []models.Notification
}

func (r *memNotificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	n.Read = false
	n.CreatedAt = time.Now()
	// prepend so listing stays newest first, like the sorted Mongo query
	r.notifications = append([]models.Notification{*n}, r.notifications...)
	return nil
}

func (r *memNotificationRepo) ListByRecipient(_ context.Context, recipientID uint) ([]models.Notification, error) {
	out := []models.Notification{}
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id string, recipientID uint) (*models.Notification, error) {
	for i := range r.notifications {
		n := &r.notifications[i]
		if n.ID.Hex() == id && n.RecipientID == recipientID {
			n.Read = true
			copied := *n
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, recipientID uint) error {
	for i := range r.notifications {
		if r.notifications[i].RecipientID == recipientID {
			r.notifications[i].Read = true
		}
	}
	return nil
}

func (r *memNotificationRepo) Delete(_ context.Context, id string, recipientID uint) error {
	for i, n := range r.notifications {
		if n.ID.Hex() == id && n.RecipientID == recipientID {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memNotificationRepo) DeleteAll(_ context.Context, recipientID uint) error {
	kept := r.notifications[:0]
	for _, n := range r.notifications {
		if n.RecipientID != recipientID {
			kept = append(kept, n)
		}
	}
	r.notifications = kept
	return nil
}

func (r *memNotificationRepo) CountUnread(_ context.Context, recipientID uint) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

type memPostRepo struct {
	posts map[string]*models.Post
}

func newMemPostRepo(posts ...*models.Post) *memPostRepo {
	r := &memPostRepo{posts: make(map[string]*models.Post)}
	for _, p := range posts {
		r.posts[p.ID.Hex()] = p
	}
	return r
}

func (r *memPostRepo) CreatePost(_ context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	if post.Likes == nil {
		post.Likes = []models.Like{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	r.posts[post.ID.Hex()] = post
	return nil
}

func (r *memPostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post not found")
	}
	copied := *p
	return &copied, nil
}

func (r *memPostRepo) GetPostsByUserID(context.Context, uint, int64, int64) ([]models.Post, error) {
	return nil, nil
}

func (r *memPostRepo) GetAllPosts(context.Context, int64, int64) ([]models.Post, error) {
	out := []models.Post{}
	for _, p := range r.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memPostRepo) DeletePost(_ context.Context, id string) error {
	delete(r.posts, id)
	return nil
}

func (r *memPostRepo) DeletePostsByUserID(_ context.Context, userID uint) error {
	for id, p := range r.posts {
		if p.UserID == userID {
			delete(r.posts, id)
		}
	}
	return nil
}

func (r *memPostRepo) AddLike(_ context.Context, postID string, like models.Like) error {
	p, ok := r.posts[postID]
	if !ok {
		return fmt.Errorf("post not found")
	}
	if p.LikedBy(like.UserID) {
		return nil
	}
	p.Likes = append([]models.Like{like}, p.Likes...)
	return nil
}

func (r *memPostRepo) RemoveLike(_ context.Context, postID string, userID uint) error {
	p, ok := r.posts[postID]
	if !ok {
		return fmt.Errorf("post not found")
	}
	kept := p.Likes[:0]
	for _, l := range p.Likes {
		if l.UserID != userID {
			kept = append(kept, l)
		}
	}
	p.Likes = kept
	return nil
}

func (r *memPostRepo) AddComment(_ context.Context, postID string, comment models.Comment) error {
	p, ok := r.posts[postID]
	if !ok {
		return fmt.Errorf("post not found")
	}
	p.Comments = append([]models.Comment{comment}, p.Comments...)
	return nil
}

func (r *memPostRepo) RemoveComment(_ context.Context, postID, commentID string) error {
	p, ok := r.posts[postID]
	if !ok {
		return fmt.Errorf("post not found")
	}
	kept := p.Comments[:0]
	for _, cm := range p.Comments {
		if cm.ID.Hex() != commentID {
			kept = append(kept, cm)
		}
	}
	p.Comments = kept
	return nil
}

type memProfileRepo struct {
	profiles map[uint]*models.Profile
}

func newMemProfileRepo(profiles ...*models.Profile) *memProfileRepo {
	r := &memProfileRepo{profiles: make(map[uint]*models.Profile)}
	for _, p := range profiles {
		r.profiles[p.UserID] = p
	}
	return r
}

func (r *memProfileRepo) UpsertProfile(_ context.Context, profile *models.Profile) (*models.Profile, error) {
	existing, ok := r.profiles[profile.UserID]
	if !ok {
		profile.ID = primitive.NewObjectID()
		r.profiles[profile.UserID] = profile
		return profile, nil
	}
	profile.ID = existing.ID
	profile.Followers = existing.Followers
	profile.Following = existing.Following
	r.profiles[profile.UserID] = profile
	return profile, nil
}

func (r *memProfileRepo) GetProfileByUserID(_ context.Context, userID uint) (*models.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memProfileRepo) GetAllProfiles(context.Context) ([]models.Profile, error) {
	out := []models.Profile{}
	for _, p := range r.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProfileRepo) DeleteProfile(_ context.Context, userID uint) error {
	delete(r.profiles, userID)
	return nil
}

func (r *memProfileRepo) AddExperience(_ context.Context, userID uint, exp models.Experience) (*models.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	p.Experience = append([]models.Experience{exp}, p.Experience...)
	return p, nil
}

func (r *memProfileRepo) RemoveExperience(_ context.Context, userID uint, expID string) (*models.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	kept := p.Experience[:0]
	for _, e := range p.Experience {
		if e.ID.Hex() != expID {
			kept = append(kept, e)
		}
	}
	p.Experience = kept
	return p, nil
}

func (r *memProfileRepo) AddEducation(_ context.Context, userID uint, edu models.Education) (*models.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	p.Education = append([]models.Education{edu}, p.Education...)
	return p, nil
}

func (r *memProfileRepo) RemoveEducation(_ context.Context, userID uint, eduID string) (*models.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	kept := p.Education[:0]
	for _, e := range p.Education {
		if e.ID.Hex() != eduID {
			kept = append(kept, e)
		}
	}
	p.Education = kept
	return p, nil
}

func (r *memProfileRepo) AddFollower(_ context.Context, targetUserID, followerUserID uint) error {
	p, ok := r.profiles[targetUserID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	for _, f := range p.Followers {
		if f == followerUserID {
			return nil
		}
	}
	p.Followers = append(p.Followers, followerUserID)
	return nil
}

func (r *memProfileRepo) RemoveFollower(_ context.Context, targetUserID, followerUserID uint) error {
	p, ok := r.profiles[targetUserID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	kept := p.Followers[:0]
	for _, f := range p.Followers {
		if f != followerUserID {
			kept = append(kept, f)
		}
	}
	p.Followers = kept
	return nil
}

func (r *memProfileRepo) AddFollowing(_ context.Context, userID, followedUserID uint) error {
	p, ok := r.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	for _, f := range p.Following {
		if f == followedUserID {
			return nil
		}
	}
	p.Following = append(p.Following, followedUserID)
	return nil
}

func (r *memProfileRepo) RemoveFollowing(_ context.Context, userID, followedUserID uint) error {
	p, ok := r.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	kept := p.Following[:0]
	for _, f := range p.Following {
		if f != followedUserID {
			kept = append(kept, f)
		}
	}
	p.Following = kept
	return nil
}

// newTestContext builds an Echo context carrying JWT claims for userID, the
// way JWTAuthMiddleware would after verifying a token.
func newTestContext(e *echo.Echo, method, target string, body io.Reader, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID})
	}
	return c, rec
}
