package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/devhub/backend/internal/models"
	"github.com/devhub/backend/internal/notify"
	"github.com/devhub/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostHandler handles post HTTP requests. Like and comment actions embed the
// notification writer as a post-persistence side effect.
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	notifier       *notify.Notifier
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, notifier *notify.Notifier) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		notifier:       notifier,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.PUT("/posts/:id/like", h.LikePost)
	g.PUT("/posts/:id/unlike", h.UnlikePost)
	g.POST("/posts/:id/comments", h.CreateComment)
	g.DELETE("/posts/:id/comments/:comment_id", h.DeleteComment)
}

// CreatePost creates a new post authored by the current user
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	post := &models.Post{
		UserID: currentUserID,
		Text:   req.Text,
		Name:   user.Name,
		Avatar: user.Avatar,
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPosts lists posts, newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	posts, err := h.postRepository.GetAllPosts(c.Request().Context(), (page-1)*limit, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, posts)
}

// GetPost retrieves a single post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post if the current user owns it
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	if post.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authorized")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"msg": "Post removed"})
}

// LikePost likes a post and notifies its owner
func (h *PostHandler) LikePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	// Idempotency guard. Two concurrent likes can both pass this check; the
	// repository filter keeps the array clean, but a duplicate notification
	// remains possible under that race.
	if post.LikedBy(currentUserID) {
		return echo.NewHTTPError(http.StatusBadRequest, "Post already liked")
	}

	like := models.Like{UserID: currentUserID, CreatedAt: time.Now()}
	if err := h.postRepository.AddLike(ctx, postID, like); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.UserID != currentUserID {
		actor, err := h.userRepository.GetUserByID(currentUserID)
		if err == nil {
			h.notifier.Notify(ctx, post.UserID, models.NotificationKindLike, currentUserID, postID,
				fmt.Sprintf("%s liked your post", actor.Name))
		}
	}

	likes := append([]models.Like{like}, post.Likes...)
	return c.JSON(http.StatusOK, likes)
}

// UnlikePost removes the current user's like; no notification is created
func (h *PostHandler) UnlikePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	if !post.LikedBy(currentUserID) {
		return echo.NewHTTPError(http.StatusBadRequest, "Post has not yet been liked")
	}

	if err := h.postRepository.RemoveLike(ctx, postID, currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	likes := make([]models.Like, 0, len(post.Likes))
	for _, l := range post.Likes {
		if l.UserID != currentUserID {
			likes = append(likes, l)
		}
	}
	return c.JSON(http.StatusOK, likes)
}

// CreateComment comments on a post and notifies its owner
func (h *PostHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")
	ctx := c.Request().Context()

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    currentUserID,
		Text:      req.Text,
		Name:      user.Name,
		Avatar:    user.Avatar,
		CreatedAt: time.Now(),
	}

	if err := h.postRepository.AddComment(ctx, postID, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.UserID != currentUserID {
		h.notifier.Notify(ctx, post.UserID, models.NotificationKindComment, currentUserID, postID,
			fmt.Sprintf("%s commented on your post", user.Name))
	}

	comments := append([]models.Comment{comment}, post.Comments...)
	return c.JSON(http.StatusOK, comments)
}

// DeleteComment removes the current user's comment from a post
func (h *PostHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")
	commentID := c.Param("comment_id")
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	var comment *models.Comment
	for i := range post.Comments {
		if post.Comments[i].ID.Hex() == commentID {
			comment = &post.Comments[i]
			break
		}
	}
	if comment == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment does not exist")
	}

	if comment.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authorized")
	}

	if err := h.postRepository.RemoveComment(ctx, postID, commentID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	comments := make([]models.Comment, 0, len(post.Comments))
	for _, cm := range post.Comments {
		if cm.ID.Hex() != commentID {
			comments = append(comments, cm)
		}
	}
	return c.JSON(http.StatusOK, comments)
}
