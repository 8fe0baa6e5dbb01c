package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/devhub/backend/internal/models"
	"github.com/devhub/backend/internal/notify"
	"github.com/devhub/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileHandler handles developer profile HTTP requests, including the
// follow relationship that feeds the notification writer
type ProfileHandler struct {
	profileRepository repositories.ProfileRepository
	userRepository    repositories.UserRepository
	postRepository    repositories.PostRepository
	notifier          *notify.Notifier
	httpClient        *http.Client
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(
	profileRepo repositories.ProfileRepository,
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	notifier *notify.Notifier,
) *ProfileHandler {
	return &ProfileHandler{
		profileRepository: profileRepo,
		userRepository:    userRepo,
		postRepository:    postRepo,
		notifier:          notifier,
		httpClient:        &http.Client{Timeout: 10 * time.Second},
	}
}

// RegisterProfileRoutes registers profile-related routes
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profiles/me", h.GetMyProfile)
	g.POST("/profiles", h.UpsertProfile)
	g.GET("/profiles", h.GetAllProfiles)
	g.GET("/profiles/user/:user_id", h.GetProfileByUserID)
	g.DELETE("/profiles", h.DeleteAccount)
	g.PUT("/profiles/experience", h.AddExperience)
	g.DELETE("/profiles/experience/:exp_id", h.RemoveExperience)
	g.PUT("/profiles/education", h.AddEducation)
	g.DELETE("/profiles/education/:edu_id", h.RemoveEducation)
	g.PUT("/profiles/:user_id/follow", h.FollowUser)
	g.PUT("/profiles/:user_id/unfollow", h.UnfollowUser)
	g.GET("/profiles/github/:username", h.GetGithubRepos)
}

// GetMyProfile retrieves the authenticated user's profile
func (h *ProfileHandler) GetMyProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	profile, err := h.profileRepository.GetProfileByUserID(c.Request().Context(), currentUserID)
	if err != nil {
		if err == repositories.ErrProfileNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "There is no profile for this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profile)
}

// UpsertProfile creates or updates the authenticated user's profile
func (h *ProfileHandler) UpsertProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpsertProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	skills := []string{}
	for _, s := range strings.Split(req.Skills, ",") {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}

	profile := &models.Profile{
		UserID:         currentUserID,
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Status:         req.Status,
		Bio:            req.Bio,
		GithubUsername: req.GithubUsername,
		Skills:         skills,
		Social:         models.Social{Linkedin: req.Linkedin, Github: req.Github},
	}

	updated, err := h.profileRepository.UpsertProfile(c.Request().Context(), profile)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

// GetAllProfiles lists every developer profile
func (h *ProfileHandler) GetAllProfiles(c echo.Context) error {
	profiles, err := h.profileRepository.GetAllProfiles(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profiles)
}

// GetProfileByUserID retrieves a profile by its owning user's ID
func (h *ProfileHandler) GetProfileByUserID(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	profile, err := h.profileRepository.GetProfileByUserID(c.Request().Context(), uint(userID))
	if err != nil {
		if err == repositories.ErrProfileNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profile)
}

// DeleteAccount removes the authenticated user's posts, profile and account
func (h *ProfileHandler) DeleteAccount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	ctx := c.Request().Context()

	if err := h.postRepository.DeletePostsByUserID(ctx, currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.profileRepository.DeleteProfile(ctx, currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.userRepository.DeleteUser(currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"msg": "User deleted"})
}

// AddExperience adds a work history entry to the authenticated user's profile
func (h *ProfileHandler) AddExperience(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.AddExperienceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	exp := models.Experience{
		ID:          primitive.NewObjectID(),
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        req.From,
		To:          req.To,
		Current:     req.Current,
		Description: req.Description,
	}

	profile, err := h.profileRepository.AddExperience(c.Request().Context(), currentUserID, exp)
	if err != nil {
		if err == repositories.ErrProfileNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "There is no profile for this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profile)
}

// RemoveExperience deletes a work history entry from the profile
func (h *ProfileHandler) RemoveExperience(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	profile, err := h.profileRepository.RemoveExperience(c.Request().Context(), currentUserID, c.Param("exp_id"))
	if err != nil {
		if err == repositories.ErrProfileNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "There is no profile for this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profile)
}

// AddEducation adds a schooling entry to the authenticated user's profile
func (h *ProfileHandler) AddEducation(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.AddEducationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	edu := models.Education{
		ID:           primitive.NewObjectID(),
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         req.From,
		To:           req.To,
		Current:      req.Current,
		Description:  req.Description,
	}

	profile, err := h.profileRepository.AddEducation(c.Request().Context(), currentUserID, edu)
	if err != nil {
		if err == repositories.ErrProfileNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "There is no profile for this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profile)
}

// RemoveEducation deletes a schooling entry from the profile
func (h *ProfileHandler) RemoveEducation(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	profile, err := h.profileRepository.RemoveEducation(c.Request().Context(), currentUserID, c.Param("edu_id"))
	if err != nil {
		if err == repositories.ErrProfileNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "There is no profile for this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profile)
}

// FollowUser follows another user and notifies them
func (h *ProfileHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID64, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	targetID := uint(targetID64)

	if currentUserID == targetID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	ctx := c.Request().Context()

	targetProfile, err := h.profileRepository.GetProfileByUserID(ctx, targetID)
	if err != nil {
		if err == repositories.ErrProfileNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	for _, f := range targetProfile.Followers {
		if f == currentUserID {
			return echo.NewHTTPError(http.StatusBadRequest, "Already following")
		}
	}

	if err := h.profileRepository.AddFollower(ctx, targetID, currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.profileRepository.AddFollowing(ctx, currentUserID, targetID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Notification side channel: best effort, never fails the follow
	actor, err := h.userRepository.GetUserByID(currentUserID)
	if err == nil {
		h.notifier.Notify(ctx, targetID, models.NotificationKindFollow, currentUserID, "",
			fmt.Sprintf("%s started following you", actor.Name))
	}

	return c.JSON(http.StatusOK, echo.Map{"msg": "User followed"})
}

// UnfollowUser removes a follow relationship; no notification is created
func (h *ProfileHandler) UnfollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID64, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	targetID := uint(targetID64)

	if currentUserID == targetID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot unfollow yourself")
	}

	ctx := c.Request().Context()

	if _, err := h.profileRepository.GetProfileByUserID(ctx, targetID); err != nil {
		if err == repositories.ErrProfileNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.profileRepository.RemoveFollower(ctx, targetID, currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.profileRepository.RemoveFollowing(ctx, currentUserID, targetID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"msg": "User unfollowed"})
}

// GetGithubRepos proxies the user's latest public repositories from GitHub
func (h *ProfileHandler) GetGithubRepos(c echo.Context) error {
	username := c.Param("username")

	uri := fmt.Sprintf("https://api.github.com/users/%s/repos?per_page=5&sort=created:asc", username)
	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, uri, nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	req.Header.Set("User-Agent", "devhub-api")
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		req.Header.Set("Authorization", "token "+token)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return echo.NewHTTPError(http.StatusNotFound, "No GitHub profile found")
	}

	return c.Stream(http.StatusOK, echo.MIMEApplicationJSON, resp.Body)
}
