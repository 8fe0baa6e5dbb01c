package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/devhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfileRepository defines the interface for developer profile operations
type ProfileRepository interface {
	UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	GetProfileByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	GetAllProfiles(ctx context.Context) ([]models.Profile, error)
	DeleteProfile(ctx context.Context, userID uint) error
	AddExperience(ctx context.Context, userID uint, exp models.Experience) (*models.Profile, error)
	RemoveExperience(ctx context.Context, userID uint, expID string) (*models.Profile, error)
	AddEducation(ctx context.Context, userID uint, edu models.Education) (*models.Profile, error)
	RemoveEducation(ctx context.Context, userID uint, eduID string) (*models.Profile, error)
	AddFollower(ctx context.Context, targetUserID, followerUserID uint) error
	RemoveFollower(ctx context.Context, targetUserID, followerUserID uint) error
	AddFollowing(ctx context.Context, userID, followedUserID uint) error
	RemoveFollowing(ctx context.Context, userID, followedUserID uint) error
}

// ErrProfileNotFound is returned when no profile document exists for a user
var ErrProfileNotFound = fmt.Errorf("profile not found")

// MongoProfileRepository implements ProfileRepository for MongoDB
type MongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a new MongoProfileRepository
func NewMongoProfileRepository(db *mongo.Database) *MongoProfileRepository {
	return &MongoProfileRepository{collection: db.Collection("profiles")}
}

// UpsertProfile creates the user's profile or replaces its scalar fields,
// preserving experience, education and follow arrays
func (r *MongoProfileRepository) UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"company":         profile.Company,
			"website":         profile.Website,
			"location":        profile.Location,
			"status":          profile.Status,
			"bio":             profile.Bio,
			"github_username": profile.GithubUsername,
			"skills":          profile.Skills,
			"social":          profile.Social,
			"updated_at":      now,
		},
		"$setOnInsert": bson.M{
			"user_id":    profile.UserID,
			"experience": []models.Experience{},
			"education":  []models.Education{},
			"followers":  []uint{},
			"following":  []uint{},
			"created_at": now,
		},
	}

	after := options.After
	var updated models.Profile
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"user_id": profile.UserID},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(after),
	).Decode(&updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// GetProfileByUserID retrieves a profile by its owning user ID
func (r *MongoProfileRepository) GetProfileByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// GetAllProfiles retrieves every developer profile
func (r *MongoProfileRepository) GetAllProfiles(ctx context.Context) ([]models.Profile, error) {
	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []models.Profile{}
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// DeleteProfile removes a user's profile document
func (r *MongoProfileRepository) DeleteProfile(ctx context.Context, userID uint) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	return err
}

// AddExperience prepends an experience entry to the profile
func (r *MongoProfileRepository) AddExperience(ctx context.Context, userID uint, exp models.Experience) (*models.Profile, error) {
	return r.pushEntry(ctx, userID, "experience", exp)
}

// RemoveExperience deletes an experience entry by ID
func (r *MongoProfileRepository) RemoveExperience(ctx context.Context, userID uint, expID string) (*models.Profile, error) {
	return r.pullEntry(ctx, userID, "experience", expID)
}

// AddEducation prepends an education entry to the profile
func (r *MongoProfileRepository) AddEducation(ctx context.Context, userID uint, edu models.Education) (*models.Profile, error) {
	return r.pushEntry(ctx, userID, "education", edu)
}

// RemoveEducation deletes an education entry by ID
func (r *MongoProfileRepository) RemoveEducation(ctx context.Context, userID uint, eduID string) (*models.Profile, error) {
	return r.pullEntry(ctx, userID, "education", eduID)
}

func (r *MongoProfileRepository) pushEntry(ctx context.Context, userID uint, field string, entry interface{}) (*models.Profile, error) {
	after := options.After
	var updated models.Profile
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$push": bson.M{field: bson.M{"$each": []interface{}{entry}, "$position": 0}},
			"$set":  bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (r *MongoProfileRepository) pullEntry(ctx context.Context, userID uint, field, entryID string) (*models.Profile, error) {
	objID, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		return nil, fmt.Errorf("invalid entry ID format: %w", err)
	}

	after := options.After
	var updated models.Profile
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$pull": bson.M{field: bson.M{"_id": objID}},
			"$set":  bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// AddFollower records followerUserID on the target profile's followers array.
// The $ne filter makes a concurrent duplicate follow a no-op.
func (r *MongoProfileRepository) AddFollower(ctx context.Context, targetUserID, followerUserID uint) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": targetUserID, "followers": bson.M{"$ne": followerUserID}},
		bson.M{"$push": bson.M{"followers": bson.M{"$each": []uint{followerUserID}, "$position": 0}}},
	)
	return err
}

// RemoveFollower pulls followerUserID from the target profile's followers array
func (r *MongoProfileRepository) RemoveFollower(ctx context.Context, targetUserID, followerUserID uint) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": targetUserID},
		bson.M{"$pull": bson.M{"followers": followerUserID}},
	)
	return err
}

// AddFollowing records followedUserID on the user's following array
func (r *MongoProfileRepository) AddFollowing(ctx context.Context, userID, followedUserID uint) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID, "following": bson.M{"$ne": followedUserID}},
		bson.M{"$push": bson.M{"following": bson.M{"$each": []uint{followedUserID}, "$position": 0}}},
	)
	return err
}

// RemoveFollowing pulls followedUserID from the user's following array
func (r *MongoProfileRepository) RemoveFollowing(ctx context.Context, userID, followedUserID uint) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$pull": bson.M{"following": followedUserID}},
	)
	return err
}
