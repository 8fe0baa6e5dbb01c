package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is a developer profile stored in MongoDB
type Profile struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID         uint               `json:"user_id" bson:"user_id"`
	Company        string             `json:"company,omitempty" bson:"company,omitempty"`
	Website        string             `json:"website,omitempty" bson:"website,omitempty"`
	Location       string             `json:"location,omitempty" bson:"location,omitempty"`
	Status         string             `json:"status" bson:"status"`
	Bio            string             `json:"bio,omitempty" bson:"bio,omitempty"`
	GithubUsername string             `json:"github_username,omitempty" bson:"github_username,omitempty"`
	Skills         []string           `json:"skills" bson:"skills"`
	Social         Social             `json:"social" bson:"social"`
	Experience     []Experience       `json:"experience" bson:"experience"`
	Education      []Education        `json:"education" bson:"education"`
	Followers      []uint             `json:"followers" bson:"followers"`
	Following      []uint             `json:"following" bson:"following"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// Social holds the profile's external links
type Social struct {
	Linkedin string `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	Github   string `json:"github,omitempty" bson:"github,omitempty"`
}

// Experience is a work history entry embedded in a profile
type Experience struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	Title       string             `json:"title" bson:"title"`
	Company     string             `json:"company" bson:"company"`
	Location    string             `json:"location,omitempty" bson:"location,omitempty"`
	From        time.Time          `json:"from" bson:"from"`
	To          *time.Time         `json:"to,omitempty" bson:"to,omitempty"`
	Current     bool               `json:"current" bson:"current"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
}

// Education is a schooling entry embedded in a profile
type Education struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	School       string             `json:"school" bson:"school"`
	Degree       string             `json:"degree" bson:"degree"`
	FieldOfStudy string             `json:"field_of_study" bson:"field_of_study"`
	From         time.Time          `json:"from" bson:"from"`
	To           *time.Time         `json:"to,omitempty" bson:"to,omitempty"`
	Current      bool               `json:"current" bson:"current"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
}

// UpsertProfileRequest defines the request body for creating or updating a profile
type UpsertProfileRequest struct {
	Company        string `json:"company,omitempty"`
	Website        string `json:"website,omitempty" validate:"omitempty,url"`
	Location       string `json:"location,omitempty"`
	Status         string `json:"status" validate:"required"`
	Bio            string `json:"bio,omitempty" validate:"omitempty,max=500"`
	GithubUsername string `json:"github_username,omitempty"`
	Skills         string `json:"skills" validate:"required"` // comma-separated, split server-side
	Linkedin       string `json:"linkedin,omitempty" validate:"omitempty,url"`
	Github         string `json:"github,omitempty" validate:"omitempty,url"`
}

// AddExperienceRequest defines the request body for adding an experience entry
type AddExperienceRequest struct {
	Title       string     `json:"title" validate:"required"`
	Company     string     `json:"company" validate:"required"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from" validate:"required"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

// AddEducationRequest defines the request body for adding an education entry
type AddEducationRequest struct {
	School       string     `json:"school" validate:"required"`
	Degree       string     `json:"degree" validate:"required"`
	FieldOfStudy string     `json:"field_of_study" validate:"required"`
	From         time.Time  `json:"from" validate:"required"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}
