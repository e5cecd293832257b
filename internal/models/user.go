package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User maps an external identity to an internal id.
type User struct {
	ID         string    `bson:"_id" json:"id"`
	ExternalID string    `bson:"external_id" json:"externalId"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

// Preferences are the onboarding choices of a user.
type Preferences struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID       string             `bson:"user_id" json:"userId"`
	Assets       []string           `bson:"assets" json:"assets"`
	InvestorType Persona            `bson:"investor_type" json:"investorType"`
	ContentTypes []string           `bson:"content_types" json:"contentTypes"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
}

// Vote is a single up (+1) or down (-1) reaction to a piece of content.
type Vote struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"userId"`
	Section   Section            `bson:"section" json:"section"`
	ContentID string             `bson:"content_id" json:"contentId"`
	Value     int                `bson:"vote" json:"vote"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
