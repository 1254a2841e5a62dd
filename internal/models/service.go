package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SpaService is a bookable grooming/bath service. DurationMinutes drives
// how many hourly slots an appointment occupies.
type SpaService struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	DurationMinutes int                `bson:"durationMinutes" json:"durationMinutes"`
	BasePrice       float64            `bson:"basePrice" json:"basePrice"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
