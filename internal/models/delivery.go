package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// DeliveryMethod is looked up at checkout for its fee; managing the
// catalog of methods lives outside this service.
type DeliveryMethod struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Fee      float64            `bson:"fee" json:"fee"`
	IsActive bool               `bson:"isActive" json:"isActive"`
}
