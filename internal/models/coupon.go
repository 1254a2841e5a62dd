package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Coupon struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code            string             `bson:"code" json:"code"`
	DiscountPercent float64            `bson:"discountPercent" json:"discountPercent"`
	MinOrderValue   float64            `bson:"minOrderValue" json:"minOrderValue"`
	ValidFrom       time.Time          `bson:"validFrom" json:"validFrom"`
	ValidTo         time.Time          `bson:"validTo" json:"validTo"`
	UsageLimit      int                `bson:"usageLimit" json:"usageLimit"`
	UsedCount       int                `bson:"usedCount" json:"usedCount"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
