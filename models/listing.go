package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ListingStatus string

const (
	StatusActive  ListingStatus = "active"
	StatusPending ListingStatus = "pending"
	StatusSold    ListingStatus = "sold"
)

// Listing is the persisted property record. Images holds 1 to 6 URLs at the
// moment a listing is persisted; order is significant, index 0 is the cover.
type Listing struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Location    string             `bson:"location" json:"location"`
	Beds        float64            `bson:"beds" json:"beds"`
	Baths       float64            `bson:"baths" json:"baths"`
	Size        float64            `bson:"size" json:"size"`
	Images      []string           `bson:"images" json:"images"`
	VirtualTour *string            `bson:"virtualTour" json:"virtualTour"`
	IsFeatured  bool               `bson:"isFeatured" json:"isFeatured"`
	Status      ListingStatus      `bson:"status" json:"status"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// ListingUpdate carries the mutable fields of a listing. ID, CreatedBy and
// CreatedAt are deliberately absent: they are never part of an update payload.
type ListingUpdate struct {
	Title       string        `bson:"title"`
	Description string        `bson:"description"`
	Price       float64       `bson:"price"`
	Location    string        `bson:"location"`
	Beds        float64       `bson:"beds"`
	Baths       float64       `bson:"baths"`
	Size        float64       `bson:"size"`
	Images      []string      `bson:"images"`
	VirtualTour *string       `bson:"virtualTour"`
	IsFeatured  bool          `bson:"isFeatured"`
	Status      ListingStatus `bson:"status"`
}
