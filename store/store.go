// Package store wraps the listings collection of the document store behind a
// small CRUD-and-query surface so the submission service can be exercised
// against in-memory fakes.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Muga-ai/findahome/models"
)

// ErrNotFound is returned when no listing exists for the given id, or when an
// owner-scoped update or delete matches nothing.
var ErrNotFound = errors.New("listing not found")

// Filter narrows a listing query. Results are always ordered by creation time
// descending.
type Filter struct {
	// CreatedBy restricts to one owner's listings when non-zero.
	CreatedBy primitive.ObjectID
	// Featured restricts on the isFeatured flag when non-nil.
	Featured *bool
	// Limit caps the result count when positive.
	Limit int64
}

type ListingStore interface {
	// Create persists a new listing and returns its store-assigned id.
	Create(ctx context.Context, l *models.Listing) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	// Update replaces the mutable fields of the listing. The write is scoped
	// by owner as a backstop on top of the service-level ownership check.
	Update(ctx context.Context, id, ownerID primitive.ObjectID, u models.ListingUpdate) error
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
	Query(ctx context.Context, f Filter) ([]models.Listing, error)
}
