package listing

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Muga-ai/findahome/models"
	"github.com/Muga-ai/findahome/store"
)

// Browse returns all listings newest-first, optionally narrowed by a free-text
// query. The query matches case-insensitively against title or location.
func (s *Service) Browse(ctx context.Context, query string) ([]models.Listing, error) {
	all, err := s.store.Query(ctx, store.Filter{})
	if err != nil {
		return nil, &PersistenceError{Op: "query", Err: err}
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all, nil
	}

	matched := make([]models.Listing, 0, len(all))
	for _, l := range all {
		if strings.Contains(strings.ToLower(l.Title), query) ||
			strings.Contains(strings.ToLower(l.Location), query) {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

// Featured returns up to limit featured listings, newest-first.
func (s *Service) Featured(ctx context.Context, limit int64) ([]models.Listing, error) {
	featured := true
	listings, err := s.store.Query(ctx, store.Filter{Featured: &featured, Limit: limit})
	if err != nil {
		return nil, &PersistenceError{Op: "query", Err: err}
	}
	return listings, nil
}

// Dashboard returns the current user's own listings, newest-first.
func (s *Service) Dashboard(ctx context.Context, userID primitive.ObjectID) ([]models.Listing, error) {
	if userID.IsZero() {
		return nil, ErrAuth
	}
	listings, err := s.store.Query(ctx, store.Filter{CreatedBy: userID})
	if err != nil {
		return nil, &PersistenceError{Op: "query", Err: err}
	}
	return listings, nil
}

// Get returns one listing by id for the public detail view.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	l, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	return l, nil
}
