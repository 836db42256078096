package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Muga-ai/findahome/models"
)

type MongoListingStore struct {
	collection *mongo.Collection
}

func NewMongoListingStore(collection *mongo.Collection) *MongoListingStore {
	return &MongoListingStore{collection: collection}
}

func (s *MongoListingStore) Create(ctx context.Context, l *models.Listing) (primitive.ObjectID, error) {
	l.ID = primitive.NewObjectID()
	l.CreatedAt = time.Now()

	if _, err := s.collection.InsertOne(ctx, l); err != nil {
		return primitive.NilObjectID, err
	}
	return l.ID, nil
}

func (s *MongoListingStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	var l models.Listing
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (s *MongoListingStore) Update(ctx context.Context, id, ownerID primitive.ObjectID, u models.ListingUpdate) error {
	updateDoc := bson.M{
		"title":       u.Title,
		"description": u.Description,
		"price":       u.Price,
		"location":    u.Location,
		"beds":        u.Beds,
		"baths":       u.Baths,
		"size":        u.Size,
		"images":      u.Images,
		"virtualTour": u.VirtualTour,
		"isFeatured":  u.IsFeatured,
		"status":      u.Status,
	}

	res, err := s.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "createdBy": ownerID},
		bson.M{"$set": updateDoc},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoListingStore) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id, "createdBy": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoListingStore) Query(ctx context.Context, f Filter) ([]models.Listing, error) {
	query := bson.M{}
	if !f.CreatedBy.IsZero() {
		query["createdBy"] = f.CreatedBy
	}
	if f.Featured != nil {
		query["isFeatured"] = *f.Featured
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cursor, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	for cursor.Next(ctx) {
		var l models.Listing
		if err := cursor.Decode(&l); err != nil {
			continue
		}
		listings = append(listings, l)
	}
	return listings, cursor.Err()
}
