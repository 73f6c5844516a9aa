package repository

import (
	"context"
	"errors"
	"time"

	"go-helpdesk/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a lookup or update matches no document.
var ErrNotFound = errors.New("document not found")

// Population describes a reference expansion: a local ObjectID field is
// resolved against another collection and embedded under As.
type Population struct {
	LocalField string
	From       string
	As         string
}

// Store is the generic persistence wrapper for a single collection. It
// carries no domain logic; every feature repository composes it instead of
// talking to the driver directly.
type Store[T any] struct {
	Collection *mongo.Collection
}

// NewStore creates a store bound to a collection.
func NewStore[T any](db *database.MongodbDB, collection string) *Store[T] {
	return &Store[T]{Collection: db.DB.Collection(collection)}
}

// Insert inserts a document and returns its generated ID.
func (s *Store[T]) Insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	result, err := s.Collection.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := result.InsertedID.(primitive.ObjectID)
	return id, nil
}

// FindByID retrieves a document by its ObjectID.
func (s *Store[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return s.FindOne(ctx, bson.M{"_id": id})
}

// FindOne retrieves the first document matching the filter.
func (s *Store[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	err := s.Collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Find retrieves documents with filtering, pagination, and sorting, plus the
// total count for the filter.
func (s *Store[T]) Find(ctx context.Context, filter bson.M, page, limit int64, sortBy, sortOrder string) ([]T, int64, error) {
	total, err := s.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	sortValue := 1
	if sortOrder == "desc" {
		sortValue = -1
	}
	if sortBy == "" {
		sortBy = "created_at"
	}

	findOptions := options.Find().SetSort(bson.D{{Key: sortBy, Value: sortValue}})
	if limit > 0 {
		findOptions.SetSkip((page - 1) * limit).SetLimit(limit)
	}

	cursor, err := s.Collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []T
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

// Count counts documents matching the filter.
func (s *Store[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.Collection.CountDocuments(ctx, filter)
}

// UpdateByID applies a $set update and stamps updated_at.
func (s *Store[T]) UpdateByID(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	updates["updated_at"] = time.Now()

	result, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateOne applies a raw update document to the first match of filter.
func (s *Store[T]) UpdateOne(ctx context.Context, filter, update bson.M) error {
	result, err := s.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateMany applies a raw update document to every match of filter.
func (s *Store[T]) UpdateMany(ctx context.Context, filter, update bson.M) (int64, error) {
	result, err := s.Collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// Push appends a value to an array field and stamps updated_at.
func (s *Store[T]) Push(ctx context.Context, id primitive.ObjectID, field string, value any) error {
	result, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{field: value},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByID removes a document.
func (s *Store[T]) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Aggregate runs a pipeline and decodes all results into out, which must be
// a pointer to a slice.
func (s *Store[T]) Aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cursor, err := s.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// FindPopulated retrieves matching documents with the given references
// expanded via $lookup. Results are raw documents because the expanded shape
// no longer matches T.
func (s *Store[T]) FindPopulated(ctx context.Context, filter bson.M, pops []Population, page, limit int64, sortBy, sortOrder string) ([]bson.M, int64, error) {
	total, err := s.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	sortValue := 1
	if sortOrder == "desc" {
		sortValue = -1
	}
	if sortBy == "" {
		sortBy = "created_at"
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: sortBy, Value: sortValue}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: (page - 1) * limit}},
			bson.D{{Key: "$limit", Value: limit}},
		)
	}
	for _, pop := range pops {
		pipeline = append(pipeline,
			bson.D{{Key: "$lookup", Value: bson.M{
				"from":         pop.From,
				"localField":   pop.LocalField,
				"foreignField": "_id",
				"as":           pop.As,
			}}},
			bson.D{{Key: "$unwind", Value: bson.M{
				"path":                       "$" + pop.As,
				"preserveNullAndEmptyArrays": true,
			}}},
		)
	}

	cursor, err := s.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// EnsureIndex creates an index on the collection.
func (s *Store[T]) EnsureIndex(ctx context.Context, keys bson.D, unique bool) error {
	_, err := s.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(unique),
	})
	return err
}
