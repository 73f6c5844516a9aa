package repository

import (
	"context"
	"fmt"

	"go-helpdesk/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Counters hands out monotonically increasing sequences for human-readable
// record identifiers (TKT-1024, SR-57). Backed by atomic findOneAndUpdate
// upserts on a counters collection, so concurrent creates never collide.
type Counters struct {
	collection *mongo.Collection
}

func NewCounters(db *database.MongodbDB) *Counters {
	return &Counters{collection: db.DB.Collection("counters")}
}

type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// Next increments and returns the sequence for name.
func (c *Counters) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counterDoc
	err := c.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

// NextID formats the next sequence with a prefix, e.g. NextID(ctx, "ticket", "TKT").
func (c *Counters) NextID(ctx context.Context, name, prefix string) (string, error) {
	seq, err := c.Next(ctx, name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d", prefix, 1000+seq), nil
}
