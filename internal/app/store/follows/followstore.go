// internal/app/store/follows/followstore.go
package followstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists follow edges. The unique (user_id, author_id) index is what
// makes Create idempotent under concurrency.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("follows")}
}

// Create inserts the edge if absent. created is false when it already existed.
func (s *Store) Create(ctx context.Context, userID, authorID primitive.ObjectID) (created bool, err error) {
	filter := bson.M{"user_id": userID, "author_id": authorID}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":        primitive.NewObjectID(),
		"created_at": time.Now().UTC(),
	}}
	res, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		// A concurrent upsert of the same pair lost the race on the unique index.
		if wafflemongo.IsDup(err) {
			return false, nil
		}
		return false, err
	}
	return res.UpsertedCount == 1, nil
}

// Delete removes the edge. Returns the number removed (0 or 1).
func (s *Store) Delete(ctx context.Context, userID, authorID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "author_id": authorID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Exists reports whether userID follows authorID.
func (s *Store) Exists(ctx context.Context, userID, authorID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"user_id": userID, "author_id": authorID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AuthorIDs returns everyone userID follows.
func (s *Store) AuthorIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, options.Find().SetProjection(bson.M{"author_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := []primitive.ObjectID{}
	for cur.Next(ctx) {
		var row struct {
			AuthorID primitive.ObjectID `bson:"author_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.AuthorID)
	}
	return ids, cur.Err()
}

// DeleteTouching removes every edge where the user is follower or followed.
func (s *Store) DeleteTouching(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"$or": []bson.M{
		{"user_id": userID},
		{"author_id": userID},
	}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
