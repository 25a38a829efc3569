// internal/app/store/posts/poststore.go
package poststore

import (
	"context"
	"time"

	"github.com/dalemusser/postboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("posts")}
}

// feedSort is newest first; _id breaks ties in insertion order.
var feedSort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func filterDoc(f models.PostFilter) bson.M {
	q := bson.M{}
	if f.AuthorID != nil {
		q["author_id"] = *f.AuthorID
	}
	if f.GroupID != nil {
		q["group_id"] = *f.GroupID
	}
	if f.AuthorIDs != nil {
		if f.AuthorID != nil {
			q["$and"] = []bson.M{{"author_id": bson.M{"$in": f.AuthorIDs}}}
		} else {
			q["author_id"] = bson.M{"$in": f.AuthorIDs}
		}
	}
	return q
}

// Create inserts a post. ID and timestamps are assigned here.
func (s *Store) Create(ctx context.Context, p models.Post) (models.Post, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// GetByID returns mongo.ErrNoDocuments if the post does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var p models.Post
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// UpdateContent replaces the editable fields. Author and created_at are
// never touched.
func (s *Store) UpdateContent(ctx context.Context, id primitive.ObjectID, text string, groupID *primitive.ObjectID, imagePath string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"text":       text,
		"group_id":   groupID,
		"image_path": imagePath,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Count returns the number of posts matching f.
func (s *Store) Count(ctx context.Context, f models.PostFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filterDoc(f))
}

// List returns one window of posts matching f in feed order.
func (s *Store) List(ctx context.Context, f models.PostFilter, skip, limit int64) ([]models.Post, error) {
	find := options.Find().SetSort(feedSort).SetSkip(skip).SetLimit(limit)
	cur, err := s.c.Find(ctx, filterDoc(f), find)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Post, 0, limit)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DetachGroup clears group_id on every post in the group.
func (s *Store) DetachGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx, bson.M{"group_id": groupID}, bson.M{"$set": bson.M{"group_id": nil}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// IDsByAuthor returns the IDs of every post by the author.
func (s *Store) IDsByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"author_id": authorID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// ImagePathsByAuthor returns the non-empty image keys of the author's posts.
func (s *Store) ImagePathsByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]string, error) {
	filter := bson.M{"author_id": authorID, "image_path": bson.M{"$nin": []any{nil, ""}}}
	cur, err := s.c.Find(ctx, filter, options.Find().SetProjection(bson.M{"image_path": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var paths []string
	for cur.Next(ctx) {
		var row struct {
			ImagePath string `bson:"image_path"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		paths = append(paths, row.ImagePath)
	}
	return paths, cur.Err()
}

// DeleteByAuthor removes every post by the author.
func (s *Store) DeleteByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"author_id": authorID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
