// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/dalemusser/postboard/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateSlug = errors.New("a group with this slug already exists")
	ErrBadSlug       = errors.New("slug may contain only letters, digits, hyphens and underscores (max 50)")
	ErrNoTitle       = errors.New("title is required")
)

var slugRE = regexp.MustCompile(`^[-a-zA-Z0-9_]{1,50}$`)

// ValidSlug reports whether s is URL-safe and at most 50 characters.
func ValidSlug(s string) bool {
	return slugRE.MatchString(s)
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	g.Title = strings.TrimSpace(g.Title)
	g.Slug = strings.TrimSpace(g.Slug)
	if g.Title == "" {
		return models.Group{}, ErrNoTitle
	}
	if !ValidSlug(g.Slug) {
		return models.Group{}, ErrBadSlug
	}
	g.ID = primitive.NewObjectID()
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateSlug
		}
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// GetBySlug returns mongo.ErrNoDocuments if no group has the slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// GetManyByIDs loads the given groups keyed by ID. Missing IDs are skipped.
func (s *Store) GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Group, error) {
	out := make(map[primitive.ObjectID]models.Group, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var g models.Group
		if err := cur.Decode(&g); err != nil {
			return nil, err
		}
		out[g.ID] = g
	}
	return out, cur.Err()
}

// List returns all groups ordered by title.
func (s *Store) List(ctx context.Context) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a group by ID. Returns the number of documents deleted (0 or 1).
// Posts referencing the group must be detached by the caller.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
