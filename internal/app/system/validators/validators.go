// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/postboard/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// collections lists every collection the blog stores, with its schema.
var collections = []struct {
	name   string
	schema func() bson.M
}{
	{"users", usersSchema},
	{"groups", groupsSchema},
	{"posts", postsSchema},
	{"comments", commentsSchema},
	{"follows", followsSchema},
}

// EnsureAll creates missing collections with their JSON-Schema validator and
// re-applies the validator to collections that already exist. Servers that
// reject validators (some DocumentDB versions) are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}

	var errs []error
	for _, c := range collections {
		if err := ensureOne(ctx, db, c.name, c.schema(), have[c.name]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	return errors.Join(errs...)
}

func ensureOne(ctx context.Context, db *mongo.Database, name string, schema bson.M, exists bool) error {
	if !exists {
		opts := options.CreateCollection().
			SetValidator(schema).
			SetValidationLevel("moderate").
			SetValidationAction("error")
		err := db.CreateCollection(ctx, name, opts)
		switch {
		case err == nil:
			zap.L().Info("created collection", zap.String("collection", name))
			return nil
		case unsupported(err):
			// Create bare, then fall through to collMod which will be skipped too.
			if err := db.CreateCollection(ctx, name); err != nil && !hasCode(err, 48, "already exists") {
				return err
			}
		case hasCode(err, 48, "already exists"):
			// Another instance won the race.
		default:
			return err
		}
	}

	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: schema},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		if unsupported(err) {
			zap.L().Info("validator skipped (unsupported)", zap.String("collection", name))
			return nil
		}
		return err
	}
	zap.L().Debug("validator ensured", zap.String("collection", name))
	return nil
}

// unsupported reports "no such command" (59) or "not implemented" (115).
func unsupported(err error) bool {
	return hasCode(err, 59, "no such command") ||
		hasCode(err, 115, "not implemented") ||
		hasCode(err, 115, "not supported")
}

// hasCode matches a server error by code, falling back to message text for
// wrappers that lose the code.
func hasCode(err error, code int32, text string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), text)
}

/* ------------------------- JSON-Schema docs ---------------------- */

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "username_ci", "password_hash", "role"},
			"properties": bson.M{
				"username":      bson.M{"bsonType": "string", "minLength": 1, "maxLength": 150, "pattern": "^[\\w.@+-]+$"},
				"username_ci":   bson.M{"bsonType": "string", "minLength": 1},
				"full_name":     bson.M{"bsonType": "string"},
				"email":         bson.M{"bsonType": bson.A{"string", "null"}},
				"password_hash": bson.M{"bsonType": "string"},
				"role":          bson.M{"enum": bson.A{models.RoleUser, models.RoleAdmin}},
			},
		},
	}
}

func groupsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "slug"},
			"properties": bson.M{
				"title":       bson.M{"bsonType": "string", "minLength": 1, "maxLength": 200, "pattern": ".*\\S.*"},
				"slug":        bson.M{"bsonType": "string", "minLength": 1, "pattern": "^[-a-zA-Z0-9_]+$"},
				"description": bson.M{"bsonType": "string"},
			},
		},
	}
}

func postsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"text", "author_id", "created_at"},
			"properties": bson.M{
				"text":       bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"author_id":  bson.M{"bsonType": "objectId"},
				"group_id":   bson.M{"bsonType": bson.A{"objectId", "null"}},
				"image_path": bson.M{"bsonType": "string"},
				"created_at": bson.M{"bsonType": "date"},
				"updated_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func commentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"post_id", "author_id", "text", "created_at"},
			"properties": bson.M{
				"post_id":    bson.M{"bsonType": "objectId"},
				"author_id":  bson.M{"bsonType": "objectId"},
				"text":       bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func followsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "author_id"},
			"properties": bson.M{
				"user_id":    bson.M{"bsonType": "objectId"},
				"author_id":  bson.M{"bsonType": "objectId"},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}
