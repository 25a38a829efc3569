// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a publication owned by its author.
//
// CreatedAt is set once on insert and never updated. GroupID is nil when the
// post is not filed under a group or its group was deleted. ImagePath is the
// storage key of the optional attached image ("" when none).
type Post struct {
	ID        primitive.ObjectID  `bson:"_id" json:"id"`
	Text      string              `bson:"text" json:"text"`
	AuthorID  primitive.ObjectID  `bson:"author_id" json:"author_id"`
	GroupID   *primitive.ObjectID `bson:"group_id" json:"group_id,omitempty"`
	ImagePath string              `bson:"image_path,omitempty" json:"image_path,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// PostFilter narrows a post query. Zero value matches every post.
//
// When AuthorIDs is non-nil it restricts to those authors; an empty, non-nil
// slice matches nothing.
type PostFilter struct {
	AuthorID  *primitive.ObjectID
	GroupID   *primitive.ObjectID
	AuthorIDs []primitive.ObjectID
}
