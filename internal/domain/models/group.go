// internal/domain/models/group.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a community that posts can be filed under.
//
// Groups are created by administrators. Posts reference a group but never
// own it: deleting a group clears group_id on its posts.
type Group struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
}
