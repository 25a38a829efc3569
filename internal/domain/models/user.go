// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that can author posts, comment, and follow other users.
//
// NOTE:
//   - UsernameCI is the case/diacritic-folded username and carries the
//     unique index, so "Leo" and "leo" cannot both register.
//   - Role is "user" for everyone except site administrators ("admin"),
//     who manage groups and accounts.
type User struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Username     string             `bson:"username" json:"username"`
	UsernameCI   string             `bson:"username_ci" json:"-"`
	FullName     string             `bson:"full_name" json:"full_name"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DisplayName returns the full name when set, otherwise the username.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
