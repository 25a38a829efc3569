package auth

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionUser is the signed-in user as seen by handlers.
type SessionUser struct {
	ID       string // hex ObjectID
	Username string
	Name     string
	Role     string
}

// IsAdmin reports whether the user has the admin role.
func (u *SessionUser) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

// ObjectID parses ID. It returns primitive.NilObjectID when ID is malformed.
func (u *SessionUser) ObjectID() primitive.ObjectID {
	if u == nil {
		return primitive.NilObjectID
	}
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// UserID returns the signed-in user's ObjectID, or primitive.NilObjectID for
// anonymous requests.
func UserID(r *http.Request) primitive.ObjectID {
	u, ok := CurrentUser(r)
	if !ok {
		return primitive.NilObjectID
	}
	return u.ObjectID()
}

// WithTestUser injects u into the request context the way LoadSessionUser
// does. Intended for tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
