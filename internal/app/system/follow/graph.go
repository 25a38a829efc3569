// Package follow maintains the directed follow relation between users.
package follow

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFollowing is returned by Unfollow when no edge exists.
	ErrNotFollowing = errors.New("follow: not following")
	// ErrSelfFollow is returned when a user tries to follow themselves and
	// the graph does not allow it.
	ErrSelfFollow = errors.New("follow: cannot follow yourself")
	// ErrAnonymous is returned when no user is given.
	ErrAnonymous = errors.New("follow: user required")
)

// Store persists follow edges. Create reports whether a new edge was written;
// creating an existing edge is not an error.
type Store interface {
	Create(ctx context.Context, userID, authorID primitive.ObjectID) (bool, error)
	Delete(ctx context.Context, userID, authorID primitive.ObjectID) (int64, error)
	Exists(ctx context.Context, userID, authorID primitive.ObjectID) (bool, error)
	AuthorIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Policy holds the graph's tunables.
type Policy struct {
	AllowSelfFollow bool
}

// Graph applies follow policy on top of a Store.
type Graph struct {
	store  Store
	policy Policy
}

func New(store Store, policy Policy) *Graph {
	return &Graph{store: store, policy: policy}
}

// Follow records that user follows author. Following twice leaves a single
// edge and reports created=false the second time.
func (g *Graph) Follow(ctx context.Context, userID, authorID primitive.ObjectID) (created bool, err error) {
	if userID.IsZero() || authorID.IsZero() {
		return false, ErrAnonymous
	}
	if userID == authorID && !g.policy.AllowSelfFollow {
		return false, ErrSelfFollow
	}
	created, err = g.store.Create(ctx, userID, authorID)
	if err != nil {
		return false, fmt.Errorf("follow: create edge: %w", err)
	}
	return created, nil
}

// Unfollow removes the edge. It returns ErrNotFollowing when there was none.
func (g *Graph) Unfollow(ctx context.Context, userID, authorID primitive.ObjectID) error {
	if userID.IsZero() || authorID.IsZero() {
		return ErrAnonymous
	}
	n, err := g.store.Delete(ctx, userID, authorID)
	if err != nil {
		return fmt.Errorf("follow: delete edge: %w", err)
	}
	if n == 0 {
		return ErrNotFollowing
	}
	return nil
}

// IsFollowing reports whether user follows author. Anonymous users follow no one.
func (g *Graph) IsFollowing(ctx context.Context, userID, authorID primitive.ObjectID) (bool, error) {
	if userID.IsZero() {
		return false, nil
	}
	return g.store.Exists(ctx, userID, authorID)
}

// Following returns the IDs of everyone user follows. The slice is never nil.
func (g *Graph) Following(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if userID.IsZero() {
		return []primitive.ObjectID{}, nil
	}
	ids, err := g.store.AuthorIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("follow: list followed: %w", err)
	}
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return ids, nil
}
