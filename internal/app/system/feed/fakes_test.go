package feed

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/postboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// memStore is an in-memory stand-in for the Mongo stores.
type memStore struct {
	users    map[primitive.ObjectID]models.User
	groups   map[primitive.ObjectID]models.Group
	posts    []models.Post
	comments []models.Comment
	follows  map[primitive.ObjectID][]primitive.ObjectID

	counts int // number of Count calls
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[primitive.ObjectID]models.User{},
		groups:  map[primitive.ObjectID]models.Group{},
		follows: map[primitive.ObjectID][]primitive.ObjectID{},
	}
}

func (m *memStore) addUser(username string) models.User {
	u := models.User{ID: primitive.NewObjectID(), Username: username, UsernameCI: strings.ToLower(username)}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addGroup(title, slug string) models.Group {
	g := models.Group{ID: primitive.NewObjectID(), Title: title, Slug: slug}
	m.groups[g.ID] = g
	return g
}

func (m *memStore) addPost(author models.User, group *models.Group, text string, at time.Time) models.Post {
	p := models.Post{ID: primitive.NewObjectID(), AuthorID: author.ID, Text: text, CreatedAt: at, UpdatedAt: at}
	if group != nil {
		id := group.ID
		p.GroupID = &id
	}
	m.posts = append(m.posts, p)
	return p
}

func (m *memStore) follow(user, author models.User) {
	m.follows[user.ID] = append(m.follows[user.ID], author.ID)
}

func matches(f models.PostFilter, p models.Post) bool {
	if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
		return false
	}
	if f.GroupID != nil && (p.GroupID == nil || *p.GroupID != *f.GroupID) {
		return false
	}
	if f.AuthorIDs != nil {
		found := false
		for _, id := range f.AuthorIDs {
			if id == p.AuthorID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *memStore) GetByID(_ context.Context, id primitive.ObjectID) (models.Post, error) {
	for _, p := range m.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Post{}, mongo.ErrNoDocuments
}

func (m *memStore) Count(_ context.Context, f models.PostFilter) (int64, error) {
	m.counts++
	var n int64
	for _, p := range m.posts {
		if matches(f, p) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) List(_ context.Context, f models.PostFilter, skip, limit int64) ([]models.Post, error) {
	var out []models.Post
	for _, p := range m.posts {
		if matches(f, p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	if skip >= int64(len(out)) {
		return []models.Post{}, nil
	}
	out = out[skip:]
	if limit < int64(len(out)) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListByPost(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) IsFollowing(_ context.Context, userID, authorID primitive.ObjectID) (bool, error) {
	for _, id := range m.follows[userID] {
		if id == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Following(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return append([]primitive.ObjectID{}, m.follows[userID]...), nil
}

type memUsers struct{ m *memStore }

func (u memUsers) GetByUsername(_ context.Context, username string) (models.User, error) {
	for _, usr := range u.m.users {
		if usr.UsernameCI == strings.ToLower(username) {
			return usr, nil
		}
	}
	return models.User{}, mongo.ErrNoDocuments
}

func (u memUsers) GetManyByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	for _, id := range ids {
		if usr, ok := u.m.users[id]; ok {
			out[id] = usr
		}
	}
	return out, nil
}

type memGroups struct{ m *memStore }

func (g memGroups) GetBySlug(_ context.Context, slug string) (models.Group, error) {
	for _, grp := range g.m.groups {
		if grp.Slug == slug {
			return grp, nil
		}
	}
	return models.Group{}, mongo.ErrNoDocuments
}

func (g memGroups) GetManyByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Group, error) {
	out := make(map[primitive.ObjectID]models.Group, len(ids))
	for _, id := range ids {
		if grp, ok := g.m.groups[id]; ok {
			out[id] = grp
		}
	}
	return out, nil
}

func newTestComposer(m *memStore) *Composer {
	return NewComposer(m, memUsers{m}, memGroups{m}, m, m)
}
