package store

import (
	"context"
	"sync"

	"github.com/shelfmark/server/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-memory Store used by tests and dev runs. A single
// mutex serializes all mutations, which gives the same per-user atomicity
// the Mongo implementation gets from document-level updates.
type MemoryStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return primitive.NilObjectID, ErrDuplicateKey
		}
	}
	id := primitive.NewObjectID()
	stored := clone(user)
	stored.ID = id
	s.users[id] = stored
	return id, nil
}

func (s *MemoryStore) UserByIdentifier(_ context.Context, identifier string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == identifier || u.Email == identifier {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return clone(u), nil
}

func (s *MemoryStore) AddSavedBook(_ context.Context, userID primitive.ObjectID, book models.SavedBook) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if !u.HasBook(book.BookID) {
		u.SavedBooks = append(u.SavedBooks, book)
	}
	return clone(u), nil
}

func (s *MemoryStore) RemoveSavedBook(_ context.Context, userID primitive.ObjectID, bookID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	for i, b := range u.SavedBooks {
		if b.BookID == bookID {
			u.SavedBooks = append(u.SavedBooks[:i], u.SavedBooks[i+1:]...)
			break
		}
	}
	return clone(u), nil
}

// clone copies a user so callers never alias the stored record.
func clone(u *models.User) *models.User {
	c := *u
	c.SavedBooks = append([]models.SavedBook(nil), u.SavedBooks...)
	return &c
}
