package store

import (
	"context"
	"errors"

	"github.com/shelfmark/server/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel errors shared by all Store implementations.
var (
	// ErrDuplicateKey is returned when a username or email is already taken.
	ErrDuplicateKey = errors.New("store: duplicate key")
	// ErrNotFound is returned when a user record does not exist.
	ErrNotFound = errors.New("store: not found")
)

// Store persists user records and their embedded saved books. All mutations
// are durable before the call returns, and mutations to a single user record
// are atomic: concurrent saves and removes for one user interleave cleanly.
type Store interface {
	// CreateUser inserts a new user. The password field must already be
	// hashed. Fails with ErrDuplicateKey if username or email is taken,
	// leaving no partial record behind.
	CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)

	// UserByIdentifier looks up a user by username or email.
	// Returns (nil, nil) when no user matches.
	UserByIdentifier(ctx context.Context, identifier string) (*models.User, error)

	// UserByID returns (nil, nil) when no user has the given ID.
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)

	// AddSavedBook appends book to the user's list unless an entry with the
	// same bookId already exists, in which case it is a no-op. Returns the
	// user as stored after the call.
	AddSavedBook(ctx context.Context, userID primitive.ObjectID, book models.SavedBook) (*models.User, error)

	// RemoveSavedBook deletes the entry with the given bookId; a no-op when
	// absent. Returns the user as stored after the call.
	RemoveSavedBook(ctx context.Context, userID primitive.ObjectID, bookID string) (*models.User, error)
}
