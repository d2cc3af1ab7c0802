package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username   string             `bson:"username" json:"username"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password" json:"-"` // bcrypt hash
	SavedBooks []SavedBook        `bson:"savedBooks" json:"savedBooks"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// BookCount is derived from the saved list on every read; it is never stored.
func (u *User) BookCount() int {
	return len(u.SavedBooks)
}

// SetPassword replaces the stored hash with a bcrypt hash of plaintext. The
// salt and cost are embedded in the hash, so verification needs no side channel.
func (u *User) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether plaintext matches the stored hash.
func (u *User) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext)) == nil
}

// HasBook reports whether the user already saved the given catalog ID.
func (u *User) HasBook(bookID string) bool {
	for _, b := range u.SavedBooks {
		if b.BookID == bookID {
			return true
		}
	}
	return false
}
