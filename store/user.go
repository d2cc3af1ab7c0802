package store

import (
	"context"

	"github.com/shelfmark/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	res, err := db.Users().InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateKey
		}
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) UserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
	}}
	var u models.User
	err := db.Users().FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AddSavedBook pushes the book in a single update whose filter excludes users
// that already hold the bookId, so a repeated or concurrent save of the same
// book can never create a second entry.
func (db *DB) AddSavedBook(ctx context.Context, userID primitive.ObjectID, book models.SavedBook) (*models.User, error) {
	filter := bson.M{
		"_id":               userID,
		"savedBooks.bookId": bson.M{"$ne": book.BookID},
	}
	update := bson.M{"$push": bson.M{"savedBooks": book}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u models.User
	err := db.Users().FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	if err == mongo.ErrNoDocuments {
		// Either the user doesn't exist or the book is already saved.
		existing, err := db.UserByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, ErrNotFound
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) RemoveSavedBook(ctx context.Context, userID primitive.ObjectID, bookID string) (*models.User, error) {
	update := bson.M{"$pull": bson.M{"savedBooks": bson.M{"bookId": bookID}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u models.User
	err := db.Users().FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
