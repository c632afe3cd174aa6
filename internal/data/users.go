// Package data provides DB models and stores.
package data

import (
	"context"
	"errors"
	"regexp"
	"time"

	"pairchat/internal/normalize"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Sentinel errors shared by the stores.
var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// UsersStore performs user DB operations.
type UsersStore struct {
	coll *mongo.Collection
}

// NewUsersStore returns a UsersStore using the provided collection.
func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// CreateUser inserts a new user document with an already-hashed password.
func (u *UsersStore) CreateUser(ctx context.Context, email, hashedPassword, displayName string) (*User, error) {
	now := time.Now()
	user := &User{
		Email:       normalize.Email(email),
		Password:    hashedPassword, // Already hashed by auth.HashPassword()
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	result, err := u.coll.InsertOne(ctx, user)
	if err != nil {
		// Duplicate email hits the unique index on the collection
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	// MongoDB auto-generates the _id field; its hex form becomes the
	// user identifier carried in JWT claims.
	user.ID = result.InsertedID.(bson.ObjectID)

	return user, nil
}

// GetUserByEmail finds a user by email.
func (u *UsersStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User

	err := u.coll.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

// GetUserByID finds a user by the hex form of its ObjectID.
func (u *UsersStore) GetUserByID(ctx context.Context, uid string) (*User, error) {
	id, err := bson.ObjectIDFromHex(uid)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var user User
	err = u.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

// UserExists checks if a user exists by id.
func (u *UsersStore) UserExists(ctx context.Context, uid string) (bool, error) {
	id, err := bson.ObjectIDFromHex(uid)
	if err != nil {
		return false, nil
	}

	// CountDocuments is cheaper than FindOne when only existence matters
	count, err := u.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ListContacts returns every user except the requester, optionally filtered
// by a case-insensitive substring over display name and email.
func (u *UsersStore) ListContacts(ctx context.Context, excludeUID, search string) ([]*User, error) {
	filter := bson.M{}

	if id, err := bson.ObjectIDFromHex(excludeUID); err == nil {
		filter["_id"] = bson.M{"$ne": id}
	}

	if search != "" {
		pattern := regexp.QuoteMeta(search)
		filter["$or"] = bson.A{
			bson.M{"display_name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	cursor, err := u.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	return users, nil
}

// UpdateDisplayName sets a new display name on the user document. Chat
// documents keep their old participant snapshots until the next send.
func (u *UsersStore) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	return u.updateFields(ctx, uid, bson.M{"display_name": displayName})
}

// UpdateStatus sets the user's status text.
func (u *UsersStore) UpdateStatus(ctx context.Context, uid, status string) error {
	return u.updateFields(ctx, uid, bson.M{"status": status})
}

// UpdatePhotoURL records the uploaded avatar's URL.
func (u *UsersStore) UpdatePhotoURL(ctx context.Context, uid, photoURL string) error {
	return u.updateFields(ctx, uid, bson.M{"photo_url": photoURL})
}

// SetPresence flips the online flag and stamps last-seen.
func (u *UsersStore) SetPresence(ctx context.Context, uid string, online bool) error {
	return u.updateFields(ctx, uid, bson.M{"online": online, "last_seen": time.Now()})
}

func (u *UsersStore) updateFields(ctx context.Context, uid string, fields bson.M) error {
	id, err := bson.ObjectIDFromHex(uid)
	if err != nil {
		return ErrUserNotFound
	}

	fields["updated_at"] = time.Now()

	result, err := u.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}

	return nil
}
