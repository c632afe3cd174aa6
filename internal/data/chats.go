package data

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ChatsStore provides conversation-document operations.
type ChatsStore struct {
	coll *mongo.Collection
}

// NewChatsStore returns a ChatsStore using the given collection.
func NewChatsStore(coll *mongo.Collection) *ChatsStore {
	return &ChatsStore{coll: coll}
}

// SendUpsert carries the fields merged into a chat document on send.
type SendUpsert struct {
	ChatID   string
	From     string // sender user id
	To       string // recipient user id
	FromName string // sender display-name snapshot
	ToName   string // recipient display-name snapshot
	Text     string // already trimmed / command-rewritten
}

// UpsertOnSend merge-writes the conversation document: the participant pair,
// refreshed display-name snapshots, the last-message snapshot and the
// updated-at stamp. Only the supplied fields are overwritten, so the unread
// counters and any existing fields survive, and the write is safe whether or
// not the conversation already exists. The write timestamp is assigned here,
// at the store, and returned; updated_at and the snapshot's created_at share
// it.
func (s *ChatsStore) UpsertOnSend(ctx context.Context, p SendUpsert) (time.Time, error) {
	now := time.Now()

	// The users array is stored sorted so it is byte-identical to the pair
	// the conversation id was derived from, regardless of send direction.
	users := []string{p.From, p.To}
	sort.Strings(users)

	update := bson.M{"$set": bson.M{
		"users":                  users,
		"updated_at":             now,
		"participants." + p.From: Participant{DisplayName: p.FromName},
		"participants." + p.To:   Participant{DisplayName: p.ToName},
		"last_message":           LastMessage{Text: p.Text, From: p.From, To: p.To, CreatedAt: now},
	}}

	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": p.ChatID}, update,
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return time.Time{}, err
	}

	return now, nil
}

// IncrementUnread bumps the given participant's unread counter by one.
// The increment happens server-side in the store, never as a client
// read-modify-write, so concurrent sends both land.
func (s *ChatsStore) IncrementUnread(ctx context.Context, chatID, userID string) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": chatID},
		bson.M{"$inc": bson.M{"unread." + userID: 1}})
	return err
}

// ResetUnread unconditionally zeroes the given participant's unread counter.
// A missing chat document is a no-op, matching open-before-first-send.
func (s *ChatsStore) ResetUnread(ctx context.Context, chatID, userID string) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": chatID},
		bson.M{"$set": bson.M{"unread." + userID: 0}})
	return err
}

// ListForUser returns every conversation the user participates in.
// Unsorted: ordering is the recent-chats projection's job.
func (s *ChatsStore) ListForUser(ctx context.Context, userID string) ([]Chat, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"users": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var chats []Chat
	if err = cursor.All(ctx, &chats); err != nil {
		return nil, err
	}

	return chats, nil
}

// Get returns one conversation document by id.
func (s *ChatsStore) Get(ctx context.Context, chatID string) (*Chat, error) {
	var chat Chat
	if err := s.coll.FindOne(ctx, bson.M{"_id": chatID}).Decode(&chat); err != nil {
		return nil, err
	}
	return &chat, nil
}
