package data

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessagesStore provides message database operations.
type MessagesStore struct {
	coll *mongo.Collection
}

// NewMessagesStore returns a MessagesStore using given collection.
func NewMessagesStore(coll *mongo.Collection) *MessagesStore {
	return &MessagesStore{coll: coll}
}

// Append inserts a message into the conversation's log and returns the
// saved record. The creation timestamp is assigned here, independently of
// the chat document's updated-at stamp; the two are close but not equal.
func (m *MessagesStore) Append(ctx context.Context, chatID, from, to, text string) (*Message, error) {
	msg := &Message{
		ChatID:    chatID,
		Text:      text,
		From:      from,
		To:        to,
		CreatedAt: time.Now(),
	}

	result, err := m.coll.InsertOne(ctx, msg)
	if err != nil {
		return nil, err
	}

	// Extract MongoDB's auto-generated _id and populate in struct
	msg.ID = result.InsertedID.(bson.ObjectID)

	return msg, nil
}

// ListByChat returns the full ordered log of one conversation, ascending by
// creation time with the object id breaking ties in insertion order.
func (m *MessagesStore) ListByChat(ctx context.Context, chatID string) ([]Message, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := m.coll.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}
