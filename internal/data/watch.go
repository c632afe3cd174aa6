package data

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Change streams are the push primitive behind live subscriptions: the
// store notifies, the subscriber re-reads a full snapshot. The returned
// channel carries coalesced "something changed" ticks and is closed when
// the context is cancelled or the stream dies. Reconnection is not handled
// here; consumers are torn down with their context.

// Watch notifies whenever any conversation involving the user changes.
func (s *ChatsStore) Watch(ctx context.Context, userID string) (<-chan struct{}, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "fullDocument.users", Value: userID},
		}}},
	}

	// UpdateLookup so update events (unread $inc, mark-read $set) carry the
	// full document the $match filter needs.
	cs, err := s.coll.Watch(ctx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, err
	}

	return notifyLoop(ctx, cs), nil
}

// Watch notifies whenever a message lands in the given conversation.
// Inserts only; this system never updates or deletes messages.
func (m *MessagesStore) Watch(ctx context.Context, chatID string) (<-chan struct{}, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "fullDocument.chat_id", Value: chatID},
		}}},
	}

	cs, err := m.coll.Watch(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	return notifyLoop(ctx, cs), nil
}

func notifyLoop(ctx context.Context, cs *mongo.ChangeStream) <-chan struct{} {
	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		defer cs.Close(context.Background())

		for cs.Next(ctx) {
			// Coalesce bursts: one pending tick is enough, the consumer
			// re-reads the full snapshot anyway.
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}()

	return ch
}
