// Package db manages MongoDB connections and collections.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Client wraps mongo.Client and exposes collections.
type Client struct {
	// client is the underlying MongoDB connection (thread-safe, can be reused)
	client *mongo.Client

	// db is the application database. Collections ("users", "chats",
	// "messages") are accessed via this reference.
	db *mongo.Database
}

// New connects to MongoDB and returns a Client.
func New(ctx context.Context, mongoURI, database string) (*Client, error) {
	// SetConnectTimeout: fail fast if MongoDB is unreachable
	opts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping MongoDB to verify the connection is actually working
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		client: client,
		db:     client.Database(database),
	}, nil
}

// UsersCollection returns the users collection.
func (c *Client) UsersCollection() *mongo.Collection {
	return c.db.Collection("users")
}

// ChatsCollection returns the chats collection. One document per unordered
// pair of participants, keyed by the derived conversation id.
func (c *Client) ChatsCollection() *mongo.Collection {
	return c.db.Collection("chats")
}

// MessagesCollection returns the messages collection. Messages belong to a
// conversation via their chat_id field.
func (c *Client) MessagesCollection() *mongo.Collection {
	return c.db.Collection("messages")
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// CreateIndexes creates necessary indexes for users, chats and messages.
func (c *Client) CreateIndexes(ctx context.Context) error {
	// Unique index on email: no two users can share an address. Used by
	// GetUserByEmail and enforced at registration time.
	usersIndexModel := mongo.IndexModel{
		Keys:    map[string]int{"email": 1},
		Options: options.Index().SetUnique(true),
	}

	_, err := c.UsersCollection().Indexes().CreateOne(ctx, usersIndexModel)
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	// Chats are queried by participant (recent-chats projection) and sorted
	// by last update.
	chatIndexes := []mongo.IndexModel{
		{Keys: map[string]int{"users": 1}},
		{Keys: map[string]int{"updated_at": -1}},
	}

	_, err = c.ChatsCollection().Indexes().CreateMany(ctx, chatIndexes)
	if err != nil {
		return fmt.Errorf("failed to create chat indexes: %w", err)
	}

	// Messages are always read as one conversation's log ordered by
	// creation time ascending.
	messageIndexes := []mongo.IndexModel{
		{Keys: map[string]int{"chat_id": 1, "created_at": 1}},
	}

	_, err = c.MessagesCollection().Indexes().CreateMany(ctx, messageIndexes)
	if err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	return nil
}
