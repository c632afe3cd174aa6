package data

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User maps to the users collection. The hex form of ID is the stable user
// identifier used everywhere outside this package.
type User struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email       string        `bson:"email" json:"email"`
	Password    string        `bson:"password" json:"-"`
	DisplayName string        `bson:"display_name" json:"display_name"`
	Status      string        `bson:"status" json:"status"`
	PhotoURL    string        `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Online      bool          `bson:"online" json:"online"`
	LastSeen    time.Time     `bson:"last_seen,omitempty" json:"last_seen"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at" json:"updated_at"`
}

// UID returns the user's stable identifier.
func (u *User) UID() string { return u.ID.Hex() }

// Participant is the denormalized profile snapshot embedded in a chat
// document, refreshed on every send. Not kept in sync with later renames.
type Participant struct {
	DisplayName string `bson:"display_name" json:"display_name"`
}

// LastMessage is the last-message snapshot embedded in a chat document.
type LastMessage struct {
	Text      string    `bson:"text" json:"text"`
	From      string    `bson:"from" json:"from"`
	To        string    `bson:"to" json:"to"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Chat maps to the chats collection: one document per unordered pair of
// users, keyed by the derived conversation id. Users holds exactly the two
// participant ids the id was derived from. Unread maps participant id to
// the count of messages received since that participant last opened the
// conversation.
type Chat struct {
	ID           string                 `bson:"_id" json:"id"`
	Users        []string               `bson:"users" json:"users"`
	Participants map[string]Participant `bson:"participants,omitempty" json:"participants,omitempty"`
	LastMessage  *LastMessage           `bson:"last_message,omitempty" json:"last_message,omitempty"`
	Unread       map[string]int         `bson:"unread,omitempty" json:"unread,omitempty"`
	UpdatedAt    time.Time              `bson:"updated_at" json:"updated_at"`
}

// Message maps to the messages collection. Immutable once created; the
// store assigns CreatedAt at write time and the ObjectID breaks ordering
// ties in insertion order.
type Message struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	ChatID    string        `bson:"chat_id" json:"chat_id"`
	Text      string        `bson:"text" json:"text"`
	From      string        `bson:"from" json:"from"`
	To        string        `bson:"to" json:"to"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}
