package data

import (
	"context"
	"os"
	"testing"

	"pairchat/internal/db"
)

func testDB(t *testing.T) *db.Client {
	t.Helper()

	// no env loader; require MONGODB_URI set externally for integration tests
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri, "chat_db_test")
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	return c
}

func TestChatsUpsertAndUnread(t *testing.T) {
	ctx := context.Background()
	c := testDB(t)

	_ = c.ChatsCollection().Drop(ctx)

	chats := NewChatsStore(c.ChatsCollection())

	up := SendUpsert{
		ChatID:   "u1_u2",
		From:     "u2",
		To:       "u1",
		FromName: "Bob",
		ToName:   "Alice",
		Text:     "hi",
	}
	if _, err := chats.UpsertOnSend(ctx, up); err != nil {
		t.Fatalf("UpsertOnSend failed: %v", err)
	}

	chat, err := chats.Get(ctx, "u1_u2")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// users array is stored sorted regardless of send direction
	if len(chat.Users) != 2 || chat.Users[0] != "u1" || chat.Users[1] != "u2" {
		t.Fatalf("users not sorted: %v", chat.Users)
	}
	if chat.Participants["u2"].DisplayName != "Bob" {
		t.Fatalf("sender snapshot missing: %+v", chat.Participants)
	}
	if chat.LastMessage == nil || chat.LastMessage.Text != "hi" {
		t.Fatalf("last message snapshot wrong: %+v", chat.LastMessage)
	}

	// unread counters accumulate and survive a later merge
	if err := chats.IncrementUnread(ctx, "u1_u2", "u1"); err != nil {
		t.Fatalf("IncrementUnread failed: %v", err)
	}
	if err := chats.IncrementUnread(ctx, "u1_u2", "u1"); err != nil {
		t.Fatalf("IncrementUnread failed: %v", err)
	}

	up.Text = "hi again"
	if _, err := chats.UpsertOnSend(ctx, up); err != nil {
		t.Fatalf("second UpsertOnSend failed: %v", err)
	}

	chat, err = chats.Get(ctx, "u1_u2")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if chat.Unread["u1"] != 2 {
		t.Fatalf("expected unread 2 after merge, got %d", chat.Unread["u1"])
	}
	if chat.LastMessage.Text != "hi again" {
		t.Fatalf("last message not refreshed: %q", chat.LastMessage.Text)
	}

	// reset zeroes only the given participant's counter
	if err := chats.ResetUnread(ctx, "u1_u2", "u1"); err != nil {
		t.Fatalf("ResetUnread failed: %v", err)
	}
	chat, err = chats.Get(ctx, "u1_u2")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if chat.Unread["u1"] != 0 {
		t.Fatalf("expected unread 0 after reset, got %d", chat.Unread["u1"])
	}
}

func TestChatsResetUnreadMissingChat(t *testing.T) {
	ctx := context.Background()
	c := testDB(t)

	_ = c.ChatsCollection().Drop(ctx)

	chats := NewChatsStore(c.ChatsCollection())

	// opening a conversation before its first send must not create a document
	if err := chats.ResetUnread(ctx, "u1_u9", "u1"); err != nil {
		t.Fatalf("ResetUnread on missing chat failed: %v", err)
	}
	if _, err := chats.Get(ctx, "u1_u9"); err == nil {
		t.Fatal("expected no document created by reset")
	}
}

func TestChatsListForUser(t *testing.T) {
	ctx := context.Background()
	c := testDB(t)

	_ = c.ChatsCollection().Drop(ctx)

	chats := NewChatsStore(c.ChatsCollection())

	pairs := []SendUpsert{
		{ChatID: "u1_u2", From: "u1", To: "u2", FromName: "Alice", ToName: "Bob", Text: "a"},
		{ChatID: "u1_u3", From: "u3", To: "u1", FromName: "Cara", ToName: "Alice", Text: "b"},
		{ChatID: "u2_u3", From: "u2", To: "u3", FromName: "Bob", ToName: "Cara", Text: "c"},
	}
	for _, p := range pairs {
		if _, err := chats.UpsertOnSend(ctx, p); err != nil {
			t.Fatalf("UpsertOnSend %s failed: %v", p.ChatID, err)
		}
	}

	list, err := chats.ListForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 chats for u1, got %d", len(list))
	}
}
