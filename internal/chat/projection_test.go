package chat

import (
	"testing"
	"time"

	"pairchat/internal/auth"
	"pairchat/internal/data"
)

func TestBuildRecentChats_SortAndDefaults(t *testing.T) {
	sess := auth.Session{UserID: "me"}

	t1 := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	t3 := t2.Add(24 * time.Hour)

	chats := []data.Chat{
		{
			ID:          "a_me",
			Users:       []string{"a", "me"},
			LastMessage: &data.LastMessage{Text: "hi"},
			UpdatedAt:   t1,
		},
		{
			ID:           "b_me",
			Users:        []string{"b", "me"},
			Participants: map[string]data.Participant{"b": {DisplayName: "Bea"}},
			LastMessage:  &data.LastMessage{Text: "yo"},
			Unread:       map[string]int{"me": 3},
			UpdatedAt:    t3,
		},
		{
			ID:          "c_me",
			Users:       []string{"c", "me"},
			LastMessage: &data.LastMessage{Text: "hey"},
			UpdatedAt:   t2,
		},
	}

	list := BuildRecentChats(sess, chats)
	if len(list) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(list))
	}

	// descending by updated-at: t3, t2, t1
	if list[0].ChatID != "b_me" || list[1].ChatID != "c_me" || list[2].ChatID != "a_me" {
		t.Fatalf("wrong order: %s, %s, %s", list[0].ChatID, list[1].ChatID, list[2].ChatID)
	}

	if list[0].OtherName != "Bea" {
		t.Fatalf("expected snapshot display name, got %q", list[0].OtherName)
	}
	if list[0].UnreadCount != 3 {
		t.Fatalf("expected unread 3, got %d", list[0].UnreadCount)
	}

	// no participant snapshot: fall back to the raw id, unread defaults to 0
	if list[1].OtherName != "c" {
		t.Fatalf("expected raw-id fallback, got %q", list[1].OtherName)
	}
	if list[1].UnreadCount != 0 {
		t.Fatalf("expected unread 0, got %d", list[1].UnreadCount)
	}
}

func TestBuildRecentChats_FiltersIncomplete(t *testing.T) {
	sess := auth.Session{UserID: "me"}

	chats := []data.Chat{
		// still being created: no last message yet
		{ID: "a_me", Users: []string{"a", "me"}, UpdatedAt: time.Now()},
		// no resolvable counterpart
		{ID: "me_me", Users: []string{"me"}, LastMessage: &data.LastMessage{Text: "x"}},
	}

	if list := BuildRecentChats(sess, chats); len(list) != 0 {
		t.Fatalf("expected incomplete conversations to be filtered, got %d", len(list))
	}
}

func TestBuildRecentChats_MissingUpdatedAtSortsLast(t *testing.T) {
	sess := auth.Session{UserID: "me"}

	chats := []data.Chat{
		{ID: "a_me", Users: []string{"a", "me"}, LastMessage: &data.LastMessage{Text: "x"}},
		{ID: "b_me", Users: []string{"b", "me"}, LastMessage: &data.LastMessage{Text: "y"}, UpdatedAt: time.Now()},
	}

	list := BuildRecentChats(sess, chats)
	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}
	if list[1].ChatID != "a_me" {
		t.Fatalf("expected unstamped chat last, got %s", list[1].ChatID)
	}
}
