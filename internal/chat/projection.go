package chat

import (
	"sort"
	"time"

	"pairchat/internal/auth"
	"pairchat/internal/data"
)

// RecentChat is the derived per-conversation entry of the recent-chats
// list. Not persisted; rebuilt in full from the chat documents on every
// change notification.
type RecentChat struct {
	ChatID      string            `json:"chat_id"`
	OtherUID    string            `json:"other_uid"`
	OtherName   string            `json:"other_name"`
	LastMessage *data.LastMessage `json:"last_message"`
	UpdatedAt   time.Time         `json:"updated_at"`
	UnreadCount int               `json:"unread_count"`
}

// BuildRecentChats projects the user's conversation documents into the
// recent-chats list: counterpart id and display name (falling back to the
// raw id when the snapshot is missing), last-message snapshot, and the
// viewer's unread count (zero when unset). Conversations without a
// resolvable counterpart or a last message are still being created and are
// skipped. Sorted descending by updated-at; documents missing that stamp
// carry the zero time and sort last.
func BuildRecentChats(sess auth.Session, chats []data.Chat) []RecentChat {
	list := make([]RecentChat, 0, len(chats))

	for _, c := range chats {
		var otherUID string
		for _, u := range c.Users {
			if u != sess.UserID {
				otherUID = u
				break
			}
		}
		if otherUID == "" || c.LastMessage == nil {
			continue
		}

		otherName := otherUID
		if p, ok := c.Participants[otherUID]; ok && p.DisplayName != "" {
			otherName = p.DisplayName
		}

		list = append(list, RecentChat{
			ChatID:      c.ID,
			OtherUID:    otherUID,
			OtherName:   otherName,
			LastMessage: c.LastMessage,
			UpdatedAt:   c.UpdatedAt,
			UnreadCount: c.Unread[sess.UserID],
		})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})

	return list
}
