package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pairchat/internal/auth"
	"pairchat/internal/data"
)

// ErrEmptyMessage rejects a send whose text is empty after trimming.
var ErrEmptyMessage = errors.New("message text is empty")

// ConversationStore is what the engine needs from the chats collection.
type ConversationStore interface {
	UpsertOnSend(ctx context.Context, p data.SendUpsert) (time.Time, error)
	IncrementUnread(ctx context.Context, chatID, userID string) error
	ResetUnread(ctx context.Context, chatID, userID string) error
	ListForUser(ctx context.Context, userID string) ([]data.Chat, error)
	Watch(ctx context.Context, userID string) (<-chan struct{}, error)
}

// MessageStore is what the engine needs from the messages collection.
type MessageStore interface {
	Append(ctx context.Context, chatID, from, to, text string) (*data.Message, error)
	ListByChat(ctx context.Context, chatID string) ([]data.Message, error)
	Watch(ctx context.Context, chatID string) (<-chan struct{}, error)
}

// CommandResolver rewrites outgoing text when it is exactly a recognized
// slash command. ok reports whether a command matched.
type CommandResolver interface {
	Resolve(ctx context.Context, input string) (text string, ok bool)
}

// Engine coordinates the conversation core over the stores. All
// operations take the caller's session explicitly; the engine holds no
// notion of a current user.
type Engine struct {
	chats    ConversationStore
	msgs     MessageStore
	commands CommandResolver
	logger   *slog.Logger
}

// NewEngine returns an Engine wired with the given stores. commands may be
// nil, which disables slash-command rewriting.
func NewEngine(chats ConversationStore, msgs MessageStore, commands CommandResolver, logger *slog.Logger) *Engine {
	return &Engine{chats: chats, msgs: msgs, commands: commands, logger: logger}
}

// Send runs the send protocol for one outgoing message:
//
//  1. trim the text and, when it is exactly a recognized slash command,
//     replace it with the command's resolved output;
//  2. merge-upsert the conversation document (participant pair, refreshed
//     display-name snapshots, last-message snapshot, updated-at);
//  3. atomically increment the recipient's unread counter;
//  4. append the message to the conversation's log.
//
// Each step is its own store write; the first failure aborts the remaining
// steps and is returned so the caller can keep the draft. There is no
// rollback: a partial send leaves the earlier writes in place, an accepted
// inconsistency window.
func (e *Engine) Send(ctx context.Context, sess auth.Session, otherUID, otherName, text string) (*data.Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}

	chatID := ConversationID(sess.UserID, otherUID)
	if otherName == "" {
		otherName = otherUID
	}

	// Only an exact whole-message match triggers substitution; anything
	// else starting with "/" is sent verbatim.
	if e.commands != nil {
		if replaced, ok := e.commands.Resolve(ctx, trimmed); ok {
			trimmed = replaced
		}
	}

	if _, err := e.chats.UpsertOnSend(ctx, data.SendUpsert{
		ChatID:   chatID,
		From:     sess.UserID,
		To:       otherUID,
		FromName: sess.Label(),
		ToName:   otherName,
		Text:     trimmed,
	}); err != nil {
		e.logger.Error("send: chat upsert failed", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("upserting chat: %w", err)
	}

	if err := e.chats.IncrementUnread(ctx, chatID, otherUID); err != nil {
		e.logger.Error("send: unread increment failed", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("incrementing unread: %w", err)
	}

	msg, err := e.msgs.Append(ctx, chatID, sess.UserID, otherUID, trimmed)
	if err != nil {
		e.logger.Error("send: message append failed", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("appending message: %w", err)
	}

	return msg, nil
}

// MarkRead unconditionally zeroes the caller's unread counter for the
// conversation with otherUID. Fire-and-forget: a failure costs at worst a
// stale badge until the conversation is opened again, so it is logged and
// swallowed.
func (e *Engine) MarkRead(ctx context.Context, sess auth.Session, otherUID string) {
	chatID := ConversationID(sess.UserID, otherUID)

	if err := e.chats.ResetUnread(ctx, chatID, sess.UserID); err != nil {
		e.logger.Warn("mark-read failed", "chat_id", chatID, "error", err)
	}
}

// RecentChats reads all of the caller's conversations and projects them
// into the recent-chats list.
func (e *Engine) RecentChats(ctx context.Context, sess auth.Session) ([]RecentChat, error) {
	chats, err := e.chats.ListForUser(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	return BuildRecentChats(sess, chats), nil
}

// History returns the full ordered message log of the conversation with
// otherUID, oldest first.
func (e *Engine) History(ctx context.Context, sess auth.Session, otherUID string) ([]data.Message, error) {
	msgs, err := e.msgs.ListByChat(ctx, ConversationID(sess.UserID, otherUID))
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return msgs, nil
}
