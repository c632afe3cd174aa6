package chat

import (
	"context"

	"pairchat/internal/auth"
	"pairchat/internal/data"
)

// Live subscriptions follow the store's push model: every change
// notification triggers a full re-read and a full snapshot delivered on
// the subscription channel. No incremental patching; replacing the whole
// snapshot is the simplest correct behavior at this scale.
//
// Cancel tears the subscription down: the underlying change stream is
// closed, the updates channel is closed, and no snapshot is delivered to a
// consumer after its context is done.

// MessagesSubscription yields ordered full snapshots of one conversation's
// message log.
type MessagesSubscription struct {
	updates chan []data.Message
	cancel  context.CancelFunc
}

// Updates returns the snapshot channel. Closed on teardown.
func (s *MessagesSubscription) Updates() <-chan []data.Message { return s.updates }

// Cancel stops delivery and releases the underlying stream.
func (s *MessagesSubscription) Cancel() { s.cancel() }

// SubscribeMessages opens a live view of the conversation with otherUID.
// The current snapshot is delivered first, then one snapshot per change.
func (e *Engine) SubscribeMessages(ctx context.Context, sess auth.Session, otherUID string) (*MessagesSubscription, error) {
	chatID := ConversationID(sess.UserID, otherUID)

	ctx, cancel := context.WithCancel(ctx)

	notify, err := e.msgs.Watch(ctx, chatID)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &MessagesSubscription{
		updates: make(chan []data.Message),
		cancel:  cancel,
	}

	go func() {
		defer close(sub.updates)

		if !e.pushMessages(ctx, chatID, sub.updates) {
			return
		}
		for range notify {
			if !e.pushMessages(ctx, chatID, sub.updates) {
				return
			}
		}
	}()

	return sub, nil
}

func (e *Engine) pushMessages(ctx context.Context, chatID string, out chan<- []data.Message) bool {
	msgs, err := e.msgs.ListByChat(ctx, chatID)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		// Keep the subscription; the next change tick re-reads.
		e.logger.Warn("message snapshot refresh failed", "chat_id", chatID, "error", err)
		return true
	}

	select {
	case out <- msgs:
		return true
	case <-ctx.Done():
		return false
	}
}

// RecentChatsSubscription yields full snapshots of the caller's
// recent-chats projection.
type RecentChatsSubscription struct {
	updates chan []RecentChat
	cancel  context.CancelFunc
}

// Updates returns the snapshot channel. Closed on teardown.
func (s *RecentChatsSubscription) Updates() <-chan []RecentChat { return s.updates }

// Cancel stops delivery and releases the underlying stream.
func (s *RecentChatsSubscription) Cancel() { s.cancel() }

// SubscribeRecentChats opens a live view of every conversation involving
// the caller, projected and sorted. The current snapshot is delivered
// first, then one snapshot per change.
func (e *Engine) SubscribeRecentChats(ctx context.Context, sess auth.Session) (*RecentChatsSubscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	notify, err := e.chats.Watch(ctx, sess.UserID)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &RecentChatsSubscription{
		updates: make(chan []RecentChat),
		cancel:  cancel,
	}

	go func() {
		defer close(sub.updates)

		if !e.pushRecentChats(ctx, sess, sub.updates) {
			return
		}
		for range notify {
			if !e.pushRecentChats(ctx, sess, sub.updates) {
				return
			}
		}
	}()

	return sub, nil
}

func (e *Engine) pushRecentChats(ctx context.Context, sess auth.Session, out chan<- []RecentChat) bool {
	chats, err := e.chats.ListForUser(ctx, sess.UserID)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		e.logger.Warn("recent-chats snapshot refresh failed", "user_id", sess.UserID, "error", err)
		return true
	}

	select {
	case out <- BuildRecentChats(sess, chats):
		return true
	case <-ctx.Done():
		return false
	}
}
