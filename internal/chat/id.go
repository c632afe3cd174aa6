// Package chat is the conversation synchronization core: conversation
// identity, the send/merge write protocol, unread bookkeeping, and the
// live projections (message feed, recent chats) the UI renders.
package chat

// idSeparator joins the two user ids. User ids are ObjectID hex strings,
// so the separator can never occur inside an id.
const idSeparator = "_"

// ConversationID derives the single stable conversation identifier for an
// unordered pair of user ids: the pair sorted lexicographically, joined.
// Commutative, so both participants resolve the same document no matter
// who initiates.
func ConversationID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + idSeparator + b
}
