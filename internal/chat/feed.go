package chat

import (
	"time"

	"pairchat/internal/data"
)

// Feed item kinds.
const (
	FeedItemDate    = "date"
	FeedItemMessage = "message"
)

// FeedItem is one entry of the rendered conversation feed: either a
// message or a synthetic day separator.
type FeedItem struct {
	Type    string        `json:"type"`
	ID      string        `json:"id"`
	Label   string        `json:"label,omitempty"`
	Message *data.Message `json:"message,omitempty"`
}

// BuildFeed interleaves day separators into a time-ascending message list:
// one separator immediately before the first message whose header label
// differs from the previous one, in a single linear scan. It is a pure
// function of its inputs and is recomputed in full whenever the message
// list changes.
func BuildFeed(messages []data.Message, now time.Time) []FeedItem {
	items := make([]FeedItem, 0, len(messages))
	lastHeader := ""

	for i := range messages {
		m := &messages[i]

		header := HeaderLabel(m.CreatedAt, now)
		if header != "" && header != lastHeader {
			items = append(items, FeedItem{
				Type:  FeedItemDate,
				ID:    "d-" + m.ID.Hex(),
				Label: header,
			})
			lastHeader = header
		}

		items = append(items, FeedItem{
			Type:    FeedItemMessage,
			ID:      m.ID.Hex(),
			Message: m,
		})
	}

	return items
}
