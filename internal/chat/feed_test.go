package chat

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"pairchat/internal/data"
)

func msgAt(text string, ts time.Time) data.Message {
	return data.Message{ID: bson.NewObjectID(), Text: text, CreatedAt: ts}
}

func TestBuildFeed_SingleDay(t *testing.T) {
	now := time.Date(2025, 6, 15, 13, 0, 0, 0, time.UTC)

	msgs := []data.Message{
		msgAt("m1", time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)),
		msgAt("m2", time.Date(2025, 6, 15, 9, 5, 0, 0, time.UTC)),
	}

	items := BuildFeed(msgs, now)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Type != FeedItemDate || items[0].Label != "Today" {
		t.Fatalf("expected leading Today separator, got %+v", items[0])
	}
	if items[1].Message.Text != "m1" || items[2].Message.Text != "m2" {
		t.Fatalf("messages out of order: %+v", items)
	}
}

func TestBuildFeed_SeparatorPerChangedDay(t *testing.T) {
	now := time.Date(2025, 6, 15, 13, 0, 0, 0, time.UTC)

	// Time-ascending input: yesterday's message first, then today's two.
	msgs := []data.Message{
		msgAt("old", time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)),
		msgAt("m1", time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)),
		msgAt("m2", time.Date(2025, 6, 15, 9, 5, 0, 0, time.UTC)),
	}

	items := BuildFeed(msgs, now)

	wantLabels := []string{"Yesterday", "", "Today", "", ""}
	if len(items) != len(wantLabels) {
		t.Fatalf("expected %d items, got %d", len(wantLabels), len(items))
	}
	for i, want := range wantLabels {
		if want == "" {
			if items[i].Type != FeedItemMessage {
				t.Fatalf("item %d: expected message, got %+v", i, items[i])
			}
			continue
		}
		if items[i].Type != FeedItemDate || items[i].Label != want {
			t.Fatalf("item %d: expected %q separator, got %+v", i, want, items[i])
		}
	}
}

func TestBuildFeed_SkipsUnstampedMessages(t *testing.T) {
	now := time.Date(2025, 6, 15, 13, 0, 0, 0, time.UTC)

	// A not-yet-stamped message gets no separator of its own.
	msgs := []data.Message{
		msgAt("pending", time.Time{}),
		msgAt("m1", time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)),
	}

	items := BuildFeed(msgs, now)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Type != FeedItemMessage || items[0].Message.Text != "pending" {
		t.Fatalf("expected pending message first, got %+v", items[0])
	}
	if items[1].Type != FeedItemDate || items[1].Label != "Today" {
		t.Fatalf("expected Today separator before stamped message, got %+v", items[1])
	}
}

func TestBuildFeed_Empty(t *testing.T) {
	if items := BuildFeed(nil, time.Now()); len(items) != 0 {
		t.Fatalf("expected empty feed, got %d items", len(items))
	}
}
