package chat

import "time"

// dateLayout is the calendar-date fallback used once a timestamp is older
// than yesterday.
const dateLayout = "1/2/2006"

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ShortLabel is the compact timestamp label shown in list rows:
// 24-hour HH:MM for today, "Yesterday" for exactly one calendar day
// earlier, a calendar date otherwise. A zero timestamp (a write not yet
// stamped by the store) yields an empty label.
func ShortLabel(ts, now time.Time) string {
	if ts.IsZero() {
		return ""
	}
	if sameDay(ts, now) {
		return ts.Format("15:04")
	}
	if sameDay(ts, now.AddDate(0, 0, -1)) {
		return "Yesterday"
	}
	return ts.Format(dateLayout)
}

// HeaderLabel is the day-separator label: "Today", "Yesterday" or a
// calendar date, never a time of day. Zero timestamps yield an empty
// label, which the feed builder treats as "no separator".
func HeaderLabel(ts, now time.Time) string {
	if ts.IsZero() {
		return ""
	}
	if sameDay(ts, now) {
		return "Today"
	}
	if sameDay(ts, now.AddDate(0, 0, -1)) {
		return "Yesterday"
	}
	return ts.Format(dateLayout)
}
