package tutor

import (
	"fmt"
	"time"
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// TimeFormat is the display format for message timestamps.
const TimeFormat = "3:04:05 PM"

// Message is one chat entry. Order is insertion order; Time is display
// only.
type Message struct {
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
	Time   string `json:"time"`
}

// Session is a snapshot of a tutoring conversation.
type Session struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	Messages    []Message `json:"messages"`
	Suggestions []string  `json:"suggestions"`
}

func (s *Session) clone() Session {
	return Session{
		ID:          s.ID,
		Subject:     s.Subject,
		Messages:    append([]Message(nil), s.Messages...),
		Suggestions: append([]string(nil), s.Suggestions...),
	}
}

// Summary is one entry in the recent conversations list.
type Summary struct {
	ID           string    `json:"id"`
	Subject      string    `json:"subject"`
	LastMessage  string    `json:"last_message"`
	Timestamp    string    `json:"timestamp"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
	// Seq increases with every upsert and orders entries updated in the
	// same instant.
	Seq int64 `json:"seq"`
}

// RelativeTime buckets t against now by calendar day: "Today",
// "Yesterday", "3d ago", "2w ago", "4m ago".
func RelativeTime(t, now time.Time) string {
	days := calendarDays(t, now)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	case days < 30:
		return fmt.Sprintf("%dw ago", days/7)
	default:
		return fmt.Sprintf("%dm ago", days/30)
	}
}

func calendarDays(t, now time.Time) int {
	t = t.In(now.Location())
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	// Round to absorb DST shifts.
	return int((to.Sub(from) + 12*time.Hour) / (24 * time.Hour))
}
