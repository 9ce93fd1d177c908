package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventChapterPurchased EventType = "chapter_purchased"
	EventStoryViewed      EventType = "story_viewed"
	EventChapterViewed    EventType = "chapter_viewed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	StoryID   string      `json:"story_id,omitempty"`
	ChapterID string      `json:"chapter_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType) Event {
	return Event{ID: uuid.NewString(), Type: eventType, Timestamp: time.Now().UTC()}
}

// ChapterPurchasedPayload payload.
type ChapterPurchasedPayload struct {
	PurchaseID string `json:"purchase_id"`
	Price      int64  `json:"price"`
}

// ViewedPayload payload.
type ViewedPayload struct {
	Views int64 `json:"views"`
}
