package domain

import "time"

// StoryStatus tracks publication progress of a novel.
type StoryStatus string

const (
	StoryOngoing   StoryStatus = "ongoing"
	StoryCompleted StoryStatus = "completed"
)

// Story is a serialized novel.
type Story struct {
	ID          string
	Title       string
	Slug        string
	Author      string
	Description string
	CoverURL    string
	Status      StoryStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
