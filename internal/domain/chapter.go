package domain

import "time"

// Chapter is one installment of a story. A positive CoinPrice makes it a
// paid chapter that must be purchased before its content is served.
type Chapter struct {
	ID        string
	StoryID   string
	Number    int
	Title     string
	Content   string
	CoinPrice int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RequiresPurchase reports whether the chapter is paid content.
func (c *Chapter) RequiresPurchase() bool {
	return c != nil && c.CoinPrice > 0
}

// Preview returns at most n runes of the chapter text.
func (c *Chapter) Preview(n int) string {
	if c == nil || n <= 0 {
		return ""
	}
	runes := []rune(c.Content)
	if len(runes) <= n {
		return c.Content
	}
	return string(runes[:n]) + "..."
}

// ChapterRef points at a neighbouring chapter for navigation.
type ChapterRef struct {
	ID     string
	Number int
	Title  string
}

// Purchase records that a user unlocked a chapter.
type Purchase struct {
	ID        string
	UserID    string
	ChapterID string
	Price     int64
	CreatedAt time.Time
}
