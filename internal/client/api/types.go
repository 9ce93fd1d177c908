package api

import (
	"time"

	"github.com/spec-kit/novel-reader/internal/client/tokenstore"
)

// AuthResult is the body of login, register and refresh.
type AuthResult struct {
	Success   bool                    `json:"success"`
	Token     string                  `json:"token"`
	ExpiresAt time.Time               `json:"expiresAt"`
	User      tokenstore.UserSnapshot `json:"user"`
}

// Chapter is a chapter as the server returned it. Prices are pointers
// because older payloads only carry one of them.
type Chapter struct {
	ID        string `json:"id"`
	StoryID   string `json:"storyId"`
	Number    int    `json:"number"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CoinPrice *int64 `json:"coinPrice"`
	Price     *int64 `json:"price"`
	IsLocked  bool   `json:"isLocked"`
	Preview   string `json:"preview"`
}

// Story summarizes a chapter's story.
type Story struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// ChapterRef links to a neighbouring chapter.
type ChapterRef struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// ChapterData is the data envelope of a chapter fetch.
type ChapterData struct {
	Chapter     Chapter     `json:"chapter"`
	Story       *Story      `json:"story"`
	PrevChapter *ChapterRef `json:"prevChapter"`
	NextChapter *ChapterRef `json:"nextChapter"`
}

// ChapterResponse is the body of GET /chapters/:id.
type ChapterResponse struct {
	Success bool        `json:"success"`
	Data    ChapterData `json:"data"`
	Price   *int64      `json:"price"`
}

// PurchaseResult is the body of a purchase call.
type PurchaseResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type meResponse struct {
	Success bool                    `json:"success"`
	User    tokenstore.UserSnapshot `json:"user"`
}

type viewsResponse struct {
	Views int64 `json:"views"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
