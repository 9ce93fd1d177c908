package dto

import (
	"github.com/spec-kit/novel-reader/internal/domain"
	"github.com/spec-kit/novel-reader/internal/service"
)

// ChapterPayload is a chapter as served to one reader.
type ChapterPayload struct {
	ID        string `json:"id"`
	StoryID   string `json:"storyId"`
	Number    int    `json:"number"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	CoinPrice int64  `json:"coinPrice"`
	IsLocked  bool   `json:"isLocked"`
	Preview   string `json:"preview,omitempty"`
}

// StoryPayload summarizes the chapter's story.
type StoryPayload struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug,omitempty"`
	Author string `json:"author,omitempty"`
}

// ChapterRefPayload links to a neighbouring chapter.
type ChapterRefPayload struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// ChapterData is the data envelope of GET /chapters/:id.
type ChapterData struct {
	Chapter     ChapterPayload     `json:"chapter"`
	Story       *StoryPayload      `json:"story,omitempty"`
	PrevChapter *ChapterRefPayload `json:"prevChapter"`
	NextChapter *ChapterRefPayload `json:"nextChapter"`
}

// ChapterResponse wraps ChapterData. Price repeats the coin price at the top
// level for older clients.
type ChapterResponse struct {
	Success bool        `json:"success"`
	Data    ChapterData `json:"data"`
	Price   int64       `json:"price"`
}

// PurchaseResponse acknowledges a purchase. It deliberately omits the new
// coin balance; clients re-fetch the user.
type PurchaseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ViewsResponse reports a counter after increment.
type ViewsResponse struct {
	Success bool  `json:"success"`
	Views   int64 `json:"views"`
}

// NewChapterResponse maps a service view.
func NewChapterResponse(v *service.ChapterView) ChapterResponse {
	data := ChapterData{
		Chapter: ChapterPayload{
			ID:        v.Chapter.ID,
			StoryID:   v.Chapter.StoryID,
			Number:    v.Chapter.Number,
			Title:     v.Chapter.Title,
			Content:   v.Chapter.Content,
			CoinPrice: v.Chapter.CoinPrice,
			IsLocked:  v.Locked,
			Preview:   v.Preview,
		},
		PrevChapter: refPayload(v.Prev),
		NextChapter: refPayload(v.Next),
	}
	if v.Story != nil {
		data.Story = &StoryPayload{ID: v.Story.ID, Title: v.Story.Title, Slug: v.Story.Slug, Author: v.Story.Author}
	}
	return ChapterResponse{Success: true, Data: data, Price: v.Chapter.CoinPrice}
}

func refPayload(ref *domain.ChapterRef) *ChapterRefPayload {
	if ref == nil {
		return nil
	}
	return &ChapterRefPayload{ID: ref.ID, Number: ref.Number, Title: ref.Title}
}
