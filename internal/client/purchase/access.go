// Package purchase unlocks paid chapters for coins.
package purchase

import (
	"net/url"
	"strconv"

	"github.com/spec-kit/novel-reader/internal/client/api"
)

// LegacySuccessMessage is the message older servers send on a successful
// purchase without setting the success flag.
const LegacySuccessMessage = "Mua chương thành công"

// PricePlaceholder is shown when no price field is present.
const PricePlaceholder = "?"

// AccessState says whether a loaded chapter can be read.
type AccessState int

const (
	Unlocked AccessState = iota
	Locked
)

func (s AccessState) String() string {
	if s == Locked {
		return "locked"
	}
	return "unlocked"
}

// AccessOf derives the access state of one chapter load.
func AccessOf(res *api.ChapterResponse) AccessState {
	if res != nil && res.Data.Chapter.IsLocked {
		return Locked
	}
	return Unlocked
}

// DisplayPrice picks the price to show: the chapter's coinPrice, then the
// top-level price, then the chapter's price, else PricePlaceholder.
func DisplayPrice(res *api.ChapterResponse) string {
	if res == nil {
		return PricePlaceholder
	}
	for _, p := range []*int64{res.Data.Chapter.CoinPrice, res.Price, res.Data.Chapter.Price} {
		if p != nil {
			return strconv.FormatInt(*p, 10)
		}
	}
	return PricePlaceholder
}

// LoginRedirect is the login target that brings the reader back to the chapter.
func LoginRedirect(chapterID string) string {
	return "/login?redirect=" + url.QueryEscape("/chapters/"+chapterID)
}

// Succeeded reports whether a purchase response means the chapter is unlocked.
// Both the flag and the legacy message are honoured.
func Succeeded(res *api.PurchaseResult) bool {
	return res != nil && (res.Success || res.Message == LegacySuccessMessage)
}
