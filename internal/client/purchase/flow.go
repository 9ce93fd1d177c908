package purchase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/novel-reader/internal/client/api"
)

// Backend is the API surface the flow needs.
type Backend interface {
	Chapter(ctx context.Context, token, chapterID string) (*api.ChapterResponse, error)
	Purchase(ctx context.Context, token, chapterID string) (*api.PurchaseResult, error)
}

// Session supplies the bearer token.
type Session interface {
	Token() (string, bool)
}

// UI is how the flow talks to the reader.
type UI interface {
	// Confirm asks the reader to spend price coins on the chapter.
	Confirm(ctx context.Context, chapter *api.ChapterResponse, price string) (bool, error)
	// RequireLogin tells the reader to log in and where they will return.
	RequireLogin(redirect string)
	// Notice shows a one-line message.
	Notice(msg string)
	// Render shows a chapter in the given state.
	Render(chapter *api.ChapterResponse, state AccessState)
}

// Outcome is how an unlock attempt ended.
type Outcome int

const (
	OutcomeUnlocked Outcome = iota
	OutcomeLoginRequired
	OutcomeCancelled
	OutcomeRejected
	OutcomeNotLocked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnlocked:
		return "unlocked"
	case OutcomeLoginRequired:
		return "login-required"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeRejected:
		return "rejected"
	default:
		return "not-locked"
	}
}

// Result describes an unlock attempt. Chapter is the re-fetched chapter
// after a successful purchase; Message is what the server said.
type Result struct {
	Outcome Outcome
	Chapter *api.ChapterResponse
	Message string
}

// Flow runs the confirm, purchase, re-fetch sequence.
type Flow struct {
	backend Backend
	session Session
	ui      UI
	logger  *zap.Logger
}

// NewFlow constructs a flow.
func NewFlow(backend Backend, session Session, ui UI, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{backend: backend, session: session, ui: ui, logger: logger.Named("purchase")}
}

// Unlock tries to buy the locked chapter current. The coin balance is not
// adjusted here; callers re-fetch the user if they show it.
func (f *Flow) Unlock(ctx context.Context, current *api.ChapterResponse) (Result, error) {
	if current == nil || AccessOf(current) != Locked {
		return Result{Outcome: OutcomeNotLocked}, nil
	}
	chapterID := current.Data.Chapter.ID

	token, ok := f.session.Token()
	if !ok {
		f.ui.RequireLogin(LoginRedirect(chapterID))
		return Result{Outcome: OutcomeLoginRequired}, nil
	}

	confirmed, err := f.ui.Confirm(ctx, current, DisplayPrice(current))
	if err != nil {
		return Result{}, fmt.Errorf("confirm purchase: %w", err)
	}
	if !confirmed {
		return Result{Outcome: OutcomeCancelled}, nil
	}

	res, err := f.backend.Purchase(ctx, token, chapterID)
	if err != nil {
		msg := api.Message(err)
		f.logger.Info("purchase failed", zap.String("chapter_id", chapterID), zap.Error(err))
		f.ui.Notice(msg)
		return Result{Outcome: OutcomeRejected, Message: msg}, nil
	}
	if !Succeeded(res) {
		f.logger.Info("purchase rejected", zap.String("chapter_id", chapterID), zap.String("message", res.Message))
		f.ui.Notice(res.Message)
		return Result{Outcome: OutcomeRejected, Message: res.Message}, nil
	}

	f.ui.Notice(res.Message)
	updated, err := f.backend.Chapter(ctx, token, chapterID)
	if err != nil {
		return Result{Outcome: OutcomeUnlocked, Message: res.Message}, fmt.Errorf("reload chapter: %w", err)
	}
	state := AccessOf(updated)
	if state == Locked {
		f.logger.Warn("chapter still locked after purchase", zap.String("chapter_id", chapterID))
	}
	f.ui.Render(updated, state)
	return Result{Outcome: OutcomeUnlocked, Chapter: updated, Message: res.Message}, nil
}

