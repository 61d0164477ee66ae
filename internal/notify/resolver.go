package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/habitbot/internal/database"
	"github.com/example/habitbot/pkg/models"
)

// ProfileSource is the lookup the resolver reads destinations from. It
// reports database.ErrNotFound when a user has no profile row.
type ProfileSource interface {
	GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error)
}

// RecipientResolver maps a habit owner to a deliverable Telegram chat ID.
// Absence of a destination is an expected branch, not an error: a user with
// no profile and a user with an empty telegram_id resolve identically.
type RecipientResolver struct {
	profiles ProfileSource
}

// NewRecipientResolver creates a resolver over the given profile source.
func NewRecipientResolver(profiles ProfileSource) *RecipientResolver {
	return &RecipientResolver{profiles: profiles}
}

// Resolve returns the destination address for a user. ok is false, with a
// nil error, when the user simply has no destination.
func (r *RecipientResolver) Resolve(ctx context.Context, userID int64) (addr string, ok bool, err error) {
	profile, err := r.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve recipient: %v", err)
	}
	if profile.TelegramID == "" {
		return "", false, nil
	}
	return profile.TelegramID, true, nil
}
