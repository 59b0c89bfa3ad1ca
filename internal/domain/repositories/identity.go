package repositories

import (
	"context"

	"github.com/devilmonastery/chirp/internal/domain/entities"
)

// MaxUserListLimit caps how many users a single GetUserList call may return
const MaxUserListLimit = 100

// IdentityProvider is the external system of record for user accounts and
// their public metadata. Every call is a possibly-failing network request.
type IdentityProvider interface {
	// GetUserList returns users matching any of the filter's usernames or IDs.
	// Username matching is exact. No match is an empty slice, not an error.
	GetUserList(ctx context.Context, filter UserListFilter) ([]*entities.UserProfile, error)

	// UpdateUser replaces the user's public metadata with params.PublicMetadata.
	UpdateUser(ctx context.Context, userID string, params UpdateUserParams) (*entities.UserProfile, error)
}

// UserStore is an IdentityProvider we host ourselves and can therefore seed
type UserStore interface {
	IdentityProvider

	// CreateUser stores a new user, assigning an ID when user.ID is empty
	CreateUser(ctx context.Context, user *entities.UserProfile) error
}

// UserListFilter selects users for GetUserList
type UserListFilter struct {
	Usernames []string
	UserIDs   []string
	Limit     int // 0 means MaxUserListLimit
}

// EffectiveLimit returns the limit to apply, clamped to MaxUserListLimit
func (f UserListFilter) EffectiveLimit() int {
	if f.Limit <= 0 || f.Limit > MaxUserListLimit {
		return MaxUserListLimit
	}
	return f.Limit
}

// UpdateUserParams carries the fields UpdateUser writes
type UpdateUserParams struct {
	PublicMetadata map[string]any
}
