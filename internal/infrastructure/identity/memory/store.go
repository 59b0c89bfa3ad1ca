// Package memory is an in-process identity provider. It backs the server's
// "memory" identity mode and stands in for the hosted provider in tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/devilmonastery/chirp/internal/domain/entities"
	"github.com/devilmonastery/chirp/internal/domain/repositories"
	"github.com/devilmonastery/chirp/internal/pkg/idgen"
)

// Store holds users in memory. Returned profiles are copies.
type Store struct {
	mu    sync.RWMutex
	users map[string]*entities.UserProfile // by ID
	now   func() time.Time
}

var _ repositories.UserStore = (*Store)(nil)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users: make(map[string]*entities.UserProfile),
		now:   time.Now,
	}
}

// CreateUser implements repositories.UserStore
func (s *Store) CreateUser(ctx context.Context, user *entities.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return fmt.Errorf("%w: %s", repositories.ErrUsernameTaken, user.Username)
		}
	}

	if user.ID == "" {
		user.ID = idgen.NewUserID()
	}
	if _, exists := s.users[user.ID]; exists {
		return fmt.Errorf("user %s already exists", user.ID)
	}

	now := s.now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	s.users[user.ID] = clone(user)
	return nil
}

// GetUserList implements repositories.IdentityProvider. Results are ordered
// by creation time.
func (s *Store) GetUserList(ctx context.Context, filter repositories.UserListFilter) ([]*entities.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	usernames := toSet(filter.Usernames)
	ids := toSet(filter.UserIDs)

	var out []*entities.UserProfile
	for _, u := range s.users {
		if _, ok := ids[u.ID]; ok {
			out = append(out, clone(u))
			continue
		}
		if _, ok := usernames[u.Username]; ok {
			out = append(out, clone(u))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if limit := filter.EffectiveLimit(); len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []*entities.UserProfile{}
	}
	return out, nil
}

// UpdateUser implements repositories.IdentityProvider
func (s *Store) UpdateUser(ctx context.Context, userID string, params repositories.UpdateUserParams) (*entities.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repositories.ErrUserNotFound, userID)
	}

	u.PublicMetadata = maps.Clone(params.PublicMetadata)
	if u.PublicMetadata == nil {
		u.PublicMetadata = map[string]any{}
	}
	u.UpdatedAt = s.now().UTC()

	return clone(u), nil
}

func clone(u *entities.UserProfile) *entities.UserProfile {
	c := *u
	c.PublicMetadata = maps.Clone(u.PublicMetadata)
	return &c
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
