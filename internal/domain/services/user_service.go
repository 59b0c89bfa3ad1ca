package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gosimple/slug"

	"github.com/devilmonastery/chirp/internal/domain/entities"
	"github.com/devilmonastery/chirp/internal/domain/repositories"
	"github.com/devilmonastery/chirp/internal/pkg/idgen"
	"github.com/devilmonastery/chirp/internal/pkg/logger"
	"github.com/devilmonastery/chirp/internal/pkg/textutil"
	"github.com/devilmonastery/chirp/internal/pkg/urlutil"
)

// MaxUsernameLength bounds usernames created through the local provider
const MaxUsernameLength = 32

// CreateUserInput describes a user to seed into a self-hosted identity store
type CreateUserInput struct {
	Username        string
	DisplayName     string
	ProfileImageURL string
}

// UserService provides account administration for self-hosted identity stores
type UserService struct {
	store         repositories.UserStore
	avatarBaseURL string
	log           *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(store repositories.UserStore, avatarBaseURL string) *UserService {
	return &UserService{
		store:         store,
		avatarBaseURL: avatarBaseURL,
		log:           logger.WithComponent(slog.Default(), "user_service"),
	}
}

// CreateUser validates the input and stores a new user. Usernames must be
// lowercase slugs ("ada", "grace-hopper"). A stock avatar is assigned when no
// image URL is given.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*entities.UserProfile, error) {
	if !slug.IsSlug(in.Username) || len(in.Username) > MaxUsernameLength {
		return nil, fmt.Errorf("%w: %q (use lowercase letters, digits and single hyphens, at most %d characters)",
			repositories.ErrInvalidUsername, in.Username, MaxUsernameLength)
	}

	now := time.Now().UTC()
	user := &entities.UserProfile{
		ID:              idgen.NewUserID(),
		Username:        in.Username,
		ProfileImageURL: in.ProfileImageURL,
		PublicMetadata:  map[string]any{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if user.ProfileImageURL == "" && s.avatarBaseURL != "" {
		user.ProfileImageURL = urlutil.DefaultAvatarURL(s.avatarBaseURL, user.ID)
	}
	if name := textutil.PlainText(in.DisplayName); name != "" {
		user.PublicMetadata[entities.MetadataDisplayName] = name
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("user created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// GetUserByID returns the stored record for a single user
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*entities.UserProfile, error) {
	users, err := s.store.GetUserList(ctx, repositories.UserListFilter{UserIDs: []string{userID}, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	for _, u := range users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", repositories.ErrUserNotFound, userID)
}

// GetUserByUsername returns the stored record for a username
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*entities.UserProfile, error) {
	users, err := s.store.GetUserList(ctx, repositories.UserListFilter{Usernames: []string{username}, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: %s", repositories.ErrUserNotFound, username)
	}
	return users[0], nil
}
