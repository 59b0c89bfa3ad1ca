package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/devilmonastery/chirp/internal/auth"
	"github.com/devilmonastery/chirp/internal/domain/entities"
	"github.com/devilmonastery/chirp/internal/domain/repositories"
	"github.com/devilmonastery/chirp/internal/pkg/logger"
	"github.com/devilmonastery/chirp/internal/pkg/metrics"
	"github.com/devilmonastery/chirp/internal/pkg/textutil"
)

// Field limits for caller-editable metadata, in characters
const (
	MaxDisplayNameLength = 64
	MaxBioLength         = 160
	MaxLocationLength    = 30
)

// UpdateProfileMessage is returned to callers on a successful write
const UpdateProfileMessage = "successfully updated profile"

// UpdateProfileResult is the outcome of a successful UpdateProfile
type UpdateProfileResult struct {
	Success bool
	Message string
}

// ProfileService reads and writes user profiles held by the identity provider
type ProfileService struct {
	provider repositories.IdentityProvider
	log      *slog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(provider repositories.IdentityProvider) *ProfileService {
	return &ProfileService{
		provider: provider,
		log:      logger.WithComponent(slog.Default(), "profile_service"),
	}
}

// GetUserByUsername looks up a user by exact username and returns their
// client profile.
func (s *ProfileService) GetUserByUsername(ctx context.Context, username string) (profile *entities.ClientProfile, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordServiceOperation("profile", "GetUserByUsername", time.Since(start), err)
	}()

	if strings.TrimSpace(username) == "" {
		return nil, newInvalidArgument("username is required")
	}

	users, err := s.provider.GetUserList(ctx, repositories.UserListFilter{
		Usernames: []string{username},
	})
	if err != nil {
		s.log.Error("identity provider lookup failed", "username", username, "error", err)
		return nil, upstream("look up user", err)
	}

	matches := exactUsername(users, username)
	if len(matches) < len(users) {
		s.log.Warn("identity provider returned users with a different username",
			"username", username,
			"returned", len(users),
			"exact", len(matches))
	}
	if len(matches) == 0 {
		return nil, newNotFound("user %q not found", username)
	}

	// Usernames are unique at the provider. Take the first and make the
	// duplicate visible.
	if len(matches) > 1 {
		metrics.ProfileLookupAmbiguous.Inc()
		s.log.Warn("username matched multiple users, using first",
			"username", username,
			"matches", len(matches),
			"selected_user_id", matches[0].ID)
	}

	return matches[0].ClientProfile(), nil
}

func exactUsername(users []*entities.UserProfile, username string) []*entities.UserProfile {
	out := make([]*entities.UserProfile, 0, len(users))
	for _, u := range users {
		if u != nil && u.Username == username {
			out = append(out, u)
		}
	}
	return out
}

// GetProfilesByUserIDs returns client profiles for the given user IDs in
// request order. Duplicates are collapsed and unknown IDs are skipped.
func (s *ProfileService) GetProfilesByUserIDs(ctx context.Context, userIDs []string) (profiles []*entities.ClientProfile, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordServiceOperation("profile", "GetProfilesByUserIDs", time.Since(start), err)
	}()

	ids := dedupe(userIDs)
	if len(ids) == 0 {
		return []*entities.ClientProfile{}, nil
	}
	if len(ids) > repositories.MaxUserListLimit {
		return nil, newInvalidArgument("at most %d user ids per request, got %d", repositories.MaxUserListLimit, len(ids))
	}

	users, err := s.provider.GetUserList(ctx, repositories.UserListFilter{
		UserIDs: ids,
		Limit:   len(ids),
	})
	if err != nil {
		s.log.Error("identity provider batch lookup failed", "count", len(ids), "error", err)
		return nil, upstream("look up users", err)
	}

	byID := make(map[string]*entities.UserProfile, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	profiles = make([]*entities.ClientProfile, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			profiles = append(profiles, u.ClientProfile())
		}
	}
	return profiles, nil
}

// UpdateProfile writes the authenticated caller's display metadata. The
// target user is always taken from ctx. Current metadata is read first and
// the update is merged over it so keys owned by other systems survive.
func (s *ProfileService) UpdateProfile(ctx context.Context, update entities.ProfileUpdate) (result *UpdateProfileResult, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordServiceOperation("profile", "UpdateProfile", time.Since(start), err)
	}()

	caller, authErr := auth.GetUserFromContext(ctx)
	if authErr != nil {
		return nil, &ProfileError{Kind: KindUnauthenticated, Message: "sign in to update your profile", Err: authErr}
	}
	log := logger.WithUser(s.log, caller.UserID)

	update, err = normalizeUpdate(update)
	if err != nil {
		return nil, err
	}

	users, err := s.provider.GetUserList(ctx, repositories.UserListFilter{
		UserIDs: []string{caller.UserID},
		Limit:   1,
	})
	if err != nil {
		log.Error("failed to read current metadata", "error", err)
		return nil, upstream("read current profile", err)
	}

	var current *entities.UserProfile
	for _, u := range users {
		if u.ID == caller.UserID {
			current = u
			break
		}
	}
	if current == nil {
		log.Warn("authenticated caller unknown to identity provider")
		return nil, newNotFound("user %q not found", caller.UserID)
	}

	_, err = s.provider.UpdateUser(ctx, caller.UserID, repositories.UpdateUserParams{
		PublicMetadata: update.Apply(current.PublicMetadata),
	})
	if err != nil {
		log.Error("identity provider rejected profile update", "error", err)
		return nil, upstream("update profile", err)
	}

	log.Info("profile updated")
	return &UpdateProfileResult{Success: true, Message: UpdateProfileMessage}, nil
}

// normalizeUpdate strips markup and enforces field limits. An explicitly
// empty bio or location is kept so the caller can clear the field.
func normalizeUpdate(update entities.ProfileUpdate) (entities.ProfileUpdate, error) {
	update.DisplayName = textutil.PlainText(update.DisplayName)
	if update.DisplayName == "" {
		return update, newInvalidArgument("display name is required")
	}
	if n := textutil.RuneLen(update.DisplayName); n > MaxDisplayNameLength {
		return update, newInvalidArgument("display name must be at most %d characters", MaxDisplayNameLength)
	}

	if update.Bio != nil {
		bio := textutil.PlainText(*update.Bio)
		if textutil.RuneLen(bio) > MaxBioLength {
			return update, newInvalidArgument("bio must be at most %d characters", MaxBioLength)
		}
		update.Bio = &bio
	}

	if update.Location != nil {
		location := textutil.PlainText(*update.Location)
		if textutil.RuneLen(location) > MaxLocationLength {
			return update, newInvalidArgument("location must be at most %d characters", MaxLocationLength)
		}
		update.Location = &location
	}

	return update, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
