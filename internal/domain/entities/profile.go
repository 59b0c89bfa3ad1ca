package entities

import (
	"maps"
	"time"
)

// Public metadata keys owned by chirp. Any other keys in a user's metadata
// belong to someone else and must survive our writes untouched.
const (
	MetadataDisplayName = "displayName"
	MetadataBio         = "bio"
	MetadataLocation    = "location"
)

// UserProfile is a user record as held by the identity provider
type UserProfile struct {
	ID              string         `json:"id" db:"id"`
	Username        string         `json:"username" db:"username"`
	ProfileImageURL string         `json:"profile_image_url" db:"profile_image_url"`
	PublicMetadata  map[string]any `json:"public_metadata" db:"-"`
	CreatedAt       time.Time      `json:"created_at" db:"-"`
	UpdatedAt       time.Time      `json:"updated_at" db:"-"`
}

// MetadataString returns the string stored under key, or "" when the key is
// missing or holds a non-string value.
func (u *UserProfile) MetadataString(key string) string {
	if u == nil || u.PublicMetadata == nil {
		return ""
	}
	s, _ := u.PublicMetadata[key].(string)
	return s
}

// ClientProfile is the display-safe projection of a UserProfile returned to
// UI consumers. It is recomputed on every read.
type ClientProfile struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profileImageUrl"`
	DisplayName     string `json:"displayName"`
	Bio             string `json:"bio,omitempty"`
	Location        string `json:"location,omitempty"`
}

// ClientProfile projects the user into its client shape. An unset display
// name falls back to the username.
func (u *UserProfile) ClientProfile() *ClientProfile {
	displayName := u.MetadataString(MetadataDisplayName)
	if displayName == "" {
		displayName = u.Username
	}

	return &ClientProfile{
		ID:              u.ID,
		Username:        u.Username,
		ProfileImageURL: u.ProfileImageURL,
		DisplayName:     displayName,
		Bio:             u.MetadataString(MetadataBio),
		Location:        u.MetadataString(MetadataLocation),
	}
}

// ProfileUpdate is a caller's edit of their own profile. It deliberately has
// no user identifier: the target is always the authenticated caller.
type ProfileUpdate struct {
	DisplayName string
	Bio         *string // nil leaves the stored value alone
	Location    *string // nil leaves the stored value alone
}

// Apply shallow-merges the update over current and returns the result as a
// new map. current is not modified.
func (p ProfileUpdate) Apply(current map[string]any) map[string]any {
	merged := make(map[string]any, len(current)+3)
	maps.Copy(merged, current)

	merged[MetadataDisplayName] = p.DisplayName
	if p.Bio != nil {
		merged[MetadataBio] = *p.Bio
	}
	if p.Location != nil {
		merged[MetadataLocation] = *p.Location
	}
	return merged
}
