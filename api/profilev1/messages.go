package profilev1

// Profile is the client-facing shape of a user profile
type Profile struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profileImageUrl"`
	DisplayName     string `json:"displayName"`
	Bio             string `json:"bio,omitempty"`
	Location        string `json:"location,omitempty"`
}

// GetUserByUsernameRequest looks up one profile by exact username
type GetUserByUsernameRequest struct {
	Username string `json:"username"`
}

// GetUserByUsernameResponse carries the matched profile
type GetUserByUsernameResponse struct {
	Profile *Profile `json:"profile"`
}

// UpdateProfileRequest edits the caller's own profile. There is no user ID
// field: the server writes to the authenticated caller only. A nil Bio or
// Location leaves the stored value alone; an empty string clears it.
type UpdateProfileRequest struct {
	DisplayName string  `json:"displayName"`
	Bio         *string `json:"bio,omitempty"`
	Location    *string `json:"location,omitempty"`
}

// UpdateProfileResponse reports the outcome of a profile write
type UpdateProfileResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GetProfilesByUserIDsRequest hydrates up to 100 profiles by user ID
type GetProfilesByUserIDsRequest struct {
	UserIDs []string `json:"userIds"`
}

// GetProfilesByUserIDsResponse lists the profiles found, in request order.
// Unknown IDs are omitted.
type GetProfilesByUserIDsResponse struct {
	Profiles []*Profile `json:"profiles"`
}
