package urlutil

import (
	"net/url"
)

// BuildProfileViewURL builds a web application URL for a user's profile.
// Returns a URL like: {baseURL}/@{username}
func BuildProfileViewURL(baseURL, username string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	return u.JoinPath("@" + username).String(), nil
}

