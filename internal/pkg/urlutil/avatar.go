package urlutil

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultAvatarCount is the number of stock avatars served under {base}/default/
const DefaultAvatarCount = 6

// DefaultAvatarURL picks a stock avatar for a user who has not uploaded one.
// The choice is derived from the snowflake timestamp bits of the user ID so
// it is stable per user. IDs that are not snowflakes fall back to a byte sum.
//
// Returns a URL like: {baseURL}/default/{index}.png
func DefaultAvatarURL(baseURL, userID string) string {
	baseURL = strings.TrimRight(baseURL, "/")

	raw := userID
	if i := strings.LastIndexByte(raw, '_'); i >= 0 {
		raw = raw[i+1:]
	}

	var index int64
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		index = (id >> 22) % DefaultAvatarCount
	} else {
		var sum int64
		for i := 0; i < len(userID); i++ {
			sum += int64(userID[i])
		}
		index = sum % DefaultAvatarCount
	}

	return fmt.Sprintf("%s/default/%d.png", baseURL, index)
}
