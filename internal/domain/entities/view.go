package entities

import "strings"

// ViewState identifies which page the UI rendering surface should show
type ViewState string

const (
	ViewFeed     ViewState = "feed"
	ViewProfile  ViewState = "profile"
	ViewPost     ViewState = "post"
	ViewNotFound ViewState = "not_found"
)

// View is a resolved route: the view to render plus the key it is about
// (a username for profiles, a post ID for posts).
type View struct {
	State    ViewState `json:"state"`
	Username string    `json:"username,omitempty"`
	PostID   string    `json:"postId,omitempty"`
}

// ResolveView maps a request path to a View.
//
//	/            -> feed
//	/@username   -> profile
//	/post/{id}   -> post
func ResolveView(path string) View {
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return View{State: ViewFeed}
	}

	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	switch {
	case len(segments) == 1 && strings.HasPrefix(segments[0], "@") && len(segments[0]) > 1:
		return View{State: ViewProfile, Username: strings.TrimPrefix(segments[0], "@")}
	case len(segments) == 2 && segments[0] == "post" && segments[1] != "":
		return View{State: ViewPost, PostID: segments[1]}
	default:
		return View{State: ViewNotFound}
	}
}
