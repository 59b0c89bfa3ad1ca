package entities

import "testing"

func TestResolveView(t *testing.T) {
	tests := []struct {
		path     string
		expected View
	}{
		{path: "/", expected: View{State: ViewFeed}},
		{path: "", expected: View{State: ViewFeed}},
		{path: "/@ada", expected: View{State: ViewProfile, Username: "ada"}},
		{path: "/@ada/", expected: View{State: ViewProfile, Username: "ada"}},
		{path: "/@", expected: View{State: ViewNotFound}},
		{path: "/ada", expected: View{State: ViewNotFound}},
		{path: "/post/123", expected: View{State: ViewPost, PostID: "123"}},
		{path: "/post/", expected: View{State: ViewNotFound}},
		{path: "/post/1/2", expected: View{State: ViewNotFound}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := ResolveView(tt.path)
			if got != tt.expected {
				t.Errorf("ResolveView(%q) = %+v, want %+v", tt.path, got, tt.expected)
			}
		})
	}
}
