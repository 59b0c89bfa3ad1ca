package backendapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/devilmonastery/chirp/internal/domain/repositories"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(Config{BaseURL: server.URL, SecretKey: "sk_test_123", Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing base url", cfg: Config{SecretKey: "sk"}},
		{name: "missing secret", cfg: Config{BaseURL: "https://api.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGetUserList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/users" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			t.Errorf("Authorization = %q", got)
		}
		q := r.URL.Query()
		if got := q["username"]; len(got) != 1 || got[0] != "ada" {
			t.Errorf("username params = %v", got)
		}
		if got := q.Get("limit"); got != "100" {
			t.Errorf("limit = %q, want 100", got)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{
			"id": "user_2abc",
			"username": "ada",
			"image_url": "https://img.example/ada.png",
			"public_metadata": {"displayName": "Ada", "theme": "dark"},
			"created_at": 1700000000000,
			"updated_at": 1700000000500
		}, {
			"id": "user_3def",
			"username": null,
			"image_url": "",
			"public_metadata": null
		}]`)
	})

	users, err := c.GetUserList(context.Background(), repositories.UserListFilter{Usernames: []string{"ada"}})
	if err != nil {
		t.Fatalf("GetUserList: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}

	ada := users[0]
	if ada.ID != "user_2abc" || ada.Username != "ada" || ada.ProfileImageURL != "https://img.example/ada.png" {
		t.Errorf("unexpected user %+v", ada)
	}
	if ada.MetadataString("displayName") != "Ada" || ada.PublicMetadata["theme"] != "dark" {
		t.Errorf("unexpected metadata %v", ada.PublicMetadata)
	}
	if !ada.CreatedAt.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("CreatedAt = %v", ada.CreatedAt)
	}

	if users[1].Username != "" || users[1].PublicMetadata == nil {
		t.Errorf("null fields not normalized: %+v", users[1])
	}
}

func TestGetUserList_ByIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q["user_id"]; len(got) != 2 || got[0] != "user_1" || got[1] != "user_2" {
			t.Errorf("user_id params = %v", got)
		}
		if got := q.Get("limit"); got != "2" {
			t.Errorf("limit = %q, want 2", got)
		}
		io.WriteString(w, `[]`)
	})

	users, err := c.GetUserList(context.Background(), repositories.UserListFilter{UserIDs: []string{"user_1", "user_2"}, Limit: 2})
	if err != nil {
		t.Fatalf("GetUserList: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected no users, got %d", len(users))
	}
}

func TestUpdateUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/v1/users/user_2abc" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}

		var body struct {
			PublicMetadata map[string]any `json:"public_metadata"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		if body.PublicMetadata["displayName"] != "Countess" || body.PublicMetadata["theme"] != "dark" {
			t.Errorf("unexpected metadata %v", body.PublicMetadata)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"id":              "user_2abc",
			"username":        "ada",
			"public_metadata": body.PublicMetadata,
		})
	})

	u, err := c.UpdateUser(context.Background(), "user_2abc", repositories.UpdateUserParams{
		PublicMetadata: map[string]any{"displayName": "Countess", "theme": "dark"},
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if u.MetadataString("displayName") != "Countess" {
		t.Errorf("unexpected user %+v", u)
	}
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantCode    string
		notFound    bool
		rateLimited bool
	}{
		{
			name:        "provider envelope",
			status:      http.StatusUnprocessableEntity,
			body:        `{"errors":[{"message":"is invalid","long_message":"public_metadata exceeds the maximum size","code":"form_param_value_invalid"}],"clerk_trace_id":"tr_1"}`,
			wantMessage: "public_metadata exceeds the maximum size",
			wantCode:    "form_param_value_invalid",
		},
		{
			name:        "not found",
			status:      http.StatusNotFound,
			body:        `{"errors":[{"message":"not found","code":"resource_not_found"}]}`,
			wantMessage: "not found",
			wantCode:    "resource_not_found",
			notFound:    true,
		},
		{
			name:        "rate limited plain body",
			status:      http.StatusTooManyRequests,
			body:        `slow down`,
			wantMessage: "Too Many Requests",
			rateLimited: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.UpdateUser(context.Background(), "user_1", repositories.UpdateUserParams{})

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Message != tt.wantMessage || apiErr.Code != tt.wantCode {
				t.Errorf("unexpected error %+v", apiErr)
			}
			if apiErr.ProviderMessage() != tt.wantMessage {
				t.Errorf("ProviderMessage() = %q", apiErr.ProviderMessage())
			}
			if got := errors.Is(err, repositories.ErrUserNotFound); got != tt.notFound {
				t.Errorf("errors.Is(ErrUserNotFound) = %v, want %v", got, tt.notFound)
			}
			if got := IsRateLimited(err); got != tt.rateLimited {
				t.Errorf("IsRateLimited = %v, want %v", got, tt.rateLimited)
			}
		})
	}
}

func TestGetUserList_ContextDeadline(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.GetUserList(ctx, repositories.UserListFilter{Usernames: []string{"ada"}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestGetUserList_MalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"not": "a list"}`)
	})

	_, err := c.GetUserList(context.Background(), repositories.UserListFilter{Usernames: []string{"ada"}})
	if err == nil || !strings.Contains(err.Error(), "decode") {
		t.Errorf("expected decode error, got %v", err)
	}
}
