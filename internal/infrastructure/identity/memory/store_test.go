package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/devilmonastery/chirp/internal/domain/entities"
	"github.com/devilmonastery/chirp/internal/domain/repositories"
)

func TestStore_CreateAndList(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	ada := &entities.UserProfile{Username: "ada"}
	if err := s.CreateUser(ctx, ada); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if ada.ID == "" {
		t.Fatal("expected an assigned ID")
	}
	if err := s.CreateUser(ctx, &entities.UserProfile{ID: "user_2", Username: "grace"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	tests := []struct {
		name     string
		filter   repositories.UserListFilter
		expected []string
	}{
		{name: "by username", filter: repositories.UserListFilter{Usernames: []string{"ada"}}, expected: []string{"ada"}},
		{name: "by id", filter: repositories.UserListFilter{UserIDs: []string{"user_2"}}, expected: []string{"grace"}},
		{name: "no match", filter: repositories.UserListFilter{Usernames: []string{"nobody"}}, expected: nil},
		{name: "username is exact", filter: repositories.UserListFilter{Usernames: []string{"ADA"}}, expected: nil},
		{name: "limit", filter: repositories.UserListFilter{Usernames: []string{"ada", "grace"}, Limit: 1}, expected: []string{"ada"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := s.GetUserList(ctx, tt.filter)
			if err != nil {
				t.Fatalf("GetUserList: %v", err)
			}
			if users == nil {
				t.Fatal("expected empty slice, got nil")
			}
			if len(users) != len(tt.expected) {
				t.Fatalf("got %d users, want %d", len(users), len(tt.expected))
			}
			for i, u := range users {
				if u.Username != tt.expected[i] {
					t.Errorf("users[%d] = %s, want %s", i, u.Username, tt.expected[i])
				}
			}
		})
	}
}

func TestStore_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	if err := s.CreateUser(ctx, &entities.UserProfile{Username: "ada"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	err := s.CreateUser(ctx, &entities.UserProfile{Username: "ada"})
	if !errors.Is(err, repositories.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestStore_UpdateUser(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := &entities.UserProfile{Username: "ada", PublicMetadata: map[string]any{"theme": "dark"}}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	meta := map[string]any{"displayName": "Ada"}
	updated, err := s.UpdateUser(ctx, u.ID, repositories.UpdateUserParams{PublicMetadata: meta})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.PublicMetadata["displayName"] != "Ada" {
		t.Errorf("unexpected metadata %v", updated.PublicMetadata)
	}
	if _, ok := updated.PublicMetadata["theme"]; ok {
		t.Error("UpdateUser must replace metadata, not merge")
	}

	// Mutating the caller's map must not reach the store
	meta["displayName"] = "changed"
	users, _ := s.GetUserList(ctx, repositories.UserListFilter{UserIDs: []string{u.ID}})
	if users[0].PublicMetadata["displayName"] != "Ada" {
		t.Errorf("store aliased caller map: %v", users[0].PublicMetadata)
	}

	_, err = s.UpdateUser(ctx, "user_missing", repositories.UpdateUserParams{})
	if !errors.Is(err, repositories.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewStore().GetUserList(ctx, repositories.UserListFilter{Usernames: []string{"ada"}}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
