package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/devilmonastery/chirp/internal/domain/entities"
	"github.com/devilmonastery/chirp/internal/domain/repositories"
	"github.com/devilmonastery/chirp/migrations"
)

func newTestStore(t *testing.T) *UserStore {
	t.Helper()

	conn, err := NewConnection(DriverSQLite, filepath.Join(t.TempDir(), "chirp.db"))
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := conn.RunMigrations(migrations.FS); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	// Running again is a no-op
	if err := conn.RunMigrations(migrations.FS); err != nil {
		t.Fatalf("second RunMigrations: %v", err)
	}

	return NewUserStore(conn.DB)
}

func TestNewConnection_UnsupportedDriver(t *testing.T) {
	if _, err := NewConnection("mysql", "whatever"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestUserStore_CreateAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ada := &entities.UserProfile{
		Username:        "ada",
		ProfileImageURL: "https://img/ada.png",
		PublicMetadata:  map[string]any{"displayName": "Ada", "theme": "dark"},
	}
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
		{name: "both", filter: repositories.UserListFilter{Usernames: []string{"ada"}, UserIDs: []string{"user_2"}}, expected: []string{"ada", "grace"}},
		{name: "no match", filter: repositories.UserListFilter{Usernames: []string{"nobody"}}, expected: nil},
		{name: "empty filter", filter: repositories.UserListFilter{}, expected: nil},
		{name: "limit", filter: repositories.UserListFilter{Usernames: []string{"ada", "grace"}, Limit: 1}, expected: []string{"ada"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := s.GetUserList(ctx, tt.filter)
			if err != nil {
				t.Fatalf("GetUserList: %v", err)
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

	users, _ := s.GetUserList(ctx, repositories.UserListFilter{Usernames: []string{"ada"}})
	got := users[0]
	if got.ProfileImageURL != "https://img/ada.png" || got.PublicMetadata["theme"] != "dark" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not stored")
	}
}

func TestUserStore_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.CreateUser(ctx, &entities.UserProfile{Username: "ada"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	err := s.CreateUser(ctx, &entities.UserProfile{Username: "ada"})
	if !errors.Is(err, repositories.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestUserStore_UpdateUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created := time.UnixMilli(1700000000000).UTC()
	s.now = func() time.Time { return created }
	u := &entities.UserProfile{Username: "ada", PublicMetadata: map[string]any{"theme": "dark"}}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	later := created.Add(time.Minute)
	s.now = func() time.Time { return later }

	updated, err := s.UpdateUser(ctx, u.ID, repositories.UpdateUserParams{
		PublicMetadata: map[string]any{"displayName": "Countess", "theme": "dark"},
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.MetadataString("displayName") != "Countess" || updated.PublicMetadata["theme"] != "dark" {
		t.Errorf("unexpected metadata %v", updated.PublicMetadata)
	}
	if !updated.UpdatedAt.Equal(later) || !updated.CreatedAt.Equal(created) {
		t.Errorf("timestamps = %v / %v", updated.CreatedAt, updated.UpdatedAt)
	}

	_, err = s.UpdateUser(ctx, "user_missing", repositories.UpdateUserParams{})
	if !errors.Is(err, repositories.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
