package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/devilmonastery/chirp/internal/domain/entities"
	"github.com/devilmonastery/chirp/internal/domain/repositories"
	"github.com/devilmonastery/chirp/internal/infrastructure/identity/memory"
)

func TestCreateUser(t *testing.T) {
	store := memory.NewStore()
	svc := NewUserService(store, "https://img.chirp.example")

	u, err := svc.CreateUser(context.Background(), CreateUserInput{Username: "ada", DisplayName: "Ada <b>L</b>"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if !strings.HasPrefix(u.ID, "user_") {
		t.Errorf("ID = %q, want user_ prefix", u.ID)
	}
	if !strings.HasPrefix(u.ProfileImageURL, "https://img.chirp.example/default/") {
		t.Errorf("ProfileImageURL = %q, want default avatar", u.ProfileImageURL)
	}
	if u.MetadataString(entities.MetadataDisplayName) != "Ada L" {
		t.Errorf("display name = %q", u.MetadataString(entities.MetadataDisplayName))
	}

	got, err := svc.GetUserByUsername(context.Background(), "ada")
	if err != nil || got.ID != u.ID {
		t.Errorf("GetUserByUsername = %v, %v", got, err)
	}
	got, err = svc.GetUserByID(context.Background(), u.ID)
	if err != nil || got.Username != "ada" {
		t.Errorf("GetUserByID = %v, %v", got, err)
	}
}

func TestCreateUser_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		expected error
	}{
		{name: "uppercase", username: "Ada", expected: repositories.ErrInvalidUsername},
		{name: "spaces", username: "ada l", expected: repositories.ErrInvalidUsername},
		{name: "empty", username: "", expected: repositories.ErrInvalidUsername},
		{name: "too long", username: strings.Repeat("a", MaxUsernameLength+1), expected: repositories.ErrInvalidUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(memory.NewStore(), "")
			_, err := svc.CreateUser(context.Background(), CreateUserInput{Username: tt.username})
			if !errors.Is(err, tt.expected) {
				t.Errorf("CreateUser(%q) error = %v, want %v", tt.username, err, tt.expected)
			}
		})
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	svc := NewUserService(memory.NewStore(), "")
	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Username: "ada"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err := svc.CreateUser(context.Background(), CreateUserInput{Username: "ada"})
	if !errors.Is(err, repositories.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	svc := NewUserService(memory.NewStore(), "")
	if _, err := svc.GetUserByID(context.Background(), "user_1"); !errors.Is(err, repositories.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
