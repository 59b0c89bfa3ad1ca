package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/chirp/internal/config"
	"github.com/devilmonastery/chirp/internal/domain/services"
	"github.com/devilmonastery/chirp/internal/pkg/idgen"
)

func newUserCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Commands for managing users in the local identity store",
	}

	cmd.AddCommand(newUserCreateCommand(configPath))

	return cmd
}

func newUserCreateCommand(configPath *string) *cobra.Command {
	var (
		username    string
		displayName string
		imageURL    string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		Long:  "Create a user in the local identity store (identity.mode: local)",
		Example: `  # Create a user with a display name
  server user create --username ada --display-name "Ada Lovelace"

  # Create a user with their own avatar
  server user create --username grace --image-url https://example.com/grace.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return createUser(cmd.Context(), *configPath, services.CreateUserInput{
				Username:        username,
				DisplayName:     displayName,
				ProfileImageURL: imageURL,
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username, a lowercase slug (required)")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name (optional)")
	cmd.Flags().StringVar(&imageURL, "image-url", "", "Profile image URL (optional, a stock avatar is assigned otherwise)")

	cmd.MarkFlagRequired("username")

	return cmd
}

func createUser(ctx context.Context, configPath string, in services.CreateUserInput) error {
	if err := idgen.Initialize(1); err != nil {
		return fmt.Errorf("failed to initialize ID generator: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, cleanup, err := openUserStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := services.NewUserService(store, cfg.Identity.AvatarBaseURL).CreateUser(ctx, in)
	if err != nil {
		return err
	}

	fmt.Printf("Created user %s\n", user.Username)
	fmt.Printf("  ID:    %s\n", user.ID)
	if user.ProfileImageURL != "" {
		fmt.Printf("  Image: %s\n", user.ProfileImageURL)
	}
	return nil
}
