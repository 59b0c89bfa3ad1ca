package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/chirp/internal/config"
	"github.com/devilmonastery/chirp/internal/domain/services"
)

func newTokenCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Session token commands",
		Long:  "Commands for minting session tokens signed with the local JWT key",
	}

	cmd.AddCommand(newTokenIssueCommand(configPath))

	return cmd
}

func newTokenIssueCommand(configPath *string) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a session token for a user",
		Long: `Issue a session token for a user in the local identity store.

The token is signed with auth.jwt.signing_key and is valid for
auth.jwt.lifetime. Use it with "chirp auth login" or as a Bearer token.`,
		Example: `  server token issue --username ada`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return issueToken(cmd.Context(), *configPath, username)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to issue the token for (required)")
	cmd.MarkFlagRequired("username")

	return cmd
}

func issueToken(ctx context.Context, configPath, username string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Auth.UsesOIDC() {
		return fmt.Errorf("session tokens are issued by the identity provider when auth.oidc is configured")
	}

	store, cleanup, err := openUserStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := services.NewUserService(store, cfg.Identity.AvatarBaseURL).GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}

	token, expiresAt, err := newJWTManager(cfg).IssueSessionToken(user.ID, user.Username)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	fmt.Println(token)
	fmt.Printf("# user %s (%s), expires %s\n", user.Username, user.ID, expiresAt.Format(time.RFC3339))
	return nil
}
