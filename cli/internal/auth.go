package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devilmonastery/chirp/api/profilev1"
)

// formatDuration formats a duration in a human-friendly way (e.g., "2 days, 3 hours and 45 minutes")
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if len(parts) == 0 && seconds > 0 {
		parts = append(parts, plural(seconds, "second"))
	}

	switch len(parts) {
	case 0:
		return "0 seconds"
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  `Manage the session token used by the chirp CLI`,
	}

	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthLogoutCommand())
	cmd.AddCommand(newAuthStatusCommand())
	cmd.AddCommand(newAuthTokenCommand())

	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a session token",
		Long: `Store a session token issued by the identity provider (or by
'server token issue' for a local deployment). The token is read without echo
unless --token is given; '-' reads it from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			if token == "" || token == "-" {
				var err error
				token, err = promptToken(token == "-")
				if err != nil {
					return err
				}
			}

			creds, err := credentialsFromToken(strings.TrimSpace(token))
			if err != nil {
				return err
			}
			if creds.IsExpired() {
				return fmt.Errorf("session token expired %s ago", formatDuration(time.Since(creds.ExpiresAt)))
			}

			if err := SaveCredentials(creds); err != nil {
				return err
			}

			who := creds.UserID
			if creds.Username != "" {
				ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
				defer cancel()

				resp, err := cliCtx.GRPCClient.ProfileClient().GetUserByUsername(ctx,
					&profilev1.GetUserByUsernameRequest{Username: creds.Username})
				if err != nil {
					cliCtx.Logger.Warn("could not look up profile for new session", "error", err)
					who = "@" + creds.Username
				} else {
					who = fmt.Sprintf("%s (@%s)", resp.Profile.DisplayName, resp.Profile.Username)
				}
			}

			fmt.Printf("✓ Logged in as %s\n", who)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Session token ('-' to read from stdin)")
	return cmd
}

// promptToken reads a token from stdin, hiding input on a terminal
func promptToken(fromPipe bool) (string, error) {
	if fromPipe || !term.IsTerminal(int(syscall.Stdin)) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	fmt.Print("Session token: ")
	tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(string(tokenBytes)), nil
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := LoadCredentials(); err != nil {
				return err
			}

			if err := RemoveCredentials(); err != nil {
				return err
			}

			fmt.Println("✓ Successfully logged out")
			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := LoadCredentials()
			if errors.Is(err, errNotLoggedIn) {
				fmt.Println("Not logged in")
				return nil
			}
			if err != nil {
				return err
			}

			if creds.Username != "" {
				fmt.Printf("Logged in as: @%s\n", creds.Username)
			}
			fmt.Printf("User ID: %s\n", creds.UserID)

			if creds.ExpiresAt.IsZero() {
				fmt.Println("Token expires: never")
				return nil
			}

			fmt.Printf("Token expires: %s\n", creds.ExpiresAt.Local().Format("2006-01-02 15:04:05 MST"))
			if creds.IsExpired() {
				fmt.Printf("⚠  Token expired %s ago - run 'chirp auth login' again\n", formatDuration(time.Since(creds.ExpiresAt)))
			} else {
				fmt.Printf("✓  Valid for %s\n", formatDuration(time.Until(creds.ExpiresAt)))
			}

			return nil
		},
	}
}

func newAuthTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Display the current session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := LoadCredentials()
			if err != nil {
				return err
			}

			fmt.Println(creds.AccessToken)
			return nil
		},
	}
}
