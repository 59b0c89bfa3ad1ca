package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/chirp/api/profilev1"
)

const rpcTimeout = 10 * time.Second

func newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit profiles",
	}

	cmd.AddCommand(newProfileGetCommand())
	cmd.AddCommand(newProfileUpdateCommand())
	cmd.AddCommand(newProfileLookupCommand())

	return cmd
}

// currentUsername returns the username of the logged-in user
func currentUsername() (string, error) {
	creds, err := LoadCredentials()
	if err != nil {
		return "", err
	}
	if creds.Username == "" {
		return "", errors.New("session token has no username; pass one explicitly")
	}
	return creds.Username, nil
}

func newProfileGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get [USERNAME]",
		Short: "Show a profile (defaults to your own)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			var username string
			if len(args) == 1 {
				username = args[0]
			} else {
				var err error
				if username, err = currentUsername(); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), rpcTimeout)
			defer cancel()

			resp, err := cliCtx.GRPCClient.ProfileClient().GetUserByUsername(ctx,
				&profilev1.GetUserByUsernameRequest{Username: username})
			if err != nil {
				return err
			}

			return printMarkdown(cliCtx.Config, profileMarkdown(resp.Profile, webURL(cliCtx.Config)))
		},
	}
}

// webURL returns the web base URL of the current context
func webURL(config *Config) string {
	ctx, err := config.GetCurrentContext()
	if err != nil {
		return ""
	}
	return ctx.Web.URL
}

func newProfileUpdateCommand() *cobra.Command {
	var (
		displayName string
		bio         string
		location    string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Edit your profile",
		Long: `Edit your own profile. Fields that are not given keep their current
value; pass an empty string (--bio "") to clear bio or location. The first
update must set --display-name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			flags := cmd.Flags()

			if !flags.Changed("display-name") && !flags.Changed("bio") && !flags.Changed("location") {
				return errors.New("nothing to update: pass --display-name, --bio or --location")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), rpcTimeout)
			defer cancel()

			profiles := cliCtx.GRPCClient.ProfileClient()

			// The display name is required on every write; keep the current one
			if !flags.Changed("display-name") {
				username, err := currentUsername()
				if err != nil {
					return err
				}
				current, err := profiles.GetUserByUsername(ctx, &profilev1.GetUserByUsernameRequest{Username: username})
				if err != nil {
					return err
				}
				if displayName, err = storedDisplayName(current.Profile); err != nil {
					return err
				}
			}

			req := &profilev1.UpdateProfileRequest{DisplayName: displayName}
			if flags.Changed("bio") {
				req.Bio = &bio
			}
			if flags.Changed("location") {
				req.Location = &location
			}

			resp, err := profiles.UpdateProfile(ctx, req)
			if err != nil {
				return err
			}

			fmt.Printf("✓ %s\n", resp.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name")
	cmd.Flags().StringVar(&bio, "bio", "", "Short bio")
	cmd.Flags().StringVar(&location, "location", "", "Location")

	return cmd
}

// storedDisplayName returns the display name to send back unchanged. A
// profile without one reads back as its username, and writing that would
// store the fallback, so the caller has to choose a name first.
func storedDisplayName(p *profilev1.Profile) (string, error) {
	if p == nil || p.DisplayName == "" || p.DisplayName == p.Username {
		return "", errors.New("no display name set yet: pass --display-name")
	}
	return p.DisplayName, nil
}

func newProfileLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup USER_ID...",
		Short: "Look up profiles by user ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			ctx, cancel := context.WithTimeout(cmd.Context(), rpcTimeout)
			defer cancel()

			resp, err := cliCtx.GRPCClient.ProfileClient().GetProfilesByUserIDs(ctx,
				&profilev1.GetProfilesByUserIDsRequest{UserIDs: args})
			if err != nil {
				return err
			}

			if len(resp.Profiles) == 0 {
				fmt.Println("No profiles found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tDISPLAY NAME\tLOCATION")
			for _, p := range resp.Profiles {
				fmt.Fprintf(w, "%s\t@%s\t%s\t%s\n", p.ID, p.Username, p.DisplayName, p.Location)
			}
			return w.Flush()
		},
	}
}
