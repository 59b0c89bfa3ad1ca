package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/devilmonastery/chirp/api/profilev1"
	"github.com/devilmonastery/chirp/internal/pkg/urlutil"
)

// renderMarkdown renders markdown content, using glamour for terminal output or plain text otherwise
func renderMarkdown(markdown string, theme string) (string, error) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		rendered, err := glamour.Render(markdown, theme)
		if err != nil {
			// Fall back to plain markdown if rendering fails
			return markdown, nil
		}
		return rendered, nil
	}

	// Pipes and redirects get plain markdown
	return markdown, nil
}

// printMarkdown renders and prints markdown using the configured theme
func printMarkdown(config *Config, markdown string) error {
	rendered, err := renderMarkdown(markdown, getTheme(config))
	if err != nil {
		return err
	}

	fmt.Print(rendered)
	return nil
}

// getTheme returns the theme from the current context, or "auto" if config is unavailable
func getTheme(config *Config) string {
	if config == nil {
		return "auto"
	}

	ctx, err := config.GetCurrentContext()
	if err != nil || ctx.Rendering.Theme == "" {
		return "auto"
	}

	return ctx.Rendering.Theme
}

// profileMarkdown formats a profile card. webURL, when set, adds a link to
// the profile page.
func profileMarkdown(p *profilev1.Profile, webURL string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(p.DisplayName))
	fmt.Fprintf(&b, "**@%s**", escapeMarkdown(p.Username))
	if p.Location != "" {
		fmt.Fprintf(&b, " · %s", escapeMarkdown(p.Location))
	}
	b.WriteString("\n\n")

	if p.Bio != "" {
		fmt.Fprintf(&b, "> %s\n\n", escapeMarkdown(p.Bio))
	}

	if webURL != "" {
		if link, err := urlutil.BuildProfileViewURL(webURL, p.Username); err == nil {
			fmt.Fprintf(&b, "[%s](%s)\n\n", link, link)
		}
	}

	if p.ProfileImageURL != "" {
		fmt.Fprintf(&b, "Avatar: %s\n\n", p.ProfileImageURL)
	}
	fmt.Fprintf(&b, "`%s`\n", p.ID)

	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"\n", " ",
)

// escapeMarkdown keeps user-supplied text from being read as markup
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
