package cli

import (
	"strings"
	"testing"

	"github.com/devilmonastery/chirp/api/profilev1"
)

func TestProfileMarkdown(t *testing.T) {
	p := &profilev1.Profile{
		ID:              "user_1",
		Username:        "ada",
		DisplayName:     "Ada *Lovelace*",
		Bio:             "first\nprogrammer",
		Location:        "London",
		ProfileImageURL: "https://img.chirp.example/1.png",
	}

	md := profileMarkdown(p, "https://chirp.example")

	for _, want := range []string{
		`# Ada \*Lovelace\*`,
		"**@ada** · London",
		"> first programmer",
		"[https://chirp.example/@ada](https://chirp.example/@ada)",
		"Avatar: https://img.chirp.example/1.png",
		"`user_1`",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestProfileMarkdown_Minimal(t *testing.T) {
	md := profileMarkdown(&profilev1.Profile{ID: "user_2", Username: "bob", DisplayName: "bob"}, "")

	if strings.Contains(md, "> ") || strings.Contains(md, "](") || strings.Contains(md, " · ") {
		t.Errorf("minimal profile rendered optional sections:\n%s", md)
	}
}

func TestGetTheme(t *testing.T) {
	if got := getTheme(nil); got != "auto" {
		t.Errorf("getTheme(nil) = %q", got)
	}

	config := DefaultConfig()
	config.Contexts["dev"].Rendering.Theme = "dracula"
	if got := getTheme(config); got != "dracula" {
		t.Errorf("getTheme() = %q, want dracula", got)
	}

	config.CurrentContext = "missing"
	if got := getTheme(config); got != "auto" {
		t.Errorf("getTheme(missing context) = %q, want auto", got)
	}
}
