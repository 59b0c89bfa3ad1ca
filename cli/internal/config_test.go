package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func useTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadConfig_CreatesDefaults(t *testing.T) {
	home := useTempHome(t)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.CurrentContext != "dev" {
		t.Errorf("CurrentContext = %q, want dev", config.CurrentContext)
	}
	if _, err := os.Stat(filepath.Join(home, ".chirp")); err != nil {
		t.Errorf("config file not written: %v", err)
	}

	addr, err := config.ServerAddress()
	if err != nil || addr != "localhost:9091" {
		t.Errorf("ServerAddress() = %q, %v", addr, err)
	}
}

func TestConfig_Contexts(t *testing.T) {
	useTempHome(t)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	staging := &Context{}
	staging.Server.Address = "staging.chirp.example"
	staging.Server.Port = 443
	staging.Web.URL = "https://staging.chirp.example"
	config.AddContext("staging", staging)

	if err := config.SetCurrentContext("staging"); err != nil {
		t.Fatalf("SetCurrentContext() error = %v", err)
	}
	if err := SaveConfig(config); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	reloaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	ctx, err := reloaded.GetCurrentContext()
	if err != nil {
		t.Fatalf("GetCurrentContext() error = %v", err)
	}
	if ctx.ServerAddress() != "staging.chirp.example:443" || ctx.Web.URL != "https://staging.chirp.example" {
		t.Errorf("context = %+v", ctx)
	}
	if webURL(reloaded) != "https://staging.chirp.example" {
		t.Errorf("webURL() = %q", webURL(reloaded))
	}

	if err := reloaded.DeleteContext("staging"); err == nil {
		t.Error("DeleteContext(current) error = nil, want error")
	}
	if err := reloaded.DeleteContext("missing"); err == nil {
		t.Error("DeleteContext(missing) error = nil, want error")
	}
	if err := reloaded.DeleteContext("prod"); err != nil {
		t.Errorf("DeleteContext(prod) error = %v", err)
	}
	if err := reloaded.SetCurrentContext("prod"); err == nil {
		t.Error("SetCurrentContext(deleted) error = nil, want error")
	}
}

func TestIsConfigCommand(t *testing.T) {
	root := NewRootCommand()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"config", "use-context"}, true},
		{[]string{"config"}, true},
		{[]string{"profile", "get"}, false},
		{[]string{"auth", "login"}, false},
	}

	for _, tt := range tests {
		cmd, _, err := root.Find(tt.args)
		if err != nil {
			t.Fatalf("Find(%v) error = %v", tt.args, err)
		}
		if got := isConfigCommand(cmd); got != tt.want {
			t.Errorf("isConfigCommand(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
