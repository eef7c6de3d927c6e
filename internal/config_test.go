package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/sitewright/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Site.ConfigPath() != filepath.Join("site", "site.json") {
		t.Errorf("config path = %q", cfg.Site.ConfigPath())
	}
}

func TestConfig_RejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"zero port":        func(c *Config) { c.App.HTTP.Port = 0 },
		"empty site path":  func(c *Config) { c.Site.Path = "" },
		"bad endpoint":     func(c *Config) { c.Generator.Endpoint = "not a url" },
		"short timeout":    func(c *Config) { c.Photos.Timeout = time.Millisecond },
		"zero history":     func(c *Config) { c.History.Limit = 0 },
		"huge concurrency": func(c *Config) { c.Assets.Concurrency = 1000 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfig_LoadsYAML(t *testing.T) {
	t.Setenv("TEST_GENERATOR_ENDPOINT", "http://localhost:9999/generate")
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "site:\n  path: ./mysite\ngenerator:\n  endpoint: ${TEST_GENERATOR_ENDPOINT}\nhistory:\n  limit: 10\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Site.Path != "./mysite" || cfg.Generator.Endpoint != "http://localhost:9999/generate" || cfg.History.Limit != 10 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Assets.Concurrency != 4 || cfg.App.HTTP.Port != 8080 {
		t.Error("defaults not kept for absent keys")
	}
}
