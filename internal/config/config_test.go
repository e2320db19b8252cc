package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/socis-ca/website/internal/config"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalYAML = `
jwt:
  issuer: "https://socis.ca"
  audience: "socis-site"
  private_key: "/keys/priv.pem"
  public_key: "/keys/pub.pem"
google:
  client_id: "cid"
  hosted_domain: "socis.ca"
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Auth.Session.CookieName != "socis_session" {
		t.Fatalf("cookie = %q", cfg.Auth.Session.CookieName)
	}
	if cfg.AccessTTL() != time.Hour {
		t.Fatalf("access ttl = %v", cfg.AccessTTL())
	}
	if cfg.SessionTTL() != 24*time.Hour {
		t.Fatalf("session ttl = %v", cfg.SessionTTL())
	}
	if cfg.Google.JWKSURL == "" {
		t.Fatal("jwks url default missing")
	}
	if cfg.Rate.Login.Limit != 10 || cfg.LoginRateWindow() != time.Minute {
		t.Fatalf("rate defaults = %d/%v", cfg.Rate.Login.Limit, cfg.LoginRateWindow())
	}
}

func TestValidateListsMissingKeys(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `app: {env: dev}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	err = cfg.Validate()
	if err == nil {
		t.Fatal("empty config should not validate")
	}
	for _, key := range []string{"jwt.issuer", "jwt.private_key", "google.client_id", "google.hosted_domain"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error should name %s: %v", key, err)
		}
	}
}

func TestEnvOverridesDSN(t *testing.T) {
	t.Setenv("SOCIS_DB_DSN", "postgres://env-wins")
	cfg, err := config.Load(writeConfig(t, minimalYAML+`
storage:
  dsn: "postgres://yaml"
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.DSN != "postgres://env-wins" {
		t.Fatalf("dsn = %q, want env override", cfg.Storage.DSN)
	}
}

func TestIsBootstrapAdmin(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, minimalYAML+`
auth:
  bootstrap_admins:
    - Presidente@socis.ca
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsBootstrapAdmin("presidente@socis.ca") {
		t.Fatal("match should be case-insensitive")
	}
	if cfg.IsBootstrapAdmin("otro@socis.ca") {
		t.Fatal("unlisted email is not bootstrap admin")
	}
}
