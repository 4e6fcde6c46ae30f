package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Environment != EnvDevelopment {
		t.Fatalf("default environment %q", cfg.Environment)
	}
	if cfg.Production() {
		t.Fatal("development config reports production")
	}
	if cfg.Session.CookieName != "crm_sid" {
		t.Fatalf("default cookie name %q", cfg.Session.CookieName)
	}
	if cfg.Session.MaxAge != 7*24*time.Hour {
		t.Fatalf("default session max age %v", cfg.Session.MaxAge)
	}
	if cfg.Session.Backend != SessionBackendRedis {
		t.Fatalf("default session backend %q", cfg.Session.Backend)
	}
	if cfg.Session.TableName != "sessions" {
		t.Fatalf("default table name %q", cfg.Session.TableName)
	}
	if cfg.OAuth.Enabled() {
		t.Fatal("oauth enabled without credentials")
	}
	if cfg.OAuth.CallbackURL != "http://localhost:8080/api/auth/google/callback" {
		t.Fatalf("default callback %q", cfg.OAuth.CallbackURL)
	}
}

func TestCallbackURLResolvedAgainstPublicURL(t *testing.T) {
	t.Setenv("PUBLIC_URL", "https://crm.school.org/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.OAuth.CallbackURL != "https://crm.school.org/api/auth/google/callback" {
		t.Fatalf("resolved callback %q", cfg.OAuth.CallbackURL)
	}
}

func TestAbsoluteCallbackURLKept(t *testing.T) {
	t.Setenv("SCHOOLCRM_OAUTH_CALLBACKURL", "https://other.example/cb")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.OAuth.CallbackURL != "https://other.example/cb" {
		t.Fatalf("absolute callback rewritten: %q", cfg.OAuth.CallbackURL)
	}
}

func TestLegacyEnvBinding(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "signing-key")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "crm-prod")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("SENDGRID_API_KEY", "sg-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if !cfg.Production() {
		t.Fatalf("environment %q not recognized as production", cfg.Environment)
	}
	if cfg.Session.Secret != "signing-key" {
		t.Fatalf("session secret %q", cfg.Session.Secret)
	}
	if cfg.Secrets.ProjectID != "crm-prod" {
		t.Fatalf("project id %q", cfg.Secrets.ProjectID)
	}
	if !cfg.OAuth.Enabled() {
		t.Fatal("oauth not enabled with both credentials present")
	}
	if cfg.Mail.SendgridAPIKey != "sg-key" {
		t.Fatalf("sendgrid key %q", cfg.Mail.SendgridAPIKey)
	}
}
