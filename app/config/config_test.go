package config

import "testing"

func TestLoadConfigRequiresPostgresURL(t *testing.T) {
	t.Setenv("POSTGRES_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error without POSTGRES_URL")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("POSTGRES_URL", "localhost")
	t.Setenv("PORT", "")
	t.Setenv("CURRENCY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Stripe.Currency != "usd" {
		t.Fatalf("expected default currency usd, got %s", cfg.Stripe.Currency)
	}
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("POSTGRES_URL", "db.internal")
	t.Setenv("POSTGRES_USER", "edemy")
	t.Setenv("POSTGRES_PORT", "5432")
	t.Setenv("POSTGRES_DB", "edemy")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_abc")
	t.Setenv("MEDIA_BUCKET", "edemy-media")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DB.URL != "db.internal" || cfg.DB.Username != "edemy" {
		t.Fatalf("unexpected db config: %+v", cfg.DB)
	}
	if cfg.Stripe.SecretKey != "sk_test_123" {
		t.Fatalf("unexpected stripe config: %+v", cfg.Stripe)
	}
	if cfg.Clerk.WebhookSecret != "whsec_abc" {
		t.Fatalf("unexpected clerk config: %+v", cfg.Clerk)
	}
	if cfg.Media.Bucket != "edemy-media" {
		t.Fatalf("unexpected media config: %+v", cfg.Media)
	}
}
