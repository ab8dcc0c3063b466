package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "bookingproxy"
  environment: "development"
app_url: "https://example.test"
smoobu:
  api_token: "smoobu_token"
stripe:
  secret_key: "sk_test_123"
paypal:
  client_id: "pp_client"
  secret: "pp_secret"
  environment: "sandbox"
http:
  port: 9000
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Smoobu.APIToken != "smoobu_token" {
		t.Errorf("expected smoobu token smoobu_token, got %s", cfg.Smoobu.APIToken)
	}
	if cfg.HTTP.Port != 9000 {
		t.Errorf("expected http port 9000, got %d", cfg.HTTP.Port)
	}
	if cfg.Currency != "EUR" {
		t.Errorf("expected default currency EUR, got %s", cfg.Currency)
	}
	if cfg.Smoobu.BaseURL != "https://login.smoobu.com" {
		t.Errorf("expected default smoobu base url, got %s", cfg.Smoobu.BaseURL)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SMOOBU_API_TOKEN", "from_env")

	yamlContent := `
app_url: "https://example.test"
smoobu:
  api_token: "${SMOOBU_API_TOKEN}"
stripe:
  secret_key: "sk_test_123"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Smoobu.APIToken != "from_env" {
		t.Errorf("expected token from env, got %s", cfg.Smoobu.APIToken)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid stripe only",
			cfg: Config{
				AppURL: "https://example.test",
				Smoobu: SmoobuConfig{APIToken: "token"},
				Stripe: StripeConfig{SecretKey: "sk"},
			},
			wantErr: false,
		},
		{
			name: "valid paypal only",
			cfg: Config{
				AppURL: "https://example.test",
				Smoobu: SmoobuConfig{APIToken: "token"},
				PayPal: PayPalConfig{ClientID: "id", Secret: "s", Environment: EnvProduction},
			},
			wantErr: false,
		},
		{
			name: "missing smoobu token",
			cfg: Config{
				AppURL: "https://example.test",
				Stripe: StripeConfig{SecretKey: "sk"},
			},
			wantErr: true,
		},
		{
			name: "no payment provider",
			cfg: Config{
				AppURL: "https://example.test",
				Smoobu: SmoobuConfig{APIToken: "token"},
			},
			wantErr: true,
		},
		{
			name: "bad paypal environment",
			cfg: Config{
				AppURL: "https://example.test",
				Smoobu: SmoobuConfig{APIToken: "token"},
				PayPal: PayPalConfig{ClientID: "id", Secret: "s", Environment: "staging"},
			},
			wantErr: true,
		},
		{
			name: "missing app url",
			cfg: Config{
				Smoobu: SmoobuConfig{APIToken: "token"},
				Stripe: StripeConfig{SecretKey: "sk"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	cfg := Config{App: AppConfig{Environment: "Production"}}
	if !cfg.IsProduction() {
		t.Error("expected IsProduction to be case-insensitive")
	}
	cfg.App.Environment = "development"
	if cfg.IsProduction() {
		t.Error("expected development to not be production")
	}
}
