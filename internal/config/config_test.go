package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadExpandsEnvAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "claimflow.yaml")

	os.Setenv("TEST_OPENAI_KEY", "sk-test")
	defer os.Unsetenv("TEST_OPENAI_KEY")

	data := `
data_dir: "./run"
llm:
  provider: "openai"
  api_key: "${TEST_OPENAI_KEY}"
gateway:
  auth_token: "tok"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Fatalf("expected expanded api key, got %q", cfg.LLM.APIKey)
	}
	if cfg.PoliciesDir != filepath.Join("./run", "policies") {
		t.Fatalf("policies dir should derive from data_dir, got %q", cfg.PoliciesDir)
	}
	if cfg.Paths.InboxDir != filepath.Join("./run", "inbox") {
		t.Fatalf("inbox dir should derive from data_dir, got %q", cfg.Paths.InboxDir)
	}
	if cfg.Label.OutboxDir != cfg.OutboxDir {
		t.Fatalf("label outbox should follow outbox_dir")
	}
	if cfg.Gateway.ListenAddr != ":8080" {
		t.Fatalf("expected default listen addr, got %q", cfg.Gateway.ListenAddr)
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Writer.Signature == "" {
		t.Fatalf("writer identity should default")
	}
	if cfg.Label.CarrierName != "MockShip" {
		t.Fatalf("label carrier should default, got %q", cfg.Label.CarrierName)
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = "palm"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestValidateProviderRequiresKey(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = "anthropic"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for provider without api key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Fatalf("expected error")
	}
}
