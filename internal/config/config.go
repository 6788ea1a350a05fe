// Package config loads the claimflow YAML configuration. Values pass
// through os.ExpandEnv so secrets stay in the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aerodry/claimflow/internal/draft"
	"github.com/aerodry/claimflow/internal/inbox"
	"github.com/aerodry/claimflow/internal/llm"
	"github.com/aerodry/claimflow/internal/orchestrator"
)

type Config struct {
	DataDir     string `yaml:"data_dir"`
	PoliciesDir string `yaml:"policies_dir"`

	Paths inbox.Paths `yaml:"paths"`

	DecisionsDir string `yaml:"decisions_dir"`
	OutboxDir    string `yaml:"outbox_dir"`

	LLM llm.Config `yaml:"llm"`

	Writer draft.WriterConfig `yaml:"writer"`
	Label  draft.LabelConfig  `yaml:"label"`

	Orchestrator orchestrator.Config `yaml:"orchestrator"`

	Gateway GatewayConfig `yaml:"gateway"`
	LogLevel string       `yaml:"log_level"`
}

type GatewayConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	AuthToken  string `yaml:"auth_token"`
}

// Default returns the configuration used when no file is supplied: every
// directory under ./data, heuristics only, no gateway auth.
func Default() Config {
	cfg := Config{DataDir: "data", LogLevel: "info"}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (Config, error) {
	// #nosec G304 -- path is operator-provided config path.
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	expanded := os.ExpandEnv(string(raw))
	expanded = strings.ReplaceAll(expanded, "\r\n", "\n")

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

// applyDefaults fills every unset path from DataDir and every unset label
// or writer line from the stock AeroDry identity.
func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.PoliciesDir == "" {
		c.PoliciesDir = filepath.Join(c.DataDir, "policies")
	}
	if c.Paths.InboxDir == "" {
		c.Paths.InboxDir = filepath.Join(c.DataDir, "inbox")
	}
	if c.Paths.TriageRejectedDir == "" {
		c.Paths.TriageRejectedDir = filepath.Join(c.DataDir, "triage_rejected")
	}
	if c.Paths.ReviewQueueDir == "" {
		c.Paths.ReviewQueueDir = filepath.Join(c.DataDir, "review_queue")
	}
	if c.DecisionsDir == "" {
		c.DecisionsDir = filepath.Join(c.DataDir, "decisions")
	}
	if c.OutboxDir == "" {
		c.OutboxDir = filepath.Join(c.DataDir, "outbox")
	}
	if c.Writer.Signature == "" {
		c.Writer = draft.DefaultWriterConfig()
	}
	if c.Label.OutboxDir == "" {
		defaults := draft.DefaultLabelConfig(c.OutboxDir)
		if c.Label.CarrierName == "" {
			c.Label.CarrierName = defaults.CarrierName
		}
		if c.Label.ServiceLevel == "" {
			c.Label.ServiceLevel = defaults.ServiceLevel
		}
		if c.Label.FromAddress == "" {
			c.Label.FromAddress = defaults.FromAddress
		}
		c.Label.OutboxDir = c.OutboxDir
	}
	if c.Gateway.ListenAddr == "" {
		c.Gateway.ListenAddr = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c Config) Validate() error {
	if c.PoliciesDir == "" {
		return fmt.Errorf("policies_dir is required")
	}
	if c.Paths.InboxDir == "" {
		return fmt.Errorf("paths.inbox_dir is required")
	}
	if c.OutboxDir == "" {
		return fmt.Errorf("outbox_dir is required")
	}
	switch c.LLM.Provider {
	case "", "disabled", "none", "openai", "anthropic":
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if (c.LLM.Provider == "openai" || c.LLM.Provider == "anthropic") && c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required when llm.provider is set")
	}
	return nil
}
