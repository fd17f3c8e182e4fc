package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Settings are the user-tunable knobs of a walletbridge deployment.
type Settings struct {
	// DataDir is the root directory for wallet files. Per-chain
	// subdirectories are derived from it.
	DataDir string `yaml:"data_dir" env:"WALLETBRIDGE_DATA_DIR"`

	// Server is the default server when callers pass an empty URI.
	Server string `yaml:"server" env:"WALLETBRIDGE_SERVER"`

	// Chain and Height configure the static chain info source used when no
	// live source is plugged in.
	Chain  string `yaml:"chain" env:"WALLETBRIDGE_CHAIN"`
	Height uint64 `yaml:"height" env:"WALLETBRIDGE_HEIGHT"`

	LogLevel  string `yaml:"log_level" env:"WALLETBRIDGE_LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"WALLETBRIDGE_LOG_FORMAT"`

	// SerializeCommands runs one wallet command at a time.
	SerializeCommands bool `yaml:"serialize_commands" env:"WALLETBRIDGE_SERIALIZE_COMMANDS"`
}

// DefaultSettings returns settings pointing at ~/.walletbridge on mainnet.
func DefaultSettings() Settings {
	dir := ".walletbridge"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".walletbridge")
	}
	return Settings{
		DataDir:   dir,
		Server:    DefaultServer,
		Chain:     ChainMain,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// LoadSettings reads path over the defaults and applies environment
// overrides. A missing file is not an error when path is empty.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration
		if err != nil {
			return Settings{}, fmt.Errorf("config: load settings: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &s); err != nil {
			return Settings{}, fmt.Errorf("config: parse settings: %w", err)
		}
	}

	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("config: parse env: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// Validate checks that the settings are internally consistent.
func (s Settings) Validate() error {
	if s.DataDir == "" {
		return errors.New("config: data_dir is required")
	}
	if _, err := ChainDir(s.DataDir, s.Chain); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if s.LogFormat != "" && s.LogFormat != "json" && s.LogFormat != "text" {
		return fmt.Errorf("config: log_format must be json or text, got %q", s.LogFormat)
	}
	return nil
}
