package svcbot

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds everything the bot needs to run. Values come from an optional
// YAML file, overridden by environment variables; the env names match the
// deployment surface the bot has always had (BOT_TOKEN, ADMIN_ID,
// SUPERVISOR_URL).
type Config struct {
	// BotToken is the Telegram bot API token
	BotToken string `yaml:"bot_token"`
	// AdminChatID is the single chat authorized to operate the bot
	AdminChatID int64 `yaml:"admin_chat_id"`
	// SupervisorURL is the supervisord XML-RPC endpoint
	SupervisorURL string `yaml:"supervisor_url"`
	// SnapshotPath, when set, enables atomic process-table snapshots
	SnapshotPath string `yaml:"snapshot_path"`
	// HealthAddr, when set, enables the HTTP health endpoint on this address
	HealthAddr string `yaml:"health_addr"`
}

// LoadConfig reads the YAML file at path (skipped when path is empty or the
// file does not exist), applies environment overrides, and validates the
// result.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		SupervisorURL: "http://127.0.0.1:9001/RPC2",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Env-only configuration is fine.
		case err != nil:
			return Config{}, fmt.Errorf("reading config %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
			}
		}
	}

	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.BotToken = v
	}
	if v := os.Getenv("ADMIN_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parsing ADMIN_ID %q: %w", v, err)
		}
		cfg.AdminChatID = id
	}
	if v := os.Getenv("SUPERVISOR_URL"); v != "" {
		cfg.SupervisorURL = v
	}
	if v := os.Getenv("SNAPSHOT_PATH"); v != "" {
		cfg.SnapshotPath = v
	}
	if v := os.Getenv("HEALTH_ADDR"); v != "" {
		cfg.HealthAddr = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the required settings are present.
func (c Config) Validate() error {
	if c.BotToken == "" {
		return ErrMissingToken
	}
	if c.AdminChatID == 0 {
		return ErrMissingAdmin
	}
	if c.SupervisorURL == "" {
		return ErrMissingURL
	}
	return nil
}
