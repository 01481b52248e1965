package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	// No .scribe/ directory: LoadConfig returns defaults and SaveConfig
	// errors clearly.
	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns all supported configuration key names in TOML
// section order.
func ValidConfigKeys() []string {
	ordered := []string{
		"server.listen",
		"server.cors_origins",
		"client.target",
		"completion.provider",
		"completion.base_url",
		"completion.api_key",
		"completion.chat_model",
		"completion.reasoning_model",
		"completion.max_tokens",
		"completion.timeout",
		"stream.mode",
		"stream.chunk_size",
		"stream.chunk_delay",
		"stream.word_delay",
		"stream.keepalive",
		"stream.idle_timeout",
		"stream.buffer",
		"storage.driver",
		"storage.sqlite_path",
		"storage.postgres_dsn",
		"events.provider",
		"events.brokers",
		"events.topic",
		"log.debug",
	}

	result := make([]string, 0, len(configKeys))
	seen := make(map[string]bool, len(configKeys))
	for _, k := range ordered {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
			seen[k] = true
		}
	}
	for k := range configKeys {
		if !seen[k] {
			result = append(result, k)
		}
	}

	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads config.toml from the target .scribe/ directory.
// If the file does not exist, returns NewDefaultConfig() so callers always
// receive a fully-populated Config. Fields set in the file override the
// defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	d := NewDefaultConfig()

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fillUint := func(dst *uint, def uint) {
		if *dst == 0 {
			*dst = def
		}
	}

	fill(&cfg.Server.Listen, d.Server.Listen)
	fill(&cfg.Server.CORSOrigins, d.Server.CORSOrigins)

	fill(&cfg.Client.Target, d.Client.Target)

	fill(&cfg.Completion.Provider, d.Completion.Provider)
	fill(&cfg.Completion.ChatModel, d.Completion.ChatModel)
	fill(&cfg.Completion.ReasoningModel, d.Completion.ReasoningModel)
	fillUint(&cfg.Completion.MaxTokens, d.Completion.MaxTokens)
	fill(&cfg.Completion.Timeout, d.Completion.Timeout)

	fill(&cfg.Stream.Mode, d.Stream.Mode)
	fillUint(&cfg.Stream.ChunkSize, d.Stream.ChunkSize)
	fill(&cfg.Stream.ChunkDelay, d.Stream.ChunkDelay)
	fill(&cfg.Stream.WordDelay, d.Stream.WordDelay)
	fill(&cfg.Stream.KeepAlive, d.Stream.KeepAlive)
	fill(&cfg.Stream.IdleTimeout, d.Stream.IdleTimeout)
	fillUint(&cfg.Stream.Buffer, d.Stream.Buffer)

	fill(&cfg.Storage.Driver, d.Storage.Driver)

	fill(&cfg.Events.Provider, d.Events.Provider)
	fill(&cfg.Events.Topic, d.Events.Topic)
}

// SaveConfig persists the configuration to config.toml in the target .scribe/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// ProviderNames returns the completion providers scribe can talk to.
func ProviderNames() []string {
	return []string{"echo", "openai", "anthropic", "gemini"}
}

// PresetConfig returns a Config with sane defaults for the named provider preset.
// Returns an error if the preset name is not recognized.
func PresetConfig(name string) (*Config, error) {
	cfg := NewDefaultConfig()

	switch strings.ToLower(name) {
	case "echo":
		return cfg, nil

	case "openai":
		cfg.Completion.Provider = "openai"
		cfg.Completion.BaseURL = "https://api.openai.com/v1"
		cfg.Completion.ChatModel = "gpt-4o-mini"
		cfg.Completion.ReasoningModel = "o4-mini"
		return cfg, nil

	case "anthropic":
		cfg.Completion.Provider = "anthropic"
		cfg.Completion.ChatModel = "claude-3-5-haiku-latest"
		cfg.Completion.ReasoningModel = "claude-sonnet-4-0"
		return cfg, nil

	case "gemini":
		cfg.Completion.Provider = "gemini"
		cfg.Completion.ChatModel = "gemini-2.5-flash"
		cfg.Completion.ReasoningModel = "gemini-2.5-pro"
		return cfg, nil

	default:
		return nil, fmt.Errorf("unknown preset: %q (available: %s)",
			name, strings.Join(ValidPresetNames(), ", "))
	}
}

// ValidPresetNames returns the list of recognized preset names.
func ValidPresetNames() []string {
	return ProviderNames()
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}
