package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent scribe configuration stored as config.toml
// in the .scribe/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version    int              `toml:"version"`
	Server     ServerConfig     `toml:"server"`
	Client     ClientConfig     `toml:"client"`
	Completion CompletionConfig `toml:"completion"`
	Stream     StreamConfig     `toml:"stream"`
	Storage    StorageConfig    `toml:"storage"`
	Events     EventsConfig     `toml:"events"`
	Log        LogConfig        `toml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen      string `toml:"listen,omitempty"`
	CORSOrigins string `toml:"cors_origins,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running server
// (e.g. scribe ask). Target is a full URL (scheme + host + port).
type ClientConfig struct {
	Target string `toml:"target,omitempty"`
}

// CompletionConfig selects and configures the language-model provider.
type CompletionConfig struct {
	// Provider is one of echo, openai, anthropic, gemini.
	Provider string `toml:"provider,omitempty"`

	// BaseURL overrides the provider endpoint, e.g. a self-hosted
	// OpenAI-compatible inference server.
	BaseURL string `toml:"base_url,omitempty"`

	APIKey string `toml:"api_key,omitempty"`

	// ChatModel answers chat, recap, hints and response checks.
	ChatModel string `toml:"chat_model,omitempty"`

	// ReasoningModel drafts step-by-step solutions.
	ReasoningModel string `toml:"reasoning_model,omitempty"`

	MaxTokens uint   `toml:"max_tokens,omitempty"`
	Timeout   string `toml:"timeout,omitempty"`
}

// StreamConfig tunes the reply streaming pipeline. Durations use Go syntax
// ("100ms", "20s").
type StreamConfig struct {
	// Mode is "auto" (native when the provider streams) or "split".
	Mode        string `toml:"mode,omitempty"`
	ChunkSize   uint   `toml:"chunk_size,omitempty"`
	ChunkDelay  string `toml:"chunk_delay,omitempty"`
	WordDelay   string `toml:"word_delay,omitempty"`
	KeepAlive   string `toml:"keepalive,omitempty"`
	IdleTimeout string `toml:"idle_timeout,omitempty"`
	Buffer      uint   `toml:"buffer,omitempty"`
}

// StorageConfig selects the subproblem timer store.
type StorageConfig struct {
	// Driver is one of memory, sqlite, postgres.
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventsConfig selects where lifecycle events are published.
type EventsConfig struct {
	// Provider is "nop" or "kafka".
	Provider string `toml:"provider,omitempty"`

	// Brokers is a comma separated list of host:port pairs.
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// LogConfig holds logging settings. Debug is re-read when config.toml changes
// under a running server.
type LogConfig struct {
	Debug bool `toml:"debug,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

func durationKey(name string, field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = v
			return nil
		},
	}
}

func oneOfKey(name string, allowed []string, field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			for _, a := range allowed {
				if v == a {
					*field(c) = v
					return nil
				}
			}
			return fmt.Errorf("invalid value for %s: %q (allowed: %v)", name, v, allowed)
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"server.listen":       stringKey(func(c *Config) *string { return &c.Server.Listen }),
	"server.cors_origins": stringKey(func(c *Config) *string { return &c.Server.CORSOrigins }),

	"client.target": stringKey(func(c *Config) *string { return &c.Client.Target }),

	"completion.provider": oneOfKey("completion.provider", ProviderNames(),
		func(c *Config) *string { return &c.Completion.Provider }),
	"completion.base_url":        stringKey(func(c *Config) *string { return &c.Completion.BaseURL }),
	"completion.api_key":         stringKey(func(c *Config) *string { return &c.Completion.APIKey }),
	"completion.chat_model":      stringKey(func(c *Config) *string { return &c.Completion.ChatModel }),
	"completion.reasoning_model": stringKey(func(c *Config) *string { return &c.Completion.ReasoningModel }),
	"completion.max_tokens": uintKey("completion.max_tokens",
		func(c *Config) *uint { return &c.Completion.MaxTokens }),
	"completion.timeout": durationKey("completion.timeout",
		func(c *Config) *string { return &c.Completion.Timeout }),

	"stream.mode": oneOfKey("stream.mode", []string{"auto", "native", "split"},
		func(c *Config) *string { return &c.Stream.Mode }),
	"stream.chunk_size": uintKey("stream.chunk_size",
		func(c *Config) *uint { return &c.Stream.ChunkSize }),
	"stream.chunk_delay": durationKey("stream.chunk_delay",
		func(c *Config) *string { return &c.Stream.ChunkDelay }),
	"stream.word_delay": durationKey("stream.word_delay",
		func(c *Config) *string { return &c.Stream.WordDelay }),
	"stream.keepalive": durationKey("stream.keepalive",
		func(c *Config) *string { return &c.Stream.KeepAlive }),
	"stream.idle_timeout": durationKey("stream.idle_timeout",
		func(c *Config) *string { return &c.Stream.IdleTimeout }),
	"stream.buffer": uintKey("stream.buffer",
		func(c *Config) *uint { return &c.Stream.Buffer }),

	"storage.driver": oneOfKey("storage.driver", []string{"memory", "sqlite", "postgres"},
		func(c *Config) *string { return &c.Storage.Driver }),
	"storage.sqlite_path":  stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn": stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),

	"events.provider": oneOfKey("events.provider", []string{"nop", "kafka"},
		func(c *Config) *string { return &c.Events.Provider }),
	"events.brokers": stringKey(func(c *Config) *string { return &c.Events.Brokers }),
	"events.topic":   stringKey(func(c *Config) *string { return &c.Events.Topic }),

	"log.debug": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.Debug) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for log.debug: %w", err)
			}
			c.Log.Debug = b
			return nil
		},
	},
}
