package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/dotdir"
)

// envAliases are conventional environment variables honoured in addition to
// the SCRIBE_ prefixed ones. The first variable that is set wins.
var envAliases = map[string][]string{
	"completion.base_url":  {"SCRIBE_COMPLETION_BASE_URL", "INSTANCE_HOST"},
	"completion.api_key":   {"SCRIBE_COMPLETION_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY"},
	"storage.postgres_dsn": {"SCRIBE_STORAGE_POSTGRES_DSN", "DATABASE_URL"},
}

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the SCRIBE_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (SCRIBE_SERVER_LISTEN, INSTANCE_HOST, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("SCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range envAliases {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	return v, nil
}

// FromViper resolves the effective Config from every layer viper knows about.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
	})
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

// WatchLogLevel re-reads log.debug whenever the config file changes and moves
// level accordingly. It returns false when no config file is in use.
func WatchLogLevel(v *viper.Viper, level zap.AtomicLevel, logger *zap.Logger) bool {
	if v.ConfigFileUsed() == "" {
		return false
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		next := zap.InfoLevel
		if v.GetBool("log.debug") {
			next = zap.DebugLevel
		}
		if level.Level() == next {
			return
		}

		level.SetLevel(next)
		logger.Info("log level changed",
			zap.String("level", next.String()),
			zap.String("file", e.Name),
		)
	})
	v.WatchConfig()

	return true
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)

	v.SetDefault("client.target", d.Client.Target)

	v.SetDefault("completion.provider", d.Completion.Provider)
	v.SetDefault("completion.base_url", d.Completion.BaseURL)
	v.SetDefault("completion.api_key", d.Completion.APIKey)
	v.SetDefault("completion.chat_model", d.Completion.ChatModel)
	v.SetDefault("completion.reasoning_model", d.Completion.ReasoningModel)
	v.SetDefault("completion.max_tokens", d.Completion.MaxTokens)
	v.SetDefault("completion.timeout", d.Completion.Timeout)

	v.SetDefault("stream.mode", d.Stream.Mode)
	v.SetDefault("stream.chunk_size", d.Stream.ChunkSize)
	v.SetDefault("stream.chunk_delay", d.Stream.ChunkDelay)
	v.SetDefault("stream.word_delay", d.Stream.WordDelay)
	v.SetDefault("stream.keepalive", d.Stream.KeepAlive)
	v.SetDefault("stream.idle_timeout", d.Stream.IdleTimeout)
	v.SetDefault("stream.buffer", d.Stream.Buffer)

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	v.SetDefault("log.debug", d.Log.Debug)
}
